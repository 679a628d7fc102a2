package bytesbufferpool

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLimitedPool_Budget(t *testing.T) {
	// every allocation below 256 bytes costs one 256-byte buffer
	pool := NewLimitedPool(2 * 256)

	first, err := pool.Allocate(4)
	require.NoError(t, err)
	assert.Len(t, first, 4)

	second, err := pool.Allocate(200)
	require.NoError(t, err)
	assert.Equal(t, 512, pool.InUse())
	assert.Equal(t, 2, pool.Outstanding())

	_, err = pool.Allocate(1)
	assert.ErrorIs(t, err, ErrNoMemory)
	assert.Equal(t, 2, pool.Outstanding(), "failed allocation must not be accounted")

	pool.Release(first)
	third, err := pool.Allocate(1)
	require.NoError(t, err)

	pool.Release(second[:0])
	pool.Release(third)
	assert.Equal(t, 0, pool.InUse())
	assert.Equal(t, 0, pool.Outstanding())
}

func TestLimitedPool_ZeroBudget(t *testing.T) {
	pool := NewLimitedPool(0)
	_, err := pool.Allocate(1)
	assert.ErrorIs(t, err, ErrNoMemory)

	_, err = pool.Allocate(-5)
	assert.ErrorIs(t, err, ErrInvalidSize)

	pool.Release(nil)
	assert.Equal(t, 0, pool.Outstanding())
}

func TestLimitedPool_RefusedRequestDoesNotAllocate(t *testing.T) {
	pool := NewLimitedPool(1024)

	tests := []struct {
		name string
		size int
	}{
		{"beyond pooled classes", 1 << 30},
		{"largest pooled class", maximumPooledCap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := pool.Allocate(tt.size)
			runtime.ReadMemStats(&after)

			assert.ErrorIs(t, err, ErrNoMemory)
			assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
			assert.Equal(t, 0, pool.InUse())
			assert.Equal(t, 0, pool.Outstanding())
		})
	}
}

func TestLimitedPool_Concurrent(t *testing.T) {
	pool := NewLimitedPool(1 << 20)

	eg := errgroup.Group{}
	eg.SetLimit(8)
	for i := 0; i < 64; i++ {
		eg.Go(func() error {
			for j := 0; j < 100; j++ {
				b, err := pool.Allocate(1024)
				if err != nil {
					return err
				}
				pool.Release(b)
			}
			return nil
		})
	}

	require.NoError(t, eg.Wait())
	assert.Equal(t, 0, pool.InUse())
}
