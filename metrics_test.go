package go_blockbuffer

import (
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type discardSink struct {
	natural uint64
}

func (d discardSink) Write(p []byte) (int, error) {
	return io.Discard.Write(p)
}

func (d discardSink) NaturalWriteSize() uint64 {
	return d.natural
}

func Test_WriterMetrics_SharedAcrossFlushes(t *testing.T) {
	const (
		buffers     = 16
		flushesEach = 50
	)

	metrics := &WriterMetrics{}
	collector := NewMetricsCollector(metrics, prometheus.Labels{"writer": "test"})

	eg := errgroup.Group{}
	for i := 0; i < buffers; i++ {
		eg.Go(func() error {
			// every buffer is owned by a single goroutine, only the metrics are shared
			b, err := New(newCountingPool(), 4)
			if err != nil {
				return err
			}
			defer b.Close()
			if err := b.Resize(10); err != nil {
				return err
			}
			for j := 0; j < flushesEach; j++ {
				// 3, 3, 3, 1
				if err := b.FlushTo(discardSink{natural: 3}, metrics); err != nil {
					return err
				}
			}
			return nil
		})
	}

	// scrape while flushes are in flight
	eg.Go(func() error {
		for i := 0; i < 100; i++ {
			_ = testutil.ToFloat64(collector)
		}
		return nil
	})

	require.NoError(t, eg.Wait())
	assert.Equal(t, uint64(buffers*flushesEach*4), metrics.IOCount.Load())
	assert.Equal(t, float64(buffers*flushesEach*4), testutil.ToFloat64(collector))
}

func Test_MetricsCollector_Register(t *testing.T) {
	metrics := &WriterMetrics{}
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewMetricsCollector(metrics, nil)))

	metrics.IOCount.Add(7)
	count, err := testutil.GatherAndCount(reg, "nogodb_block_buffer_io_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, float64(7), testutil.ToFloat64(NewMetricsCollector(metrics, nil)))
}
