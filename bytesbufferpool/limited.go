package bytesbufferpool

import (
	"sync"

	"go.uber.org/zap"
)

// LimitedPool is a PredictablePool with a hard budget on the number of bytes
// lent out at the same time. Allocations that would exceed the budget fail
// with ErrNoMemory instead of growing the heap.
//
// The budget is accounted on the capacity of the lent slices, so callers are
// free to reslice a buffer before releasing it.
type LimitedPool struct {
	mu          sync.Mutex
	inner       *PredictablePool
	limit       int
	inUse       int
	outstanding int
}

func NewLimitedPool(limit int) *LimitedPool {
	return &LimitedPool{
		inner: NewPredictablePool(),
		limit: limit,
	}
}

func (l *LimitedPool) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}

	// reserve the budget first, a refused request must not touch the heap
	reserved := capacityFor(size)
	l.mu.Lock()
	if reserved > l.limit-l.inUse {
		inUse := l.inUse
		l.mu.Unlock()
		zap.L().Debug("pool budget exhausted",
			zap.Int("requested", size),
			zap.Int("in_use", inUse),
			zap.Int("limit", l.limit))
		return nil, ErrNoMemory
	}
	l.inUse += reserved
	l.outstanding++
	l.mu.Unlock()

	buf := l.inner.Get(size)
	if cap(buf) != reserved {
		// settle the difference so Release gives back what was accounted
		l.mu.Lock()
		l.inUse += cap(buf) - reserved
		l.mu.Unlock()
	}
	return buf[:size], nil
}

func (l *LimitedPool) Release(buf []byte) {
	if buf == nil {
		return
	}
	l.mu.Lock()
	l.inUse -= cap(buf)
	l.outstanding--
	l.mu.Unlock()

	l.inner.Put(buf)
}

// InUse returns the number of bytes currently lent out.
func (l *LimitedPool) InUse() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inUse
}

// Outstanding returns the number of allocations not released yet.
func (l *LimitedPool) Outstanding() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.outstanding
}
