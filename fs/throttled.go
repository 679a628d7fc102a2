package go_fs

import (
	"context"

	"golang.org/x/time/rate"
)

type throttledWritable struct {
	Writable
	ctx     context.Context
	limiter *rate.Limiter
}

// NewThrottledWritable caps the write throughput of w to bytesPerSec. A
// single Write larger than one second worth of bytes is split, so the
// natural write size is capped the same way. A non positive rate disables
// throttling.
func NewThrottledWritable(ctx context.Context, w Writable, bytesPerSec int) Writable {
	if bytesPerSec <= 0 {
		return w
	}
	return &throttledWritable{
		Writable: w,
		ctx:      ctx,
		limiter:  rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec),
	}
}

func (t *throttledWritable) Write(p []byte) (int, error) {
	var written int
	for written < len(p) {
		n := min(len(p)-written, t.limiter.Burst())
		if err := t.limiter.WaitN(t.ctx, n); err != nil {
			return written, err
		}
		m, err := t.Writable.Write(p[written : written+n])
		written += m
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (t *throttledWritable) NaturalWriteSize() uint64 {
	return min(t.Writable.NaturalWriteSize(), uint64(t.limiter.Burst()))
}
