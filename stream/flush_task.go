package stream

import (
	"fmt"
	"sync"

	go_blockbuffer "github.com/datnguyenzzz/nogodb/lib/go-blockbuffer"
	"github.com/datnguyenzzz/nogodb/lib/go-blockbuffer/queue"
)

// flushTask writes the streams of one stripe, in order, then gives their
// blocks back to the pool.
type flushTask struct {
	stripe  int
	streams []*Stream
	sink    go_blockbuffer.Sink
	metrics *go_blockbuffer.WriterMetrics
}

var taskPool = sync.Pool{
	New: func() interface{} {
		return &flushTask{}
	},
}

func (t *flushTask) Execute() error {
	for _, s := range t.streams {
		if err := s.buf.FlushTo(t.sink, t.metrics); err != nil {
			return fmt.Errorf("stripe %d, stream %q: %w", t.stripe, s.name, err)
		}
	}
	return nil
}

func (t *flushTask) Release() {
	for _, s := range t.streams {
		_ = s.buf.Close()
	}
	t.streams = nil
	t.sink = nil
	t.metrics = nil
	taskPool.Put(t)
}

func (t *flushTask) OnHold() {
	// do nothing
}

func spawnNewTask() *flushTask {
	return taskPool.Get().(*flushTask)
}

var _ queue.ITask = (*flushTask)(nil)
