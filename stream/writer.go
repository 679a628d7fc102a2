package stream

import (
	"fmt"

	go_blockbuffer "github.com/datnguyenzzz/nogodb/lib/go-blockbuffer"
	go_fs "github.com/datnguyenzzz/nogodb/lib/go-blockbuffer/fs"
	"github.com/datnguyenzzz/nogodb/lib/go-blockbuffer/queue"
	"go.uber.org/zap"
)

// Handle locates a flushed stream within the object.
type Handle struct {
	Name string
	// Offset of the first byte of the stream within the object.
	Offset uint64
	// Length of the stream in bytes.
	Length uint64
}

// Writer accumulates column streams stripe by stripe and flushes every
// stripe to a single Writable.
//
// While a stripe is being built the streams live in block buffers. When
// FlushStripe is called, the buffers are handed to a background goroutine
// which writes them in the order the streams were created, then returns their
// blocks to the pool. The next stripe starts with fresh buffers, so encoding
// and I/O overlap.
//
// A Writer must be used from a single goroutine.
type Writer struct {
	opts     writeOpt
	writable go_fs.Writable
	pool     go_blockbuffer.MemoryPool
	queue    queue.IQueue

	// streams of the stripe being built, in creation order
	streams []*Stream
	byName  map[string]*Stream

	offset  uint64
	stripes [][]Handle
	closed  bool
}

func NewWriter(writable go_fs.Writable, pool go_blockbuffer.MemoryPool, opts ...WriteOptFn) *Writer {
	w := &Writer{
		opts:     defaultWriteOpt,
		writable: writable,
		pool:     pool,
		byName:   make(map[string]*Stream),
	}

	for _, o := range opts {
		o(w)
	}

	w.queue = queue.NewQueue(w.opts.queueLen, false)
	return w
}

// Stream returns the stream called name in the current stripe, creating it
// on first use.
func (w *Writer) Stream(name string) (*Stream, error) {
	if w.closed {
		return nil, ErrWriterClosed
	}
	if name == "" {
		return nil, ErrEmptyStreamName
	}
	if s, ok := w.byName[name]; ok {
		return s, nil
	}

	var bufOpts []go_blockbuffer.OptionFn
	if w.opts.maxChunkSize > 0 {
		bufOpts = append(bufOpts, go_blockbuffer.WithMaxChunkSize(w.opts.maxChunkSize))
	}
	buf, err := go_blockbuffer.New(w.pool, w.opts.blockSize, bufOpts...)
	if err != nil {
		return nil, fmt.Errorf("stream %q: %w", name, err)
	}

	s := &Stream{name: name, buf: buf}
	w.streams = append(w.streams, s)
	w.byName[name] = s
	return s, nil
}

// FlushStripe ends the current stripe and schedules its flush. The returned
// handles are final even though the bytes may not be written yet. Streams of
// the ended stripe must not be used anymore. An error reports a stripe that
// failed to flush.
func (w *Writer) FlushStripe() ([]Handle, error) {
	if w.closed {
		return nil, ErrWriterClosed
	}

	handles := w.handOff()
	if err := w.queue.Err(); err != nil {
		return nil, err
	}
	return handles, nil
}

// Stripes returns the handles of every stripe handed off so far.
func (w *Writer) Stripes() [][]Handle {
	return w.stripes
}

// Offset is the size of the object once every handed off stripe is written.
func (w *Writer) Offset() uint64 {
	return w.offset
}

// Close flushes the pending stripe, waits for every flush and finishes the
// writable. On any error the writable is aborted instead.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriterClosed
	}

	w.handOff()
	w.closed = true

	err := w.queue.Close()
	if err != nil {
		zap.L().Error("Failed to flush stripes, aborting", zap.Int("stripes", len(w.stripes)), zap.Error(err))
		w.writable.Abort()
		return err
	}

	if err := w.writable.Finish(); err != nil {
		zap.L().Error("Failed to finish writable", zap.Error(err))
		return err
	}
	return nil
}

// Abort drops the stripe being built, waits for the stripes already handed
// off and aborts the writable.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true

	for _, s := range w.streams {
		_ = s.buf.Close()
	}
	w.streams = nil

	if err := w.queue.Close(); err != nil {
		zap.L().Warn("Stripe flush failed before abort", zap.Error(err))
	}
	w.writable.Abort()
}

func (w *Writer) handOff() []Handle {
	if len(w.streams) == 0 {
		return nil
	}

	handles := make([]Handle, 0, len(w.streams))
	for _, s := range w.streams {
		handles = append(handles, Handle{Name: s.name, Offset: w.offset, Length: s.Size()})
		w.offset += s.Size()
	}
	w.stripes = append(w.stripes, handles)

	task := spawnNewTask()
	task.stripe = len(w.stripes) - 1
	task.streams = w.streams
	task.sink = w.writable
	task.metrics = w.opts.metrics
	w.queue.Put(task)

	w.streams = nil
	w.byName = make(map[string]*Stream)
	return handles
}
