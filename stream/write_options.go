package stream

import go_blockbuffer "github.com/datnguyenzzz/nogodb/lib/go-blockbuffer"

type WriteOptFn func(w *Writer)

type writeOpt struct {
	// blockSize is the block size of every stream buffer
	blockSize uint64
	// queueLen is the number of stripes that can wait for their flush
	// before FlushStripe blocks
	queueLen     int
	maxChunkSize uint64
	metrics      *go_blockbuffer.WriterMetrics
}

var defaultWriteOpt = writeOpt{
	blockSize: 64 * 1024,
	queueLen:  4,
}

func WithBlockSize(blockSize uint64) WriteOptFn {
	return func(w *Writer) {
		w.opts.blockSize = blockSize
	}
}

func WithQueueLen(queueLen int) WriteOptFn {
	return func(w *Writer) {
		w.opts.queueLen = queueLen
	}
}

func WithMaxChunkSize(size uint64) WriteOptFn {
	return func(w *Writer) {
		w.opts.maxChunkSize = size
	}
}

// WithMetrics shares m with every stream buffer of the writer.
func WithMetrics(m *go_blockbuffer.WriterMetrics) WriteOptFn {
	return func(w *Writer) {
		w.opts.metrics = m
	}
}
