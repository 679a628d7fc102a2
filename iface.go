package go_blockbuffer

import "io"

// MemoryPool supplies and takes back the memory backing a BlockBuffer.
//
// Allocate returns a slice of exactly size bytes, or an error when the pool
// is exhausted. The content of the returned slice is unspecified.
type MemoryPool interface {
	Allocate(size int) ([]byte, error)
	Release(buf []byte)
}

// Sink is the destination of a flush.
type Sink interface {
	io.Writer

	// NaturalWriteSize is the preferred size of a single write. It is read
	// once per flush.
	NaturalWriteSize() uint64
}

type IBlockBuffer interface {
	// Reserve makes sure the capacity is at least targetCapacity, as far as
	// the pool allows. It never fails, callers check Capacity afterward.
	Reserve(targetCapacity uint64)

	// Resize sets the logical size. It fails with ErrAllocationFailure when
	// the capacity can not be grown to targetSize, leaving the size untouched.
	Resize(targetSize uint64) error

	// GetBlock returns the valid bytes of the index-th logical block.
	GetBlock(index uint64) ([]byte, error)

	// GetNextBlock returns a writable region right after the logical end,
	// which never crosses a block boundary. The logical size is advanced up to
	// the end of the region.
	GetNextBlock() ([]byte, error)

	// FlushTo writes the logical content to the sink, chunked by the sink's
	// natural write size. metrics is optional.
	FlushTo(sink Sink, metrics *WriterMetrics) error

	Size() uint64
	Capacity() uint64
	BlockSize() uint64
	BlockCount() uint64

	// Close gives every block back to the pool.
	Close() error
}
