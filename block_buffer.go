package go_blockbuffer

import (
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"
)

// BlockBuffer is a growable write buffer made of fixed-size blocks taken from
// a MemoryPool. Encoders write straight into the blocks through the regions
// returned by GetNextBlock, and the accumulated content is later streamed to
// a Sink with FlushTo.
//
//	block 0          block 1          block 2
//	+--------------+ +--------------+ +------+-------+
//	|   written    | |   written    | | used | free  |
//	+--------------+ +--------------+ +------+-------+
//	                                         ^       ^
//	                                   currentSize  currentCapacity
//
// Only the last logical block may be partially used. The capacity grows one
// block at a time and never shrinks until Close hands every block back to the
// pool.
//
// A BlockBuffer must not be mutated from more than one goroutine at a time.
type BlockBuffer struct {
	opts options
	pool MemoryPool

	blockSize uint64
	// blocks are owned by the buffer, each one is exactly blockSize long
	blocks [][]byte

	currentSize     uint64
	currentCapacity uint64
	closed          bool
}

// New creates a BlockBuffer and reserves its first block.
func New(pool MemoryPool, blockSize uint64, opts ...OptionFn) (*BlockBuffer, error) {
	if blockSize == 0 {
		return nil, fmt.Errorf("%w: block size cannot be zero", ErrInvalidConfiguration)
	}
	if blockSize > math.MaxInt {
		return nil, fmt.Errorf("%w: block size %d is too large", ErrInvalidConfiguration, blockSize)
	}
	if pool == nil {
		return nil, fmt.Errorf("%w: memory pool is required", ErrInvalidConfiguration)
	}

	b := &BlockBuffer{
		opts:      defaultOptions,
		pool:      pool,
		blockSize: blockSize,
	}

	for _, o := range opts {
		o(b)
	}

	b.Reserve(blockSize)
	return b, nil
}

func (b *BlockBuffer) Reserve(targetCapacity uint64) {
	if b.closed {
		return
	}

	for b.currentCapacity < targetCapacity {
		block, err := b.pool.Allocate(int(b.blockSize))
		if err == nil && uint64(len(block)) < b.blockSize {
			b.pool.Release(block)
			err = fmt.Errorf("pool returned %d bytes", len(block))
		}
		if err != nil {
			// best effort, Resize decides whether it is fatal
			b.logger().Debug("stop reserving blocks",
				zap.Uint64("capacity", b.currentCapacity),
				zap.Uint64("target_capacity", targetCapacity),
				zap.Error(err))
			return
		}

		b.blocks = append(b.blocks, block[:b.blockSize])
		b.currentCapacity += b.blockSize
	}
}

func (b *BlockBuffer) Resize(targetSize uint64) error {
	if b.closed {
		return ErrClosed
	}

	b.Reserve(targetSize)
	if b.currentCapacity < targetSize {
		b.logger().Error("Failed to resize block buffer",
			zap.Uint64("size", b.currentSize),
			zap.Uint64("capacity", b.currentCapacity),
			zap.Uint64("target_size", targetSize))
		return fmt.Errorf("%w: capacity %d is below the requested size %d",
			ErrAllocationFailure, b.currentCapacity, targetSize)
	}

	b.currentSize = targetSize
	return nil
}

func (b *BlockBuffer) GetBlock(index uint64) ([]byte, error) {
	if b.closed {
		return nil, ErrClosed
	}

	blockCount := b.BlockCount()
	if index >= blockCount {
		return nil, fmt.Errorf("%w: index %d, block count %d", ErrIndexOutOfRange, index, blockCount)
	}

	n := min(b.currentSize-index*b.blockSize, b.blockSize)
	return b.blocks[index][:n:n], nil
}

func (b *BlockBuffer) GetNextBlock() ([]byte, error) {
	if b.closed {
		return nil, ErrClosed
	}

	index := b.currentSize / b.blockSize
	if b.currentSize < b.currentCapacity {
		// hand out the rest of the partially used block
		offset := b.currentSize % b.blockSize
		region := b.blocks[index][offset:b.blockSize:b.blockSize]
		b.currentSize = (index + 1) * b.blockSize
		return region, nil
	}

	if err := b.Resize(b.currentSize + b.blockSize); err != nil {
		return nil, err
	}
	return b.blocks[index][:b.blockSize:b.blockSize], nil
}

func (b *BlockBuffer) FlushTo(sink Sink, metrics *WriterMetrics) error {
	if b.closed {
		return ErrClosed
	}
	if b.currentSize == 0 {
		return nil
	}

	chunkSize := min(sink.NaturalWriteSize(), b.opts.maxChunkSize)
	if chunkSize == 0 {
		return ErrInvalidChunkSize
	}

	var (
		ioCount uint64
		err     error
	)
	if b.BlockCount() == 1 && b.currentSize <= chunkSize {
		// a single block is written as it is, without staging
		err = writeFull(sink, b.blocks[0][:b.currentSize])
		ioCount = 1
	} else {
		ioCount, err = b.flushChunked(sink, chunkSize)
	}
	if err != nil {
		b.logger().Error("Failed to flush block buffer",
			zap.Uint64("size", b.currentSize),
			zap.Uint64("chunk_size", chunkSize),
			zap.Error(err))
		return err
	}

	if metrics != nil {
		metrics.IOCount.Add(ioCount)
	}
	return nil
}

// flushChunked copies the logical content into a staging chunk and writes the
// chunk every time it is full, then writes the remaining partial chunk.
//
// The staging chunk is min(chunkSize, currentSize) bytes, so the pool may be
// asked for fewer bytes than chunkSize. The sequence of writes is the same as
// with a full chunkSize staging chunk.
func (b *BlockBuffer) flushChunked(sink Sink, chunkSize uint64) (uint64, error) {
	stagingSize := min(chunkSize, b.currentSize)
	chunk, err := b.pool.Allocate(int(stagingSize))
	if err != nil {
		return 0, fmt.Errorf("%w: staging chunk of %d bytes: %w", ErrAllocationFailure, stagingSize, err)
	}
	defer b.pool.Release(chunk)
	chunk = chunk[:stagingSize]

	var (
		ioCount     uint64
		chunkOffset int
	)
	blockCount := b.BlockCount()
	for i := uint64(0); i < blockCount; i++ {
		block := b.blocks[i][:min(b.currentSize-i*b.blockSize, b.blockSize)]
		for blockOffset := 0; blockOffset < len(block); {
			n := copy(chunk[chunkOffset:], block[blockOffset:])
			chunkOffset += n
			blockOffset += n

			if chunkOffset == len(chunk) {
				if err := writeFull(sink, chunk); err != nil {
					return ioCount, err
				}
				ioCount++
				chunkOffset = 0
			}
		}
	}

	if chunkOffset > 0 {
		if err := writeFull(sink, chunk[:chunkOffset]); err != nil {
			return ioCount, err
		}
		ioCount++
	}

	return ioCount, nil
}

func (b *BlockBuffer) Size() uint64 {
	return b.currentSize
}

func (b *BlockBuffer) Capacity() uint64 {
	return b.currentCapacity
}

func (b *BlockBuffer) BlockSize() uint64 {
	return b.blockSize
}

// BlockCount is the number of logical blocks, derived from the size rather
// than from the allocated capacity.
func (b *BlockBuffer) BlockCount() uint64 {
	count := b.currentSize / b.blockSize
	if b.currentSize%b.blockSize != 0 {
		count++
	}
	return count
}

func (b *BlockBuffer) Close() error {
	if b.closed {
		return nil
	}

	for _, block := range b.blocks {
		b.pool.Release(block)
	}
	b.blocks = nil
	b.currentSize, b.currentCapacity = 0, 0
	b.closed = true
	return nil
}

func (b *BlockBuffer) logger() *zap.Logger {
	if b.opts.logger != nil {
		return b.opts.logger
	}
	return zap.L()
}

// writeFull reports a short write without error as io.ErrShortWrite.
func writeFull(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

var _ IBlockBuffer = (*BlockBuffer)(nil)
