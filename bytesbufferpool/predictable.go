package bytesbufferpool

import (
	"math/bits"
	"sync"
)

const (
	maximumPoolCnt = 24
	// maximumPooledCap is the capacity served by the last pool. Bigger
	// buffers are allocated on demand and never cached.
	maximumPooledCap = 1 << (maximumPoolCnt - 1 + 8)
)

// PredictablePool contains pools for slices of byte of various capacities.
//
//	pools[0] is for capacities from 0 upto 256
//	pools[1] is for capacities from 257 upto 512
//	pools[2] is for capacities from 513 upto 1024
//	...
//	pools[n] is for capacities from 2^(n+7)+1 to 2^(n+8)
//
// Buffers handed out are not zeroed, a reused buffer still carries whatever
// its previous owner wrote into it.
type PredictablePool struct {
	pools [maximumPoolCnt]sync.Pool
}

func NewPredictablePool() *PredictablePool {
	return &PredictablePool{}
}

// Get returns an empty slice with at least dataLen bytes of capacity. The
// capacity is exactly capacityFor(dataLen).
func (p *PredictablePool) Get(dataLen int) []byte {
	if dataLen > maximumPooledCap {
		return make([]byte, 0, dataLen)
	}

	id, poolCap := getPoolIDAndCapacity(dataLen)
	if b := p.pools[id].Get(); b != nil {
		return b.([]byte)
	}

	// if the pool is empty, then allocate new poolCap bytes
	return make([]byte, 0, poolCap)
}

func (p *PredictablePool) Put(buf []byte) {
	capacity := cap(buf)
	if capacity == 0 || capacity > maximumPooledCap {
		return
	}
	id, poolCap := getPoolIDAndCapacity(capacity)
	if capacity != poolCap {
		// the buffer was not handed out by this pool, keeping it would let
		// a later Get return less capacity than requested
		return
	}

	//reset the buffer and remains the capacity, and put into the pool
	buf = buf[:0]
	p.pools[id].Put(buf)
}

// Allocate returns a slice of exactly size bytes backed by a pooled buffer.
func (p *PredictablePool) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	return p.Get(size)[:size], nil
}

// Release gives back a slice obtained from Allocate.
func (p *PredictablePool) Release(buf []byte) {
	p.Put(buf)
}

// capacityFor is the capacity of the slice Get returns for dataLen bytes.
func capacityFor(dataLen int) int {
	if dataLen > maximumPooledCap {
		return dataLen
	}
	_, poolCap := getPoolIDAndCapacity(dataLen)
	return poolCap
}

// getPoolIDAndCapacity predict the poolId from given data size
// and return the pool maximum capacity
func getPoolIDAndCapacity(size int) (int, int) {
	size--
	size = max(size, 0)
	size >>= 8
	id := bits.Len(uint(size))
	id = min(id, maximumPoolCnt-1)
	return id, 1 << (id + 8)
}
