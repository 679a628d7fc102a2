// Package zerocopy reads storage objects into buffers borrowed from a pool.
//
// Every buffer handed out by a Reader stays owned by the Reader until it is
// released, either one by one or all at once. Closing the Reader releases
// whatever is still outstanding, so a caller that forgets a buffer does not
// leak pool memory.
package zerocopy

import (
	"errors"
	"io"

	go_fs "github.com/datnguyenzzz/nogodb/lib/go-blockbuffer/fs"
	"go.uber.org/zap"
)

var ErrUnknownBuffer = errors.New("buffer was not lent by this reader")

type BufferPool interface {
	Allocate(size int) ([]byte, error)
	Release(buf []byte)
}

type Reader struct {
	in   go_fs.Readable
	pool BufferPool
	// lent buffers keyed by the address of their first byte, so that two
	// buffers with equal content are still told apart
	lent map[*byte][]byte
}

// NewReader wraps in. When pool is nil, buffers are plain allocations and
// releasing them is a no-op beyond the bookkeeping.
func NewReader(in go_fs.Readable, pool BufferPool) *Reader {
	return &Reader{
		in:   in,
		pool: pool,
		lent: make(map[*byte][]byte),
	}
}

// ReadBuffer reads up to maxLength bytes into a borrowed buffer. It returns
// io.EOF once the object is exhausted.
func (r *Reader) ReadBuffer(maxLength int) ([]byte, error) {
	if maxLength <= 0 {
		return nil, io.ErrShortBuffer
	}

	buf, err := r.allocate(maxLength)
	if err != nil {
		return nil, err
	}

	n, err := io.ReadFull(r.in, buf)
	if n == 0 {
		r.release(buf)
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return nil, err
	}
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		r.release(buf)
		return nil, err
	}

	buf = buf[:n]
	r.lent[key(buf)] = buf
	return buf, nil
}

func (r *Reader) ReleaseBuffer(buf []byte) error {
	k := key(buf)
	lent, ok := r.lent[k]
	if !ok {
		return ErrUnknownBuffer
	}
	delete(r.lent, k)
	r.release(lent)
	return nil
}

func (r *Reader) ReleaseAllBuffers() {
	for k, buf := range r.lent {
		r.release(buf)
		delete(r.lent, k)
	}
}

// Outstanding is the number of buffers lent and not released yet.
func (r *Reader) Outstanding() int {
	return len(r.lent)
}

func (r *Reader) Close() error {
	if n := len(r.lent); n > 0 {
		zap.L().Debug("releasing outstanding buffers on close", zap.Int("count", n))
	}
	r.ReleaseAllBuffers()
	return r.in.Close()
}

func (r *Reader) allocate(size int) ([]byte, error) {
	if r.pool == nil {
		return make([]byte, size), nil
	}
	return r.pool.Allocate(size)
}

func (r *Reader) release(buf []byte) {
	if r.pool != nil {
		r.pool.Release(buf)
	}
}

func key(buf []byte) *byte {
	if cap(buf) == 0 {
		return nil
	}
	return &buf[:1][0]
}
