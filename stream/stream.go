package stream

import (
	"fmt"

	go_blockbuffer "github.com/datnguyenzzz/nogodb/lib/go-blockbuffer"
)

// Stream is a single column stream of the stripe being built. Encoders either
// use Write, or ask for a region with Next, fill it, and give back the unused
// tail with BackUp.
type Stream struct {
	name string
	buf  *go_blockbuffer.BlockBuffer
	// lastRegion is the length of the region returned by the latest Next
	lastRegion int
}

func (s *Stream) Name() string {
	return s.name
}

func (s *Stream) Size() uint64 {
	return s.buf.Size()
}

// Next returns a writable region located right after the stream content.
// The whole region counts as written until BackUp says otherwise.
func (s *Stream) Next() ([]byte, error) {
	region, err := s.buf.GetNextBlock()
	if err != nil {
		return nil, err
	}
	s.lastRegion = len(region)
	return region, nil
}

// BackUp gives back the last count bytes of the region returned by Next.
func (s *Stream) BackUp(count int) error {
	if count < 0 || count > s.lastRegion {
		return fmt.Errorf("%w: can not back up %d bytes of a %d bytes region",
			ErrInvalidBackUp, count, s.lastRegion)
	}
	if err := s.buf.Resize(s.buf.Size() - uint64(count)); err != nil {
		return err
	}
	s.lastRegion -= count
	return nil
}

func (s *Stream) Write(p []byte) (int, error) {
	var written int
	for written < len(p) {
		region, err := s.Next()
		if err != nil {
			return written, err
		}
		n := copy(region, p[written:])
		written += n
		if n < len(region) {
			if err := s.BackUp(len(region) - n); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}
