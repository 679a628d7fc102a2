package go_blockbuffer

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrAllocationFailure    = errors.New("block buffer allocation failure")
	ErrIndexOutOfRange      = errors.New("block index out of range")
	ErrInvalidChunkSize     = errors.New("natural write size cannot be zero")
	ErrClosed               = errors.New("block buffer is closed")
)
