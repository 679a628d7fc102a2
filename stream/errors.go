package stream

import "errors"

var (
	ErrInvalidBackUp   = errors.New("invalid back up")
	ErrWriterClosed    = errors.New("stream writer is closed")
	ErrEmptyStreamName = errors.New("stream name cannot be empty")
)
