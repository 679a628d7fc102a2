package bytesbufferpool

import "errors"

var (
	// ErrNoMemory is returned when a pool can not serve an allocation
	// without going over its budget.
	ErrNoMemory    = errors.New("no memory available in pool")
	ErrInvalidSize = errors.New("invalid allocation size")
)
