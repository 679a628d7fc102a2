//go:build !linux && !darwin

package go_fs

import "os"

func naturalWriteSize(_ *os.File) uint64 {
	return DefaultNaturalWriteSize
}
