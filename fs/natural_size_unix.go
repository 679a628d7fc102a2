//go:build linux || darwin

package go_fs

import (
	"os"

	"golang.org/x/sys/unix"
)

// naturalWriteSize uses the block size of the file system holding f.
func naturalWriteSize(f *os.File) uint64 {
	var st unix.Statfs_t
	if err := unix.Fstatfs(int(f.Fd()), &st); err != nil || st.Bsize <= 0 {
		return DefaultNaturalWriteSize
	}
	return uint64(st.Bsize)
}
