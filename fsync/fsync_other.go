//go:build !linux

package fsync

import "os"

func fdatasync(f *os.File) error {
	return f.Sync()
}
