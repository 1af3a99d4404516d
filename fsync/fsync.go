// Package fsync picks the fastest durable sync available on each OS.
package fsync

import (
	"os"
)

// Data makes the contents of f durable. It may skip metadata such as the
// modification time, which makes it faster than f.Sync on some systems.
//
// An error here is not recoverable. Many file systems mark dirty pages as
// clean after a failed sync, so retrying proves nothing about the data on
// disk. Callers should treat the file as lost.
func Data(f *os.File) error {
	return fdatasync(f)
}

// Dir makes the directory entries of dir durable, so that a file created or
// renamed in it survives a crash.
func Dir(dir string) error {
	return syncDir(dir)
}
