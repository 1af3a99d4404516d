//go:build !unix

package fsync

// Directories cannot be opened for syncing here; renames are made durable
// by the file system itself.
func syncDir(dir string) error {
	return nil
}
