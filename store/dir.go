package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bufferkit/bufferkit/fsync"
)

// SyncMode controls how hard Dir.Put works to make a write durable before
// returning.
type SyncMode int

const (
	// SyncFull syncs the file data and then the directory after the rename.
	SyncFull SyncMode = iota
	// SyncData syncs the file data but not the directory entry.
	SyncData
	// SyncNone leaves durability to the OS. The rename is still atomic.
	SyncNone
)

func (m SyncMode) String() string {
	switch m {
	case SyncFull:
		return "full"
	case SyncData:
		return "data"
	case SyncNone:
		return "none"
	default:
		return fmt.Sprintf("SyncMode(%d)", int(m))
	}
}

type DirOptions struct {
	Sync SyncMode

	// Perm is used when creating the directory. Defaults to 0700.
	Perm fs.FileMode
}

// Dir stores each key as a file named after it. Put writes a temporary
// file next to the target and renames it into place.
type Dir struct {
	dir  string
	sync SyncMode
}

var _ Store = (*Dir)(nil)

// NewDir opens a directory store, creating dir if needed.
func NewDir(dir string, opt DirOptions) (*Dir, error) {
	if opt.Perm == 0 {
		opt.Perm = 0o700
	}
	if err := os.MkdirAll(dir, opt.Perm); err != nil {
		return nil, err
	}
	return &Dir{dir: dir, sync: opt.Sync}, nil
}

func (s *Dir) Path() string {
	return s.dir
}

func (s *Dir) filePath(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *Dir) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.filePath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Dir) Put(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.dir, key+tmpInfix+"*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	ok := false
	defer func() {
		if !ok {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return err
	}
	if s.sync != SyncNone {
		if err := fsync.Data(f); err != nil {
			return fmt.Errorf("sync %s: %w", tmp, err)
		}
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.filePath(key)); err != nil {
		return err
	}
	ok = true
	if s.sync == SyncFull {
		if err := fsync.Dir(s.dir); err != nil {
			return fmt.Errorf("sync %s: %w", s.dir, err)
		}
	}
	return nil
}

func (s *Dir) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := os.Remove(s.filePath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.Contains(e.Name(), tmpInfix) {
			continue
		}
		keys = append(keys, e.Name())
	}
	return keys, nil
}

func (s *Dir) Close() error {
	return nil
}
