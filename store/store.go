// Package store provides the backends that cached values are persisted to.
//
// A Store maps string keys to opaque byte values. Every backend replaces
// values atomically: a reader sees either the old value or the new one,
// never a mix.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrClosed     = errors.New("store closed")
	ErrInvalidKey = errors.New("invalid key")
)

type Store interface {
	// Get returns the value stored under key, or ErrNotFound. The result is
	// owned by the caller.
	Get(key string) ([]byte, error)

	// Put atomically replaces the value stored under key.
	Put(key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// List returns all keys in ascending order.
	List() ([]string, error)

	Close() error
}

// tmpInfix marks in-progress files of Dir. Keys may not contain it.
const tmpInfix = ".tmp-"

// ValidateKey rejects keys that cannot be used as a single file name in
// every backend.
func ValidateKey(key string) error {
	switch {
	case key == "", key == ".", key == "..":
		return fmt.Errorf("%w %q", ErrInvalidKey, key)
	case strings.ContainsAny(key, `/\`+"\x00"):
		return fmt.Errorf("%w %q: contains a path separator", ErrInvalidKey, key)
	case strings.Contains(key, tmpInfix):
		return fmt.Errorf("%w %q: contains %q", ErrInvalidKey, key, tmpInfix)
	}
	return nil
}

// DefaultDir returns the per-user application data directory for app,
// for example ~/.config/app on Linux or ~/Library/Application Support/app
// on macOS. The directory is not created.
func DefaultDir(app string) (string, error) {
	if err := ValidateKey(app); err != nil {
		return "", fmt.Errorf("app name: %w", err)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, app), nil
}

func unsafeBytesFromString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
