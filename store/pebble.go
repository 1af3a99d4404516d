package store

import (
	"errors"

	"github.com/cockroachdb/pebble"
)

// Pebble keeps values in a pebble database. Every write is synced to the
// WAL before it returns.
type Pebble struct {
	db *pebble.DB
}

var _ Store = (*Pebble)(nil)

func NewPebble(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Pebble{db: db}, nil
}

func (s *Pebble) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	v, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte{}, v...), nil
}

func (s *Pebble) Put(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.db.Set([]byte(key), data, pebble.Sync)
}

func (s *Pebble) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.db.Delete([]byte(key), pebble.Sync)
}

func (s *Pebble) List() ([]string, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	var keys []string
	for iter.First(); iter.Valid(); iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Pebble) Close() error {
	return s.db.Close()
}
