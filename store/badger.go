package store

import (
	"errors"

	"github.com/dgraph-io/badger/v3"
)

// Badger keeps values in a badger database, optionally under a key prefix
// so that several stores can share one database.
type Badger struct {
	db     *badger.DB
	prefix []byte
	owned  bool
}

var _ Store = (*Badger)(nil)

// NewBadger opens or creates the badger database in dir. Close closes
// the database.
func NewBadger(dir string) (*Badger, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	s := WrapBadger(db, "")
	s.owned = true
	return s, nil
}

// WrapBadger uses the keys of db starting with prefix. Close leaves the
// database open.
func WrapBadger(db *badger.DB, prefix string) *Badger {
	return &Badger{db: db, prefix: []byte(prefix)}
}

func (s *Badger) fullKey(key string) []byte {
	k := make([]byte, 0, len(s.prefix)+len(key))
	k = append(k, s.prefix...)
	return append(k, key...)
}

func (s *Badger) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.fullKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (s *Badger) Put(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.fullKey(key), data)
	})
}

func (s *Badger) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.fullKey(key))
	})
}

func (s *Badger) List() ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = s.prefix
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(s.prefix); iter.ValidForPrefix(s.prefix); iter.Next() {
			k := iter.Item().Key()
			keys = append(keys, string(k[len(s.prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Badger) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
