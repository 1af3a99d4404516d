package store

import (
	"bytes"
	"time"

	"go.etcd.io/bbolt"
)

const DefaultBucket = "bufferkit"

// Bolt keeps values in one bucket of a bbolt database.
type Bolt struct {
	db     *bbolt.DB
	bucket []byte
	owned  bool
}

var _ Store = (*Bolt)(nil)

// NewBolt opens or creates the bbolt database at path and uses
// DefaultBucket. Close closes the database.
func NewBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	s, err := WrapBolt(db, DefaultBucket)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// WrapBolt uses bucket of an already open database, creating the bucket
// if needed. Several stores can share one database under different
// buckets; Close leaves the database open.
func WrapBolt(db *bbolt.DB, bucket string) (*Bolt, error) {
	s := &Bolt{db: db, bucket: []byte(bucket)}
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Bolt) DB() *bbolt.DB {
	return s.db
}

func (s *Bolt) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(s.bucket).Get(unsafeBytesFromString(key))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid until the transaction ends.
		data = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Bolt) Put(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), data)
	})
}

func (s *Bolt) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

func (s *Bolt) List() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, v []byte) error {
			if v != nil {
				keys = append(keys, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Bolt) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
