// Package leveldbstore persists store payloads in goleveldb.
package leveldbstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
)

// Store is a storage.Storage backed by a leveldb database.
type Store struct {
	db *leveldb.DB
}

func setCoreError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("leveldbstore: %s %q: %w", op, key, err)
}

// OpenFile opens or creates a database under path.
func OpenFile(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("leveldbstore: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens a database held in memory.
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(leveldbStorage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("leveldbstore: open memory: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) GetItem(_ context.Context, key string) (string, bool, error) {
	value, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, setCoreError("get", key, err)
	}
	return string(value), true, nil
}

func (s *Store) SetItem(_ context.Context, key, value string) error {
	return setCoreError("set", key, s.db.Put([]byte(key), []byte(value), nil))
}

func (s *Store) RemoveItem(_ context.Context, key string) error {
	return setCoreError("remove", key, s.db.Delete([]byte(key), nil))
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
