// Package pebblestore persists store payloads in Pebble.
package pebblestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// Store is a storage.Storage backed by a pebble database.
type Store struct {
	db *pebble.DB
	wo *pebble.WriteOptions
}

// Open opens or creates a database under path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebblestore: open %s: %w", path, err)
	}
	return &Store{db: db, wo: pebble.Sync}, nil
}

// OpenMemory opens a database on an in-memory filesystem.
func OpenMemory() (*Store, error) {
	db, err := pebble.Open("tivity", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, fmt.Errorf("pebblestore: open memory: %w", err)
	}
	return &Store{db: db, wo: pebble.NoSync}, nil
}

func (s *Store) GetItem(_ context.Context, key string) (string, bool, error) {
	value, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("pebblestore: get %q: %w", key, err)
	}
	defer closer.Close()
	return string(value), true, nil
}

func (s *Store) SetItem(_ context.Context, key, value string) error {
	if err := s.db.Set([]byte(key), []byte(value), s.wo); err != nil {
		return fmt.Errorf("pebblestore: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) RemoveItem(_ context.Context, key string) error {
	if err := s.db.Delete([]byte(key), s.wo); err != nil {
		return fmt.Errorf("pebblestore: remove %q: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
