package storage

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// Memory is an in-process Storage backed by a concurrent map. It is used for
// tests, examples and the session backend when no directory is available.
type Memory struct {
	items *xsync.MapOf[string, string]
}

// NewMemory returns an empty Memory storage.
func NewMemory() *Memory {
	return &Memory{items: xsync.NewMapOf[string, string]()}
}

// NewMemoryFrom seeds a Memory storage with items.
func NewMemoryFrom(items map[string]string) *Memory {
	m := NewMemory()
	for key, value := range items {
		m.items.Store(key, value)
	}
	return m
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	value, ok := m.items.Load(key)
	return value, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.items.Store(key, value)
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	return m.items.Size()
}

// Keys returns the stored keys in no particular order.
func (m *Memory) Keys() []string {
	keys := make([]string, 0, m.items.Size())
	m.items.Range(func(key string, _ string) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
