package storage

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cachedEntry struct {
	value string
	ok    bool
}

// Cached fronts a slow backend with a bounded read cache. Writes go to the
// backend first and update the cache only on success.
type Cached struct {
	backend Storage
	cache   *lru.Cache[string, cachedEntry]
}

// NewCached wraps backend with an LRU of size entries.
func NewCached(backend Storage, size int) (*Cached, error) {
	cache, err := lru.New[string, cachedEntry](size)
	if err != nil {
		return nil, err
	}
	return &Cached{backend: backend, cache: cache}, nil
}

func (c *Cached) GetItem(ctx context.Context, key string) (string, bool, error) {
	if entry, ok := c.cache.Get(key); ok {
		return entry.value, entry.ok, nil
	}
	value, ok, err := c.backend.GetItem(ctx, key)
	if err != nil {
		return "", false, err
	}
	c.cache.Add(key, cachedEntry{value: value, ok: ok})
	return value, ok, nil
}

func (c *Cached) SetItem(ctx context.Context, key, value string) error {
	if err := c.backend.SetItem(ctx, key, value); err != nil {
		c.cache.Remove(key)
		return err
	}
	c.cache.Add(key, cachedEntry{value: value, ok: true})
	return nil
}

func (c *Cached) RemoveItem(ctx context.Context, key string) error {
	if err := c.backend.RemoveItem(ctx, key); err != nil {
		c.cache.Remove(key)
		return err
	}
	c.cache.Add(key, cachedEntry{})
	return nil
}

// Close closes the backend when it holds resources.
func (c *Cached) Close() error {
	c.cache.Purge()
	return Close(c.backend)
}
