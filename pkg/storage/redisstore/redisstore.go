// Package redisstore persists store payloads in Redis.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

// Client is the subset of the go-redis client used by Store. *redis.Client
// and *redis.Ring satisfy it.
type Client interface {
	Get(key string) *redis.StringCmd
	Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(keys ...string) *redis.IntCmd
}

// Store is a storage.Storage backed by Redis strings.
type Store struct {
	client Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL expires payloads after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New wraps client.
func New(client Client, opts ...Option) *Store {
	s := &Store{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Dial connects to addr with a plain client.
func Dial(addr string, opts ...Option) *Store {
	return New(redis.NewClient(&redis.Options{Addr: addr}), opts...)
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

func (s *Store) GetItem(_ context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(s.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redisstore: get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) SetItem(_ context.Context, key, value string) error {
	if err := s.client.Set(s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) RemoveItem(_ context.Context, key string) error {
	if err := s.client.Del(s.key(key)).Err(); err != nil {
		return fmt.Errorf("redisstore: remove %q: %w", key, err)
	}
	return nil
}

// Close closes the client when it holds a connection pool.
func (s *Store) Close() error {
	if closer, ok := s.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
