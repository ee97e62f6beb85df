package storage

import "context"

// Storage is an asynchronous string key-value backend. Implementations must
// be safe for concurrent use.
type Storage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Closer is implemented by backends holding resources such as file handles
// or connections.
type Closer interface {
	Close() error
}

// Close releases s when it implements Closer.
func Close(s Storage) error {
	if closer, ok := s.(Closer); ok {
		return closer.Close()
	}
	return nil
}
