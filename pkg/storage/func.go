package storage

import "context"

// Funcs adapts plain functions to Storage. Nil funcs behave like Noop.
type Funcs struct {
	Get    func(ctx context.Context, key string) (string, bool, error)
	Set    func(ctx context.Context, key, value string) error
	Remove func(ctx context.Context, key string) error
}

func (f Funcs) GetItem(ctx context.Context, key string) (string, bool, error) {
	if f.Get == nil {
		return "", false, nil
	}
	return f.Get(ctx, key)
}

func (f Funcs) SetItem(ctx context.Context, key, value string) error {
	if f.Set == nil {
		return nil
	}
	return f.Set(ctx, key, value)
}

func (f Funcs) RemoveItem(ctx context.Context, key string) error {
	if f.Remove == nil {
		return nil
	}
	return f.Remove(ctx, key)
}
