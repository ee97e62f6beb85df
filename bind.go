package tivity

import (
	"github.com/goliatone/go-tivity/internal/hydrate"
)

// BindOption configures Bind.
type BindOption[T any] struct {
	opt hydrate.DecoderOption[T]
}

// BindPreHook rewrites the state map before it is decoded.
func BindPreHook[T any](hook func(storeID string, state map[string]any) (map[string]any, error)) BindOption[T] {
	return BindOption[T]{opt: hydrate.WithPreHook[T](func(ctx hydrate.Context, state map[string]any) (map[string]any, error) {
		return hook(ctx.StoreID, state)
	})}
}

// BindPostHook validates or adjusts the decoded value.
func BindPostHook[T any](hook func(storeID string, value *T) error) BindOption[T] {
	return BindOption[T]{opt: hydrate.WithPostHook[T](func(ctx hydrate.Context, value *T) error {
		return hook(ctx.StoreID, value)
	})}
}

// BindStrict rejects data fields the target type does not declare.
func BindStrict[T any]() BindOption[T] {
	return BindOption[T]{opt: hydrate.WithDisallowUnknownFields[T]()}
}

// Bind decodes the data fields of snap into T through JSON struct tags.
func Bind[T any](snap *Snapshot, opts ...BindOption[T]) (T, error) {
	return bind(hydrate.Context{Seq: snap.Seq()}, snap, opts)
}

// BindStore decodes the current snapshot of s into T.
func BindStore[T any](s *Store, opts ...BindOption[T]) (T, error) {
	snap := s.GetSnapshot()
	return bind(hydrate.Context{StoreID: s.ID(), Seq: snap.Seq()}, snap, opts)
}

func bind[T any](ctx hydrate.Context, snap *Snapshot, opts []BindOption[T]) (T, error) {
	decoderOpts := make([]hydrate.DecoderOption[T], 0, len(opts))
	for _, opt := range opts {
		if opt.opt != nil {
			decoderOpts = append(decoderOpts, opt.opt)
		}
	}
	var data map[string]any
	if snap != nil {
		data = snap.data
	}
	return hydrate.NewDecoder[T](decoderOpts...).Decode(ctx, data)
}
