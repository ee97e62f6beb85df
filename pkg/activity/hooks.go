package activity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Event describes a store lifecycle occurrence. StorageKey is only set for
// events raised by a persisted store.
type Event struct {
	Verb       string
	StoreID    string
	StorageKey string
	Seq        uint64
	ActorID    string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ObjectType classifies the event source for activity sinks.
func (e Event) ObjectType() string {
	if e.StorageKey != "" {
		return ObjectTypePersisted
	}
	return ObjectTypeStore
}

// ObjectID is the store identifier, or the storage key when the store has
// none.
func (e Event) ObjectID() string {
	if e.StoreID != "" {
		return e.StoreID
	}
	return e.StorageKey
}

// Valid reports whether the event names a verb and an object.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectID() != ""
}

// Stamped returns a copy safe to retain: metadata is detached from the
// emitter and OccurredAt is set.
func (e Event) Stamped() Event {
	out := e
	out.Metadata = copyMetadata(e.Metadata)
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now()
	}
	return out
}

// ActivityHook receives store lifecycle events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// HookPanicError reports a hook that panicked while handling an event.
type HookPanicError struct {
	Verb  string
	Value any
}

func (e *HookPanicError) Error() string {
	return fmt.Sprintf("activity hook panicked on %s: %v", e.Verb, e.Value)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Compact drops nil hooks. It returns nil when nothing is left.
func (h Hooks) Compact() Hooks {
	var out Hooks
	for _, hook := range h {
		if hook != nil {
			out = append(out, hook)
		}
	}
	return out
}

// Notify runs every hook in order and joins their errors. Hooks run on the
// committing goroutine, so a panicking hook is reported as a HookPanicError
// instead of unwinding the commit. Invalid events are dropped.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 || !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	event = event.Stamped()

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := notifyOne(ctx, hook, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func notifyOne(ctx context.Context, hook ActivityHook, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HookPanicError{Verb: event.Verb, Value: r}
		}
	}()
	return hook.Notify(ctx, event)
}

func copyMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		if keys, ok := value.([]string); ok {
			value = append([]string(nil), keys...)
		}
		dst[key] = value
	}
	return dst
}
