package tivity

import (
	"sync"

	"github.com/goliatone/go-tivity/internal/clone"
)

// Observer tracks the data fields one consumer reads. A field once read stays
// tracked until the observer is closed, even if later reads skip it.
type Observer struct {
	store *Store

	mu     sync.Mutex
	deps   map[string]struct{}
	order  []string
	unsubs []func()
}

// Observe creates an observer with an empty dependency record.
func (s *Store) Observe() *Observer {
	return &Observer{store: s, deps: make(map[string]struct{})}
}

func (o *Observer) record(key string) {
	if o.store.isAction(key) {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.deps[key]; ok {
		return
	}
	o.deps[key] = struct{}{}
	o.order = append(o.order, key)
}

// Deps lists the tracked fields in the order they were first read.
func (o *Observer) Deps() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.order...)
}

// Current wraps the current snapshot in a recording accessor.
func (o *Observer) Current() *Accessor {
	return o.Wrap(o.store.GetSnapshot())
}

// Wrap returns a recording accessor over snap.
func (o *Observer) Wrap(snap *Snapshot) *Accessor {
	return &Accessor{snap: snap, observer: o}
}

// Changed reports whether any tracked field differs structurally between
// prev and next.
func (o *Observer) Changed(prev, next *Snapshot) bool {
	if prev == next {
		return false
	}
	for _, key := range o.Deps() {
		before, _ := prev.Get(key)
		after, _ := next.Get(key)
		if !clone.Equal(before, after) {
			return true
		}
	}
	return false
}

// Subscribe calls fn once per commit that changes a tracked field.
func (o *Observer) Subscribe(fn func(*Accessor)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	unsub := o.store.Subscribe(func(prev, next *Snapshot) {
		if o.Changed(prev, next) {
			fn(o.Wrap(next))
		}
	})
	o.mu.Lock()
	o.unsubs = append(o.unsubs, unsub)
	o.mu.Unlock()
	return unsub
}

// Select runs sel against the current snapshot. Fields read by the selector
// are tracked like any other read.
func (o *Observer) Select(sel Selector) (any, error) {
	if sel == nil {
		return nil, nil
	}
	return sel(o.Current())
}

// Watch calls fn with the selected value whenever a commit changes a tracked
// field and the selected value differs according to equal. A nil equal uses
// structural equality. The selector runs once immediately to seed the value.
func (o *Observer) Watch(sel Selector, equal func(a, b any) bool, fn func(value any)) (unsubscribe func(), err error) {
	if equal == nil {
		equal = clone.Equal
	}
	last, err := o.Select(sel)
	if err != nil {
		return nil, err
	}
	var mu sync.Mutex
	return o.Subscribe(func(a *Accessor) {
		value, err := sel(a)
		if err != nil {
			o.store.cfg.logger.Warn("selector failed", "store", o.store.ID(), "err", err)
			return
		}
		mu.Lock()
		changed := !equal(last, value)
		if changed {
			last = value
		}
		mu.Unlock()
		if changed && fn != nil {
			fn(value)
		}
	}), nil
}

// Close removes every subscription made through the observer and resets its
// dependency record.
func (o *Observer) Close() {
	o.mu.Lock()
	unsubs := o.unsubs
	o.unsubs = nil
	o.deps = make(map[string]struct{})
	o.order = nil
	o.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}

// Accessor is a read-recording view over one snapshot.
type Accessor struct {
	snap     *Snapshot
	observer *Observer
}

// Read returns a copy of the field stored under key and records the read.
func (a *Accessor) Read(key string) any {
	value, _ := a.Lookup(key)
	return value
}

// Lookup is Read with a presence flag. Absent keys are recorded too, so a
// later commit that adds them is seen as a change.
func (a *Accessor) Lookup(key string) (any, bool) {
	a.observer.record(key)
	value, ok := a.snap.Get(key)
	if !ok {
		return nil, false
	}
	return clone.Value(value), true
}

// Keys lists the data keys without recording them.
func (a *Accessor) Keys() []string {
	return a.snap.Keys()
}

// Action returns the named action. Action reads are never recorded.
func (a *Accessor) Action(name string) (Dispatcher, bool) {
	return a.observer.store.Action(name)
}

// Snapshot returns the wrapped snapshot without recording anything.
func (a *Accessor) Snapshot() *Snapshot {
	return a.snap
}

// Selector derives a value from an accessor. Every field it reads is tracked.
type Selector func(a *Accessor) (any, error)

// Key is the single-field selector shorthand.
func Key(name string) Selector {
	return func(a *Accessor) (any, error) {
		return a.Read(name), nil
	}
}
