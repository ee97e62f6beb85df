package tivity

import "github.com/goliatone/go-tivity/internal/clone"

// Sandbox is the working copy handed to a Method action. Reads always see a
// fresh copy of the current state, so a read after Set observes the write.
type Sandbox struct {
	store *Store
}

func newSandbox(store *Store) *Sandbox {
	return &Sandbox{store: store}
}

// Get returns a copy of the field stored under key.
func (sb *Sandbox) Get(key string) any {
	value, _ := sb.store.GetSnapshot().Get(key)
	return clone.Value(value)
}

// All returns a copy of every data field.
func (sb *Sandbox) All() map[string]any {
	return sb.store.GetSnapshot().Map()
}

// Set commits p right away and notifies subscribers, without waiting for the
// action to return.
func (sb *Sandbox) Set(p Partial) error {
	return sb.store.commit(p, true)
}

// SetSilent merges p without notifying subscribers.
func (sb *Sandbox) SetSilent(p Partial) error {
	return sb.store.commit(p, false)
}

// Call invokes another action of the same store.
func (sb *Sandbox) Call(name string, args ...any) error {
	return sb.store.Call(name, args...)
}
