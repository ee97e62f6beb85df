package tivity

// Shared is a store of independent keyed values that grows as slots are
// requested.
type Shared struct {
	store *Store
}

// NewShared creates an empty shared store.
func NewShared(opts ...Option) (*Shared, error) {
	store, err := Create(Fields{}, opts...)
	if err != nil {
		return nil, err
	}
	return &Shared{store: store}, nil
}

// Store exposes the underlying store.
func (s *Shared) Store() *Store {
	return s.store
}

// Slot returns a handle on key. initial seeds the key without notifying
// subscribers when the key is missing or nil; otherwise it is ignored.
func (s *Shared) Slot(key string, initial any) (*Slot, error) {
	if initial != nil {
		if current, ok := s.store.GetSnapshot().Get(key); !ok || current == nil {
			if err := s.store.CommitSilent(Partial{key: initial}); err != nil {
				return nil, err
			}
		}
	}
	return &Slot{shared: s, key: key}, nil
}

// Slot reads and writes one key of a Shared store.
type Slot struct {
	shared *Shared
	key    string
}

// Key returns the slot key.
func (sl *Slot) Key() string {
	return sl.key
}

// Get returns a copy of the current value.
func (sl *Slot) Get() any {
	return sl.shared.store.Observe().Current().Read(sl.key)
}

// Set commits value and notifies subscribers.
func (sl *Slot) Set(value any) error {
	return sl.shared.store.Commit(Partial{sl.key: value})
}

// Update commits fn applied to a copy of the current value.
func (sl *Slot) Update(fn func(current any) any) error {
	return sl.Set(fn(sl.Get()))
}

// Subscribe calls fn with the new value whenever this key changes. Commits
// to other keys are ignored.
func (sl *Slot) Subscribe(fn func(value any)) (unsubscribe func()) {
	observer := sl.shared.store.Observe()
	observer.Current().Read(sl.key)
	return observer.Subscribe(func(a *Accessor) {
		fn(a.Read(sl.key))
	})
}
