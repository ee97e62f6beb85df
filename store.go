package tivity

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-tivity/pkg/activity"
)

// Listener is notified after every commit with the previous and the next
// snapshot. The next snapshot is already visible through GetSnapshot.
type Listener func(prev, next *Snapshot)

// Dispatcher invokes a bound action.
type Dispatcher func(args ...any) error

// Store holds the authoritative snapshot and its subscribers.
type Store struct {
	cfg     storeConfig
	emitter *activity.Emitter

	mu       sync.RWMutex
	current  *Snapshot
	seq      uint64
	onCommit func(next *Snapshot)

	actions map[string]Field
	order   []string

	subMu   sync.Mutex
	subs    []*subscription
	nextSub uint64
}

type subscription struct {
	id     uint64
	fn     Listener
	active atomic.Bool
}

// Create builds a store from init. Action fields become bound dispatchers
// reachable through Call and Action.
func Create(init Initializer, opts ...Option) (*Store, error) {
	return newStore(resolveFields(init), opts)
}

func newStore(fields Fields, opts []Option) (*Store, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	cfg := applyOptions(opts)
	s := &Store{
		cfg: cfg,
		emitter: activity.NewEmitter(cfg.id, cfg.hooks,
			activity.WithChannel(cfg.channel),
			activity.WithErrorHandler(func(event activity.Event, err error) {
				cfg.logger.Debug("activity hook failed", "store", cfg.id, "verb", event.Verb, "err", err)
			}),
		),
		current: newSnapshot(fields),
		actions: make(map[string]Field),
	}
	for _, field := range fields {
		if !field.IsAction() {
			continue
		}
		s.actions[field.Key] = field
		s.order = append(s.order, field.Key)
	}
	return s, nil
}

// ID returns the store identifier.
func (s *Store) ID() string {
	return s.cfg.id
}

// GetSnapshot returns the current snapshot. The pointer only changes when a
// commit happens.
func (s *Store) GetSnapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn and returns a func that removes it. Listeners fire
// in registration order.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	s.nextSub++
	sub := &subscription{id: s.nextSub, fn: fn}
	sub.active.Store(true)
	s.subs = append(s.subs, sub)
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, candidate := range s.subs {
				if candidate.id == sub.id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Commit shallow merges p into the state and notifies every subscriber.
// A nil Partial is ignored.
func (s *Store) Commit(p Partial) error {
	return s.commit(p, true)
}

// CommitSilent merges p without notifying subscribers.
func (s *Store) CommitSilent(p Partial) error {
	return s.commit(p, false)
}

func (s *Store) commit(p Partial, notify bool) error {
	if p == nil {
		return nil
	}
	for key := range p {
		if key == "" {
			return &ConfigError{Field: "commit", Err: ErrReservedKey}
		}
		if _, ok := s.actions[key]; ok {
			return &ConfigError{Field: key, Err: ErrReservedKey}
		}
	}

	s.mu.Lock()
	prev := s.current
	s.seq++
	next := prev.merge(p, s.seq)
	s.current = next
	if notify && s.onCommit != nil {
		s.onCommit(next)
	}
	s.mu.Unlock()

	s.cfg.metrics.ObserveCommit(s.cfg.id, len(p))
	s.cfg.logger.Debug("store committed", "store", s.cfg.id, "seq", next.seq, "keys", len(p), "notify", notify)
	if !notify {
		return nil
	}
	s.notify(prev, next)
	if s.emitter.Enabled() {
		s.emitter.Emit(context.Background(), activity.BuildStoreCommittedEvent, activity.StoreEventInput{
			Keys: sortedKeys(p),
			Seq:  next.seq,
		})
	}
	return nil
}

// setCommitHook installs fn to run for every notifying commit while the
// commit lock is held, so fn observes snapshots in sequence order. fn must
// not call back into the store.
func (s *Store) setCommitHook(fn func(next *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = fn
}

func (s *Store) notify(prev, next *Snapshot) {
	s.subMu.Lock()
	subs := append([]*subscription(nil), s.subs...)
	s.subMu.Unlock()

	for _, sub := range subs {
		if !sub.active.Load() {
			continue
		}
		sub.fn(prev, next)
		s.cfg.metrics.ObserveNotification(s.cfg.id)
	}
}

// Call invokes the action registered under name.
func (s *Store) Call(name string, args ...any) error {
	field, ok := s.actions[name]
	if !ok {
		return &ActionError{Action: name, Err: ErrUnknownAction}
	}

	switch field.Kind {
	case KindMutation:
		if err := field.mutate(newDraft(s), args...); err != nil {
			return wrapActionError(name, err)
		}
		return nil
	default:
		next, err := field.action(newSandbox(s), args...)
		if err != nil {
			return wrapActionError(name, err)
		}
		return s.commit(next, true)
	}
}

// Action returns a dispatcher bound to the named action.
func (s *Store) Action(name string) (Dispatcher, bool) {
	if _, ok := s.actions[name]; !ok {
		return nil, false
	}
	return func(args ...any) error {
		return s.Call(name, args...)
	}, true
}

// Actions lists action names in declaration order.
func (s *Store) Actions() []string {
	return append([]string(nil), s.order...)
}

func (s *Store) isAction(key string) bool {
	_, ok := s.actions[key]
	return ok
}
