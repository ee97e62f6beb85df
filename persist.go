package tivity

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	observable "github.com/GianlucaGuarini/go-observable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-tivity/internal/clone"
	"github.com/goliatone/go-tivity/pkg/activity"
	"github.com/goliatone/go-tivity/pkg/codec"
	"github.com/goliatone/go-tivity/pkg/storage"
)

// Lifecycle events triggered on a Persisted store. Handlers registered with
// On receive the listed arguments.
const (
	// EventHydrated carries the hydration outcome string.
	EventHydrated = "hydrated"
	// EventPersisted carries the sequence of the snapshot written.
	EventPersisted = "persisted"
	// EventCleared carries the storage key.
	EventCleared = "cleared"
	// EventError carries the error.
	EventError = "error"
)

var persistTracer = otel.Tracer("github.com/goliatone/go-tivity")

// Persisted is a store mirrored to a storage backend. Hydration runs in the
// background; the store is usable before it ends, but commits made in the
// meantime may be overwritten by the hydrated state. Gate on Status or
// Hydrated.
type Persisted struct {
	*Store

	cfg       PersistConfig
	storage   storage.Storage
	blacklist map[string]struct{}
	bus       *observable.Observable
	writer    *persistWriter
	ctx       context.Context
	hydrated  chan struct{}
	suppress  atomic.Bool
	closeOnce sync.Once
}

// Persist creates a store from init and mirrors every notifying commit to
// storage. ctx bounds the hydration read; writes outlive its cancellation.
func Persist(ctx context.Context, init Initializer, cfg PersistConfig, opts ...Option) (*Persisted, error) {
	return newPersisted(ctx, resolveFields(init), cfg, opts)
}

// PersistReducer is Persist for a reducer store.
func PersistReducer(ctx context.Context, reducer Reducer, init Initializer, cfg PersistConfig, opts ...Option) (*Persisted, error) {
	fields, err := reducerFields(reducer, resolveFields(init))
	if err != nil {
		return nil, err
	}
	return newPersisted(ctx, fields, cfg, opts)
}

func newPersisted(ctx context.Context, fields Fields, cfg PersistConfig, opts []Option) (*Persisted, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := checkReservedFields(fields); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	store, err := newStore(append(fields, Data(StatusKey, false)), opts)
	if err != nil {
		return nil, err
	}

	p := &Persisted{
		Store:     store,
		cfg:       cfg,
		storage:   resolveStorage(cfg, store.cfg.logger),
		blacklist: make(map[string]struct{}, len(cfg.Blacklist)),
		bus:       observable.New(),
		ctx:       context.WithoutCancel(ctx),
		hydrated:  make(chan struct{}),
	}
	for _, key := range cfg.Blacklist {
		p.blacklist[key] = struct{}{}
	}
	p.writer = newPersistWriter(p.apply)
	store.setCommitHook(func(next *Snapshot) {
		if p.suppress.CompareAndSwap(true, false) {
			return
		}
		p.writer.enqueue(writeOp{snap: next})
	})

	go p.hydrate(ctx)
	return p, nil
}

// Key returns the storage key.
func (p *Persisted) Key() string {
	return p.cfg.Key
}

// Storage returns the backend in use, which is storage.Noop when a built-in
// backend failed to open.
func (p *Persisted) Storage() storage.Storage {
	return p.storage
}

// Status reports whether hydration has finished.
func (p *Persisted) Status() bool {
	status, _ := p.GetSnapshot().Get(StatusKey)
	done, _ := status.(bool)
	return done
}

// Hydrated is closed once hydration has committed.
func (p *Persisted) Hydrated() <-chan struct{} {
	return p.hydrated
}

// On registers fn for the space separated events. The returned func removes
// the handler from the bus; it must not be called from inside a handler.
func (p *Persisted) On(events string, fn func(args ...any)) (off func()) {
	if fn == nil {
		return func() {}
	}
	var active atomic.Bool
	active.Store(true)
	handler := func(args ...interface{}) {
		if active.Load() {
			fn(args...)
		}
	}
	p.bus.On(events, handler)

	var once sync.Once
	return func() {
		once.Do(func() {
			active.Store(false)
			p.bus.Off(events, handler)
		})
	}
}

// Flush waits until every write queued so far is applied and returns the
// first write error since the previous Flush.
func (p *Persisted) Flush(ctx context.Context) error {
	return p.writer.flush(ctx)
}

// ClearStorage removes the persisted payload. In-memory state is untouched.
func (p *Persisted) ClearStorage(ctx context.Context) error {
	done := make(chan error, 1)
	if !p.writer.enqueue(writeOp{remove: true, done: done}) {
		return &StorageError{Op: "removeItem", Key: p.cfg.Key, Err: ErrClosed}
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops persisting, waits for hydration and drains queued writes.
// The backend is left open.
func (p *Persisted) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.Store.setCommitHook(nil)
		<-p.hydrated
		err = p.writer.close()
	})
	return err
}

func (p *Persisted) hydrate(ctx context.Context) {
	defer close(p.hydrated)
	ctx, span := persistTracer.Start(ctx, "tivity.Persisted.hydrate", trace.WithAttributes(
		attribute.String("tivity.store", p.ID()),
		attribute.String("tivity.key", p.cfg.Key),
		attribute.Int("tivity.version", p.cfg.Version),
	))
	defer span.End()

	persisted := p.load(ctx, span)
	if persisted == nil {
		p.finishHydration(span, Partial{StatusKey: true}, HydrationDefaults, nil)
		return
	}

	next, outcome, err := p.reconcile(p.GetSnapshot().Map(), persisted)
	if err != nil {
		p.failHydration(span, err)
		return
	}
	delete(next, VersionKey)
	next[StatusKey] = true
	p.finishHydration(span, Partial(next), outcome, persisted[VersionKey])
}

// load returns nil when there is nothing usable to hydrate from. Read and
// decode failures are reported and treated as an empty storage.
func (p *Persisted) load(ctx context.Context, span trace.Span) map[string]any {
	raw, ok, err := p.storage.GetItem(ctx, p.cfg.Key)
	if err != nil {
		err = &StorageError{Op: "getItem", Key: p.cfg.Key, Err: err}
		span.RecordError(err)
		p.Store.cfg.logger.Warn("hydration read failed, using defaults", "store", p.ID(), "key", p.cfg.Key, "err", err)
		p.bus.Trigger(EventError, err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	persisted, err := p.cfg.Serializer.Deserialize(raw)
	if err != nil {
		err = &StorageError{Op: "deserialize", Key: p.cfg.Key, Err: err}
		span.RecordError(err)
		p.Store.cfg.logger.Warn("hydration decode failed, using defaults", "store", p.ID(), "key", p.cfg.Key, "err", err)
		p.bus.Trigger(EventError, err)
		return nil
	}
	return persisted
}

// reconcile merges a persisted payload into current. When the versions
// differ, migrate produces the base and persisted values win for keys it
// returned. Keys unknown to current are dropped.
func (p *Persisted) reconcile(current, persisted map[string]any) (map[string]any, string, error) {
	from, hasVersion := persisted[VersionKey]
	if hasVersion && from != nil && !clone.Equal(from, p.cfg.Version) {
		if p.cfg.Migrate == nil {
			return nil, "", &MigrationError{Key: p.cfg.Key, From: from, To: p.cfg.Version, Err: ErrMigrateRequired}
		}
		migrated, err := p.cfg.Migrate(clone.Map(current), clone.Map(persisted))
		if err != nil {
			return nil, "", &MigrationError{Key: p.cfg.Key, From: from, To: p.cfg.Version, Err: err}
		}
		if migrated == nil {
			return nil, "", &MigrationError{Key: p.cfg.Key, From: from, To: p.cfg.Version, Err: ErrMigrateResult}
		}
		next := clone.Map(migrated)
		for key := range next {
			if value, ok := persisted[key]; ok && value != nil {
				next[key] = value
			}
		}
		dropUnknown(next, current)
		return next, HydrationMigrated, nil
	}

	next := clone.Map(current)
	for key, value := range persisted {
		if _, ok := current[key]; ok {
			next[key] = value
		}
	}
	return next, HydrationRestored, nil
}

func dropUnknown(next, current map[string]any) {
	for key := range next {
		if _, ok := current[key]; !ok {
			delete(next, key)
		}
	}
}

func (p *Persisted) finishHydration(span trace.Span, next Partial, outcome string, from any) {
	if err := p.Commit(next); err != nil {
		p.failHydration(span, err)
		return
	}
	p.writer.start()
	span.SetAttributes(attribute.String("tivity.outcome", outcome))
	p.Store.cfg.metrics.ObserveHydration(p.ID(), outcome)
	p.Store.cfg.logger.Debug("store hydrated", "store", p.ID(), "key", p.cfg.Key, "outcome", outcome)
	if p.emitter.Enabled() {
		input := activity.StoreEventInput{
			StorageKey: p.cfg.Key,
			Version:    p.cfg.Version,
			Outcome:    outcome,
			Seq:        p.GetSnapshot().Seq(),
		}
		if outcome == HydrationMigrated {
			input.From = from
			p.emitter.Emit(p.ctx, activity.BuildStoreMigratedEvent, input)
		}
		p.emitter.Emit(p.ctx, activity.BuildStoreHydratedEvent, input)
	}
	p.bus.Trigger(EventHydrated, outcome)
}

// failHydration marks the store ready without writing, so the stored payload
// survives until the next commit.
func (p *Persisted) failHydration(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "hydration failed")
	p.Store.cfg.logger.Error("hydration failed", "store", p.ID(), "key", p.cfg.Key, "err", err)
	p.Store.cfg.metrics.ObserveHydration(p.ID(), HydrationFailed)
	p.bus.Trigger(EventError, err)

	p.writer.discardWrites()
	p.suppress.Store(true)
	if commitErr := p.Commit(Partial{StatusKey: true}); commitErr != nil {
		p.suppress.Store(false)
		p.Store.cfg.logger.Error("hydration status commit failed", "store", p.ID(), "err", commitErr)
	}
	p.writer.start()
	p.bus.Trigger(EventHydrated, HydrationFailed)
}

func (p *Persisted) apply(op writeOp) error {
	name := "setItem"
	if op.remove {
		name = "removeItem"
	}
	ctx, span := persistTracer.Start(p.ctx, "tivity.Persisted."+name, trace.WithAttributes(
		attribute.String("tivity.store", p.ID()),
		attribute.String("tivity.key", p.cfg.Key),
	))
	defer span.End()

	err := p.write(ctx, op)
	p.Store.cfg.metrics.ObserveStorageWrite(p.ID(), err)
	if err != nil {
		err = &StorageError{Op: name, Key: p.cfg.Key, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
		p.Store.cfg.logger.Error("storage write failed", "store", p.ID(), "key", p.cfg.Key, "op", name, "err", err)
		p.bus.Trigger(EventError, err)
		return err
	}

	if op.remove {
		p.emitter.Emit(p.ctx, activity.BuildStorageClearedEvent, activity.StoreEventInput{
			StorageKey: p.cfg.Key,
			Version:    p.cfg.Version,
		})
		p.bus.Trigger(EventCleared, p.cfg.Key)
		return nil
	}
	p.bus.Trigger(EventPersisted, op.snap.Seq())
	return nil
}

func (p *Persisted) write(ctx context.Context, op writeOp) error {
	if op.remove {
		return p.storage.RemoveItem(ctx, p.cfg.Key)
	}
	payload, err := p.encode(op.snap)
	if err != nil {
		return err
	}
	return p.storage.SetItem(ctx, p.cfg.Key, payload)
}

// encode copies snap minus blacklisted keys, stamps the version and
// serializes the result.
func (p *Persisted) encode(snap *Snapshot) (string, error) {
	out := make(map[string]any, snap.Len()+1)
	keys := make([]string, 0, snap.Len()+1)
	for _, key := range snap.Keys() {
		if _, skip := p.blacklist[key]; skip {
			continue
		}
		out[key] = snap.Value(key)
		keys = append(keys, key)
	}
	out[VersionKey] = p.cfg.Version
	keys = append(keys, VersionKey)
	payload, err := codec.SerializeOrdered(p.cfg.Serializer, keys, out)
	if err != nil {
		return "", fmt.Errorf("serialize: %w", err)
	}
	return payload, nil
}
