package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEventIdentity(t *testing.T) {
	store := Event{Verb: VerbStoreCommitted, StoreID: "counter"}
	if store.ObjectType() != ObjectTypeStore || store.ObjectID() != "counter" || !store.Valid() {
		t.Fatalf("unexpected store identity %q %q", store.ObjectType(), store.ObjectID())
	}
	persisted := Event{Verb: VerbStoreHydrated, StorageKey: "@post"}
	if persisted.ObjectType() != ObjectTypePersisted || persisted.ObjectID() != "@post" {
		t.Fatalf("unexpected persisted identity %q %q", persisted.ObjectType(), persisted.ObjectID())
	}
	if (Event{Verb: VerbStoreCommitted}).Valid() || (Event{StoreID: "x"}).Valid() {
		t.Fatalf("expected events without verb or object to be invalid")
	}
}

func TestEventStampedDetachesMetadata(t *testing.T) {
	keys := []string{"count"}
	evt := Event{Verb: VerbStoreCommitted, StoreID: "s", Metadata: map[string]any{"keys": keys}}

	got := evt.Stamped()
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["extra"] = true
	got.Metadata["keys"].([]string)[0] = "changed"
	if _, ok := evt.Metadata["extra"]; ok || keys[0] != "count" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if kept := (Event{OccurredAt: at}).Stamped(); !kept.OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved, got %v", kept.OccurredAt)
	}
}

func TestHooksNotifyDropsInvalidEvents(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{Verb: VerbStoreCommitted}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	capture := &CaptureHook{}
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	//nolint:staticcheck // nil context falls back to Background
	err := hooks.Notify(nil, Event{Verb: VerbStoreCommitted, StoreID: "1"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events))
	}
}

func TestHooksNotifyRecoversPanics(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error { panic("kaput") }),
		capture,
	}
	err := hooks.Notify(context.Background(), Event{Verb: VerbStoreCommitted, StoreID: "1"})
	var panicErr *HookPanicError
	if !errors.As(err, &panicErr) || panicErr.Value != "kaput" || panicErr.Verb != VerbStoreCommitted {
		t.Fatalf("expected HookPanicError, got %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected later hooks to still run")
	}
}

func TestHooksCompact(t *testing.T) {
	if got := (Hooks{nil, nil}).Compact(); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	capture := &CaptureHook{}
	if got := (Hooks{nil, capture}).Compact(); len(got) != 1 {
		t.Fatalf("expected one hook, got %v", got)
	}
}

func TestEmitterStampsStoreAndChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter("counter", Hooks{capture})
	emitter.Emit(context.Background(), BuildStoreCommittedEvent, StoreEventInput{Seq: 2})

	events := capture.Snapshot()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].StoreID != "counter" || events[0].Channel != DefaultChannel || events[0].Seq != 2 {
		t.Fatalf("unexpected event %+v", events[0])
	}

	emitter.Emit(context.Background(), BuildStoreCommittedEvent, StoreEventInput{StoreID: "other", Channel: "custom"})
	last := capture.Snapshot()[1]
	if last.StoreID != "other" || last.Channel != "custom" {
		t.Fatalf("expected explicit fields preserved, got %+v", last)
	}
}

func TestEmitterDisabledAndErrorHandler(t *testing.T) {
	var disabled *Emitter
	if disabled.Enabled() || NewEmitter("s", Hooks{nil}).Enabled() {
		t.Fatalf("expected emitter without hooks to be disabled")
	}
	disabled.Emit(context.Background(), BuildStoreCommittedEvent, StoreEventInput{})

	boom := errors.New("boom")
	var failed []string
	emitter := NewEmitter("s", Hooks{HookFunc(func(context.Context, Event) error { return boom })},
		WithChannel("audit"),
		WithErrorHandler(func(event Event, err error) {
			if errors.Is(err, boom) {
				failed = append(failed, event.Verb+"@"+event.Channel)
			}
		}),
	)
	emitter.Emit(context.Background(), BuildStorageClearedEvent, StoreEventInput{StorageKey: "k"})
	if len(failed) != 1 || failed[0] != VerbStorageCleared+"@audit" {
		t.Fatalf("expected failure reported, got %v", failed)
	}
}
