package tivity

import (
	"reflect"
	"testing"
)

func TestSharedSlotSeedsOnce(t *testing.T) {
	shared, err := NewShared(WithLogger(nil))
	if err != nil {
		t.Fatalf("new shared: %v", err)
	}
	calls := 0
	shared.Store().Subscribe(func(prev, next *Snapshot) { calls++ })

	first, err := shared.Slot("theme", "dark")
	if err != nil {
		t.Fatalf("slot: %v", err)
	}
	second, err := shared.Slot("theme", "light")
	if err != nil {
		t.Fatalf("slot: %v", err)
	}
	if first.Get() != "dark" || second.Get() != "dark" {
		t.Fatalf("expected first seed to win, got %v/%v", first.Get(), second.Get())
	}
	if calls != 0 {
		t.Fatalf("expected seeding to be silent, got %d", calls)
	}
	if first.Key() != "theme" {
		t.Fatalf("unexpected key %q", first.Key())
	}
}

func TestSharedSlotSubscribeIgnoresOtherKeys(t *testing.T) {
	shared, err := NewShared(WithLogger(nil))
	if err != nil {
		t.Fatalf("new shared: %v", err)
	}
	count, err := shared.Slot("count", 0)
	if err != nil {
		t.Fatalf("slot: %v", err)
	}
	other, err := shared.Slot("other", "")
	if err != nil {
		t.Fatalf("slot: %v", err)
	}

	var seen []any
	unsub := count.Subscribe(func(v any) { seen = append(seen, v) })

	if err := other.Set("x"); err != nil {
		t.Fatalf("set other: %v", err)
	}
	if err := count.Update(func(v any) any { return v.(int) + 1 }); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := count.Set(1); err != nil {
		t.Fatalf("set same: %v", err)
	}
	unsub()
	if err := count.Set(5); err != nil {
		t.Fatalf("set after unsub: %v", err)
	}
	if !reflect.DeepEqual(seen, []any{1}) {
		t.Fatalf("unexpected deliveries %v", seen)
	}
	if count.Get() != 5 {
		t.Fatalf("expected 5, got %v", count.Get())
	}
}

func TestSharedSlotWithoutInitial(t *testing.T) {
	shared, err := NewShared(WithLogger(nil))
	if err != nil {
		t.Fatalf("new shared: %v", err)
	}
	slot, err := shared.Slot("missing", nil)
	if err != nil {
		t.Fatalf("slot: %v", err)
	}
	if slot.Get() != nil {
		t.Fatalf("expected nil value, got %v", slot.Get())
	}
	if shared.Store().GetSnapshot().Has("missing") {
		t.Fatalf("expected nil initial not to seed")
	}
}
