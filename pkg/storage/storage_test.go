package storage_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/goliatone/go-tivity/pkg/storage"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()

	if _, ok, err := mem.GetItem(ctx, "@p"); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := mem.SetItem(ctx, "@p", `{"views":2}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := mem.GetItem(ctx, "@p")
	if err != nil || !ok || value != `{"views":2}` {
		t.Fatalf("unexpected get %q %v %v", value, ok, err)
	}
	if err := mem.RemoveItem(ctx, "@p"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if mem.Len() != 0 {
		t.Fatalf("expected empty storage, got %d", mem.Len())
	}
}

func TestMemoryFromSeedsKeys(t *testing.T) {
	mem := storage.NewMemoryFrom(map[string]string{"a": "1", "b": "2"})
	keys := mem.Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestNoopNeverStores(t *testing.T) {
	ctx := context.Background()
	var s storage.Storage = storage.Noop{}
	if err := s.SetItem(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := s.GetItem(ctx, "k"); ok {
		t.Fatalf("expected noop to never find a value")
	}
}

func TestCachedServesReadsFromCache(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	var reads int
	counting := storage.Funcs{
		Get: func(ctx context.Context, key string) (string, bool, error) {
			reads++
			return backend.GetItem(ctx, key)
		},
		Set:    backend.SetItem,
		Remove: backend.RemoveItem,
	}
	cached, err := storage.NewCached(counting, 4)
	if err != nil {
		t.Fatalf("new cached: %v", err)
	}

	if err := cached.SetItem(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	for i := 0; i < 3; i++ {
		value, ok, err := cached.GetItem(ctx, "k")
		if err != nil || !ok || value != "v" {
			t.Fatalf("unexpected get %q %v %v", value, ok, err)
		}
	}
	if reads != 0 {
		t.Fatalf("expected write-through to prime the cache, got %d backend reads", reads)
	}

	if err := cached.RemoveItem(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := cached.GetItem(ctx, "k"); ok {
		t.Fatalf("expected removed key to be absent")
	}
	if err := cached.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestCachedDropsEntryOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	cached, err := storage.NewCached(storage.Funcs{
		Get: func(context.Context, string) (string, bool, error) { return "old", true, nil },
		Set: func(context.Context, string, string) error { return boom },
	}, 2)
	if err != nil {
		t.Fatalf("new cached: %v", err)
	}
	if err := cached.SetItem(ctx, "k", "new"); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	value, _, _ := cached.GetItem(ctx, "k")
	if value != "old" {
		t.Fatalf("expected backend value after failed write, got %q", value)
	}
}
