package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-tivity/pkg/activity"
	"github.com/goliatone/go-tivity/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsStoreEvent(t *testing.T) {
	sink := &recordingSink{}
	tenantID := uuid.New()
	hook := usersink.Hook{Sink: sink, TenantID: tenantID}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	event := activity.BuildStoreCommittedEvent(activity.StoreEventInput{
		ActorID:    actorID.String(),
		StoreID:    "counter",
		Channel:    "tivity",
		Keys:       []string{"count"},
		Seq:        1,
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != actorID {
		t.Fatalf("expected actor %s got %s/%s", actorID, record.ActorID, record.UserID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.Verb != activity.VerbStoreCommitted || record.ObjectType != "store" || record.ObjectID != "counter" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "tivity" {
		t.Fatalf("expected channel tivity got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["seq"] != uint64(1) {
		t.Fatalf("expected seq metadata got %v", record.Data["seq"])
	}
}

func TestHookNotifyKeepsNonUUIDActor(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbStoreHydrated,
		ActorID:    "cli",
		StorageKey: "@post",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ActorID != uuid.Nil {
		t.Fatalf("expected nil actor uuid, got %s", record.ActorID)
	}
	if record.Data["actor"] != "cli" {
		t.Fatalf("expected raw actor in data, got %v", record.Data)
	}
	if record.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
	if record.ObjectType != activity.ObjectTypePersisted || record.ObjectID != "@post" || record.Data["storage_key"] != "@post" {
		t.Fatalf("expected storage key to identify the object, got %+v", record)
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}
