package activity

import (
	"strings"
	"time"
)

// Verbs emitted for store lifecycle events.
const (
	VerbStoreCommitted  = "store.committed"
	VerbStoreHydrated   = "store.hydrated"
	VerbStoreMigrated   = "store.migrated"
	VerbStorageCleared  = "store.storage.cleared"
	ObjectTypeStore     = "store"
	ObjectTypePersisted = "store.persisted"
)

// StoreEventInput describes the common fields for store lifecycle events.
type StoreEventInput struct {
	ActorID    string
	StoreID    string
	Channel    string
	Keys       []string
	Seq        uint64
	StorageKey string
	Version    int
	From       any
	Outcome    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildStoreCommittedEvent describes a notifying commit.
func BuildStoreCommittedEvent(input StoreEventInput) Event {
	return buildStoreEvent(VerbStoreCommitted, input)
}

// BuildStoreHydratedEvent describes a completed hydration.
func BuildStoreHydratedEvent(input StoreEventInput) Event {
	return buildStoreEvent(VerbStoreHydrated, input)
}

// BuildStoreMigratedEvent describes a hydration that ran a version migration.
func BuildStoreMigratedEvent(input StoreEventInput) Event {
	return buildStoreEvent(VerbStoreMigrated, input)
}

// BuildStorageClearedEvent describes a removal of the persisted payload.
func BuildStorageClearedEvent(input StoreEventInput) Event {
	return buildStoreEvent(VerbStorageCleared, input)
}

func buildStoreEvent(verb string, input StoreEventInput) Event {
	metadata := copyMetadata(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if len(input.Keys) > 0 {
		set("keys", append([]string(nil), input.Keys...))
	}
	storageKey := strings.TrimSpace(input.StorageKey)
	if storageKey != "" {
		set("version", input.Version)
	}
	if input.From != nil {
		set("from_version", input.From)
	}
	if input.Outcome != "" {
		set("outcome", input.Outcome)
	}

	return Event{
		Verb:       verb,
		StoreID:    strings.TrimSpace(input.StoreID),
		StorageKey: storageKey,
		Seq:        input.Seq,
		ActorID:    strings.TrimSpace(input.ActorID),
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
