package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-tivity/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook forwards store activity to a go-users ActivitySink. The event actor is
// recorded as both actor and user; TenantID scopes every record.
type Hook struct {
	Sink     usertypes.ActivitySink
	TenantID uuid.UUID
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil || !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	event = event.Stamped()

	actor := parseUUID(event.ActorID)
	record := usertypes.ActivityRecord{
		ActorID:    actor,
		UserID:     actor,
		TenantID:   h.TenantID,
		Verb:       event.Verb,
		ObjectType: event.ObjectType(),
		ObjectID:   event.ObjectID(),
		Channel:    event.Channel,
		Data:       recordData(event),
		OccurredAt: event.OccurredAt,
	}
	if event.ActorID != "" && actor == uuid.Nil {
		record.Data["actor"] = event.ActorID
	}

	return h.Sink.Log(ctx, record)
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// recordData flattens the typed event fields into the record payload.
func recordData(event activity.Event) map[string]any {
	data := make(map[string]any, len(event.Metadata)+2)
	for key, value := range event.Metadata {
		data[key] = value
	}
	if event.Seq > 0 {
		data["seq"] = event.Seq
	}
	if event.StorageKey != "" {
		data["storage_key"] = event.StorageKey
	}
	return data
}
