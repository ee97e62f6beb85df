package activity

import (
	"context"
	"strings"
)

// DefaultChannel is stamped on events that do not carry one.
const DefaultChannel = "tivity"

// Emitter sends the lifecycle events of one store to its hooks.
type Emitter struct {
	hooks   Hooks
	storeID string
	channel string
	onError func(Event, error)
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithChannel overrides DefaultChannel.
func WithChannel(channel string) EmitterOption {
	return func(e *Emitter) {
		if channel = strings.TrimSpace(channel); channel != "" {
			e.channel = channel
		}
	}
}

// WithErrorHandler receives hook failures. Without one they are dropped.
func WithErrorHandler(fn func(Event, error)) EmitterOption {
	return func(e *Emitter) {
		e.onError = fn
	}
}

// NewEmitter binds hooks to the store identified by storeID.
func NewEmitter(storeID string, hooks Hooks, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		hooks:   hooks.Compact(),
		storeID: strings.TrimSpace(storeID),
		channel: DefaultChannel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Enabled reports whether any hook would receive an event. Callers check it
// before assembling event input.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.hooks) > 0
}

// Emit builds an event from input, fills in the store id and channel when
// missing, and notifies every hook.
func (e *Emitter) Emit(ctx context.Context, build func(StoreEventInput) Event, input StoreEventInput) {
	if !e.Enabled() || build == nil {
		return
	}
	if strings.TrimSpace(input.StoreID) == "" {
		input.StoreID = e.storeID
	}
	if strings.TrimSpace(input.Channel) == "" {
		input.Channel = e.channel
	}
	event := build(input)
	if err := e.hooks.Notify(ctx, event); err != nil && e.onError != nil {
		e.onError(event, err)
	}
}
