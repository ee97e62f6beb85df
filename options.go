package tivity

import (
	"strings"

	"github.com/goliatone/go-tivity/pkg/activity"
	"github.com/google/uuid"
)

// Option configures a store at construction.
type Option func(*storeConfig)

type storeConfig struct {
	id      string
	logger  Logger
	metrics MetricsRecorder
	hooks   activity.Hooks
	channel string
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if strings.TrimSpace(cfg.id) == "" {
		cfg.id = uuid.NewString()
	}
	if cfg.logger == nil {
		cfg.logger = DefaultLogger()
	}
	if cfg.metrics == nil {
		cfg.metrics = noopMetrics{}
	}
	return cfg
}

// WithStoreID overrides the generated store identifier used in logs, metrics
// and activity events.
func WithStoreID(id string) Option {
	return func(cfg *storeConfig) {
		cfg.id = strings.TrimSpace(id)
	}
}

// WithLogger attaches a logger. A nil logger silences the store.
func WithLogger(logger Logger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(recorder MetricsRecorder) Option {
	return func(cfg *storeConfig) {
		cfg.metrics = recorder
	}
}

// WithActivityHooks attaches activity hooks notified on commits and
// persistence lifecycle events. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := hooks.Compact()
	return func(cfg *storeConfig) {
		cfg.hooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on emitted activity events.
func WithActivityChannel(channel string) Option {
	return func(cfg *storeConfig) {
		cfg.channel = strings.TrimSpace(channel)
	}
}
