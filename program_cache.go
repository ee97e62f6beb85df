package tivity

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// ProgramCache stores compiled selector programs keyed by source.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type lruProgramCache struct {
	cache *lru.Cache[string, any]
}

// NewLRUProgramCache returns a bounded ProgramCache. Sizes below one fall back
// to 128 entries.
func NewLRUProgramCache(size int) ProgramCache {
	if size < 1 {
		size = 128
	}
	cache, err := lru.New[string, any](size)
	if err != nil {
		panic(err)
	}
	return &lruProgramCache{cache: cache}
}

func (c *lruProgramCache) Get(key string) (any, bool) {
	return c.cache.Get(key)
}

func (c *lruProgramCache) Set(key string, value any) {
	c.cache.Add(key, value)
}

// SelectorOption configures expression selectors.
type SelectorOption func(*selectorConfig)

type selectorConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// WithSelectorCache reuses compiled programs across selector instances.
func WithSelectorCache(cache ProgramCache) SelectorOption {
	return func(cfg *selectorConfig) {
		cfg.cache = cache
	}
}

// WithSelectorFunctions exposes the registry to the expression. Each function
// is callable by name and through call(name, args...).
func WithSelectorFunctions(registry *FunctionRegistry) SelectorOption {
	return func(cfg *selectorConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

func applySelectorOptions(opts []SelectorOption) selectorConfig {
	cfg := selectorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.registry == nil {
		cfg.registry = NewFunctionRegistry()
	}
	return cfg
}
