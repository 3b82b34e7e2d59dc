package latte

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	maxDepth int
	strict   bool
	logger   *zap.Logger
	store    ComponentStore
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		maxDepth: DefaultMaxDepth,
		strict:   false,
		logger:   nil,
		store:    nil,
	}
}

// WithMaxDepth sets the maximum nesting depth shared by block structures and
// component calls. Use 0 for unlimited depth.
// Default: 64
func WithMaxDepth(depth int) Option {
	return func(c *engineConfig) {
		c.maxDepth = depth
	}
}

// WithStrictMode makes undefined variables in output positions fatal.
// Conditionals still treat undefined values as falsy.
// Default: false (undefined interpolations render as empty strings)
func WithStrictMode(strict bool) Option {
	return func(c *engineConfig) {
		c.strict = strict
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithStore backs the engine's component registry with the given store.
// Components already in the store become resolvable immediately.
// Default: in-memory store
func WithStore(store ComponentStore) Option {
	return func(c *engineConfig) {
		c.store = store
	}
}
