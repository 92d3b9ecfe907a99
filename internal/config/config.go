// Package config defines the service configuration and how it is loaded.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory replan queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of replan workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize and DedupeTTLSeconds bound the submission idempotency cache.
	DedupeSize       int `koanf:"dedupe_size"`
	DedupeTTLSeconds int `koanf:"dedupe_ttl_seconds"`

	// PlanCacheSize and PlanCacheTTLSeconds bound the stateless plan cache.
	PlanCacheSize       int `koanf:"plan_cache_size"`
	PlanCacheTTLSeconds int `koanf:"plan_cache_ttl_seconds"`

	// CatalogPath points at a YAML event definition; empty uses the built-in one.
	CatalogPath string `koanf:"catalog_path"`

	// EventStart is the RFC3339 start of the current stage; empty means process start.
	EventStart string `koanf:"event_start"`

	// EventStage is the one-based stage EventStart refers to.
	EventStage int `koanf:"event_stage"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          100_000,
		DedupeTTLSeconds:    600,
		PlanCacheSize:       10_000,
		PlanCacheTTLSeconds: 60,
		EventStage:          1,
	}
}

// Validate checks the fields that have no usable fallback.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.EventStage < 1 || c.EventStage > 3 {
		return fmt.Errorf("%w: event_stage must be 1..3, got %d", ErrInvalidConfig, c.EventStage)
	}
	if c.QueueSize <= 0 || c.WorkerCount <= 0 {
		return fmt.Errorf("%w: queue_size and worker_count must be positive", ErrInvalidConfig)
	}
	if c.EventStart != "" {
		if _, err := time.Parse(time.RFC3339, c.EventStart); err != nil {
			return fmt.Errorf("%w: event_start: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// EventStartTime resolves EventStart, falling back to now when unset.
func (c *Config) EventStartTime(now time.Time) time.Time {
	if c.EventStart == "" {
		return now
	}
	t, err := time.Parse(time.RFC3339, c.EventStart)
	if err != nil {
		return now
	}
	return t
}

// DedupeTTL returns the submission idempotency window.
func (c *Config) DedupeTTL() time.Duration {
	return time.Duration(c.DedupeTTLSeconds) * time.Second
}

// PlanCacheTTL returns how long stateless plans are memoized.
func (c *Config) PlanCacheTTL() time.Duration {
	return time.Duration(c.PlanCacheTTLSeconds) * time.Second
}
