package service

import (
	"time"

	"github.com/okian/letokens/internal/catalog"
	"github.com/okian/letokens/internal/domain/tokens"
	"github.com/okian/letokens/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of replan workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the replan queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupe bounds the submission idempotency cache.
func WithDedupe(size int, ttl time.Duration) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
		if ttl > 0 {
			s.dedupeTTL = ttl
		}
	}
}

// WithPlanCache bounds the cache of stateless plans.
func WithPlanCache(size int, ttl time.Duration) Option {
	return func(s *Service) {
		if size > 0 {
			s.planCacheSize = size
		}
		if ttl > 0 {
			s.planCacheTTL = ttl
		}
	}
}

// WithCatalog sets the event definition; the built-in one is used otherwise.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithClock sets the token clock of the running event stage.
func WithClock(c tokens.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithNow overrides the time source, mostly for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
