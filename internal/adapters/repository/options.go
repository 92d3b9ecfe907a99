package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithStatsInterval sets how often the stats snapshot is republished.
func WithStatsInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.statsInterval = interval
		}
	}
}
