package dedupe

import "time"

// Option applies a configuration option to the deduper.
type Option func(*ttlDeduper)

// WithMaxSize caps the number of remembered IDs; <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *ttlDeduper) {
		d.maxSize = maxSize
	}
}

// WithTTL sets how long an ID is remembered.
func WithTTL(ttl time.Duration) Option {
	return func(d *ttlDeduper) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}
