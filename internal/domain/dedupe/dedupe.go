// Package dedupe tracks recently seen submission IDs so a retried request is
// applied at most once.
package dedupe

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Deduper records seen submission IDs.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so that a failed submission can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64

	// Close stops the expiry loop.
	Close()
}

type ttlDeduper struct {
	cache   *ttlcache.Cache[string, struct{}]
	maxSize int
	ttl     time.Duration
}

// NewInMemoryDeduper creates a deduper whose entries expire after the
// configured TTL; once maxSize entries are held the oldest are evicted.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ttlDeduper{
		maxSize: 50_000,
		ttl:     10 * time.Minute,
	}
	for _, opt := range opts {
		opt(d)
	}

	cacheOpts := []ttlcache.Option[string, struct{}]{
		ttlcache.WithTTL[string, struct{}](d.ttl),
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	}
	if d.maxSize > 0 {
		cacheOpts = append(cacheOpts, ttlcache.WithCapacity[string, struct{}](uint64(d.maxSize)))
	}
	d.cache = ttlcache.New[string, struct{}](cacheOpts...)
	go d.cache.Start()

	return d
}

func (d *ttlDeduper) SeenAndRecord(_ context.Context, id string) bool {
	_, existed := d.cache.GetOrSet(id, struct{}{})
	return existed
}

func (d *ttlDeduper) Unrecord(_ context.Context, id string) {
	d.cache.Delete(id)
}

func (d *ttlDeduper) Size() int64 {
	return int64(d.cache.Len())
}

func (d *ttlDeduper) Close() {
	d.cache.Stop()
}
