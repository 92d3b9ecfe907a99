// Package cache memoizes computed values for a bounded time. Concurrent
// callers asking for the same key wait for the first one to compute it.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/okian/letokens/pkg/logger"
	"github.com/okian/letokens/pkg/metrics"
)

const claimWait = 20 * time.Millisecond

type entry[T any] struct {
	data  T
	valid bool
}

type hitResult[T any] struct {
	data    T
	valid   bool
	claimed bool
}

// TTLCache is a named, size-bounded cache whose entries expire after a TTL.
type TTLCache[T any] struct {
	name  string
	cache *ttlcache.Cache[string, entry[T]]
}

// New creates a cache and starts its expiry loop. capacity <= 0 is unbounded.
func New[T any](name string, ttl time.Duration, capacity int) *TTLCache[T] {
	opts := []ttlcache.Option[string, entry[T]]{
		ttlcache.WithTTL[string, entry[T]](ttl),
		ttlcache.WithDisableTouchOnHit[string, entry[T]](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, entry[T]](uint64(capacity)))
	}
	c := ttlcache.New[string, entry[T]](opts...)
	go c.Start()
	return &TTLCache[T]{name: name, cache: c}
}

// Len returns the number of held entries, including pending claims.
func (c *TTLCache[T]) Len() int { return c.cache.Len() }

// Close stops the expiry loop.
func (c *TTLCache[T]) Close() { c.cache.Stop() }

func (c *TTLCache[T]) getOrClaim(key string) hitResult[T] {
	item, existed := c.cache.GetOrSet(key, entry[T]{})
	return hitResult[T]{
		data:    item.Value().data,
		valid:   item.Value().valid,
		claimed: !existed,
	}
}

func (c *TTLCache[T]) set(key string, data T) {
	c.cache.Set(key, entry[T]{data: data, valid: true}, ttlcache.DefaultTTL)
}

func (c *TTLCache[T]) delete(key string) {
	c.cache.Delete(key)
}

// GetOrCreate returns the cached value for key, calling create on a miss.
// The bool reports whether create ran. A failed create leaves no entry
// behind so the next caller tries again.
func GetOrCreate[T any](ctx context.Context, c *TTLCache[T], key string, create func() (T, error)) (T, bool, error) {
	claimed, set := false, false
	defer func() {
		if claimed && !set {
			c.delete(key)
		}
	}()

	for {
		result := c.getOrClaim(key)

		if result.claimed {
			claimed = true
			metrics.RecordCacheMiss(c.name)

			data, err := create()
			if err != nil {
				var empty T
				return empty, false, fmt.Errorf("create cache entry: %w", err)
			}
			c.set(key, data)
			set = true
			return data, true, nil
		}

		if result.valid {
			metrics.RecordCacheHit(c.name)
			return result.data, false, nil
		}

		logger.Get().Debug(ctx, "waiting for cache entry", logger.String("cache", c.name))
		select {
		case <-ctx.Done():
			var empty T
			return empty, false, ctx.Err()
		case <-time.After(claimWait):
		}
	}
}

// Key derives a stable cache key from the JSON encoding of v.
func Key(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
