// Package cache keeps recent search outputs for a short time.
package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache is a TTL cache storing private copies of its values: what goes in
// and what comes out are cloned, so callers may mutate results freely.
type Cache[T any] struct {
	store *ttlcache.Cache[string, T]
	clone func(T) T
}

func New[T any](clone func(T) T, capacity uint64) *Cache[T] {
	opts := []ttlcache.Option[string, T]{ttlcache.WithDisableTouchOnHit[string, T]()}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, T](capacity))
	}
	return &Cache[T]{
		store: ttlcache.New[string, T](opts...),
		clone: clone,
	}
}

func (c *Cache[T]) Get(key string) (T, bool) {
	item := c.store.Get(key)
	if item == nil || item.IsExpired() {
		var zero T
		return zero, false
	}
	return c.cloneValue(item.Value()), true
}

func (c *Cache[T]) Set(key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.store.Set(key, c.cloneValue(value), ttl)
}

// Start evicts expired entries in the background until Stop is called.
func (c *Cache[T]) Start() {
	go c.store.Start()
}

func (c *Cache[T]) Stop() {
	c.store.Stop()
}

func (c *Cache[T]) cloneValue(value T) T {
	if c.clone == nil {
		return value
	}
	return c.clone(value)
}
