package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is an in-memory cache with one expiry per entry. Reads of report
// rollups go through it so dashboard polling does not hammer the invoices
// table.
type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
}

func NewTTL[K comparable, V any]() *TTL[K, V] {
	return &TTL[K, V]{entries: make(map[K]entry[V])}
}

// GetOrLoad returns the cached value, or runs load and caches its result for
// ttl. Errors from load are returned without caching.
func (c *TTL[K, V]) GetOrLoad(key K, ttl time.Duration, load func() (V, error)) (V, error) {
	c.mu.Lock()
	if cached, ok := c.entries[key]; ok && time.Now().Before(cached.expiresAt) {
		c.mu.Unlock()
		return cached.value, nil
	}
	c.mu.Unlock()

	value, err := load()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return value, nil
}

// Invalidate drops an entry so the next read reloads.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
