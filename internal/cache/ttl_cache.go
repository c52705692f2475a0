package cache

import (
	"sync"
	"time"
)

// Cache provides a minimal TTL cache interface for hot-path lookups.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache stores values in-memory with per-entry TTLs and a hard entry
// bound. When full, the entry closest to expiry is evicted so lookup
// memoization cannot grow without limit over a long-lived process.
type TTLCache[K comparable, V any] struct {
	mu         sync.RWMutex
	items      map[K]cacheEntry[V]
	maxEntries int
}

const defaultMaxEntries = 1024

// NewTTLCache constructs a TTLCache bounded to maxEntries (the default
// bound applies when maxEntries <= 0).
func NewTTLCache[K comparable, V any](maxEntries int) *TTLCache[K, V] {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &TTLCache[K, V]{
		items:      make(map[K]cacheEntry[V]),
		maxEntries: maxEntries,
	}
}

// Get returns a cached value if it exists and has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.Delete(key)
		return zero, false
	}
	return entry.value, true
}

// Set stores a value with the provided TTL, evicting when at capacity.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if c == nil {
		return
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxEntries {
		c.evictLocked()
	}
	c.items[key] = cacheEntry[V]{
		value:     value,
		expiresAt: expiresAt,
	}
	c.mu.Unlock()
}

// Delete removes a cached entry.
func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// evictLocked drops expired entries first, then the entry closest to
// expiry. Entries without a TTL are only evicted as a last resort.
func (c *TTLCache[K, V]) evictLocked() {
	now := time.Now()
	var victim K
	var victimAt time.Time
	found := false
	for key, entry := range c.items {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(c.items, key)
			return
		}
		if !entry.expiresAt.IsZero() && (!found || entry.expiresAt.Before(victimAt)) {
			victim = key
			victimAt = entry.expiresAt
			found = true
		}
	}
	if !found {
		for key := range c.items {
			victim = key
			found = true
			break
		}
	}
	if found {
		delete(c.items, victim)
	}
}

// NoopCache always returns cache misses and ignores writes.
type NoopCache[K comparable, V any] struct{}

// Get always returns a miss.
func (NoopCache[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

// Set is a no-op.
func (NoopCache[K, V]) Set(key K, value V, ttl time.Duration) {}

// Delete is a no-op.
func (NoopCache[K, V]) Delete(key K) {}
