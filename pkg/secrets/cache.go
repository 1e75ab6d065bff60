package secrets

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache. It is parameterised on the
// value type so it can hold resolved credentials, client configs, or
// anything else worth keeping out of hot paths.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
}

// NewCache creates a cache whose entries expire defaultTTL after insertion.
func NewCache[T any](defaultTTL time.Duration) *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		ttl:     defaultTTL,
	}
}

// Get returns a cached value if present and not expired. Expired entries
// are dropped on read, so a stopped cleaner only costs memory, not
// staleness.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		c.Bust(key)
		return zero, false
	}
	return e.value, true
}

// Put inserts or overwrites an entry, restarting its TTL.
func (c *Cache[T]) Put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[T]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Bust deletes a single entry (e.g. on secret rotation).
func (c *Cache[T]) Bust(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// StartCleaner sweeps expired entries at the given interval until stop is
// closed. Run it in its own goroutine.
func (c *Cache[T]) StartCleaner(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep(time.Now())
		case <-stop:
			return
		}
	}
}

func (c *Cache[T]) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
