// Package ttlcache provides an in-memory report cache with per-entry expiry.
//
// Entries are evicted lazily: an expired entry is removed the next time it is
// read, never by a background sweeper. Keys are namespaced by the caller with a
// short source tag (e.g. "lc:" + username) so identical usernames on different
// platforms never collide.
package ttlcache

import (
	"sync"
	"time"
)

type entry struct {
	value   any
	expires time.Time
}

// Cache is a process-wide TTL cache. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a Cache whose Set entries expire after defaultTTL.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     defaultTTL,
		now:     time.Now,
	}
}

// Get returns the value stored under key, or false if the key is absent or
// expired. Expired entries are removed on read.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL, overwriting any existing
// entry and resetting its expiry.
func (c *Cache) Set(key string, value any) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache) SetTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expires: c.now().Add(ttl)}
}

// Clear removes all entries unconditionally.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, including any not yet lazily
// evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TTL returns the default TTL applied by Set.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
