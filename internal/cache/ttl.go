package cache

import (
	"sync"
	"time"
)

// DefaultMaxEntries caps cache growth. When the limit is hit the entry with
// the oldest createdAt is evicted, regardless of how recently it was read.
const DefaultMaxEntries = 500

type entry[V any] struct {
	value     V
	createdAt time.Time
	expiresAt time.Time
}

// TTL is an in-memory expiring key-value store. Expiry is lazy: entries are
// removed when a Get observes them past their deadline, there is no background
// sweep. An expired entry is indistinguishable from one that never existed.
type TTL[V any] struct {
	mu         sync.Mutex
	entries    map[string]entry[V]
	maxEntries int
	stats      Stats
}

// Stats holds cumulative cache counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}

// NewTTL creates a cache bounded to maxEntries. Values ≤0 fall back to
// DefaultMaxEntries.
func NewTTL[V any](maxEntries int) *TTL[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &TTL[V]{
		entries:    make(map[string]entry[V]),
		maxEntries: maxEntries,
	}
}

// Get returns the live value for key. A read past expiresAt deletes the entry
// and reports a miss.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		c.stats.Misses++
		return zero, false
	}
	c.stats.Hits++
	return e.value, true
}

// Set stores value under key for ttl. If the cache is at capacity the single
// entry with the smallest createdAt is evicted first (insertion-order, not
// LRU).
func (c *TTL[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	now := time.Now()
	c.entries[key] = entry[V]{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

// evictOldestLocked scans all entries and removes the one created first.
// Caller must hold c.mu.
func (c *TTL[V]) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.createdAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.createdAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
		c.stats.Evictions++
	}
}

// Invalidate removes key if present.
func (c *TTL[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops all entries. Counters are kept.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Len reports the current entry count, expired entries included until a Get
// touches them.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *TTL[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}
