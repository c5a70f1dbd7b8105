package cache

import "sync"

// Cache is a mutex-guarded LRU with a soft limit. When an insert pushes it
// past the limit, the least recently used quarter is dropped.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	limit   int
	clock   uint64

	hits, misses uint64
}

type entry[V any] struct {
	value V
	used  uint64
}

// New returns a cache holding about limit entries. A limit of 0 disables
// eviction.
func New[K comparable, V any](limit int) *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]*entry[V]), limit: limit}
}

// Get returns the value stored under key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.clock++
	e.used = c.clock
	return e.value, true
}

// GetOrCreate returns the value under key, building it with create on a
// miss. create runs with the lock held, so concurrent callers for the same
// key build it once.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock++
	if e, ok := c.entries[key]; ok {
		c.hits++
		e.used = c.clock
		return e.value
	}
	c.misses++
	v := create()
	c.insert(key, v)
	return v
}

// Set stores value under key.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock++
	c.insert(key, value)
}

// Clear drops every entry and resets the counters.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*entry[V])
	c.clock, c.hits, c.misses = 0, 0, 0
}

// Stats reports the entry count and hit counters.
type Stats struct {
	Len    int
	Hits   uint64
	Misses uint64
}

func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Len: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// insert requires c.mu.
func (c *Cache[K, V]) insert(key K, v V) {
	c.entries[key] = &entry[V]{value: v, used: c.clock}
	if c.limit > 0 && len(c.entries) > c.limit {
		c.evict()
	}
}

// evict drops the least recently used entries until three quarters of the
// limit remain. Requires c.mu.
func (c *Cache[K, V]) evict() {
	keep := max(c.limit*3/4, 1)
	for len(c.entries) > keep {
		var (
			oldest K
			used   uint64
			found  bool
		)
		for k, e := range c.entries {
			if !found || e.used < used {
				oldest, used, found = k, e.used, true
			}
		}
		delete(c.entries, oldest)
	}
}
