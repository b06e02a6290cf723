// Package search implements the knowledge/app search query pipeline:
// debounced input, cancellation of superseded requests, result
// normalization and a small recency cache, plus the HTTP clients and
// the entitlement header they carry.
package search

import "sync"

// cacheCapacity bounds the recency cache.
const cacheCapacity = 10

// cachedResults is one cache value: the normalized result list and the
// backend's total count.
type cachedResults struct {
	Results []Result
	Total   int
}

// queryCache is a bounded map keyed by the trimmed, length-capped
// query. Eviction is insertion-order (oldest-inserted entry goes
// first), deliberately not LRU: a hit does not refresh an entry's
// position.
type queryCache struct {
	mu      sync.Mutex
	cap     int
	entries map[string]cachedResults
	order   []string
}

func newQueryCache(capacity int) *queryCache {
	return &queryCache{
		cap:     capacity,
		entries: make(map[string]cachedResults, capacity),
	}
}

func (c *queryCache) get(key string) (cachedResults, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *queryCache) put(key string, v cachedResults) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		// Overwrite keeps the original insertion slot.
		c.entries[key] = v
		return
	}
	c.entries[key] = v
	c.order = append(c.order, key)
	if len(c.order) > c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *queryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
