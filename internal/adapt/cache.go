// Package adapt - cache.go holds the in-memory completion cache.
package adapt

import "sync"

// Cache is the process-lifetime completion cache. It is unbounded with no
// eviction: acceptable for a single server run, a known scalability limit
// rather than a correctness one. Concurrent reads and inserts are safe; a
// lost update on a racing insert is harmless because both racers computed
// equivalent values for the same fingerprint.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the cached text for a fingerprint.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.entries[key]
	return text, ok
}

// Put stores text under a fingerprint, overwriting idempotently.
func (c *Cache) Put(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = text
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
