package search

import (
	"sync"

	"github.com/anon381/Movie-Search-App/internal/models"
)

// Cache memoizes search results by composite query key. Entries live for
// the process lifetime; there is no eviction. That is acceptable for a
// session-lived client and is a documented limitation, not a defect.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]models.SearchResult
}

// NewCache creates an empty result cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]models.SearchResult)}
}

// Get returns the cached result for key, if present.
func (c *Cache) Get(key string) (models.SearchResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.entries[key]
	return res, ok
}

// Put stores a result under key.
func (c *Cache) Put(key string, res models.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = res
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
