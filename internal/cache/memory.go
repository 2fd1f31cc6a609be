package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps reviewer responses for the lifetime of one process.
// Identical prompts recurring within a run hit this layer without
// touching disk.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a process-local response cache. Responses
// expire after defaultTTL; cleanupInterval bounds how long expired
// entries linger before the janitor evicts them.
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns the cached raw response for a key.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a raw response. A zero ttl means the cache default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.cache.Set(key, value, ttl)
	return nil
}

// Delete drops one cached response.
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear drops every cached response.
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
