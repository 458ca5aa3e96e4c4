package validator

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ikhlasbhojani/learnme/internal/types"
)

// MaxGlobalCacheSize bounds the shared validation cache; insertion past
// the bound evicts the least-recently-used entry.
const MaxGlobalCacheSize = 1000

// Cache is the process-wide validation cache shared by all concurrent
// crawls. It lives for the lifetime of the service and is never
// explicitly invalidated; entries only age out via LRU eviction. All
// access is serialized by one mutex.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, types.ValidationRecord]
}

// NewCache creates a bounded cache. Size falls back to
// MaxGlobalCacheSize when non-positive.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = MaxGlobalCacheSize
	}
	// lru.New only fails for a non-positive size.
	l, _ := lru.New[string, types.ValidationRecord](size)
	return &Cache{lru: l}
}

// Get returns the cached record for url, marking it recently used.
func (c *Cache) Get(url string) (types.ValidationRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(url)
}

// Put stores a record, evicting the least-recently-used entry when the
// cache is full.
func (c *Cache) Put(url string, rec types.ValidationRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(url, rec)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// contains reports whether url is cached without updating recency.
func (c *Cache) contains(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(url)
}
