package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/arguslabs/argus/internal/llm"
)

// Cache is a bounded in-memory TTL cache for verification results, safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	order   []string // insertion order, for oldest-first eviction

	enabled    bool
	maxSize    int
	ttlSeconds int
}

type entry struct {
	result    llm.FallbackResult
	createdAt time.Time
}

// Stats is the externally visible cache state.
type Stats struct {
	Enabled    bool `json:"enabled"`
	Size       int  `json:"size"`
	MaxSize    int  `json:"maxSize"`
	TTLSeconds int  `json:"ttl"`
}

// New creates a Cache. A disabled cache accepts all calls and always misses.
func New(enabled bool, maxSize, ttlSeconds int) *Cache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Cache{
		entries:    make(map[string]entry),
		enabled:    enabled,
		maxSize:    maxSize,
		ttlSeconds: ttlSeconds,
	}
}

// Get returns the cached result for (fingerprint, modelKey), or ok=false on
// a miss. Expired entries are removed and count as misses.
func (c *Cache) Get(fingerprint, modelKey string) (llm.FallbackResult, bool) {
	if !c.enabled {
		return llm.FallbackResult{}, false
	}
	key := fingerprint + ":" + modelKey

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return llm.FallbackResult{}, false
	}
	if c.ttlSeconds > 0 && time.Since(e.createdAt) > time.Duration(c.ttlSeconds)*time.Second {
		c.remove(key)
		return llm.FallbackResult{}, false
	}
	return e.result, true
}

// Set stores a result for (fingerprint, modelKey), evicting the oldest entry
// when full.
func (c *Cache) Set(fingerprint, modelKey string, result llm.FallbackResult) {
	if !c.enabled {
		return
	}
	key := fingerprint + ":" + modelKey

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.maxSize && len(c.order) > 0 {
			c.remove(c.order[0])
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry{result: result, createdAt: time.Now()}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.order = nil
	c.mu.Unlock()
}

// GetStats returns the current cache state.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Enabled:    c.enabled,
		Size:       len(c.entries),
		MaxSize:    c.maxSize,
		TTLSeconds: c.ttlSeconds,
	}
}

// remove deletes key from both the map and the order slice. Callers hold the
// lock.
func (c *Cache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Fingerprint hashes the canonical request material into a cache key
// component. Callers are responsible for canonicalizing their arguments.
func Fingerprint(material string) string {
	h := sha256.Sum256([]byte(material))
	return fmt.Sprintf("%x", h)
}
