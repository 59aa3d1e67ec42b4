package resolver

import (
	"sync"
	"sync/atomic"

	"github.com/tristendillon/relocate/core/models"
	"github.com/tristendillon/relocate/core/paths"
	"github.com/tristendillon/relocate/core/rename"
)

// CacheStats reports how well the cache is doing.
type CacheStats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Cache memoizes resolutions per (directory, specifier). Resolution only
// depends on the containing directory, so files in one directory share entries.
// Directories are keyed under the project's case policy.
type Cache struct {
	inner   rename.ModuleResolver
	policy  paths.Policy
	entries map[string]models.Resolution
	mutex   sync.RWMutex
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCache wraps inner with a resolution cache.
func NewCache(inner rename.ModuleResolver, policy paths.Policy) *Cache {
	return &Cache{
		inner:   inner,
		policy:  policy,
		entries: make(map[string]models.Resolution),
	}
}

func (c *Cache) cacheKey(specifier, containingFile string) string {
	return c.policy.Canonical(paths.DirOf(containingFile)) + "\x00" + specifier
}

// Resolve returns the cached resolution or asks the wrapped resolver.
func (c *Cache) Resolve(specifier, containingFile string) models.Resolution {
	key := c.cacheKey(specifier, containingFile)

	c.mutex.RLock()
	res, ok := c.entries[key]
	c.mutex.RUnlock()
	if ok {
		c.hits.Add(1)
		return res
	}

	c.misses.Add(1)
	res = c.inner.Resolve(specifier, containingFile)

	c.mutex.Lock()
	c.entries[key] = res
	c.mutex.Unlock()
	return res
}

// GetStats returns cache statistics.
func (c *Cache) GetStats() CacheStats {
	c.mutex.RLock()
	entries := len(c.entries)
	c.mutex.RUnlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return CacheStats{Entries: entries, Hits: hits, Misses: misses, HitRate: hitRate}
}
