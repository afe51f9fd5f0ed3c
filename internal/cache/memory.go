package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/courtside/internal/metrics"
)

// MemoryCache is the default in-process Cache implementation backed by
// go-cache. Hit/miss counts feed the Prometheus hit-ratio gauge.
type MemoryCache struct {
	cache      *gocache.Cache
	defaultTTL time.Duration
	mu         sync.RWMutex
	hitCount   uint64
	missCount  uint64
}

// NewMemoryCache creates a new in-memory cache with the given default TTL
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		cache:      gocache.New(defaultTTL, defaultTTL*2),
		defaultTTL: defaultTTL,
	}
}

// Get retrieves a cached batch
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if value, found := mc.cache.Get(key); found {
		if data, ok := value.([]byte); ok {
			mc.hitCount++
			mc.updateMetrics()
			metrics.CacheHitsTotal.Inc()
			return data, true
		}
	}

	mc.missCount++
	mc.updateMetrics()
	metrics.CacheMissesTotal.Inc()
	return nil, false
}

// Put stores a batch under the key; ttl <= 0 uses the default TTL
func (mc *MemoryCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = mc.defaultTTL
	}
	mc.cache.Set(key, value, ttl)
	return nil
}

// Has reports whether a live entry exists without counting a hit or miss
func (mc *MemoryCache) Has(ctx context.Context, key string) bool {
	_, found := mc.cache.Get(key)
	return found
}

// Invalidate removes all entries belonging to the scope
func (mc *MemoryCache) Invalidate(ctx context.Context, scope Scope) error {
	prefix := ScopePrefix(scope)
	for key := range mc.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			mc.cache.Delete(key)
		}
	}
	return nil
}

// Clear flushes the entire cache and resets counters
func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cache.Flush()
	mc.hitCount = 0
	mc.missCount = 0
}

// Stats returns cache statistics
func (mc *MemoryCache) Stats() (hits, misses uint64, ratio float64) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.statsLocked()
}

func (mc *MemoryCache) statsLocked() (hits, misses uint64, ratio float64) {
	hits = mc.hitCount
	misses = mc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// updateMetrics updates the Prometheus hit-ratio gauge. Callers hold mu.
func (mc *MemoryCache) updateMetrics() {
	_, _, ratio := mc.statsLocked()
	metrics.CacheHitRatio.Set(ratio)
}

// ItemCount returns the number of live items in the cache
func (mc *MemoryCache) ItemCount() int {
	return mc.cache.ItemCount()
}
