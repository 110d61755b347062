package recurrence

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"
)

// CacheConfig holds configuration for the expansion cache.
type CacheConfig struct {
	TTL             time.Duration // how long entries stay valid
	MaxEntries      int           // entry limit before eviction kicks in
	CleanupInterval time.Duration // how often expired entries are swept
}

// DefaultCacheConfig provides sensible defaults for expansion caching.
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// CacheStats describes the cache's current fill level.
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}

type cacheEntry struct {
	occurrences []Occurrence
	expiresAt   time.Time
	accessedAt  time.Time
}

// expansionCache memoizes Expand results. Expansion is deterministic, so a
// hit is always safe; the TTL only bounds memory, not correctness.
type expansionCache struct {
	mu          sync.RWMutex
	entries     map[string]*cacheEntry
	ttl         time.Duration
	maxEntries  int
	stopCleanup chan struct{}
}

func newExpansionCache(config CacheConfig) *expansionCache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig.TTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheConfig.MaxEntries
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}
	c := &expansionCache{
		entries:     make(map[string]*cacheEntry),
		ttl:         config.TTL,
		maxEntries:  config.MaxEntries,
		stopCleanup: make(chan struct{}),
	}
	go c.cleanupLoop(config.CleanupInterval)
	return c
}

// cacheKey hashes every input that influences expansion. Two rules that hash
// equal expand equal.
func cacheKey(rule Rule, anchor time.Time, w Window) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%v|%d|%02d:%02d|%s|%s|%s|%s|%d|",
		rule.Frequency, rule.Interval, rule.DaysOfWeek, rule.DayOfMonth,
		rule.Hour, rule.Minute, rule.Location.String(), rule.Duration,
		rule.EndType, rule.EndDate.Format(time.RFC3339), rule.EndCount)
	fmt.Fprintf(h, "%s|%s|%s",
		anchor.Format(time.RFC3339),
		w.Start.Format(time.RFC3339),
		w.End.Format(time.RFC3339))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (c *expansionCache) get(rule Rule, anchor time.Time, w Window) ([]Occurrence, bool) {
	key := cacheKey(rule, anchor, w)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := time.Now()
	if now.After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	entry.accessedAt = now
	c.mu.Unlock()
	return entry.occurrences, true
}

func (c *expansionCache) set(rule Rule, anchor time.Time, w Window, occurrences []Occurrence) {
	key := cacheKey(rule, anchor, w)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		occurrences: occurrences,
		expiresAt:   now.Add(c.ttl),
		accessedAt:  now,
	}
	if len(c.entries) > c.maxEntries {
		c.evict(now)
	}
}

// evict removes expired entries, then the least recently accessed ones until
// the cache fits again. Caller holds the write lock.
func (c *expansionCache) evict(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) <= c.maxEntries {
		return
	}

	type keyAccess struct {
		key        string
		accessedAt time.Time
	}
	byAge := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		byAge = append(byAge, keyAccess{key, entry.accessedAt})
	}
	sort.Slice(byAge, func(i, j int) bool {
		return byAge[i].accessedAt.Before(byAge[j].accessedAt)
	})

	for _, ka := range byAge[:len(c.entries)-c.maxEntries] {
		delete(c.entries, ka.key)
	}
}

func (c *expansionCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.evict(time.Now())
			c.mu.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *expansionCache) close() {
	close(c.stopCleanup)
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

func (c *expansionCache) stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	expired := 0
	for _, entry := range c.entries {
		if now.After(entry.expiresAt) {
			expired++
		}
	}
	return CacheStats{
		TotalEntries:   len(c.entries),
		ExpiredEntries: expired,
		ActiveEntries:  len(c.entries) - expired,
	}
}

// CacheStats reports the engine cache's fill level. Zero if caching is off.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.stats()
}
