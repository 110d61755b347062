package recurrence

import (
	"time"
)

// EngineConfig holds tuning options for the expansion engine.
type EngineConfig struct {
	// CacheEnabled turns on memoization of Expand results.
	CacheEnabled bool
	Cache        CacheConfig

	// MaxOccurrences caps a single expansion. It is the safety net for
	// open-ended rules over very large windows; 0 means no cap.
	MaxOccurrences int
}

// DefaultEngineConfig suits the nightly re-sync jobs the library was built
// for: windows of a year or two, series of at most a few hundred sessions.
var DefaultEngineConfig = EngineConfig{
	CacheEnabled:   true,
	Cache:          DefaultCacheConfig,
	MaxOccurrences: 1000,
}

// NoCacheConfig disables memoization; useful in tests and one-shot tools.
var NoCacheConfig = EngineConfig{
	CacheEnabled:   false,
	MaxOccurrences: 1000,
}

// BulkImportConfig is tuned for importing many series in one run, where the
// same rule is rarely expanded twice but runs can be long.
var BulkImportConfig = EngineConfig{
	CacheEnabled: true,
	Cache: CacheConfig{
		TTL:             time.Hour,
		MaxEntries:      100,
		CleanupInterval: 10 * time.Minute,
	},
	MaxOccurrences: 5000,
}
