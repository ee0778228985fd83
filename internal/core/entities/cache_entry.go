package entities

import "time"

// CacheEntry is a cached bundle together with the bookkeeping the two-tier
// cache uses to decide when to re-verify and when to evict.
type CacheEntry struct {
	Bundle       ComponentBundle
	CachedAt     time.Time
	LastVerified time.Time
	AccessCount  uint64
}

// NeedsVerification reports whether more than 24 hours have passed since
// this entry was last verified.
func (e CacheEntry) NeedsVerification(now time.Time) bool {
	if e.LastVerified.IsZero() {
		return true
	}
	return now.Sub(e.LastVerified) > 24*time.Hour
}

// CacheStats summarizes the cache's contents for diagnostics and the
// `rustgen cache stats` subcommand.
type CacheStats struct {
	ComponentCount    int
	TotalAccessCount  uint64
	OldestCachedAt    time.Time
	NewestCachedAt    time.Time
	CacheDir          string
}
