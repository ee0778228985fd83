// Package cache implements the two-tier (memory + disk) component cache:
// an in-memory map backed by an on-disk mirror, with periodic
// re-verification of entries older than 24 hours.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.ComponentCache = (*Cache)(nil)

// Cache is a memory-first, disk-backed ComponentCache. The memory map is
// authoritative while the process is alive; the disk mirror lets a cold
// start recover previously fetched bundles without re-fetching.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entities.CacheEntry
	disk     diskStore
	verifier usecases.IntegrityVerifier

	// now is swappable in tests; defaults to time.Now.
	now func() time.Time
}

// New constructs a Cache. dir is the on-disk root (see
// entities.XDGPaths.ComponentCacheDir, overridable via RUSTGEN_CACHE_DIR);
// an empty dir disables disk persistence and the cache holds entries in
// memory only for the lifetime of the process. verifier is used to
// re-check a bundle's digest once an entry is more than 24 hours old.
func New(dir string, verifier usecases.IntegrityVerifier) *Cache {
	return &Cache{
		entries:  make(map[string]entities.CacheEntry),
		disk:     newDiskStore(dir),
		verifier: verifier,
		now:      time.Now,
	}
}

// Get returns a cached bundle if present. An entry due for re-verification
// (more than 24h since last verified) is re-hashed against its own
// recorded digest; a mismatch evicts the entry and reports a miss rather
// than an error, since a tampered cache entry is not a usage error, only a
// forced re-fetch.
func (c *Cache) Get(ctx context.Context, key string) (entities.ComponentBundle, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		diskEntry, found, err := c.disk.load(key)
		if err != nil {
			return entities.ComponentBundle{}, false, err
		}
		if !found {
			return entities.ComponentBundle{}, false, nil
		}
		entry = diskEntry
	}

	now := c.now()
	if entry.NeedsVerification(now) {
		if err := c.verifier.Verify(entry.Bundle, entry.Bundle.Digest); err != nil {
			delete(c.entries, key)
			_ = c.disk.remove(key)
			return entities.ComponentBundle{}, false, nil
		}
		entry.LastVerified = now
	}

	entry.AccessCount++
	c.entries[key] = entry
	_ = c.disk.save(key, entry)

	return entry.Bundle, true, nil
}

// Store records bundle as freshly fetched and verified.
func (c *Cache) Store(ctx context.Context, key string, bundle entities.ComponentBundle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry := entities.CacheEntry{
		Bundle:       bundle,
		CachedAt:     now,
		LastVerified: now,
		AccessCount:  0,
	}
	c.entries[key] = entry
	return c.disk.save(key, entry)
}

// Invalidate evicts a single entry from both tiers.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return c.disk.remove(key)
}

// Clear empties the entire cache.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entities.CacheEntry)
	return c.disk.clear()
}

// Cleanup evicts entries older than maxAge with fewer than minAccessCount
// accesses, returning the number removed. Only entries held in the memory
// tier are examined; entries present only on disk are not.
func (c *Cache) Cleanup(ctx context.Context, maxAge time.Duration, minAccessCount uint64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.CachedAt) > maxAge && entry.AccessCount < minAccessCount {
			delete(c.entries, key)
			if err := c.disk.remove(key); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

// Stats reports aggregate cache statistics across the in-memory entries.
func (c *Cache) Stats(ctx context.Context) (entities.CacheStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := entities.CacheStats{CacheDir: c.disk.baseDir}
	for _, entry := range c.entries {
		stats.ComponentCount++
		stats.TotalAccessCount += entry.AccessCount
		if stats.OldestCachedAt.IsZero() || entry.CachedAt.Before(stats.OldestCachedAt) {
			stats.OldestCachedAt = entry.CachedAt
		}
		if entry.CachedAt.After(stats.NewestCachedAt) {
			stats.NewestCachedAt = entry.CachedAt
		}
	}
	return stats, nil
}
