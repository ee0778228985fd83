package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustgen-dev/rustgen/internal/adapters/cache"
	"github.com/rustgen-dev/rustgen/internal/adapters/integrity"
)

var (
	cacheCleanupMaxAge    time.Duration
	cacheCleanupMinAccess uint64
)

var cacheCmd = &cobra.Command{
	Use:     "cache",
	GroupID: "inspection",
	Short:   "Inspect and manage the local component cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate cache statistics",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the entire component cache",
	RunE:  runCacheClear,
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Evict stale, rarely-used cache entries",
	Long: `cleanup removes cache entries older than --max-age that have been
accessed fewer than --min-access times, from memory and from disk. Only
entries loaded into this process's memory tier are examined; entries that
exist only on disk are not, so a fresh cleanup invocation removes nothing.`,
	RunE: runCacheCleanup,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	rootCmd.AddCommand(cacheCmd)

	cacheCleanupCmd.Flags().DurationVar(&cacheCleanupMaxAge, "max-age", 24*time.Hour, "minimum age of an entry to be eligible for cleanup")
	cacheCleanupCmd.Flags().Uint64Var(&cacheCleanupMinAccess, "min-access", 1, "entries accessed at least this many times are kept regardless of age")
}

func newCache(cmd *cobra.Command) (*cache.Cache, error) {
	hostCfg, err := resolveHostConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cache.New(hostCfg.CacheDir, integrity.NewVerifier()), nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := newCache(cmd)
	if err != nil {
		return err
	}
	stats, err := c.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("cache directory: %s\n", stats.CacheDir)
	fmt.Printf("components:      %d\n", stats.ComponentCount)
	fmt.Printf("total accesses:  %d\n", stats.TotalAccessCount)
	if stats.ComponentCount > 0 {
		fmt.Printf("oldest entry:    %s\n", stats.OldestCachedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("newest entry:    %s\n", stats.NewestCachedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := newCache(cmd)
	if err != nil {
		return err
	}
	if err := c.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("cache cleared")
	return nil
}

func runCacheCleanup(cmd *cobra.Command, args []string) error {
	c, err := newCache(cmd)
	if err != nil {
		return err
	}
	removed, err := c.Cleanup(cmd.Context(), cacheCleanupMaxAge, cacheCleanupMinAccess)
	if err != nil {
		return err
	}
	fmt.Printf("removed %d stale entries\n", removed)
	return nil
}
