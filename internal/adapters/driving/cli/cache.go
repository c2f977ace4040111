package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached answer",
	Long: `Removes every distilled answer from the response cache. With the
sqlite backend this clears the persistent cache database.`,
	Args: cobra.NoArgs,
	RunE: runCacheClear,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number of cached answers",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	if a.Cache == nil {
		return errors.New("response cache not configured")
	}

	n, err := a.Cache.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	cmd.Printf("Cleared %d cached %s.\n", n, plural(n, "answer", "answers"))
	return nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	if a.Cache == nil {
		return errors.New("response cache not configured")
	}

	n, err := a.Cache.Len(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	cmd.Printf("Backend: %s\n", a.Settings.Distill.CacheBackend)
	cmd.Printf("TTL: %s\n", a.Settings.Distill.CacheTTL)
	cmd.Printf("Entries: %d\n", n)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
