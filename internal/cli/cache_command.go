package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pantry-dev/pantry/internal/console"
	"github.com/pantry-dev/pantry/internal/paths"
	"github.com/pantry-dev/pantry/internal/pkgcache"
)

// NewCacheCommand creates the `pantry cache` command group: `stats` and
// `verify` (SPEC_FULL.md's expansion of the distilled spec's PackageCache
// into a user-facing diagnostic surface).
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the content-addressed package cache",
	}
	cmd.AddCommand(newCacheStatsCommand())
	cmd.AddCommand(newCacheVerifyCommand())
	return cmd
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show package cache entry count and total size",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openPackageCache()
			if err != nil {
				return err
			}
			stats := c.Stats()
			fmt.Fprintln(os.Stdout, console.FormatCountMessage(
				fmt.Sprintf("%d cached packages, %d bytes total", stats.EntryCount, stats.TotalBytes)))
			return nil
		},
	}
}

func newCacheVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Recompute each cached package's digest and report mismatches",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openPackageCache()
			if err != nil {
				return err
			}
			corrupted, err := c.Verify()
			if err != nil {
				return fmt.Errorf("verifying package cache: %w", err)
			}
			if len(corrupted) == 0 {
				fmt.Fprintln(os.Stdout, console.FormatSuccessMessage("all cached packages match their recorded digest"))
				return nil
			}
			for _, key := range corrupted {
				fmt.Fprintln(os.Stdout, console.FormatErrorMessage("Error: digest mismatch for "+key))
			}
			os.Exit(1)
			return nil
		},
	}
}

func openPackageCache() (*pkgcache.Cache, error) {
	cacheRoot, err := paths.CacheRoot()
	if err != nil {
		return nil, fmt.Errorf("resolving cache root: %w", err)
	}
	return pkgcache.Open(cacheRoot)
}
