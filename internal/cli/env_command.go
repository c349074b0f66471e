package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pantry-dev/pantry/internal/console"
	"github.com/pantry-dev/pantry/internal/constants"
	"github.com/pantry-dev/pantry/internal/envcache"
	"github.com/pantry-dev/pantry/internal/fingerprint"
	"github.com/pantry-dev/pantry/internal/manifest"
	"github.com/pantry-dev/pantry/internal/pantryerr"
	"github.com/pantry-dev/pantry/internal/paths"
)

// NewEnvLookupCommand creates `pantry env:lookup <dir>` (spec §6: emits
// "<env_bin_dir>|<manifest_path>\n" on a hit, nothing on a miss).
func NewEnvLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env:lookup <dir>",
		Short: "Look up the cached env bin directory for the manifest above <dir>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(runEnvLookup(args[0]))
			return nil
		},
	}
}

func runEnvLookup(dir string) int {
	detected, err := manifest.Find(dir)
	if err != nil || detected == nil {
		return 1
	}

	envCachePath, err := paths.EnvCacheFile()
	if err != nil {
		return 1
	}
	ec, err := envcache.Load(envCachePath)
	if err != nil {
		return 1
	}

	hashBytes := fingerprint.PathHash(detected.Path)
	hash := fmt.Sprintf("%x", hashBytes)
	entry, ok := ec.Get(hash)
	if !ok {
		return 1
	}

	fmt.Fprintf(os.Stdout, "%s|%s\n", entry.Path, detected.Path)
	return 0
}

// NewEnvRemoveCommand creates `pantry env:remove <hash32>` (spec §8:
// rejects a hash string that is not exactly 32 hex characters before any
// filesystem access).
func NewEnvRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env:remove <hash32>",
		Short: "Remove a single env-cache entry by its 32-hex-character fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvRemove(args[0])
		},
	}
}

func runEnvRemove(hash string) error {
	if len(hash) != constants.FullHashHexLen || !isHex(hash) {
		err := &pantryerr.Invariant{Message: fmt.Sprintf("invalid hash %q: must be %d hex characters", hash, constants.FullHashHexLen)}
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage("Error: "+err.Error()))
		os.Exit(1)
	}

	envCachePath, err := paths.EnvCacheFile()
	if err != nil {
		return err
	}
	ec, err := envcache.Load(envCachePath)
	if err != nil {
		return err
	}
	ec.Remove(hash)
	if err := ec.Persist(); err != nil {
		return fmt.Errorf("persisting env cache: %w", err)
	}

	fmt.Fprintln(os.Stdout, console.FormatSuccessMessage("removed env-cache entry "+hash))
	return nil
}

func isHex(s string) bool {
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}
