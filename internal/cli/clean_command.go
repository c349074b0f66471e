package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pantry-dev/pantry/internal/console"
	"github.com/pantry-dev/pantry/internal/constants"
	"github.com/pantry-dev/pantry/internal/envcache"
	"github.com/pantry-dev/pantry/internal/manifest"
	"github.com/pantry-dev/pantry/internal/paths"
	"github.com/pantry-dev/pantry/internal/pkgcache"
)

// NewCleanCommand creates the `pantry clean [--local|--global|--cache]`
// command (spec §6). With no flag, all three scopes are cleaned.
func NewCleanCommand() *cobra.Command {
	var local, global, cache, yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove installed state: project-local, global envs, or the package cache",
		Long: `Clean removes on-disk state the current project or machine has
accumulated.

Examples:
  ` + constants.CLIName + ` clean --local     # remove this project's pantry_modules and lockfile
  ` + constants.CLIName + ` clean --global    # remove every cached env directory and the env cache
  ` + constants.CLIName + ` clean --cache     # clear the content-addressed package cache
  ` + constants.CLIName + ` clean             # all three scopes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !local && !global && !cache {
				local, global, cache = true, true, true
			}
			if !yes {
				confirmed, err := console.ConfirmAction("Remove the selected pantry state? This cannot be undone.", "Yes, clean it", "No, cancel")
				if err != nil {
					return fmt.Errorf("confirming clean: %w", err)
				}
				if !confirmed {
					fmt.Fprintln(os.Stdout, console.FormatInfoMessage("clean cancelled"))
					return nil
				}
			}
			return runClean(local, global, cache)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "remove this project's pantry_modules and lockfile")
	cmd.Flags().BoolVar(&global, "global", false, "remove every env directory and the env cache")
	cmd.Flags().BoolVar(&cache, "cache", false, "clear the content-addressed package cache")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the interactive confirmation")

	return cmd
}

func runClean(local, global, cache bool) error {
	if local {
		if err := cleanLocal(); err != nil {
			return fmt.Errorf("cleaning local state: %w", err)
		}
		fmt.Fprintln(os.Stdout, console.FormatSuccessMessage("removed project-local state"))
	}

	if global {
		if err := cleanGlobal(); err != nil {
			return fmt.Errorf("cleaning global state: %w", err)
		}
		fmt.Fprintln(os.Stdout, console.FormatSuccessMessage("removed all env directories and the env cache"))
	}

	if cache {
		if err := cleanCache(); err != nil {
			return fmt.Errorf("cleaning package cache: %w", err)
		}
		fmt.Fprintln(os.Stdout, console.FormatSuccessMessage("cleared the package cache"))
	}

	return nil
}

func cleanLocal() error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	detected, err := manifest.Find(cwd)
	if err != nil {
		return err
	}
	if detected == nil {
		return nil
	}
	projectDir := projectDirFromManifest(detected.Path)

	if err := os.RemoveAll(paths.LocalModulesDir(projectDir)); err != nil {
		return err
	}
	if err := os.Remove(paths.LockfilePath(projectDir)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func cleanGlobal() error {
	envsRoot, err := paths.EnvsRoot()
	if err != nil {
		return err
	}
	if err := os.RemoveAll(envsRoot); err != nil {
		return err
	}

	envCachePath, err := paths.EnvCacheFile()
	if err != nil {
		return err
	}
	ec, err := envcache.Load(envCachePath)
	if err != nil {
		return err
	}
	ec.Clear()
	return ec.Persist()
}

func cleanCache() error {
	cacheRoot, err := paths.CacheRoot()
	if err != nil {
		return err
	}
	c, err := pkgcache.Open(cacheRoot)
	if err != nil {
		return err
	}
	return c.Clear()
}
