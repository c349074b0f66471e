package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pantry-dev/pantry/internal/console"
	"github.com/pantry-dev/pantry/internal/constants"
	"github.com/pantry-dev/pantry/internal/install"
	"github.com/pantry-dev/pantry/internal/manifest"
	"github.com/pantry-dev/pantry/internal/model"
	"github.com/pantry-dev/pantry/internal/paths"
)

// NewInstallCommand creates the `pantry install` command (spec §6's
// `install [--production|--dev|--peer]` entry point).
func NewInstallCommand() *cobra.Command {
	var production, devOnly, includePeer bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install dependencies declared by the manifest in or above the current directory",
		Long: `Install resolves the project manifest, runs the concurrent install
batch, writes the deterministic lockfile, and reports a summary.

Examples:
  ` + constants.CLIName + ` install                 # install normal + dev deps
  ` + constants.CLIName + ` install --production    # skip dev deps
  ` + constants.CLIName + ` install --dev           # dev deps only
  ` + constants.CLIName + ` install --peer          # also install peer deps`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), install.FilterOptions{
				Production:  production,
				DevOnly:     devOnly,
				IncludePeer: includePeer,
			})
		},
	}

	cmd.Flags().BoolVar(&production, "production", false, "skip dev-type dependencies")
	cmd.Flags().BoolVar(&devOnly, "dev", false, "install only dev-type dependencies")
	cmd.Flags().BoolVar(&includePeer, "peer", false, "also install peer-type dependencies")

	return cmd
}

func runInstall(ctx context.Context, filter install.FilterOptions) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	detected, err := manifest.Find(cwd)
	if err != nil {
		return fmt.Errorf("searching for manifest: %w", err)
	}
	if detected == nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage("Error: no manifest found at or above "+cwd))
		os.Exit(1)
	}

	deps, err := manifest.Parse(detected.Path)
	if err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}

	filtered := deps[:0:0]
	for _, d := range deps {
		if filter.Includes(d.DepType) {
			filtered = append(filtered, d)
		}
	}

	projectDir := projectDirFromManifest(detected.Path)
	manifestContent, err := os.ReadFile(detected.Path)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	envDir, err := paths.EnvDir(projectDir, manifestContent)
	if err != nil {
		return fmt.Errorf("resolving env directory: %w", err)
	}

	collab, err := newCollaborators()
	if err != nil {
		return err
	}

	summary, err := install.RunBatch(ctx, install.EngineConfig{
		ProjectDir:      projectDir,
		ManifestPath:    detected.Path,
		ManifestContent: manifestContent,
		EnvDir:          envDir,
		StagingRoot:     collab.stagingRoot,
		Cache:           collab.cache,
		Registry:        collab.registry,
		HTTPFetcher:     collab.httpFetcher,
		GithubFetcher:   collab.githubFetcher,
		Quiet:           false,
	}, filtered)
	if err != nil {
		return fmt.Errorf("running install batch: %w", err)
	}

	if err := collab.cache.Persist(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage("failed to persist package cache: "+err.Error()))
	}

	printInstallSummary(summary, filtered)

	if summary.HasBatchFailure() {
		os.Exit(1)
	}
	return nil
}

// printInstallSummary builds a console.BatchSummary from the engine's
// Summary and prints it. deps must be the same, index-aligned slice
// RunBatch was given: a Failed Outcome carries no model.InstalledPackage,
// so the failing dep's name/version come from the manifest record, not
// the outcome.
func printInstallSummary(s install.Summary, deps []model.DependencyRecord) {
	// Summary.InstalledCount also counts cache hits, so the disjoint
	// installed/cached split is rebuilt from the outcomes.
	batch := console.BatchSummary{
		Skipped:  s.SkippedLocal,
		Failed:   s.FailedCount,
		Warnings: s.Warnings,
	}

	for i, o := range s.Results {
		switch {
		case o.Kind == install.Installed && !o.Package.FromCache:
			batch.Installed++
		case o.Kind == install.Installed || o.Kind == install.SkippedInProgress:
			batch.FromCache++
		}
		if o.Kind == install.Failed && o.Err != nil {
			batch.Failures = append(batch.Failures, console.FormatPackageFailure(deps[i].DisplayName(), deps[i].Version, o.Err.Error()))
		}
	}
	if s.LockfileWarn != nil {
		batch.Warnings = append(batch.Warnings, "lockfile not written: "+s.LockfileWarn.Error())
	}

	fmt.Fprint(os.Stdout, batch.Render())
	if !batch.HasFailures() {
		fmt.Fprintln(os.Stdout, console.FormatSuccessMessage("install complete"))
	}
}
