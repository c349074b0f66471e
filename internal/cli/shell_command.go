package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pantry-dev/pantry/internal/activate"
)

// NewShellLookupCommand creates `pantry shell:lookup <dir>` (also
// reachable as `pantry-hook lookup <dir>`): the shell hook's fast-path
// entry point, spec §4.6 `lookup(cwd)`.
func NewShellLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell:lookup <dir>",
		Short: "Fast-path env lookup consumed by the shell hook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(RunShellLookup(args[0]))
			return nil
		},
	}
}

// NewShellActivateCommand creates `pantry shell:activate <dir>` (also
// reachable as `pantry-hook activate <dir>`): spec §4.6 `activate(cwd)`.
func NewShellActivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell:activate <dir>",
		Short: "Cold/warm activation consumed by the shell hook; emits eval-safe shell code on stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(RunShellActivate(cmd.Context(), args[0]))
			return nil
		},
	}
}

// RunShellLookup and RunShellActivate are exported so cmd/pantry-hook's
// thin main.go can call them directly without going through cobra, per
// SPEC_FULL.md's "smaller binary to exec on every prompt" rationale.

func RunShellLookup(dir string) int {
	a, err := newActivator()
	if err != nil {
		return 1
	}
	return a.Lookup(dir)
}

func RunShellActivate(ctx context.Context, dir string) int {
	a, err := newActivator()
	if err != nil {
		return 1
	}
	return a.Activate(ctx, dir)
}

func newActivator() (*activate.Activator, error) {
	collab, err := newCollaborators()
	if err != nil {
		return nil, err
	}
	return &activate.Activator{
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Cache:         collab.cache,
		Registry:      collab.registry,
		HTTPFetcher:   collab.httpFetcher,
		GithubFetcher: collab.githubFetcher,
		StagingRoot:   collab.stagingRoot,
	}, nil
}
