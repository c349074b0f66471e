package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pantry-dev/pantry/internal/cli"
	"github.com/pantry-dev/pantry/internal/console"
	"github.com/pantry-dev/pantry/internal/constants"
)

// Build-time version, set by the release pipeline.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     constants.CLIName,
	Short:   "pantry: project-scoped developer dependency manager",
	Version: version,
	Long: `pantry installs developer tools into a project-scoped environment,
content-addressed and cached once per machine.

Common Tasks:
  pantry install                install deps from the manifest above cwd
  pantry clean --cache           clear the package cache
  pantry cache stats             show cache size
  pantry shell:activate .        what the shell hook runs on every prompt`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.SetOut(os.Stderr)
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s\n", console.FormatInfoMessage(fmt.Sprintf("%s version {{.Version}}", constants.CLIName))))

	rootCmd.AddCommand(cli.NewInstallCommand())
	rootCmd.AddCommand(cli.NewCleanCommand())
	rootCmd.AddCommand(cli.NewCacheCommand())
	rootCmd.AddCommand(cli.NewEnvLookupCommand())
	rootCmd.AddCommand(cli.NewEnvRemoveCommand())
	rootCmd.AddCommand(cli.NewShellLookupCommand())
	rootCmd.AddCommand(cli.NewShellActivateCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
