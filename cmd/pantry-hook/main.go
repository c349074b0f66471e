// Command pantry-hook is the binary a shell's chpwd/PROMPT_COMMAND hook
// execs on every prompt. It is a thin wrapper around the same
// internal/activate package pantry's `shell:lookup`/`shell:activate`
// subcommands use, kept separate from cmd/pantry so the hot path exec's
// a smaller binary (SPEC_FULL.md §6 expansion; mirrors the teacher's
// multiple cmd/ entries such as cmd/gh-aw, cmd/awmg, cmd/bundle-js).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pantry-dev/pantry/internal/cli"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: pantry-hook <lookup|activate> <dir>")
		os.Exit(1)
	}

	mode, dir := os.Args[1], os.Args[2]

	switch mode {
	case "lookup":
		os.Exit(cli.RunShellLookup(dir))
	case "activate":
		os.Exit(cli.RunShellActivate(context.Background(), dir))
	default:
		fmt.Fprintf(os.Stderr, "unknown pantry-hook mode %q\n", mode)
		os.Exit(1)
	}
}
