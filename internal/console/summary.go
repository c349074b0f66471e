package console

import (
	"fmt"
	"strings"
)

// BatchSummary renders an install batch's outcome counts, mirroring the
// teacher's validation-summary renderer: a one-line count banner plus an
// itemized section per failure, written to stdout by the CLI layer.
type BatchSummary struct {
	Installed int
	FromCache int
	Skipped   int
	Failed    int
	Warnings  []string
	Failures  []string // already-formatted "<pkg>@<version> (<reason>)" lines
}

// Render produces the human-readable summary block.
func (s BatchSummary) Render() string {
	var b strings.Builder

	total := s.Installed + s.FromCache + s.Skipped + s.Failed
	b.WriteString(FormatCountMessage(fmt.Sprintf(
		"%d package(s): %d installed, %d cached, %d skipped, %d failed",
		total, s.Installed, s.FromCache, s.Skipped, s.Failed)))
	b.WriteString("\n")

	for _, w := range s.Warnings {
		b.WriteString(FormatWarningMessage(w))
		b.WriteString("\n")
	}
	for _, f := range s.Failures {
		b.WriteString(f)
		b.WriteString("\n")
	}

	return b.String()
}

// HasFailures reports whether any package failed outright.
func (s BatchSummary) HasFailures() bool { return s.Failed > 0 }

// AnySucceeded reports whether at least one package installed (fresh or
// from cache) or was a local dep symlink.
func (s BatchSummary) AnySucceeded() bool {
	return s.Installed > 0 || s.FromCache > 0 || s.Skipped > 0
}
