package console

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/pantry-dev/pantry/internal/styles"
)

// ProgressBar renders a fetch-progress bar with a graceful text fallback
// for non-TTY environments (CI logs, --quiet, piped output).
type ProgressBar struct {
	progress progress.Model
	total    int64
}

// NewProgressBar creates a progress bar for a known total size in bytes.
func NewProgressBar(total int64) *ProgressBar {
	prog := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	prog.FullColor = string(styles.ColorSuccess.Dark)
	prog.EmptyColor = string(styles.ColorMuted.Dark)
	return &ProgressBar{progress: prog, total: total}
}

// Update returns the rendered progress line for the given byte count.
func (p *ProgressBar) Update(current int64) string {
	if p.total == 0 {
		if isStderrTTY() {
			return p.progress.ViewAs(1.0)
		}
		return "100% (0B/0B)"
	}

	percent := float64(current) / float64(p.total)
	if !isStderrTTY() {
		return fmt.Sprintf("%d%% (%s/%s)", int(percent*100), formatBytes(current), formatBytes(p.total))
	}
	return p.progress.ViewAs(percent)
}

func formatBytes(n int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case n < kb:
		return fmt.Sprintf("%dB", n)
	case n < mb:
		return fmt.Sprintf("%.1fKB", float64(n)/kb)
	case n < gb:
		return fmt.Sprintf("%.1fMB", float64(n)/mb)
	default:
		return fmt.Sprintf("%.2fGB", float64(n)/gb)
	}
}

// RenderSlot is the opaque inline-progress handle SingleInstaller
// receives (spec §4.3). Line records the worker index it was built for;
// it is not used for cursor positioning, and progress updates from
// concurrent workers are written to stderr without a shared lock, so
// they can overwrite or interleave with each other; Width is the available render width (golang.org/x/term,
// falling back to 80 when it cannot be determined); Enabled is false in
// quiet mode or when stderr is not a TTY, in which case the installer
// must write nothing.
type RenderSlot struct {
	Line    int
	Width   int
	Enabled bool
}

// NewRenderSlot builds a RenderSlot for worker index i, querying the terminal width once at spawn time.
func NewRenderSlot(i int, quiet bool) RenderSlot {
	return RenderSlot{
		Line:    i,
		Width:   terminalWidth(),
		Enabled: !quiet && isStderrTTY(),
	}
}
