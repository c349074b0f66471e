package install

import "github.com/pantry-dev/pantry/internal/model"

// Kind enumerates SingleInstaller's result variants (spec §9): a sum
// type replacing the source's sentinel-empty-string pattern for
// "skipped here; handle elsewhere".
type Kind int

const (
	Installed Kind = iota
	SkippedLocal
	SkippedInProgress
	Failed
)

func (k Kind) String() string {
	switch k {
	case Installed:
		return "installed"
	case SkippedLocal:
		return "skipped-local"
	case SkippedInProgress:
		return "skipped-in-progress"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is SingleInstaller's full result: the Kind plus whichever
// payload applies. Package is populated for Installed and
// SkippedInProgress (the latter as a from-cache placeholder per spec
// §4.3 step 3); Err is populated for Failed.
type Outcome struct {
	Kind    Kind
	Package model.InstalledPackage
	Err     error
}
