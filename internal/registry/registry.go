// Package registry implements pantry's bundled, concrete stand-ins for
// the "Package registry" and "Fetch+extract" collaborators spec.md §6
// leaves external. SingleInstaller depends only on the Registry and
// Fetcher interfaces below; the concrete implementations here (a small
// built-in table, an HTTP+archive fetcher, and a GitHub-repository
// fetcher) are swappable and intentionally thin.
package registry

import (
	"context"
	"fmt"

	"github.com/pantry-dev/pantry/internal/model"
)

// Registry resolves a package name to metadata and, given a concrete
// spec, to a fetchable location (spec §6: lookup/resolve).
type Registry interface {
	Lookup(name string) (model.PackageRecord, bool)
	Resolve(spec model.PackageSpec) (model.ResolvedPackage, error)
}

// ProgressFunc reports cumulative bytes read against a known total (0 if
// unknown) as a Fetcher streams a download in. A nil ProgressFunc means
// the caller wants no progress reporting (quiet mode, non-TTY, or a
// concurrent worker that doesn't own a terminal line).
type ProgressFunc func(current, total int64)

// Fetcher materializes a resolved package into a staging directory,
// returning the unpacked tree's root and the blake2b-256 hex digest of
// the fetched bytes (spec §6: materialize; SPEC_FULL.md §3's
// PackageSpec.Checksum is verified against this digest by
// SingleInstaller, not by the Fetcher itself).
type Fetcher interface {
	Materialize(ctx context.Context, resolved model.ResolvedPackage, stagingDir string, onProgress ProgressFunc) (unpackedRoot string, digestHex string, err error)
}

// FetcherFor selects the Fetcher appropriate for a PackageSpec's source.
// Local specs never reach a Fetcher (SingleInstaller short-circuits them
// per spec §4.3 step 1).
func FetcherFor(source model.Source, httpFetcher, githubFetcher Fetcher) (Fetcher, error) {
	switch source {
	case model.SourceGithub:
		return githubFetcher, nil
	case model.SourceRegistry, model.SourceNPM, model.SourceHTTP, model.SourceGit:
		return httpFetcher, nil
	default:
		return nil, fmt.Errorf("no fetcher for source %q", source)
	}
}
