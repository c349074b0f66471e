// Package install implements pantry's concurrent installation pipeline
// (spec §4.3, §4.4): SingleInstaller materializes one PackageSpec into a
// target environment directory; InstallEngine orchestrates a whole
// batch. Grounded on the teacher's pkg/cli/logs.go
// downloadRunArtifactsConcurrent for the conc/pool worker-pool shape.
package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pantry-dev/pantry/internal/console"
	"github.com/pantry-dev/pantry/internal/model"
	"github.com/pantry-dev/pantry/internal/pantryerr"
	"github.com/pantry-dev/pantry/internal/pantrylog"
	"github.com/pantry-dev/pantry/internal/pkgcache"
	"github.com/pantry-dev/pantry/internal/registry"
)

var installLog = pantrylog.New("install:single")

// Options configures one SingleInstaller.install call (spec §4.3).
type Options struct {
	ProjectRoot    string // empty means "no project context"
	Quiet          bool
	InlineProgress *console.RenderSlot
}

// SingleInstaller installs one PackageSpec into a target env directory,
// consulting the PackageCache, invoking the registry+fetch collaborator,
// and materializing binaries. It shares a process-wide InstallingStack
// to break circular/duplicate transitive installs across workers (spec
// §4.3).
type SingleInstaller struct {
	EnvDir        string // target environment root (contains bin/)
	StagingRoot   string // scratch directory for fetch+extract, cleaned on exit
	Cache         *pkgcache.Cache
	Registry      registry.Registry
	HTTPFetcher   registry.Fetcher
	GithubFetcher registry.Fetcher
	Stack         *InstallingStack
}

// Install runs the spec §4.3 algorithm for one PackageSpec.
func (si *SingleInstaller) Install(ctx context.Context, spec model.PackageSpec, opts Options) Outcome {
	start := time.Now()

	// Step 1: local deps are finalized by InstallEngine via symlinks.
	if spec.Source == model.SourceLocal {
		return Outcome{Kind: SkippedLocal}
	}

	// Step 2: resolve metadata from the registry collaborator.
	resolved, err := si.resolve(spec)
	if err != nil {
		return Outcome{Kind: Failed, Err: err}
	}

	// Step 3/4: consult and mark the installing_stack.
	if si.Stack.CheckOrInsert(resolved.Name, resolved.Version) {
		installLog.Printf("%s@%s already in-progress elsewhere, short-circuiting", resolved.Name, resolved.Version)
		return Outcome{
			Kind: SkippedInProgress,
			Package: model.InstalledPackage{
				Name:            resolved.Name,
				ResolvedVersion: resolved.Version,
				FromCache:       true,
				InstallTimeMS:   0,
			},
		}
	}
	defer si.Stack.Remove(resolved.Name, resolved.Version)

	if !opts.Quiet && opts.InlineProgress != nil && opts.InlineProgress.Enabled {
		installLog.LazyPrintf(func() string { return fmt.Sprintf("installing %s@%s", resolved.Name, resolved.Version) })
	}

	// Step 5/6: consult PackageCache; on miss, fetch+extract then insert.
	cached, hit := si.Cache.Get(resolved.Name, resolved.Version)
	fromCache := hit
	if !hit {
		// Every temporary staging directory is removed on exit, success or
		// failure (spec §5: "resource scoping"); Cache.Insert below moves
		// it into permanent storage on success, so a lingering RemoveAll on
		// that path afterward is a harmless no-op.
		unpackedRoot, digest, err := si.materialize(ctx, spec, resolved, opts)
		if err != nil {
			return Outcome{Kind: Failed, Err: err}
		}
		defer os.RemoveAll(unpackedRoot)

		// spec.Checksum is the manifest-pinned expected digest (spec §3's
		// PackageSpec.Checksum expansion); an absent one skips verification
		// rather than failing, per SPEC_FULL.md §4.3.
		if spec.Checksum != "" && !strings.EqualFold(digest, spec.Checksum) {
			return Outcome{Kind: Failed, Err: &pantryerr.TransientIO{
				Op:  "checksum",
				Err: fmt.Errorf("%s@%s: got %s want %s", resolved.Name, resolved.Version, digest, spec.Checksum),
			}}
		}

		entry, err := si.Cache.Insert(resolved.Name, resolved.Version, unpackedRoot)
		if err != nil {
			return Outcome{Kind: Failed, Err: &pantryerr.TransientIO{Op: "write", Err: err}}
		}
		cached = pkgcache.Entry{Name: entry.Name, Version: entry.Version, Path: entry.Path, SizeBytes: entry.SizeBytes}
	}

	installPath, err := si.linkIntoEnv(resolved.Name, cached.Path)
	if err != nil {
		return Outcome{Kind: Failed, Err: &pantryerr.TransientIO{Op: "write", Err: err}}
	}

	return Outcome{
		Kind: Installed,
		Package: model.InstalledPackage{
			Name:            resolved.Name,
			ResolvedVersion: resolved.Version,
			InstallPath:     installPath,
			SizeBytes:       cached.SizeBytes,
			FromCache:       fromCache,
			InstallTimeMS:   time.Since(start).Milliseconds(),
		},
	}
}

// resolve implements step 2: registry lookup/resolve, or a synthesized
// github-source ResolvedPackage built straight from the spec.
func (si *SingleInstaller) resolve(spec model.PackageSpec) (model.ResolvedPackage, error) {
	if spec.Source == model.SourceGithub {
		return model.ResolvedPackage{
			Name:     spec.Name,
			Version:  spec.Version,
			FetchURL: registry.GithubLocator(spec),
		}, nil
	}
	return si.Registry.Resolve(spec)
}

// materialize implements step 6: fetch+extract into a fresh staging dir,
// returning the unpacked root and the fetched bytes' blake2b-256 digest.
// When inline progress is enabled, a console.ProgressBar is driven off
// the Fetcher's reported byte counts and rendered to stderr in place.
func (si *SingleInstaller) materialize(ctx context.Context, spec model.PackageSpec, resolved model.ResolvedPackage, opts Options) (string, string, error) {
	fetcher, err := registry.FetcherFor(spec.Source, si.HTTPFetcher, si.GithubFetcher)
	if err != nil {
		return "", "", &pantryerr.Invariant{Message: err.Error()}
	}

	stagingDir := filepath.Join(si.StagingRoot, fmt.Sprintf("%s-%s", resolved.Name, resolved.Version))

	var onProgress registry.ProgressFunc
	if opts.InlineProgress != nil && opts.InlineProgress.Enabled {
		var bar *console.ProgressBar
		onProgress = func(current, total int64) {
			if bar == nil {
				bar = console.NewProgressBar(total)
			}
			fmt.Fprintf(os.Stderr, "\r%s", bar.Update(current))
		}
	}

	unpackedRoot, digest, err := fetcher.Materialize(ctx, resolved, stagingDir, onProgress)
	if err != nil {
		os.RemoveAll(stagingDir)
		return "", "", err
	}
	return unpackedRoot, digest, nil
}

// linkIntoEnv links the cached package's tree into the env directory's
// per-package subtree and creates bin/ symlinks for any executables
// under <cached>/bin (spec §4.3 step 5: "link/copy ... populate bin/
// symlinks").
func (si *SingleInstaller) linkIntoEnv(name, cachedPath string) (string, error) {
	target := filepath.Join(si.EnvDir, "packages", name)
	if err := os.RemoveAll(target); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	if err := os.Symlink(cachedPath, target); err != nil {
		return "", err
	}

	binDir := filepath.Join(si.EnvDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return "", err
	}

	srcBin := filepath.Join(cachedPath, "bin")
	entries, err := os.ReadDir(srcBin)
	if err != nil {
		// Not every package tree has a bin/ subtree (e.g. a library).
		return target, nil
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		linkPath := filepath.Join(binDir, e.Name())
		os.Remove(linkPath)
		if err := os.Symlink(filepath.Join(srcBin, e.Name()), linkPath); err != nil {
			return "", err
		}
	}

	return target, nil
}
