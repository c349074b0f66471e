package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/pantry-dev/pantry/internal/console"
	"github.com/pantry-dev/pantry/internal/constants"
	"github.com/pantry-dev/pantry/internal/lockfile"
	"github.com/pantry-dev/pantry/internal/mathutil"
	"github.com/pantry-dev/pantry/internal/model"
	"github.com/pantry-dev/pantry/internal/pantrylog"
	"github.com/pantry-dev/pantry/internal/pkgcache"
	"github.com/pantry-dev/pantry/internal/registry"
)

var engineLog = pantrylog.New("install:engine")

// FilterOptions selects which DepTypes a batch installs (spec §4.4's
// filter table).
type FilterOptions struct {
	Production bool // include normal; exclude dev; peer only if IncludePeer
	DevOnly    bool // include dev only
	IncludePeer bool
}

// Includes reports whether a dependency of dt should be installed under
// these filter options.
func (f FilterOptions) Includes(dt model.DepType) bool {
	switch dt {
	case model.DepPeer:
		return f.IncludePeer
	case model.DepDev:
		return !f.Production
	default: // DepNormal
		return !f.DevOnly
	}
}

// EngineConfig bundles the collaborators InstallEngine needs to run one
// batch (spec §4.4).
type EngineConfig struct {
	ProjectDir      string
	ManifestPath    string
	ManifestContent []byte
	EnvDir          string
	StagingRoot     string
	Cache           *pkgcache.Cache
	Registry        registry.Registry
	HTTPFetcher     registry.Fetcher
	GithubFetcher   registry.Fetcher
	Quiet           bool
}

// Summary is the batch's final, caller-facing report (spec §4.4 step 9,
// §7).
type Summary struct {
	Results             []Outcome
	InstalledCount      int
	FromCacheCount      int
	SkippedLocal        int
	FailedCount         int // all failures, registry or local (spec §8: "failure count of 1" for a missing local target)
	RegistryFailedCount int // failures among registry deps only
	Warnings            []string
	LockfileWarn        error // non-nil if the `.freezer` rename failed (spec §9 Q2: a warning, not a failure)
}

// HasBatchFailure reports whether any *registry* dep failed outright —
// the only condition that makes the batch's exit code non-zero (spec
// §4.4 step 9: "local warnings do not set a non-zero code").
func (s Summary) HasBatchFailure() bool { return s.RegistryFailedCount > 0 }

// AnySucceeded reports whether at least one dependency installed or was
// served from cache — the Activator's PATH-emission gate (spec §7: "does
// emit PATH if at least one symlink was installed").
func (s Summary) AnySucceeded() bool {
	return s.InstalledCount > 0 || s.FromCacheCount > 0
}

// RunBatch executes the full InstallEngine algorithm (spec §4.4 steps
// 1-9) over deps, already filtered by the caller per FilterOptions.
func RunBatch(ctx context.Context, cfg EngineConfig, deps []model.DependencyRecord) (Summary, error) {
	// Step 1: ensure env_dir and env_dir/bin exist.
	if err := os.MkdirAll(filepath.Join(cfg.EnvDir, "bin"), 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating env directory: %w", err)
	}

	// Step 2: partition local vs. registry deps, remembering original
	// indices so results land in manifest order (spec §5's ordering
	// guarantee).
	type indexed struct {
		idx int
		dep model.DependencyRecord
	}
	var localDeps, registryDeps []indexed
	for i, d := range deps {
		if d.IsLocal() {
			localDeps = append(localDeps, indexed{i, d})
		} else {
			registryDeps = append(registryDeps, indexed{i, d})
		}
	}

	// Step 3: results array sized to deps, pre-filled with failure
	// sentinels so any bug that leaves a slot untouched is conspicuous.
	results := make([]Outcome, len(deps))
	for i := range results {
		results[i] = Outcome{Kind: Failed, Err: fmt.Errorf("slot not populated")}
	}

	stack := NewInstallingStack()

	runOne := func(idx int, dep model.DependencyRecord, slot console.RenderSlot) Outcome {
		si := &SingleInstaller{
			EnvDir:        cfg.EnvDir,
			StagingRoot:   cfg.StagingRoot,
			Cache:         cfg.Cache,
			Registry:      cfg.Registry,
			HTTPFetcher:   cfg.HTTPFetcher,
			GithubFetcher: cfg.GithubFetcher,
			Stack:         stack,
		}
		outcome := si.Install(ctx, dep.ToPackageSpec(), Options{
			ProjectRoot:    cfg.ProjectDir,
			Quiet:          cfg.Quiet,
			InlineProgress: &slot,
		})
		if outcome.Kind == Failed {
			engineLog.Printf("install failed for %s: %v", dep.DisplayName(), outcome.Err)
		}
		return outcome
	}

	// Steps 4-5: sequential for <=1 registry dep, else a capped worker
	// pool (sourcegraph/conc, mirroring the teacher's
	// downloadRunArtifactsConcurrent). The sequential path drives a single
	// console.Spinner (matching the teacher's own single-spinner model,
	// never a concurrent one); the pooled path has no single terminal
	// line to own, so it relies on RenderSlot-gated log lines instead.
	if len(registryDeps) <= 1 {
		for _, item := range registryDeps {
			slot := console.NewRenderSlot(0, cfg.Quiet)

			var spin *console.Spinner
			if slot.Enabled {
				spin = console.NewSpinner(fmt.Sprintf("installing %s", item.dep.DisplayName()))
				spin.Start()
			}

			outcome := runOne(item.idx, item.dep, slot)

			if spin != nil {
				if outcome.Kind == Failed {
					spin.StopWithMessage(console.FormatPackageFailure(item.dep.DisplayName(), item.dep.Version, outcome.Err.Error()))
				} else {
					spin.StopWithMessage(console.FormatSuccessMessage(item.dep.DisplayName() + " installed"))
				}
			}

			results[item.idx] = outcome
		}
	} else {
		workerCap := mathutil.Min(len(registryDeps), constants.MaxInstallWorkers)
		p := pool.New().WithMaxGoroutines(workerCap)
		for workerIdx, item := range registryDeps {
			item := item
			slot := console.NewRenderSlot(workerIdx, cfg.Quiet)
			p.Go(func() {
				results[item.idx] = runOne(item.idx, item.dep, slot)
			})
		}
		p.Wait()
	}

	// Step 6: finalize local deps serially via symlinks.
	var warnings []string
	for _, item := range localDeps {
		outcome, warn := finalizeLocalDep(cfg.ProjectDir, cfg.EnvDir, item.dep)
		results[item.idx] = outcome
		if warn != "" {
			warnings = append(warnings, warn)
		}
	}

	// Step 7: build the Lockfile in manifest order.
	lf := lockfile.New()
	for i, dep := range deps {
		outcome := results[i]
		spec := dep.ToPackageSpec()

		version := spec.Version
		if outcome.Kind == Installed || outcome.Kind == SkippedInProgress {
			if outcome.Package.ResolvedVersion != "" {
				version = outcome.Package.ResolvedVersion
			}
		}
		if outcome.Kind == Failed {
			continue
		}

		source := lockfile.SourceTag(dep.Name, dep.Version, spec.Source == model.SourceGithub)
		entry := lockfile.Entry{
			Name:            dep.DisplayName(),
			ResolvedVersion: version,
			Source:          source,
		}
		if source == "local" {
			entry.URL = dep.Version
		}

		key := lockfile.Key(entry.Name, entry.ResolvedVersion)
		if err := lf.AddEntry(key, entry); err != nil {
			engineLog.Printf("skipping duplicate lockfile entry %s: %v", key, err)
		}
	}

	// Step 8: write atomically; a rename failure is a warning (spec §9 Q2).
	var lockfileWarn error
	if err := lf.Write(filepath.Join(cfg.ProjectDir, constants.LockfileName)); err != nil {
		lockfileWarn = err
		warnings = append(warnings, fmt.Sprintf("writing lockfile: %v", err))
	}

	// Step 9: summarize. Local-dep failures count toward FailedCount (spec
	// §8: "failure count of 1") but never toward RegistryFailedCount, which
	// is the sole gate for HasBatchFailure (spec §4.4 step 9: "local
	// warnings do not set a non-zero code").
	localIdx := make(map[int]bool, len(localDeps))
	for _, item := range localDeps {
		localIdx[item.idx] = true
	}

	summary := Summary{Results: results, Warnings: warnings, LockfileWarn: lockfileWarn}
	for i, o := range results {
		switch o.Kind {
		case Installed:
			summary.InstalledCount++
			if o.Package.FromCache {
				summary.FromCacheCount++
			}
		case SkippedInProgress:
			summary.FromCacheCount++
		case SkippedLocal:
			summary.SkippedLocal++
		case Failed:
			summary.FailedCount++
			if !localIdx[i] {
				summary.RegistryFailedCount++
			}
		}
	}

	return summary, nil
}

// finalizeLocalDep implements spec §4.4 step 6: resolve the local dep's
// on-disk target, then create the project-modules symlink and the env
// bin/ symlink. A missing target yields a warning and counts toward
// FailedCount, but never toward RegistryFailedCount (spec §8 vs. §4.4
// step 9 — see DESIGN.md).
func finalizeLocalDep(projectDir, envDir string, dep model.DependencyRecord) (Outcome, string) {
	name := dep.DisplayName()

	target := dep.Version
	switch {
	case strings.HasPrefix(target, "~/"):
		home, err := os.UserHomeDir()
		if err == nil {
			target = filepath.Join(home, strings.TrimPrefix(target, "~/"))
		}
	case !filepath.IsAbs(target):
		target = filepath.Join(projectDir, target)
	}
	target = filepath.Clean(target)

	if _, err := os.Stat(target); err != nil {
		warning := fmt.Sprintf("%s (local target %s not found)", name, target)
		return Outcome{Kind: Failed, Err: fmt.Errorf("local target not found: %s", target)}, warning
	}

	modulesDir := filepath.Join(projectDir, constants.LocalModulesDirName, name)
	if err := os.MkdirAll(modulesDir, 0o755); err != nil {
		return Outcome{Kind: Failed, Err: err}, fmt.Sprintf("%s (creating pantry_modules dir: %v)", name, err)
	}
	srcLink := filepath.Join(modulesDir, "src")
	os.Remove(srcLink)
	if err := os.Symlink(filepath.Join(target, "src"), srcLink); err != nil {
		return Outcome{Kind: Failed, Err: err}, fmt.Sprintf("%s (symlinking src: %v)", name, err)
	}

	if err := os.MkdirAll(filepath.Join(envDir, "bin"), 0o755); err != nil {
		return Outcome{Kind: Failed, Err: err}, fmt.Sprintf("%s (creating env bin dir: %v)", name, err)
	}
	binLink := filepath.Join(envDir, "bin", name)
	os.Remove(binLink)
	if err := os.Symlink(target, binLink); err != nil {
		return Outcome{Kind: Failed, Err: err}, fmt.Sprintf("%s (symlinking bin: %v)", name, err)
	}

	return Outcome{
		Kind: Installed,
		Package: model.InstalledPackage{
			Name:            name,
			ResolvedVersion: dep.Version,
			InstallPath:     target,
			FromCache:       false,
		},
	}, ""
}
