// Package activate implements the shell-hook entry points of spec §4.6:
// lookup(cwd) and activate(cwd). Both are called on a single request
// thread from cmd/pantry and cmd/pantry-hook; all parallelism lives
// inside internal/install's InstallEngine. Grounded on the teacher's
// thin cmd/*/main.go wrappers that delegate straight into pkg/cli —
// here the wrapper is this package's two functions, kept free of any
// cobra/flag concerns so both binaries can call the same code.
package activate

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pantry-dev/pantry/internal/console"
	"github.com/pantry-dev/pantry/internal/envcache"
	"github.com/pantry-dev/pantry/internal/fingerprint"
	"github.com/pantry-dev/pantry/internal/install"
	"github.com/pantry-dev/pantry/internal/manifest"
	"github.com/pantry-dev/pantry/internal/model"
	"github.com/pantry-dev/pantry/internal/pantrylog"
	"github.com/pantry-dev/pantry/internal/paths"
	"github.com/pantry-dev/pantry/internal/pkgcache"
	"github.com/pantry-dev/pantry/internal/registry"
)

var log = pantrylog.New("activate")

// globalDeps is the small fixed list of "always available" tool
// packages ensure(d) best-effort on a warm activation (SPEC_FULL.md
// §4.6 expansion). None of these failing affects the exit code.
var globalDeps = []string{"pantry-completions"}

// Activator wires the collaborators lookup/activate need: the manifest
// detector+parser, the EnvCache, and everything InstallEngine requires
// to run a cold-activation batch.
type Activator struct {
	Stdout io.Writer
	Stderr io.Writer

	EnvCachePath string
	Cache        *pkgcache.Cache
	Registry     registry.Registry
	HTTPFetcher  registry.Fetcher
	GithubFetcher registry.Fetcher
	StagingRoot  string

	// GlobalEnvDir holds the always-available tool packages ensured by
	// ensureGlobalDeps, distinct from any project's env dir. Defaults to
	// <home>/cache/global if unset.
	GlobalEnvDir string
}

// pathHashHex hex-encodes the manifest-path fingerprint used as the
// EnvCache key (spec §4.5: "hash is derived from the manifest path").
func pathHashHex(path string) string {
	h := fingerprint.PathHash(path)
	return hex.EncodeToString(h[:])
}

// Lookup implements spec §4.6 `lookup(cwd)`. It returns the process
// exit code; on a hit it writes "<env_bin>|<project_dir>\n" to Stdout.
func (a *Activator) Lookup(cwd string) int {
	detected, err := manifest.Find(cwd)
	if err != nil || detected == nil {
		return 1
	}

	cache, err := a.loadEnvCache()
	if err != nil {
		log.Printf("loading env cache: %v", err)
		return 1
	}

	hash := pathHashHex(detected.Path)
	entry, ok := cache.Get(hash)
	if !ok {
		return 1
	}

	fmt.Fprintf(a.Stdout, "%s|%s\n", entry.Path, projectDirOf(detected.Path))
	return 0
}

// Activate implements spec §4.6 `activate(cwd)`: warm path on an
// EnvCache hit, cold path (full InstallEngine batch) on a miss. Stdout
// carries only shell code; every human-facing line goes to Stderr or is
// wrapped in `echo ... >&2` inside the emitted snippet (spec §4.6
// "Emission channel").
func (a *Activator) Activate(ctx context.Context, cwd string) int {
	detected, err := manifest.Find(cwd)
	if err != nil || detected == nil {
		return 1
	}

	cache, err := a.loadEnvCache()
	if err != nil {
		log.Printf("loading env cache: %v", err)
		return 1
	}

	projectDir := projectDirOf(detected.Path)
	hash := pathHashHex(detected.Path)

	if entry, ok := cache.Get(hash); ok {
		fmt.Fprintf(a.Stdout, "export PATH=\"%s:$PATH\"\n", entry.Path)
		a.ensureGlobalDeps(ctx)
		return 0
	}

	deps, err := manifest.Parse(detected.Path)
	if err != nil {
		fmt.Fprintln(a.Stderr, console.FormatErrorMessage("Error: "+err.Error()))
		return 1
	}
	if len(deps) == 0 {
		return 0
	}

	manifestContent, err := os.ReadFile(detected.Path)
	if err != nil {
		fmt.Fprintln(a.Stderr, console.FormatErrorMessage("Error: "+err.Error()))
		return 1
	}

	envDir, err := paths.EnvDir(projectDir, manifestContent)
	if err != nil {
		fmt.Fprintln(a.Stderr, console.FormatErrorMessage("Error: "+err.Error()))
		return 1
	}
	envBin := filepath.Join(envDir, "bin")

	summary, err := install.RunBatch(ctx, install.EngineConfig{
		ProjectDir:      projectDir,
		ManifestPath:    detected.Path,
		ManifestContent: manifestContent,
		EnvDir:          envDir,
		StagingRoot:     a.StagingRoot,
		Cache:           a.Cache,
		Registry:        a.Registry,
		HTTPFetcher:     a.HTTPFetcher,
		GithubFetcher:   a.GithubFetcher,
		Quiet:           true,
	}, deps)
	if err != nil {
		fmt.Fprintln(a.Stderr, console.FormatErrorMessage("Error: "+err.Error()))
		return 1
	}

	// Step 6: a partial batch still emits PATH as long as something
	// installed (spec §7: "emits PATH if at least one symlink was
	// installed, since leaving a usable partial env is better than none").
	if !summary.AnySucceeded() {
		fmt.Fprintln(a.Stderr, console.FormatErrorMessage("Error: no dependency installed successfully"))
		return 1
	}

	info, statErr := os.Stat(detected.Path)
	if statErr == nil {
		now := time.Now()
		cache.Put(envcache.Entry{
			Hash:          hash,
			ManifestPath:  detected.Path,
			ManifestMTime: info.ModTime(),
			Path:          envBin,
			CreatedAt:     now,
			CachedAt:      now,
			LastValidated: now,
		})
		if err := cache.Persist(); err != nil {
			log.Printf("persisting env cache: %v", err)
		}
	}

	fmt.Fprintf(a.Stdout, "export PATH=\"%s:$PATH\"\n", envBin)
	fmt.Fprintf(a.Stdout, "echo %s >&2\n", shellQuote(summaryBanner(summary)))

	a.ensureGlobalDeps(ctx)
	return 0
}

// ensureGlobalDeps best-effort-installs globalDeps into the global env
// directory (a.GlobalEnvDir, default <cache root>/global); every failure is logged at debug level only
// and never surfaces to the caller (spec SPEC_FULL.md §4.6 expansion:
// "best-effort, non-blocking on failure").
func (a *Activator) ensureGlobalDeps(ctx context.Context) {
	globalEnvDir := a.GlobalEnvDir
	if globalEnvDir == "" {
		cacheRoot, err := paths.CacheRoot()
		if err != nil {
			log.Printf("resolving global env dir: %v", err)
			return
		}
		globalEnvDir = filepath.Join(cacheRoot, "global")
	}

	for _, name := range globalDeps {
		spec := model.PackageSpec{Name: name, Version: "latest", Source: model.SourceRegistry}
		if _, ok := a.Registry.Lookup(name); !ok {
			continue
		}
		si := &install.SingleInstaller{
			EnvDir:        globalEnvDir,
			StagingRoot:   a.StagingRoot,
			Cache:         a.Cache,
			Registry:      a.Registry,
			HTTPFetcher:   a.HTTPFetcher,
			GithubFetcher: a.GithubFetcher,
			Stack:         install.NewInstallingStack(),
		}
		outcome := si.Install(ctx, spec, install.Options{Quiet: true})
		if outcome.Kind == install.Failed {
			log.Printf("best-effort global dep %s failed (non-fatal): %v", name, outcome.Err)
		}
	}
}

func (a *Activator) loadEnvCache() (*envcache.EnvCache, error) {
	if a.EnvCachePath == "" {
		p, err := paths.EnvCacheFile()
		if err != nil {
			return nil, err
		}
		a.EnvCachePath = p
	}
	return envcache.Load(a.EnvCachePath)
}

// projectDirOf returns the directory containing the manifest — the
// project root the env dir and lockfile are keyed on.
func projectDirOf(manifestPath string) string {
	return filepath.Dir(manifestPath)
}

func summaryBanner(s install.Summary) string {
	return fmt.Sprintf("pantry: %d installed, %d from cache, %d failed", s.InstalledCount, s.FromCacheCount, s.FailedCount)
}

// shellQuote wraps s in single quotes for safe embedding in the emitted
// `echo ... >&2` snippet, escaping any literal single quote.
func shellQuote(s string) string {
	escaped := ""
	for _, r := range s {
		if r == '\'' {
			escaped += `'\''`
		} else {
			escaped += string(r)
		}
	}
	return "'" + escaped + "'"
}
