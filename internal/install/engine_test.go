package install

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/crypto/blake2b"

	"github.com/pantry-dev/pantry/internal/constants"
	"github.com/pantry-dev/pantry/internal/model"
	"github.com/pantry-dev/pantry/internal/pkgcache"
	"github.com/pantry-dev/pantry/internal/registry"
)

// fakeRegistry resolves any spec to a deterministic pinned version,
// standing in for the built-in registry so install tests never touch
// the network.
type fakeRegistry struct {
	known map[string]bool
}

func (r *fakeRegistry) Lookup(name string) (model.PackageRecord, bool) {
	if !r.known[name] {
		return model.PackageRecord{}, false
	}
	return model.PackageRecord{Name: name, LatestVersion: "1.0.0"}, true
}

func (r *fakeRegistry) Resolve(spec model.PackageSpec) (model.ResolvedPackage, error) {
	rec, ok := r.Lookup(spec.Name)
	if !ok {
		return model.ResolvedPackage{}, &os.PathError{Op: "resolve", Path: spec.Name, Err: os.ErrNotExist}
	}
	version := spec.Version
	if version == "" || version == "latest" {
		version = rec.LatestVersion
	}
	return model.ResolvedPackage{Name: spec.Name, Version: version, FetchURL: "fake://" + spec.Name}, nil
}

// fakeFetcher materializes a package by writing a single marker
// executable into stagingDir/bin and returning a deterministic digest
// derived from the package name, so tests can pin a matching or
// mismatching PackageSpec.Checksum.
type fakeFetcher struct{}

func fakeDigest(name string) string {
	sum := blake2b.Sum256([]byte("fake-content:" + name))
	return hex.EncodeToString(sum[:])
}

func (fakeFetcher) Materialize(ctx context.Context, resolved model.ResolvedPackage, stagingDir string, onProgress registry.ProgressFunc) (string, string, error) {
	binDir := filepath.Join(stagingDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(filepath.Join(binDir, resolved.Name), []byte("#!/bin/sh\n"), 0o755); err != nil {
		return "", "", err
	}
	return stagingDir, fakeDigest(resolved.Name), nil
}

// countingFetcher wraps fakeFetcher and records the peak number of
// Materialize calls in flight at once.
type countingFetcher struct {
	mu       sync.Mutex
	inFlight int
	peak     int
}

func (f *countingFetcher) Materialize(ctx context.Context, resolved model.ResolvedPackage, stagingDir string, onProgress registry.ProgressFunc) (string, string, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()
	return fakeFetcher{}.Materialize(ctx, resolved, stagingDir, onProgress)
}

func newTestEngineConfig(t *testing.T, known ...string) EngineConfig {
	t.Helper()
	dir := t.TempDir()
	projectDir := filepath.Join(dir, "proj")
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatal(err)
	}

	cache, err := pkgcache.Open(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("pkgcache.Open: %v", err)
	}

	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}

	return EngineConfig{
		ProjectDir:    projectDir,
		EnvDir:        filepath.Join(dir, "env"),
		StagingRoot:   filepath.Join(dir, "staging"),
		Cache:         cache,
		Registry:      &fakeRegistry{known: knownSet},
		HTTPFetcher:   fakeFetcher{},
		GithubFetcher: fakeFetcher{},
		Quiet:         true,
	}
}

func TestRunBatchSingleRegistryDep(t *testing.T) {
	cfg := newTestEngineConfig(t, "node")
	deps := []model.DependencyRecord{{Name: "node", Version: "22", DepType: model.DepNormal}}

	summary, err := RunBatch(context.Background(), cfg, deps)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if summary.InstalledCount != 1 || summary.FailedCount != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	binLink := filepath.Join(cfg.EnvDir, "bin", "node")
	if _, err := os.Lstat(binLink); err != nil {
		t.Errorf("expected bin/node symlink to exist: %v", err)
	}

	lockPath := filepath.Join(cfg.ProjectDir, ".freezer")
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("expected .freezer to exist: %v", err)
	}
}

func TestRunBatchUnknownPackageFailsButBatchContinues(t *testing.T) {
	cfg := newTestEngineConfig(t, "node")
	deps := []model.DependencyRecord{
		{Name: "node", Version: "22", DepType: model.DepNormal},
		{Name: "not-a-real-pkg", Version: "1.0.0", DepType: model.DepNormal},
	}

	summary, err := RunBatch(context.Background(), cfg, deps)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if summary.InstalledCount != 1 || summary.FailedCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !summary.HasBatchFailure() {
		t.Error("expected HasBatchFailure to be true when a registry dep fails")
	}
	if !summary.AnySucceeded() {
		t.Error("expected AnySucceeded to be true when at least one dep installed")
	}
}

func TestRunBatchLocalDepMissingTargetWarnsNotFails(t *testing.T) {
	cfg := newTestEngineConfig(t)
	deps := []model.DependencyRecord{
		{Name: "local:mylib", Version: "./vendor/mylib", DepType: model.DepNormal},
	}

	summary, err := RunBatch(context.Background(), cfg, deps)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if summary.FailedCount != 1 {
		t.Errorf("expected a failure count of 1 for a missing local target, got %+v", summary)
	}
	if summary.HasBatchFailure() {
		t.Error("expected HasBatchFailure to stay false: a missing local target is a warning, not a batch failure")
	}
	if len(summary.Warnings) == 0 {
		t.Error("expected at least one warning for the missing local target")
	}
}

func TestRunBatchLocalDepSymlinks(t *testing.T) {
	cfg := newTestEngineConfig(t)
	vendorDir := filepath.Join(cfg.ProjectDir, "vendor", "mylib", "src")
	if err := os.MkdirAll(vendorDir, 0o755); err != nil {
		t.Fatal(err)
	}

	deps := []model.DependencyRecord{
		{Name: "local:mylib", Version: "./vendor/mylib", DepType: model.DepNormal},
	}

	summary, err := RunBatch(context.Background(), cfg, deps)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if summary.InstalledCount != 1 {
		t.Fatalf("expected local dep to count as installed, got %+v", summary)
	}

	srcLink := filepath.Join(cfg.ProjectDir, "pantry_modules", "mylib", "src")
	if _, err := os.Lstat(srcLink); err != nil {
		t.Errorf("expected pantry_modules src symlink: %v", err)
	}
	binLink := filepath.Join(cfg.EnvDir, "bin", "mylib")
	if _, err := os.Lstat(binLink); err != nil {
		t.Errorf("expected env bin symlink: %v", err)
	}
}

func TestRunBatchParallelCapWithEightDeps(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	cfg := newTestEngineConfig(t, names...)
	fetcher := &countingFetcher{}
	cfg.HTTPFetcher = fetcher

	deps := make([]model.DependencyRecord, len(names))
	for i, n := range names {
		deps[i] = model.DependencyRecord{Name: n, Version: "1.0.0", DepType: model.DepNormal}
	}

	summary, err := RunBatch(context.Background(), cfg, deps)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if summary.InstalledCount != len(names) {
		t.Fatalf("expected all %d deps installed, got %+v", len(names), summary)
	}
	if len(summary.Results) != len(names) {
		t.Fatalf("expected results sized to deps, got %d", len(summary.Results))
	}
	if fetcher.peak > constants.MaxInstallWorkers {
		t.Errorf("expected at most %d concurrent fetches, saw %d", constants.MaxInstallWorkers, fetcher.peak)
	}
}

func TestFilterOptionsIncludes(t *testing.T) {
	cases := []struct {
		opts FilterOptions
		dt   model.DepType
		want bool
	}{
		{FilterOptions{}, model.DepNormal, true},
		{FilterOptions{}, model.DepDev, true},
		{FilterOptions{}, model.DepPeer, false},
		{FilterOptions{IncludePeer: true}, model.DepPeer, true},
		{FilterOptions{Production: true}, model.DepDev, false},
		{FilterOptions{Production: true}, model.DepNormal, true},
		{FilterOptions{DevOnly: true}, model.DepNormal, false},
		{FilterOptions{DevOnly: true}, model.DepDev, true},
	}
	for _, c := range cases {
		if got := c.opts.Includes(c.dt); got != c.want {
			t.Errorf("FilterOptions(%+v).Includes(%v) = %v, want %v", c.opts, c.dt, got, c.want)
		}
	}
}
