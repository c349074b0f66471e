// Package cli wires pantry's cobra command tree to the internal
// packages: install, activate, envcache, pkgcache. Grounded on the
// teacher's cmd/gh-aw/main.go + pkg/cli aggregation pattern — one
// NewXxxCommand function per command file, assembled by cmd/pantry's
// main.go.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pantry-dev/pantry/internal/paths"
	"github.com/pantry-dev/pantry/internal/pkgcache"
	"github.com/pantry-dev/pantry/internal/ratelimit"
	"github.com/pantry-dev/pantry/internal/registry"
)

// collaborators bundles the registry/fetcher/cache trio every install-
// adjacent command needs.
type collaborators struct {
	cache         *pkgcache.Cache
	registry      registry.Registry
	httpFetcher   registry.Fetcher
	githubFetcher registry.Fetcher
	stagingRoot   string
}

// newCollaborators opens the on-disk package cache and builds the
// built-in registry plus its two fetchers, rate-limited the way
// SingleInstaller expects (SPEC_FULL.md domain-stack assignment of
// golang.org/x/crypto/blake2b to pkgcache and cli/go-gh/v2 to the
// github fetcher).
func newCollaborators() (*collaborators, error) {
	cacheRoot, err := paths.CacheRoot()
	if err != nil {
		return nil, fmt.Errorf("resolving cache root: %w", err)
	}

	cache, err := pkgcache.Open(cacheRoot)
	if err != nil {
		return nil, fmt.Errorf("opening package cache: %w", err)
	}

	limiter := ratelimit.New(ratelimit.Config{Rate: 4, Burst: 8})
	httpFetcher := registry.NewHTTPFetcher(limiter)
	githubFetcher := registry.NewGithubFetcher()
	reg := registry.NewBuiltinRegistry(platformTag())

	stagingRoot, err := stagingRootDir()
	if err != nil {
		return nil, fmt.Errorf("resolving staging root: %w", err)
	}

	return &collaborators{
		cache:         cache,
		registry:      reg,
		httpFetcher:   httpFetcher,
		githubFetcher: githubFetcher,
		stagingRoot:   stagingRoot,
	}, nil
}

// platformTag builds the "{os}-{arch}" token substituted into built-in
// registry FetchURLTmpl entries.
func platformTag() string {
	return fmt.Sprintf("%s-%s", runtime.GOOS, runtime.GOARCH)
}

func stagingRootDir() (string, error) {
	cacheRoot, err := paths.CacheRoot()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(cacheRoot, "staging")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
