package registry

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	gh "github.com/cli/go-gh/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/pantry-dev/pantry/internal/model"
	"github.com/pantry-dev/pantry/internal/pantryerr"
	"github.com/pantry-dev/pantry/internal/pantrylog"
)

var githubLog = pantrylog.New("registry:github")

// GithubFetcher materializes a github-source package by shelling out to
// the gh CLI's tarball endpoint, the same way the teacher's remote
// manifest loader reached the GitHub API (gh.Exec), and extracting the
// resulting tar.gz into the staging directory.
type GithubFetcher struct{}

// NewGithubFetcher constructs a GithubFetcher.
func NewGithubFetcher() *GithubFetcher { return &GithubFetcher{} }

// Materialize implements Fetcher. resolved.Name/Version are ignored in
// favor of owner/repo/ref encoded by the caller into resolved.FetchURL
// as "owner/repo@ref" (SingleInstaller builds this from PackageSpec.Repo
// and PackageSpec.Version for github sources). The returned digest is
// the blake2b-256 hex digest of the tarball bytes gh.Exec returned.
// onProgress is ignored: gh.Exec buffers the whole tarball response
// before returning, so there is no partial-read point to report from.
func (f *GithubFetcher) Materialize(ctx context.Context, resolved model.ResolvedPackage, stagingDir string, onProgress ProgressFunc) (string, string, error) {
	owner, repo, ref, err := parseGithubLocator(resolved.FetchURL)
	if err != nil {
		return "", "", &pantryerr.Invariant{Message: err.Error()}
	}

	githubLog.Printf("fetching tarball for %s/%s@%s", owner, repo, ref)

	if ctx.Err() != nil {
		return "", "", ctx.Err()
	}

	apiPath := fmt.Sprintf("repos/%s/%s/tarball/%s", owner, repo, ref)
	stdout, stderr, err := gh.Exec("api", apiPath)
	if err != nil {
		return "", "", &pantryerr.TransientIO{Op: "fetch", Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))}
	}

	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", "", &pantryerr.TransientIO{Op: "write", Err: err}
	}

	if err := extractTarGz(bytes.NewReader(stdout.Bytes()), stagingDir); err != nil {
		return "", "", &pantryerr.TransientIO{Op: "extract", Err: err}
	}

	digest := blake2b.Sum256(stdout.Bytes())
	return stagingDir, hex.EncodeToString(digest[:]), nil
}

// parseGithubLocator parses an "owner/repo@ref" locator string.
func parseGithubLocator(locator string) (owner, repo, ref string, err error) {
	ownerRepo, ref, ok := strings.Cut(locator, "@")
	if !ok || ref == "" {
		return "", "", "", fmt.Errorf("malformed github locator %q, want owner/repo@ref", locator)
	}
	owner, repo, ok = strings.Cut(ownerRepo, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", "", fmt.Errorf("malformed github locator %q, want owner/repo@ref", locator)
	}
	return owner, repo, ref, nil
}

// GithubLocator builds the "owner/repo@ref" string GithubFetcher expects
// from a github-source PackageSpec.
func GithubLocator(spec model.PackageSpec) string {
	ref := spec.Version
	if ref == "" {
		ref = "HEAD"
	}
	return spec.Repo + "@" + ref
}
