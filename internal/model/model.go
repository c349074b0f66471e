// Package model holds pantry's shared data model (spec §3): the request/
// result types threaded through manifest parsing, registry resolution,
// installation, and lockfile serialization.
package model

import "github.com/pantry-dev/pantry/internal/stringutil"

// Source identifies where a package comes from.
type Source string

const (
	SourceRegistry Source = "registry"
	SourceGithub   Source = "github"
	SourceNPM      Source = "npm"
	SourceLocal    Source = "local"
	SourceHTTP     Source = "http"
	SourceGit      Source = "git"
)

// DepType classifies a manifest dependency entry.
type DepType string

const (
	DepNormal DepType = "normal"
	DepDev    DepType = "dev"
	DepPeer   DepType = "peer"
)

// GithubRef identifies a specific GitHub repository and ref.
type GithubRef struct {
	Owner string
	Repo  string
	Ref   string
}

// PackageSpec is a concrete install request, consumed immutably by
// SingleInstaller (spec §3).
type PackageSpec struct {
	Name     string
	Version  string // literal version, semver range, tag, git ref, or local path token
	Source   Source
	Repo     string // "owner/repo", only meaningful when Source == SourceGithub
	Checksum string // optional expected blake2b-256 hex digest of the fetched archive; empty means unverified
}

// DependencyRecord is a manifest-derived entry (spec §3). Name may carry
// a "auto:", "local:", or "github:" prefix; the runtime strips it before
// display via DisplayName.
type DependencyRecord struct {
	Name      string
	Version   string
	DepType   DepType
	GithubRef *GithubRef
	Checksum  string // optional pinned blake2b-256 hex digest, carried to PackageSpec.Checksum
}

var nameLocalPrefixes = []string{"local:", "auto:"}

// IsLocal implements spec §3's is_local predicate: the name carries a
// "local:"/"auto:" prefix, or the version string looks like a filesystem
// path ("/", "./", "../", "~/").
func (d DependencyRecord) IsLocal() bool {
	if _, stripped := stringutil.StripKnownPrefix(d.Name, nameLocalPrefixes...); stripped {
		return true
	}
	return stringutil.LooksLikeFilesystemPath(d.Version)
}

// DisplayName strips any "auto:"/"local:"/"github:" prefix from Name for
// user-facing output and lockfile keys (spec §3).
func (d DependencyRecord) DisplayName() string {
	name, _ := stringutil.StripKnownPrefix(d.Name, "local:", "auto:", "github:")
	return name
}

// ToPackageSpec builds the PackageSpec SingleInstaller consumes from a
// manifest-derived record (spec §4.3 step 2).
func (d DependencyRecord) ToPackageSpec() PackageSpec {
	name := d.DisplayName()

	if d.IsLocal() {
		return PackageSpec{Name: name, Version: d.Version, Source: SourceLocal}
	}
	if d.GithubRef != nil {
		return PackageSpec{
			Name:     name,
			Version:  d.GithubRef.Ref,
			Source:   SourceGithub,
			Repo:     d.GithubRef.Owner + "/" + d.GithubRef.Repo,
			Checksum: d.Checksum,
		}
	}
	if _, stripped := stringutil.StripKnownPrefix(d.Name, "npm:"); stripped {
		return PackageSpec{Name: name, Version: d.Version, Source: SourceNPM, Checksum: d.Checksum}
	}
	return PackageSpec{Name: name, Version: d.Version, Source: SourceRegistry, Checksum: d.Checksum}
}

// InstalledPackage is the result of a completed install (spec §3).
type InstalledPackage struct {
	Name            string
	ResolvedVersion string // concrete, never a range/tag
	InstallPath     string // absolute, inside env root
	SizeBytes       int64
	FromCache       bool
	InstallTimeMS   int64
	Warnings        []string
}

// PackageRecord is what the (out-of-scope) registry lookup collaborator
// returns for a package name (spec §6).
type PackageRecord struct {
	Name        string
	LatestVersion string
	FetchURLTmpl  string // e.g. "https://dist.example.com/{name}/{version}.tar.gz"
}

// ResolvedPackage is what the registry's resolve(spec) returns: a
// concrete version and a location to fetch it from (spec §6). Expected
// content-digest verification is driven by PackageSpec.Checksum (the
// manifest-pinned value), not by anything the registry resolver adds.
type ResolvedPackage struct {
	Name     string
	Version  string
	FetchURL string
}
