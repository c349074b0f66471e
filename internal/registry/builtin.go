package registry

import (
	"fmt"
	"strings"

	"github.com/pantry-dev/pantry/internal/pantryerr"
	"github.com/pantry-dev/pantry/internal/model"
)

// builtinTable is pantry's bundled package index, standing in for the
// hosted registry spec.md §6 leaves unspecified. Real deployments would
// point FetchURLTmpl at a CDN; these entries point at well-known public
// release archives so the built-in registry is exercisable end to end.
var builtinTable = map[string]model.PackageRecord{
	"node": {
		Name:          "node",
		LatestVersion: "22.11.0",
		FetchURLTmpl:  "https://nodejs.org/dist/v{version}/node-v{version}-{platform}.tar.gz",
	},
	"ripgrep": {
		Name:          "ripgrep",
		LatestVersion: "14.1.1",
		FetchURLTmpl:  "https://github.com/BurntSushi/ripgrep/releases/download/{version}/ripgrep-{version}-{platform}.tar.gz",
	},
	"jq": {
		Name:          "jq",
		LatestVersion: "1.7.1",
		FetchURLTmpl:  "https://github.com/jqlang/jq/releases/download/jq-{version}/jq-{platform}",
	},
	"python": {
		Name:          "python",
		LatestVersion: "3.12.7",
		FetchURLTmpl:  "https://www.python.org/ftp/python/{version}/Python-{version}.tar.xz",
	},
}

// BuiltinRegistry implements Registry against builtinTable.
type BuiltinRegistry struct {
	Platform string // e.g. "linux-x64", substituted into FetchURLTmpl
}

// NewBuiltinRegistry constructs a BuiltinRegistry for the given platform
// tag. The CLI passes "<GOOS>-<GOARCH>" (e.g. "linux-amd64") as is; the
// tag is not mapped to any per-package naming convention.
func NewBuiltinRegistry(platform string) *BuiltinRegistry {
	return &BuiltinRegistry{Platform: platform}
}

// Lookup implements Registry.
func (r *BuiltinRegistry) Lookup(name string) (model.PackageRecord, bool) {
	rec, ok := builtinTable[name]
	return rec, ok
}

// Resolve implements Registry. A "latest" version (or an empty one) is
// pinned to the record's LatestVersion so the lockfile always stores a
// concrete version (spec §3: InstalledPackage.ResolvedVersion is never a
// range/tag).
func (r *BuiltinRegistry) Resolve(spec model.PackageSpec) (model.ResolvedPackage, error) {
	rec, ok := r.Lookup(spec.Name)
	if !ok {
		return model.ResolvedPackage{}, &pantryerr.PackageNotFoundInRegistry{Name: spec.Name}
	}

	version := spec.Version
	if version == "" || version == "latest" {
		version = rec.LatestVersion
	}

	url := expandTemplate(rec.FetchURLTmpl, map[string]string{
		"name":     rec.Name,
		"version":  version,
		"platform": r.Platform,
	})

	return model.ResolvedPackage{
		Name:     rec.Name,
		Version:  version,
		FetchURL: url,
	}, nil
}

func expandTemplate(tmpl string, vars map[string]string) string {
	out := tmpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, fmt.Sprintf("{%s}", k), v)
	}
	return out
}
