// Package manifest provides pantry's bundled implementation of the
// manifest detector and parser collaborators spec §6 leaves external.
// Manifest parsing itself is out of the core's scope, but a complete,
// buildable, end-to-end-testable repo needs at least one concrete
// format; this package supplies a YAML one (github.com/goccy/go-yaml),
// schema-validated with santhosh-tekuri/jsonschema/v6.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/pantry-dev/pantry/internal/constants"
	"github.com/pantry-dev/pantry/internal/model"
	"github.com/pantry-dev/pantry/internal/pantrylog"
)

var log = pantrylog.New("manifest:parse")

// Detected is what the manifest detector returns (spec §6).
type Detected struct {
	Path      string
	FormatTag string
}

// Find walks upward from dir looking for a recognized manifest file, at
// most constants.MaxManifestSearchDepth parent levels (spec §6, §8).
func Find(dir string) (*Detected, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving start directory: %w", err)
	}

	for depth := 0; depth <= constants.MaxManifestSearchDepth; depth++ {
		for _, name := range constants.ManifestFileNames {
			candidate := filepath.Join(current, name)
			if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
				log.Printf("found manifest %s at depth %d", candidate, depth)
				return &Detected{Path: candidate, FormatTag: "yaml"}, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return nil, nil
}

// rawManifest is the on-disk YAML shape.
type rawManifest struct {
	Dependencies []rawEntry `yaml:"dependencies"`
}

type rawEntry struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Type     string `yaml:"type"`
	Checksum string `yaml:"checksum"` // optional pinned blake2b-256 hex digest (SPEC_FULL.md §3)
}

// Parse reads and schema-validates manifestPath, then normalizes it into
// the DependencyRecord shape (spec §6's "Manifest parser" collaborator
// contract: parse(manifest) -> []DependencyRecord).
func Parse(manifestPath string) ([]model.DependencyRecord, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", manifestPath, err)
	}

	if err := ValidateSchema(data); err != nil {
		return nil, fmt.Errorf("manifest %s failed schema validation: %w", manifestPath, err)
	}

	var raw rawManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", manifestPath, err)
	}

	records := make([]model.DependencyRecord, 0, len(raw.Dependencies))
	for _, entry := range raw.Dependencies {
		records = append(records, normalizeEntry(entry))
	}

	log.Printf("parsed %d dependencies from %s", len(records), manifestPath)
	return records, nil
}

func normalizeEntry(entry rawEntry) model.DependencyRecord {
	depType := model.DepNormal
	switch entry.Type {
	case "dev":
		depType = model.DepDev
	case "peer":
		depType = model.DepPeer
	}

	record := model.DependencyRecord{
		Name:     entry.Name,
		Version:  entry.Version,
		DepType:  depType,
		Checksum: entry.Checksum,
	}

	if rest := strings.TrimPrefix(entry.Name, "github:"); rest != entry.Name {
		if owner, repo, ok := strings.Cut(rest, "/"); ok {
			record.GithubRef = &model.GithubRef{Owner: owner, Repo: repo, Ref: entry.Version}
		}
	}

	return record
}
