// Package lockfile implements pantry's deterministic snapshot writer
// (spec §4.7): `.freezer`, a JSON document recording exactly what an
// install batch resolved, in manifest order. Grounded on the teacher's
// CompilationCache (pkg/cli/compile_cache.go) for the
// marshal/temp-file/rename persistence shape, generalized here from a
// flat hash map (which doesn't preserve order) to an explicit ordered
// list, since the spec requires insertion-order serialization that Go
// maps cannot guarantee.
package lockfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pantry-dev/pantry/internal/pantryerr"
	"github.com/pantry-dev/pantry/internal/stringutil"
)

const SchemaVersion = 1

// Entry is one resolved package record (spec §3 LockfileEntry).
type Entry struct {
	Name            string            `json:"name"`
	ResolvedVersion string            `json:"resolved_version"`
	Source          string            `json:"source"`
	URL             string            `json:"url,omitempty"`
	Integrity       string            `json:"integrity,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
}

// Key is the Lockfile's unique per-entry key: "<name>@<resolved_version>".
func Key(name, resolvedVersion string) string {
	return fmt.Sprintf("%s@%s", name, resolvedVersion)
}

// pair backs the ordered "map" in document's Dependencies: Go's
// map type has no stable iteration order, so insertion order is tracked
// explicitly via this slice-of-pairs rather than relying on map
// iteration (spec §4.7's round-trip requirement demands it).
type pair struct {
	Key   string `json:"key"`
	Entry Entry  `json:"entry"`
}

// document is the on-disk shape.
type document struct {
	SchemaVersion int    `json:"schema_version"`
	Dependencies  []pair `json:"dependencies"`
}

// Lockfile is an in-memory, ordered set of resolved entries plus a
// serializer producing a deterministic on-disk snapshot.
type Lockfile struct {
	schemaVersion int
	order         []string
	entries       map[string]Entry
}

// Init creates an empty Lockfile (spec §4.7 `init`).
func Init(schemaVersion int) *Lockfile {
	return &Lockfile{
		schemaVersion: schemaVersion,
		entries:       make(map[string]Entry),
	}
}

// New is a convenience constructor using SchemaVersion.
func New() *Lockfile { return Init(SchemaVersion) }

// AddEntry inserts entry under key, preserving call order. A duplicate
// key is an Invariant error (spec §3: "(name, resolved_version) unique
// within a Lockfile").
func (l *Lockfile) AddEntry(key string, entry Entry) error {
	if _, exists := l.entries[key]; exists {
		return &pantryerr.Invariant{Message: fmt.Sprintf("duplicate lockfile key %q", key)}
	}
	l.entries[key] = entry
	l.order = append(l.order, key)
	return nil
}

// Len returns the number of entries.
func (l *Lockfile) Len() int { return len(l.order) }

// Entries returns entries in insertion order (for tests/inspection).
func (l *Lockfile) Entries() []Entry {
	out := make([]Entry, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, l.entries[k])
	}
	return out
}

// toDocument builds the canonical on-disk representation.
func (l *Lockfile) toDocument() document {
	doc := document{SchemaVersion: l.schemaVersion, Dependencies: make([]pair, 0, len(l.order))}
	for _, k := range l.order {
		doc.Dependencies = append(doc.Dependencies, pair{Key: k, Entry: l.entries[k]})
	}
	return doc
}

// Marshal produces the canonical encoding used both by Write and by
// round-trip tests (spec §4.7: "parsing write(L) then re-serializing
// produces byte-identical output").
func (l *Lockfile) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(l.toDocument(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling lockfile: %w", err)
	}
	return append(data, '\n'), nil
}

// Write serializes the Lockfile to path atomically (temp file + rename,
// spec §4.7) so readers never observe a partial file.
func (l *Lockfile) Write(path string) error {
	data, err := l.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &pantryerr.TransientIO{Op: "write", Err: err}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &pantryerr.TransientIO{Op: "write", Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &pantryerr.TransientIO{Op: "write", Err: err}
	}
	return nil
}

// Load reads and parses a `.freezer` file back into a Lockfile,
// preserving stored order.
func Load(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pantryerr.TransientIO{Op: "write", Err: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing lockfile: %w", err)
	}

	l := Init(doc.SchemaVersion)
	for _, p := range doc.Dependencies {
		if err := l.AddEntry(p.Key, p.Entry); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// SourceTag classifies a dependency's lockfile `source` field per spec
// §4.4 step 7's prefix/version-syntax rules.
func SourceTag(namePrefixed, version string, isGithub bool) string {
	_, hasLocalPrefix := stringutil.StripKnownPrefix(namePrefixed, "local:", "auto:")
	_, hasGithubPrefix := stringutil.StripKnownPrefix(namePrefixed, "github:")
	_, hasNPMPrefix := stringutil.StripKnownPrefix(namePrefixed, "npm:")

	switch {
	case hasLocalPrefix || stringutil.LooksLikeFilesystemPath(version):
		return "local"
	case isGithub || hasGithubPrefix:
		return "github"
	case hasNPMPrefix:
		return "npm"
	default:
		return "pkgx"
	}
}
