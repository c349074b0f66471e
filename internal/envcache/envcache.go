// Package envcache implements the EnvCache of spec §4.5: a fingerprint
// → env-dir index serving the shell hook's fast path, persisted to
// <home>/cache/envs.cache. Grounded on the teacher's CompilationCache
// (pkg/cli/compile_cache.go) for the load-or-empty/persist-via-
// temp-and-rename shape; generalized from a filename→hash map to a
// fingerprint→EnvDirectory row with mtime-based staleness revalidation.
package envcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pantry-dev/pantry/internal/pantrylog"
)

var cacheLog = pantrylog.New("envcache")

// Entry is one EnvCache row (spec §3 EnvCacheEntry). Hash is stored as a
// hex string for JSON round-tripping (the fingerprint itself is 16 raw
// bytes, spec §4.1).
type Entry struct {
	Hash          string            `json:"hash"`
	ManifestPath  string            `json:"manifest_path"`
	ManifestMTime time.Time         `json:"manifest_mtime"`
	Path          string            `json:"path"` // env bin/ directory
	EnvVars       map[string]string `json:"env_vars,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	CachedAt      time.Time         `json:"cached_at"`
	LastValidated time.Time         `json:"last_validated"`
}

// document is the on-disk shape, tolerant of added optional fields by
// virtue of plain encoding/json decode-into-struct semantics.
type document struct {
	Entries map[string]Entry `json:"entries"`
}

// EnvCache is the in-memory, mutex-guarded, disk-persisted fingerprint
// index.
type EnvCache struct {
	mu    sync.Mutex
	path  string
	table map[string]Entry
	dirty bool
}

// Load reads the EnvCache from path, or starts empty if the file is
// absent or corrupted (corruption is recoverable, matching the
// teacher's CompilationCache precedent).
func Load(path string) (*EnvCache, error) {
	c := &EnvCache{path: path, table: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cacheLog.Print("no env cache file yet, starting empty")
			return c, nil
		}
		return nil, fmt.Errorf("reading env cache: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		cacheLog.Printf("env cache corrupted, starting fresh: %v", err)
		return c, nil
	}
	if doc.Entries != nil {
		c.table = doc.Entries
	}
	cacheLog.Printf("loaded env cache with %d entries", len(c.table))
	return c, nil
}

// Get returns the entry for hash if present and still valid: its stored
// ManifestMTime must equal the manifest file's current on-disk mtime
// (spec §4.5 staleness protocol). A missing manifest file, a missing
// entry, or a mismatched mtime all evict and return false.
func (c *EnvCache) Get(hash string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.table[hash]
	if !ok {
		return Entry{}, false
	}

	info, err := os.Stat(entry.ManifestPath)
	if err != nil {
		cacheLog.Printf("manifest %s missing, evicting hash %s", entry.ManifestPath, hash)
		delete(c.table, hash)
		c.dirty = true
		return Entry{}, false
	}

	if !info.ModTime().Equal(entry.ManifestMTime) {
		cacheLog.Printf("manifest %s mtime changed, evicting hash %s", entry.ManifestPath, hash)
		delete(c.table, hash)
		c.dirty = true
		return Entry{}, false
	}

	entry.LastValidated = time.Now()
	c.table[hash] = entry
	c.dirty = true
	return entry, true
}

// Put upserts entry by its Hash, replacing any prior entry for the same
// key (spec §4.5 `put`).
func (c *EnvCache) Put(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table[entry.Hash] = entry
	c.dirty = true
}

// Clear empties the in-memory table (used by `pantry clean --global`).
func (c *EnvCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = make(map[string]Entry)
	c.dirty = true
}

// Remove deletes a single entry by hash (`pantry env:remove`).
func (c *EnvCache) Remove(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.table[hash]; ok {
		delete(c.table, hash)
		c.dirty = true
	}
}

// Persist writes the table to disk atomically (temp file + rename).
func (c *EnvCache) Persist() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating env cache directory: %w", err)
	}

	data, err := json.MarshalIndent(document{Entries: c.table}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling env cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing env cache temp file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("renaming env cache into place: %w", err)
	}

	cacheLog.Printf("persisted env cache with %d entries", len(c.table))
	c.dirty = false
	return nil
}

// Len reports the current in-memory entry count (tests/diagnostics).
func (c *EnvCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.table)
}
