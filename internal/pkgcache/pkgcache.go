// Package pkgcache implements pantry's content-addressed package cache
// (spec §5): unpacked package trees keyed by name@version, shared across
// every project's environments. Grounded on the teacher's
// CompilationCache (pkg/cli/compile_cache.go) — a JSON-on-disk index
// keyed by a content hash, with the same load-or-empty-on-corruption
// recovery — generalized from single file hashes to whole unpacked
// package directories and switched from SHA-256 to blake2b, per
// SPEC_FULL.md's domain-stack assignment of golang.org/x/crypto/blake2b
// to package integrity digests.
package pkgcache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/pantry-dev/pantry/internal/constants"
	"github.com/pantry-dev/pantry/internal/pantrylog"
)

var cacheLog = pantrylog.New("pkgcache")

// Entry describes one cached, unpacked package.
type Entry struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Path      string `json:"path"`      // absolute dir holding the unpacked tree
	Digest    string `json:"digest"`    // blake2b-256 hex over the tree's file contents
	SizeBytes int64  `json:"size_bytes"`
}

// Key is the cache's lookup key: name@version.
func Key(name, version string) string { return name + "@" + version }

// index is the on-disk JSON document.
type index struct {
	Entries map[string]Entry `json:"entries"`
}

// Cache is pantry's content-addressed package cache.
type Cache struct {
	root  string // <home>/cache/packages
	path  string // <home>/cache/packages.index.json
	idx   index
	dirty bool
}

// Open loads (or initializes) the cache rooted at cacheRoot (typically
// paths.CacheRoot(); trees live under its packages/ subdirectory). A corrupted index file is logged and
// treated as empty, matching the teacher's recovery behavior.
func Open(cacheRoot string) (*Cache, error) {
	c := &Cache{
		root: filepath.Join(cacheRoot, constants.PackagesDirName),
		path: filepath.Join(cacheRoot, "packages.index.json"),
		idx:  index{Entries: make(map[string]Entry)},
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			cacheLog.Print("no package cache index yet, starting empty")
			return c, nil
		}
		return nil, fmt.Errorf("reading package cache index: %w", err)
	}

	if err := json.Unmarshal(data, &c.idx); err != nil {
		cacheLog.Printf("package cache index corrupted, starting fresh: %v", err)
		c.idx = index{Entries: make(map[string]Entry)}
		return c, nil
	}

	cacheLog.Printf("loaded package cache index with %d entries", len(c.idx.Entries))
	return c, nil
}

// Get returns the cached entry for name@version, validating that its
// unpacked tree still exists on disk. A missing tree is treated as a
// cache miss and the stale entry is evicted (spec §5: corrupt/missing
// entries are never trusted).
func (c *Cache) Get(name, version string) (Entry, bool) {
	entry, ok := c.idx.Entries[Key(name, version)]
	if !ok {
		return Entry{}, false
	}
	if _, err := os.Stat(entry.Path); err != nil {
		cacheLog.Printf("cache entry %s points at missing path %s, evicting", Key(name, version), entry.Path)
		delete(c.idx.Entries, Key(name, version))
		c.dirty = true
		return Entry{}, false
	}
	return entry, true
}

// Insert takes ownership of unpackedRoot (already materialized by a
// Fetcher into scratch space) by moving it atomically into the cache's
// own storage root, computing its blake2b digest and total size along
// the way (spec §4.2: "take ownership of a prepared directory;
// atomically move into place"). Re-inserting an existing key replaces
// the entry, and the caller always observes a usable entry afterward.
func (c *Cache) Insert(name, version, unpackedRoot string) (Entry, error) {
	digest, size, err := digestTree(unpackedRoot)
	if err != nil {
		return Entry{}, fmt.Errorf("digesting %s: %w", unpackedRoot, err)
	}

	dest := filepath.Join(c.root, name, version)
	if err := os.RemoveAll(dest); err != nil {
		return Entry{}, fmt.Errorf("clearing previous cache entry at %s: %w", dest, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Entry{}, fmt.Errorf("creating cache directory %s: %w", filepath.Dir(dest), err)
	}
	if err := os.Rename(unpackedRoot, dest); err != nil {
		return Entry{}, fmt.Errorf("moving %s into cache: %w", unpackedRoot, err)
	}

	entry := Entry{
		Name:      name,
		Version:   version,
		Path:      dest,
		Digest:    digest,
		SizeBytes: size,
	}
	c.idx.Entries[Key(name, version)] = entry
	c.dirty = true
	return entry, nil
}

// Stats summarizes the cache for `pantry cache stats`.
type Stats struct {
	EntryCount  int
	TotalBytes  int64
}

// Stats computes aggregate cache statistics.
func (c *Cache) Stats() Stats {
	var s Stats
	for _, e := range c.idx.Entries {
		s.EntryCount++
		s.TotalBytes += e.SizeBytes
	}
	return s
}

// Verify recomputes each entry's digest and returns the names of
// entries whose on-disk content no longer matches the recorded digest
// (`pantry cache verify`).
func (c *Cache) Verify() ([]string, error) {
	var corrupted []string
	for key, entry := range c.idx.Entries {
		digest, _, err := digestTree(entry.Path)
		if err != nil {
			corrupted = append(corrupted, key)
			continue
		}
		if digest != entry.Digest {
			corrupted = append(corrupted, key)
		}
	}
	return corrupted, nil
}

// Clear empties the cache index and removes every cached tree
// (`pantry clean --cache`).
func (c *Cache) Clear() error {
	for _, entry := range c.idx.Entries {
		if err := os.RemoveAll(entry.Path); err != nil {
			cacheLog.Printf("failed removing cached tree %s: %v", entry.Path, err)
		}
	}
	c.idx.Entries = make(map[string]Entry)
	c.dirty = true
	return c.Persist()
}

// Persist writes the index to disk atomically (temp file + rename),
// matching the Lockfile/EnvCache durability convention (spec §5, §8).
func (c *Cache) Persist() error {
	if !c.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(c.idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling package cache index: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing package cache index temp file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("renaming package cache index into place: %w", err)
	}

	cacheLog.Printf("persisted package cache index with %d entries", len(c.idx.Entries))
	c.dirty = false
	return nil
}

// digestTree computes a blake2b-256 digest over every regular file's
// path and content under root (sorted for determinism) and returns the
// total content size.
func digestTree(root string) (string, int64, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", 0, err
	}

	var total int64
	var paths []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return "", 0, err
	}

	sort.Strings(paths)
	for _, rel := range paths {
		f, err := os.Open(filepath.Join(root, rel))
		if err != nil {
			return "", 0, err
		}
		fmt.Fprintf(h, "%s\x00", rel)
		n, err := io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", 0, err
		}
		total += n
	}

	return fmt.Sprintf("%x", h.Sum(nil)), total, nil
}
