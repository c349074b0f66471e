package envcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeManifest(t *testing.T, path, content string) time.Time {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return info.ModTime()
}

func TestGetMissOnEmptyCache(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "envs.cache"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := c.Get("nonexistent"); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestGetHitWhenMtimeUnchanged(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "deps.yaml")
	mtime := writeManifest(t, manifestPath, "dependencies: []\n")

	c, err := Load(filepath.Join(dir, "envs.cache"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Put(Entry{Hash: "abc123", ManifestPath: manifestPath, ManifestMTime: mtime, Path: filepath.Join(dir, "bin")})

	entry, ok := c.Get("abc123")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if entry.Path != filepath.Join(dir, "bin") {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestGetEvictsWhenMtimeChanges(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "deps.yaml")
	mtime := writeManifest(t, manifestPath, "dependencies: []\n")

	c, err := Load(filepath.Join(dir, "envs.cache"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Put(Entry{Hash: "abc123", ManifestPath: manifestPath, ManifestMTime: mtime, Path: filepath.Join(dir, "bin")})

	// Simulate an edit by storing a mtime one hour in the past relative to
	// the file's real mtime.
	stale := c.table["abc123"]
	stale.ManifestMTime = mtime.Add(-time.Hour)
	c.table["abc123"] = stale

	if _, ok := c.Get("abc123"); ok {
		t.Error("expected eviction when stored mtime no longer matches")
	}
	if c.Len() != 0 {
		t.Errorf("expected entry removed from table, len=%d", c.Len())
	}
}

func TestGetEvictsWhenManifestMissing(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "deps.yaml")
	mtime := writeManifest(t, manifestPath, "dependencies: []\n")

	c, err := Load(filepath.Join(dir, "envs.cache"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Put(Entry{Hash: "abc123", ManifestPath: manifestPath, ManifestMTime: mtime})

	if err := os.Remove(manifestPath); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("abc123"); ok {
		t.Error("expected eviction when manifest file is gone")
	}
}

func TestPersistAndReload(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "deps.yaml")
	mtime := writeManifest(t, manifestPath, "dependencies: []\n")
	cachePath := filepath.Join(dir, "cache", "envs.cache")

	c, err := Load(cachePath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Put(Entry{Hash: "abc123", ManifestPath: manifestPath, ManifestMTime: mtime, Path: filepath.Join(dir, "bin")})
	if err := c.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	c2, err := Load(cachePath)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := c2.Get("abc123"); !ok {
		t.Error("expected entry to survive reload")
	}
}

func TestRemoveDeletesEntry(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "envs.cache"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Put(Entry{Hash: "abc123", ManifestPath: "/tmp/x", Path: "/tmp/bin"})
	c.Remove("abc123")
	if c.Len() != 0 {
		t.Error("expected entry removed")
	}
}

func TestClearEmptiesTable(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "envs.cache"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Put(Entry{Hash: "a", ManifestPath: "/tmp/a"})
	c.Put(Entry{Hash: "b", ManifestPath: "/tmp/b"})
	c.Clear()
	if c.Len() != 0 {
		t.Error("expected empty table after Clear")
	}
}

func TestLoadRecoversFromCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "envs.cache")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load should recover from corrupt file, got: %v", err)
	}
	if c.Len() != 0 {
		t.Error("expected empty cache after corrupt-file recovery")
	}
}
