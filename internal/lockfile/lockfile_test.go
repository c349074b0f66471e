package lockfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddEntryRejectsDuplicateKey(t *testing.T) {
	l := New()
	if err := l.AddEntry("node@22", Entry{Name: "node", ResolvedVersion: "22", Source: "pkgx"}); err != nil {
		t.Fatalf("first AddEntry: %v", err)
	}
	if err := l.AddEntry("node@22", Entry{Name: "node", ResolvedVersion: "22", Source: "pkgx"}); err == nil {
		t.Error("expected duplicate key to be rejected")
	}
}

func TestEntriesPreserveInsertionOrder(t *testing.T) {
	l := New()
	l.AddEntry("b@1", Entry{Name: "b", ResolvedVersion: "1", Source: "pkgx"})
	l.AddEntry("a@1", Entry{Name: "a", ResolvedVersion: "1", Source: "pkgx"})
	l.AddEntry("c@1", Entry{Name: "c", ResolvedVersion: "1", Source: "pkgx"})

	entries := l.Entries()
	if len(entries) != 3 || entries[0].Name != "b" || entries[1].Name != "a" || entries[2].Name != "c" {
		t.Errorf("expected insertion order b,a,c; got %+v", entries)
	}
}

func TestMarshalRoundTripIsByteIdentical(t *testing.T) {
	l := New()
	l.AddEntry("node@22", Entry{Name: "node", ResolvedVersion: "22", Source: "pkgx"})
	l.AddEntry("mylib@./vendor/mylib", Entry{Name: "mylib", ResolvedVersion: "./vendor/mylib", Source: "local", URL: "./vendor/mylib"})

	first, err := l.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := l.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Error("expected two successive marshals to be byte-identical")
	}

	path := filepath.Join(t.TempDir(), ".freezer")
	if err := os.WriteFile(path, first, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	third, err := loaded.Marshal()
	if err != nil {
		t.Fatalf("Marshal after Load: %v", err)
	}
	if string(first) != string(third) {
		t.Errorf("expected marshal -> load -> marshal to be byte-identical:\n%s\nvs\n%s", first, third)
	}
}

func TestWriteThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".freezer")

	l := New()
	l.AddEntry("node@22", Entry{Name: "node", ResolvedVersion: "22", Source: "pkgx"})
	l.AddEntry("eslint@8.0.0", Entry{Name: "eslint", ResolvedVersion: "8.0.0", Source: "pkgx"})

	if err := l.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", loaded.Len())
	}
	entries := loaded.Entries()
	if entries[0].Name != "node" || entries[1].Name != "eslint" {
		t.Errorf("expected order preserved, got %+v", entries)
	}
}

func TestWriteThenWriteAgainProducesIdenticalBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".freezer")

	l := New()
	l.AddEntry("node@22", Entry{Name: "node", ResolvedVersion: "22", Source: "pkgx"})

	if err := l.Write(path); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := l.Write(path); err != nil {
		t.Fatalf("second Write: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Error("expected successive writes of an unmutated lockfile to be byte-identical")
	}
}

func TestSourceTagClassification(t *testing.T) {
	cases := []struct {
		name, version string
		isGithub      bool
		want          string
	}{
		{"local:mylib", "./vendor/mylib", false, "local"},
		{"mylib", "./vendor/mylib", false, "local"},
		{"mylib", "1.0.0", true, "github"},
		{"github:owner/repo", "v1.0.0", false, "github"},
		{"npm:left-pad", "1.3.0", false, "npm"},
		{"node", "22", false, "pkgx"},
	}
	for _, c := range cases {
		got := SourceTag(c.name, c.version, c.isGithub)
		if got != c.want {
			t.Errorf("SourceTag(%q, %q, %v) = %q, want %q", c.name, c.version, c.isGithub, got, c.want)
		}
	}
}
