package registry

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/blake2b"

	"github.com/pantry-dev/pantry/internal/model"
)

func buildTestTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}); err != nil {
			t.Fatalf("writing tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("writing tar content: %v", err)
		}
	}
	tw.Close()
	gz.Close()
	return buf.Bytes()
}

func TestHTTPFetcherMaterializeExtractsArchive(t *testing.T) {
	archive := buildTestTarGz(t, map[string]string{"bin/tool": "#!/bin/sh\necho hi\n"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(nil)
	stagingDir := t.TempDir()

	root, digest, err := fetcher.Materialize(context.Background(), model.ResolvedPackage{
		Name:     "tool",
		Version:  "1.0.0",
		FetchURL: srv.URL + "/tool-1.0.0.tar.gz",
	}, stagingDir, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if digest == "" {
		t.Error("expected a non-empty blake2b digest")
	}

	data, err := os.ReadFile(filepath.Join(root, "bin", "tool"))
	if err != nil {
		t.Fatalf("reading extracted file: %v", err)
	}
	if string(data) != "#!/bin/sh\necho hi\n" {
		t.Errorf("unexpected extracted content: %q", data)
	}
}

func TestHTTPFetcherMaterializeSingleFile(t *testing.T) {
	const content = "binary-content"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(nil)
	stagingDir := t.TempDir()

	root, digest, err := fetcher.Materialize(context.Background(), model.ResolvedPackage{
		Name:     "jq",
		Version:  "1.7.1",
		FetchURL: srv.URL + "/jq-linux-amd64",
	}, stagingDir, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	want := blake2b.Sum256([]byte(content))
	if digest != hex.EncodeToString(want[:]) {
		t.Errorf("digest = %q, want blake2b-256 of the fetched bytes %q", digest, hex.EncodeToString(want[:]))
	}

	data, err := os.ReadFile(filepath.Join(root, "bin", "jq-linux-amd64"))
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != content {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestHTTPFetcherMaterializeReportsProgress(t *testing.T) {
	archive := buildTestTarGz(t, map[string]string{"bin/tool": strings.Repeat("x", 4096)})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(nil)

	var calls []int64
	onProgress := func(current, total int64) {
		calls = append(calls, current)
	}

	_, _, err := fetcher.Materialize(context.Background(), model.ResolvedPackage{
		Name:     "tool",
		Version:  "1.0.0",
		FetchURL: srv.URL + "/tool-1.0.0.tar.gz",
	}, t.TempDir(), onProgress)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	if len(calls) == 0 {
		t.Fatal("expected onProgress to be called at least once")
	}
	for i := 1; i < len(calls); i++ {
		if calls[i] < calls[i-1] {
			t.Errorf("expected cumulative byte counts to be non-decreasing, got %v", calls)
		}
	}
	if calls[len(calls)-1] != int64(len(archive)) {
		t.Errorf("expected final cumulative count %d to equal archive size, got %d", len(archive), calls[len(calls)-1])
	}
}

func TestHTTPFetcherMaterializeRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(nil)
	_, _, err := fetcher.Materialize(context.Background(), model.ResolvedPackage{
		Name:     "missing",
		FetchURL: srv.URL + "/missing.tar.gz",
	}, t.TempDir(), nil)
	if err == nil {
		t.Error("expected error for 404 response")
	}
}
