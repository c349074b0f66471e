package registry

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/pantry-dev/pantry/internal/model"
	"github.com/pantry-dev/pantry/internal/pantryerr"
	"github.com/pantry-dev/pantry/internal/pantrylog"
	"github.com/pantry-dev/pantry/internal/ratelimit"
)

var httpLog = pantrylog.New("registry:http")

// HTTPFetcher downloads a resolved package's FetchURL and extracts it
// into a staging directory. It recognizes .tar.gz/.tgz archives and
// falls back to writing single-file downloads (e.g. jq's static binary)
// directly into the staging root.
type HTTPFetcher struct {
	Client  *http.Client
	Limiter *ratelimit.Limiter
}

// NewHTTPFetcher builds an HTTPFetcher throttled by limiter (nil means
// unthrottled — used in tests).
func NewHTTPFetcher(limiter *ratelimit.Limiter) *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient, Limiter: limiter}
}

// Materialize implements Fetcher. The returned digest is the blake2b-256
// hex digest of the fetched bytes as received over the wire (before
// extraction); SingleInstaller, not Materialize, compares it against
// PackageSpec.Checksum. When onProgress is non-nil it is called with
// cumulative bytes read as the body streams in, driving the caller's
// console.ProgressBar.
func (f *HTTPFetcher) Materialize(ctx context.Context, resolved model.ResolvedPackage, stagingDir string, onProgress ProgressFunc) (string, string, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return "", "", &pantryerr.TransientIO{Op: "fetch", Err: err}
		}
	}

	httpLog.Printf("fetching %s@%s from %s", resolved.Name, resolved.Version, resolved.FetchURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved.FetchURL, nil)
	if err != nil {
		return "", "", &pantryerr.TransientIO{Op: "fetch", Err: err}
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", "", &pantryerr.TransientIO{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", &pantryerr.TransientIO{Op: "fetch", Err: fmt.Errorf("unexpected status %d for %s", resp.StatusCode, resolved.FetchURL)}
	}

	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", "", &pantryerr.TransientIO{Op: "write", Err: err}
	}

	digest, err := blake2b.New256(nil)
	if err != nil {
		return "", "", &pantryerr.TransientIO{Op: "fetch", Err: err}
	}
	var body io.Reader = io.TeeReader(resp.Body, digest)
	if onProgress != nil {
		total := resp.ContentLength
		if total < 0 {
			total = 0
		}
		body = &progressReader{r: body, total: total, onProgress: onProgress}
	}

	if isArchiveURL(resolved.FetchURL) {
		if err := extractTarGz(body, stagingDir); err != nil {
			return "", "", &pantryerr.TransientIO{Op: "extract", Err: err}
		}
	} else {
		if err := writeSingleFile(body, stagingDir, filepath.Base(resolved.FetchURL)); err != nil {
			return "", "", &pantryerr.TransientIO{Op: "write", Err: err}
		}
	}

	return stagingDir, hex.EncodeToString(digest.Sum(nil)), nil
}

// progressReader reports cumulative bytes read via onProgress as the
// wrapped reader is consumed, without buffering or otherwise altering
// the stream.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.onProgress(p.read, p.total)
	}
	return n, err
}

func isArchiveURL(url string) bool {
	return strings.HasSuffix(url, ".tar.gz") || strings.HasSuffix(url, ".tgz")
}

func extractTarGz(r io.Reader, destDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target := filepath.Join(destDir, filepath.Clean(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(filepath.Separator)) {
			return fmt.Errorf("tar entry %q escapes staging directory", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		case tar.TypeSymlink:
			// skip symlinks from untrusted archives
			continue
		}
	}
}

func writeSingleFile(r io.Reader, destDir, name string) error {
	path := filepath.Join(destDir, "bin", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, r)
	return err
}
