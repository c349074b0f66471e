// Package testutil provides test-only helpers shared across pantry's
// packages: an isolated fake-$HOME allocator so install/cache/activate
// tests never touch a developer's real home directory or PANTRY_HOME.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

var (
	testHomesRoot     string
	testHomesRootOnce sync.Once
)

// testHomesDir returns (and lazily creates) a "test-homes" directory at
// the module root, shared across the whole test binary run. Keeping fake
// homes under the repo rather than os.TempDir lets a failed test's
// PANTRY_HOME tree be inspected afterward instead of vanishing into the
// OS temp dir.
func testHomesDir() string {
	testHomesRootOnce.Do(func() {
		wd, err := os.Getwd()
		if err != nil {
			panic(fmt.Sprintf("testutil: resolving working directory: %v", err))
		}

		moduleRoot := wd
		for {
			if _, err := os.Stat(filepath.Join(moduleRoot, "go.mod")); err == nil {
				break
			}
			parent := filepath.Dir(moduleRoot)
			if parent == moduleRoot {
				panic("testutil: no go.mod found above " + wd)
			}
			moduleRoot = parent
		}

		testHomesRoot = filepath.Join(moduleRoot, "test-homes")
		if err := os.MkdirAll(testHomesRoot, 0o755); err != nil {
			panic(fmt.Sprintf("testutil: creating test-homes directory: %v", err))
		}
	})
	return testHomesRoot
}

// FakeHome creates an isolated directory to use as $HOME/$PANTRY_HOME for
// a test, named after the test itself so a failed test's leftover env
// tree (kept on failure, removed on success) is easy to find by hand.
// The paths package must never see a real developer's home or PANTRY_HOME.
func FakeHome(t *testing.T) string {
	t.Helper()

	sanitized := filepath.Base(t.Name()) + "-*"
	home, err := os.MkdirTemp(testHomesDir(), sanitized)
	if err != nil {
		t.Fatalf("testutil: creating fake home: %v", err)
	}
	t.Cleanup(func() {
		if !t.Failed() {
			_ = os.RemoveAll(home)
		}
	})

	t.Setenv("PANTRY_HOME", filepath.Join(home, ".pantry"))
	return home
}
