// Package paths implements the pure path-addressing functions of spec
// §4.1: mapping home, project directory, and manifest hash to canonical
// on-disk locations. No function here performs I/O.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pantry-dev/pantry/internal/constants"
	"github.com/pantry-dev/pantry/internal/fingerprint"
)

// Home returns the pantry home directory: $PANTRY_HOME if set (used by
// tests and power users to relocate state), otherwise
// $HOME/.pantry.
func Home() (string, error) {
	if override := os.Getenv("PANTRY_HOME"); override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, constants.HomeDirName), nil
}

// CacheRoot returns <home>/cache, the parent of both the package cache
// and the EnvCache persistence file.
func CacheRoot() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.CacheDirName), nil
}

// PackageCacheRoot returns the root of the content-addressed unpacked
// package store: <home>/cache/packages.
func PackageCacheRoot() (string, error) {
	cacheRoot, err := CacheRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheRoot, constants.PackagesDirName), nil
}

// EnvCacheFile returns the path of the EnvCache's persistence file:
// <home>/cache/envs.cache.
func EnvCacheFile() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.CacheDirName, constants.EnvCacheFileName), nil
}

// EnvsRoot returns <home>/envs, the parent of all per-project env dirs.
func EnvsRoot() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.EnvsDirName), nil
}

// EnvDirName computes the bit-exact env-dir name for a project directory
// and manifest content (spec §4.1, §6):
// "<project_basename>_<proj_hash8>-d<manifest_hash8>".
func EnvDirName(projectDir string, manifestContent []byte) (string, error) {
	if !filepath.IsAbs(projectDir) {
		return "", fmt.Errorf("project directory must be absolute: %s", projectDir)
	}

	base := filepath.Base(filepath.Clean(projectDir))
	projHash := fingerprint.ProjectHash8(filepath.Clean(projectDir))
	manifestHash := fingerprint.ManifestHash8(manifestContent)

	return fmt.Sprintf("%s_%s-d%s", base, projHash, manifestHash), nil
}

// EnvDir returns the full, absolute env directory path for a project and
// manifest content: <home>/envs/<env-dir-name>. The returned path is
// guaranteed not to contain "..".
func EnvDir(projectDir string, manifestContent []byte) (string, error) {
	envsRoot, err := EnvsRoot()
	if err != nil {
		return "", err
	}

	name, err := EnvDirName(projectDir, manifestContent)
	if err != nil {
		return "", err
	}

	full := filepath.Join(envsRoot, name)
	if strings.Contains(full, "..") {
		return "", fmt.Errorf("resolved env dir contains '..': %s", full)
	}
	return full, nil
}

// EnvBinDir returns <env-dir>/bin for a project and manifest content.
func EnvBinDir(projectDir string, manifestContent []byte) (string, error) {
	envDir, err := EnvDir(projectDir, manifestContent)
	if err != nil {
		return "", err
	}
	return filepath.Join(envDir, "bin"), nil
}

// LocalModulesDir returns <project_dir>/pantry_modules, the parent of
// local-dep symlinks (spec §4.4 step 6).
func LocalModulesDir(projectDir string) string {
	return filepath.Join(projectDir, constants.LocalModulesDirName)
}

// LockfilePath returns <project_dir>/.freezer.
func LockfilePath(projectDir string) string {
	return filepath.Join(projectDir, constants.LockfileName)
}
