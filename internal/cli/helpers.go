package cli

import "path/filepath"

// projectDirFromManifest returns the directory containing the manifest
// file — the project root the env dir, lockfile, and pantry_modules are
// keyed on.
func projectDirFromManifest(manifestPath string) string {
	return filepath.Dir(manifestPath)
}
