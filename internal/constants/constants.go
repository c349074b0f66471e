// Package constants holds fixed names and paths shared across pantry's
// packages: the CLI prefix, the home-directory layout, and manifest file
// names recognized by the bundled manifest detector.
package constants

// CLIName is the prefix used in user-facing output and argv[0] matching.
const CLIName = "pantry"

// HomeDirName is the directory created under $HOME (or $PANTRY_HOME) that
// holds the package cache, environment directories, and env-cache index.
const HomeDirName = ".pantry"

// EnvsDirName is the subdirectory of the home dir holding per-project
// environment directories (see internal/paths).
const EnvsDirName = "envs"

// CacheDirName is the subdirectory of the home dir holding the package
// cache and the env-cache persistence file.
const CacheDirName = "cache"

// PackagesDirName is the subdirectory of CacheDirName holding unpacked,
// content-addressed package trees.
const PackagesDirName = "packages"

// EnvCacheFileName is the file the EnvCache persists its table to.
const EnvCacheFileName = "envs.cache"

// LockfileName is the project-local deterministic snapshot file.
const LockfileName = ".freezer"

// LocalModulesDirName holds symlinks for local (filesystem-path) deps.
const LocalModulesDirName = "pantry_modules"

// ManifestFileNames lists recognized manifest file names, most specific
// first, searched for by the manifest detector at or above a directory.
var ManifestFileNames = []string{
	"deps.yaml",
	"deps.yml",
	"pantry.yaml",
	"pantry.yml",
}

// MaxManifestSearchDepth bounds how many parent directories the manifest
// detector walks before giving up (spec §6, §8 boundary behavior).
const MaxManifestSearchDepth = 10

// MaxInstallWorkers is the fixed worker-pool cap for a registry-dep batch
// (spec §4.4, §5). Not configurable via the manifest.
const MaxInstallWorkers = 4

// FingerprintHexLen is the length of a hex-encoded short fingerprint
// (manifest_hash8 / proj_hash8).
const FingerprintHexLen = 8

// FullHashHexLen is the length of a full hex-encoded MD5 digest, the
// only valid length for a hash string passed to `env:remove` (spec §8).
const FullHashHexLen = 32
