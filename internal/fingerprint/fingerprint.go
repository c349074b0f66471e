// Package fingerprint implements pantry's MD5-based addressing hashes
// (spec §4.1): pure functions from manifest bytes or project paths to
// short, stable hex identifiers. MD5 is used as a non-cryptographic
// identity hash to keep addressing cheap and stable; no security
// property is assumed of it.
package fingerprint

import (
	"crypto/md5" //nolint:gosec // identity hash, not used for security
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// ManifestContent returns the 16-byte MD5 digest of manifest file bytes.
// Its first 4 bytes, hex-encoded (8 hex chars), are manifest_hash8.
func ManifestContent(content []byte) [16]byte {
	return md5.Sum(content) //nolint:gosec
}

// ManifestHash8 returns the first 8 hex characters of the MD5 digest of
// manifest file content — the "d<manifest_hash8>" suffix of an env-dir
// name (spec §4.1, §6).
func ManifestHash8(content []byte) string {
	sum := ManifestContent(content)
	return hex.EncodeToString(sum[:])[:8]
}

// ProjectHash8 returns the 8-char lowercase hex project-path fingerprint:
// MD5 of the absolute path's bytes, first 4 bytes read as little-endian
// u32, hex-formatted (spec §4.1). Callers must pass an absolute path;
// this function does not resolve or validate it.
func ProjectHash8(absPath string) string {
	sum := md5.Sum([]byte(absPath)) //nolint:gosec
	n := binary.LittleEndian.Uint32(sum[:4])
	return fmt.Sprintf("%08x", n)
}

// FullHashHex returns the full 32-hex-char MD5 digest of manifest
// content. The EnvCache key is not derived from this; it is the hex of
// PathHash over the manifest path.
func FullHashHex(content []byte) string {
	sum := ManifestContent(content)
	return hex.EncodeToString(sum[:])
}

// PathHash is the 16-byte MD5 digest of a path string's bytes — used
// by EnvCache to fingerprint a manifest *path* (not its content), per
// spec §4.5's "key hash is derived from the manifest path".
func PathHash(path string) [16]byte {
	return md5.Sum([]byte(path)) //nolint:gosec
}
