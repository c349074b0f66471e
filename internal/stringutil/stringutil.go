// Package stringutil provides small string helpers shared across
// pantry's manifest and lockfile handling.
package stringutil

import "strings"

// StripKnownPrefix removes the first of the given prefixes found on s,
// returning the trimmed string and whether a prefix was removed. Used to
// strip DependencyRecord name prefixes like "local:"/"auto:"/"github:"
// before display (spec §3).
func StripKnownPrefix(s string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return strings.TrimPrefix(s, p), true
		}
	}
	return s, false
}

// LooksLikeFilesystemPath reports whether a version string should be
// treated as a local filesystem path per spec §3's is_local predicate:
// it starts with "/", "./", "../", or "~/".
func LooksLikeFilesystemPath(s string) bool {
	for _, prefix := range []string{"/", "./", "../", "~/"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
