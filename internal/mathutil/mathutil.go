// Package mathutil provides small numeric helpers shared across pantry,
// notably the worker-pool cap computation (spec §4.4, §5).
package mathutil

// Min returns the smaller of a and b.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
