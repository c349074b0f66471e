// Package pantryerr defines pantry's error taxonomy (spec §7): structured
// error types for each kind the spec distinguishes, so callers can
// errors.As/errors.Is across the installer → engine → CLI boundary
// without string matching, following the teacher's convention of plain
// wrapped stdlib errors rather than a central error-code registry.
package pantryerr

import "fmt"

// NotFound represents a manifest, registry package, or local path that
// does not exist. Not retried by any layer.
type NotFound struct {
	Kind string // "manifest", "package", "local-path"
	What string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.What)
}

// TransientIO represents a fetch, extract, or write failure. Recovered
// per-package by SingleInstaller/InstallEngine; not retried at this
// layer.
type TransientIO struct {
	Op  string // "fetch", "extract", "write"
	Err error
}

func (e *TransientIO) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransientIO) Unwrap() error { return e.Err }

// Invariant represents a programming/data error that is fatal for the
// current call: a duplicate Lockfile insert, an invalid hash length, an
// unknown source tag.
type Invariant struct {
	Message string
}

func (e *Invariant) Error() string { return e.Message }

// Permission represents an environment directory that could not be
// created or written to. Fatal; activation aborts without emitting any
// shell code.
type Permission struct {
	Path string
	Err  error
}

func (e *Permission) Error() string {
	return fmt.Sprintf("permission denied: %s: %v", e.Path, e.Err)
}

func (e *Permission) Unwrap() error { return e.Err }

// PackageNotFoundInRegistry reports a package name the registry does not
// know. The engine records it as a per-package failure like any other;
// it has no option that makes this error end the whole batch.
type PackageNotFoundInRegistry struct {
	Name string
}

func (e *PackageNotFoundInRegistry) Error() string {
	return fmt.Sprintf("package not found in registry: %s", e.Name)
}
