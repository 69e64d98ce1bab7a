// Package errs defines the error kinds shared across creeper's subsystems.
//
// The artifact store, registry, vanilla manager, and resolver all need to
// distinguish a handful of recurring failure shapes from an ordinary wrapped
// error: content that failed its own checksum, a lookup that found nothing,
// a file that didn't parse, a platform or feature creeper doesn't support,
// and a dependency graph with no solution. Each gets its own type here so
// callers can use errors.As instead of matching on string content.
package errs

import "fmt"

// CorruptionError indicates that stored or downloaded content did not match
// its expected checksum.
type CorruptionError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corruption detected at %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// NotFoundError indicates that a requested artifact, package, or version
// does not exist in the store or registry being queried.
type NotFoundError struct {
	Kind string // "artifact", "package", "version", "instance", "field"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// ParseError indicates a file failed to parse as the format its extension
// or context implied (TOML instance/package manifests, JSON version
// manifests).
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedError indicates a request that is well-formed but refers to a
// platform, feature, or version creeper has no support for, such as an
// os.version rule or a features flag the vanilla manifest requires.
type UnsupportedError struct {
	What   string
	Detail string
}

func (e *UnsupportedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unsupported: %s", e.What)
	}
	return fmt.Sprintf("unsupported: %s (%s)", e.What, e.Detail)
}

// ResolutionError indicates the dependency resolver could not find a set
// of package versions that satisfies every constraint. Explanation holds
// a human-readable account naming the package for which no candidate
// version satisfied the accumulated constraint.
type ResolutionError struct {
	Explanation string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("dependency resolution failed: %s", e.Explanation)
}

// IOError wraps a filesystem or network failure that isn't better
// described by one of the other kinds.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
