package entities

import (
	"fmt"
	"strings"
)

// RemedyHint is implemented by errors that can suggest a fix to the user.
// The hint is appended to the terminal-facing message; internal detail stays
// in the Unwrap() chain.
type RemedyHint interface {
	Remedy() string
}

// MalformedURIError is raised by the URI parser when a component reference
// cannot be parsed: unknown scheme, failed per-scheme structural check, or
// an empty locator.
type MalformedURIError struct {
	Input  string
	Reason string
}

func (e *MalformedURIError) Error() string {
	return fmt.Sprintf("malformed component URI %q: %s", e.Input, e.Reason)
}

// FetchFailedError is raised by the fetcher on HTTP/IO failure. It is
// retryable by the caller; the core makes exactly one attempt per call.
type FetchFailedError struct {
	URI        string
	StatusCode int
	Err        error
}

func (e *FetchFailedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed for %q: HTTP %d", e.URI, e.StatusCode)
	}
	return fmt.Sprintf("fetch failed for %q: %v", e.URI, e.Err)
}

func (e *FetchFailedError) Unwrap() error { return e.Err }

func (e *FetchFailedError) Remedy() string {
	return "check network connectivity and retry the generation"
}

// ManifestParseError is raised when the fetcher or cache cannot parse a
// manifest's YAML.
type ManifestParseError struct {
	Source string
	Err    error
}

func (e *ManifestParseError) Error() string {
	return fmt.Sprintf("failed to parse manifest from %s: %v", e.Source, e.Err)
}

func (e *ManifestParseError) Unwrap() error { return e.Err }

// IntegrityFailedError is raised by the verifier or cache. It has the side
// effect of evicting the offending cache entry before surfacing.
type IntegrityFailedError struct {
	URI      string
	Expected string
	Actual   string
}

func (e *IntegrityFailedError) Error() string {
	return fmt.Sprintf("integrity check failed for %q: expected %s, computed %s", e.URI, e.Expected, e.Actual)
}

func (e *IntegrityFailedError) Remedy() string {
	return "the component bundle was evicted from the cache; re-fetch and verify the publisher"
}

// UnsatisfiableConstraintsError is raised by the resolver when the
// cumulative constraint set for an alias becomes empty.
type UnsatisfiableConstraintsError struct {
	Alias       string
	Constraints []string
}

func (e *UnsatisfiableConstraintsError) Error() string {
	return fmt.Sprintf("unsatisfiable version constraints for %q: [%s]", e.Alias, strings.Join(e.Constraints, ", "))
}

// CircularDependencyError is raised by the resolver when a node is
// revisited while still on the traversal stack.
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Cycle, " -> "))
}

// VersionConflictError is raised when post-resolution validation finds more
// than one resolved version for a component path.
type VersionConflictError struct {
	Path     string
	Versions []string
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict for %q: found versions [%s]", e.Path, strings.Join(e.Versions, ", "))
}

// IncompatibleError is raised by the compatibility checker.
type IncompatibleError struct {
	ComponentName string
	HostVersion   string
	Status        CompatibilityStatus
	Detail        string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("component %q is %s with host %s: %s", e.ComponentName, e.Status, e.HostVersion, e.Detail)
}

// LockfileOutOfDateError is a warning by default, fatal under --frozen.
type LockfileOutOfDateError struct {
	Aliases []string
}

func (e *LockfileOutOfDateError) Error() string {
	return fmt.Sprintf("lockfile is out of date for: %s", strings.Join(e.Aliases, ", "))
}

func (e *LockfileOutOfDateError) Remedy() string {
	return "run with --update to refresh the lockfile"
}

// InvalidManifestError is raised by the manifest validator. First error wins.
type InvalidManifestError struct {
	Field   string
	Message string
}

func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("invalid manifest: %s: %s", e.Field, e.Message)
}

// InvalidConfigError is raised by the configuration validator. First error wins.
type InvalidConfigError struct {
	Rule    string
	Field   string
	Message string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration (%s): %s: %s", e.Rule, e.Field, e.Message)
}

// OutputExistsError is raised by the output writer on a write collision
// without the force flag.
type OutputExistsError struct {
	Path string
}

func (e *OutputExistsError) Error() string {
	return fmt.Sprintf("output file already exists: %s", e.Path)
}

func (e *OutputExistsError) Remedy() string {
	return "pass --force to overwrite the existing output directory"
}

// TemplateRenderError is raised by the template engine; it carries the
// template name and the inner cause.
type TemplateRenderError struct {
	Template string
	Err      error
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("failed to render template %q: %v", e.Template, e.Err)
}

func (e *TemplateRenderError) Unwrap() error { return e.Err }
