// Package usecases holds the pure orchestration logic of the component
// supply chain and code-generation pipeline, plus the port interfaces its
// adapters implement. Nothing in this package performs I/O directly: every
// side effect (network fetch, disk read/write, terminal output) is reached
// through one of the interfaces declared here.
package usecases

import (
	"context"
	"time"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

// Fetcher retrieves a component's raw contents (manifest, templates,
// assets, hooks) from whatever provider its URI scheme names. One Fetcher
// implementation exists per scheme; the pipeline dispatches to the right
// one via FetcherRegistry.
//
// Implementations MUST NOT retry internally; the core makes exactly one
// fetch attempt per call and surfaces failure as FetchFailedError.
type Fetcher interface {
	// Fetch retrieves a component and returns its manifest plus the local
	// directory its files were materialized into (a temp dir for remote
	// schemes, the original directory for path:/file: schemes).
	Fetch(ctx context.Context, uri entities.ComponentURI) (entities.ComponentBundle, error)

	// Supports reports whether this fetcher handles the given scheme.
	Supports(scheme entities.URIScheme) bool
}

// FetcherRegistry dispatches a ComponentURI to the Fetcher registered for
// its scheme.
type FetcherRegistry interface {
	FetcherFor(scheme entities.URIScheme) (Fetcher, bool)
}

// VersionLister is implemented by fetchers whose provider can enumerate a
// component's published versions, letting the resolver pick the highest
// version satisfying the cumulative constraint set before fetching it.
// Fetchers with no meaningful notion of multiple versions (a local path, a
// single git ref) do not implement it; the resolver falls back to fetching
// the one version the URI already names.
type VersionLister interface {
	ListVersions(ctx context.Context, uri entities.ComponentURI) ([]entities.SemVersion, error)
}

// IntegrityVerifier computes and checks the SRI-style digest of a fetched
// bundle. It performs no I/O beyond what it's handed.
type IntegrityVerifier interface {
	// Compute hashes a bundle's canonicalized contents with the given
	// algorithm ("sha256", "sha384", or "sha512") and returns the digest
	// in "<algo>-<hexdigest>" form.
	Compute(bundle entities.ComponentBundle, algorithm string) (string, error)

	// Verify recomputes the digest and compares it against expected,
	// returning *entities.IntegrityFailedError on mismatch.
	Verify(bundle entities.ComponentBundle, expected string) error
}

// ComponentCache is the two-tier (memory + disk) cache of fetched,
// verified bundles.
type ComponentCache interface {
	// Get returns a cached bundle if present and (after any due
	// re-verification) still intact. A failed re-verification evicts the
	// entry and returns (zero, false, nil) rather than an error.
	Get(ctx context.Context, key string) (entities.ComponentBundle, bool, error)

	// Store saves a verified bundle under key.
	Store(ctx context.Context, key string, bundle entities.ComponentBundle) error

	// Invalidate evicts a single entry.
	Invalidate(ctx context.Context, key string) error

	// Clear empties the entire cache.
	Clear(ctx context.Context) error

	// Cleanup evicts entries older than maxAge with fewer than
	// minAccessCount accesses, returning the number removed.
	Cleanup(ctx context.Context, maxAge time.Duration, minAccessCount uint64) (int, error)

	// Stats reports aggregate cache statistics.
	Stats(ctx context.Context) (entities.CacheStats, error)
}

// DependencyResolver resolves a project's direct component dependencies
// (transitively, through each component's own manifest) into a single
// DependencyGraph with one pinned version per alias.
type DependencyResolver interface {
	Resolve(ctx context.Context, roots []entities.DependencyRequirement) (*entities.DependencyGraph, map[string]entities.ComponentBundle, error)
}

// CompatibilityChecker gates a resolved component against the host's own
// version. It is pure and does no I/O.
type CompatibilityChecker interface {
	Check(hostVersion entities.SemVersion, manifest entities.ComponentManifest) entities.CompatibilityStatus
}

// ManifestLoader parses and validates a component manifest from raw bytes.
type ManifestLoader interface {
	Load(data []byte, sourcePath string) (entities.ComponentManifest, error)
}

// ProjectConfigLoader parses and validates the project YAML file.
type ProjectConfigLoader interface {
	Load(ctx context.Context, path string) (entities.ProjectConfiguration, error)
}

// HostConfigLoader loads the generator binary's own ambient settings (cache
// directory override, registry URL, network timeout) layered from flags,
// environment, project-local, and global XDG config files.
type HostConfigLoader interface {
	Load(ctx context.Context, projectRoot string) (entities.HostConfig, error)
}

// LockfileManager loads and saves the lockfile. Validation and up-to-date
// checks are methods of entities.Lockfile itself.
type LockfileManager interface {
	Load(ctx context.Context, path string) (entities.Lockfile, error)
	Save(ctx context.Context, path string, lockfile entities.Lockfile) error
}

// ContextBuilder is the pure transformation from a validated
// ProjectConfiguration into a render-ready TemplateContext.
type ContextBuilder interface {
	Build(config entities.ProjectConfiguration, resolved map[string]entities.ComponentBundle, metadata entities.GenerationMetadata) (entities.TemplateContext, error)
}

// RenderedFile is one output of the template engine: a relative output
// path and its rendered content.
type RenderedFile struct {
	Path    string
	Content []byte
}

// TemplateEngine renders the built-in and component-contributed template
// sets against a TemplateContext.
type TemplateEngine interface {
	// RenderAll renders every built-in template plus every resolved
	// component's declared templates, in a fixed order, and returns the
	// full output set.
	RenderAll(ctx context.Context, tctx entities.TemplateContext) ([]RenderedFile, error)
}

// OutputWriter writes rendered files to the output directory, honoring the
// force flag and refusing collisions otherwise.
type OutputWriter interface {
	Write(ctx context.Context, outputDir string, files []RenderedFile, force bool) error
}

// ComponentWatcher observes local-scheme component directories for
// changes and emits the ComponentURI of each changed component on the
// returned channel. It does not touch the cache; invalidating the matching
// entry is left to whoever reads the channel.
type ComponentWatcher interface {
	Watch(ctx context.Context, paths []string) (<-chan entities.ComponentURI, error)
	Stop() error
}

// Logger is structured logging, written to stderr so it never interleaves
// with generated output written to stdout.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, err error, keysAndValues ...any)
	WithFields(keysAndValues ...any) Logger
}

// ProgressReporter communicates pipeline progress to the terminal.
type ProgressReporter interface {
	ReportProgress(step string, current, total int, message string)
	ReportError(err error)
	ReportSuccess(message string)
	ReportInfo(message string)
}

// ResolutionExplainer renders a compact, token-efficient summary of a
// dependency resolution for human or LLM-assisted inspection.
type ResolutionExplainer interface {
	Explain(graph *entities.DependencyGraph, lockfile entities.Lockfile) (string, error)
}

// ReportFormatter formats validation and generation reports for terminal
// display.
type ReportFormatter interface {
	PrintValidationReport(err error)
	PrintGenerationReport(stats GenerationStats)
}

// GenerationStats summarizes one generation run for reporting.
type GenerationStats struct {
	FilesWritten     int
	ComponentsUsed   int
	ResolutionTime   time.Duration
	RenderTime       time.Duration
	DatabaseEngine   entities.DatabaseEngine
}
