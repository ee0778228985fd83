package entities

// ComponentBundle is a fully fetched, parsed, and integrity-checked
// component ready for installation: the manifest plus the on-disk location
// of its templates, assets, and hooks, and the digest it was verified
// against.
type ComponentBundle struct {
	Manifest ComponentManifest

	// ResolvedURI is the exact, versioned locator this bundle was fetched
	// from (a github:/gitlab: URI pinned to a tag or commit, a git: URI
	// pinned to a commit, or the original path:/file: URI unchanged).
	ResolvedURI ComponentURI

	// LocalPath is where the bundle's files live on disk once fetched: the
	// cache directory for remote schemes, or the component's own directory
	// for path:/file: schemes.
	LocalPath string

	// Digest is the SRI-style integrity digest computed over the bundle's
	// contents.
	Digest string

	// FetchedAt records when this bundle was fetched, used by the cache to
	// decide when 24-hour re-verification is due.
	FetchedAt int64
}

// Alias identifies the bundle within a resolution: the component's own
// declared name, not the project-local alias it may be referenced by
// (those are tracked separately on DependencyRequirement/DependencyNode).
func (b ComponentBundle) Alias() string { return b.Manifest.Name }

// CacheKey delegates to the resolved URI's cache key.
func (b ComponentBundle) CacheKey() string { return b.ResolvedURI.CacheKey() }
