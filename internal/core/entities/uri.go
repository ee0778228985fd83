package entities

import (
	"fmt"
	"net/url"
	"strings"
)

// URIScheme is the closed set of component reference schemes.
type URIScheme string

const (
	SchemePath     URIScheme = "path"
	SchemeFile     URIScheme = "file"
	SchemeGitHub   URIScheme = "github"
	SchemeGitLab   URIScheme = "gitlab"
	SchemeGit      URIScheme = "git"
	SchemeRegistry URIScheme = "registry"
)

// ComponentURI is the parsed, validated representation of a component
// reference string such as "github:acme/auth-component@^1.2.0" or
// "path:./components/local-auth".
//
// Exactly the fields relevant to its scheme are populated; callers should
// switch on Scheme before reading scheme-specific fields.
type ComponentURI struct {
	Scheme URIScheme

	// path:, file:
	LocalPath string

	// github:, gitlab:
	Owner string
	Repo  string

	// git:
	RemoteURL string

	// registry:
	RegistryName string

	// github:, gitlab:, git:, registry: - empty means "latest"/unconstrained
	Constraint string

	// github:, gitlab:, git: - optional subdirectory within the repo
	SubPath string

	raw string
}

// ParseComponentURI parses a component reference string into a
// ComponentURI. It performs no I/O: it only validates structure.
func ParseComponentURI(raw string) (ComponentURI, error) {
	if raw == "" {
		return ComponentURI{}, &MalformedURIError{Input: raw, Reason: "empty URI"}
	}

	scheme, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return ComponentURI{}, &MalformedURIError{Input: raw, Reason: "missing scheme separator ':'"}
	}

	switch URIScheme(scheme) {
	case SchemePath:
		if rest == "" {
			return ComponentURI{}, &MalformedURIError{Input: raw, Reason: "path: scheme requires a non-empty path"}
		}
		return ComponentURI{Scheme: SchemePath, LocalPath: rest, raw: raw}, nil

	case SchemeFile:
		if rest == "" {
			return ComponentURI{}, &MalformedURIError{Input: raw, Reason: "file: scheme requires a non-empty path"}
		}
		return ComponentURI{Scheme: SchemeFile, LocalPath: rest, raw: raw}, nil

	case SchemeGitHub, SchemeGitLab:
		locator, constraint := splitConstraint(rest)
		owner, repo, subPath, err := splitOwnerRepo(locator)
		if err != nil {
			return ComponentURI{}, &MalformedURIError{Input: raw, Reason: err.Error()}
		}
		return ComponentURI{
			Scheme: URIScheme(scheme), Owner: owner, Repo: repo, SubPath: subPath,
			Constraint: constraint, raw: raw,
		}, nil

	case SchemeGit:
		locator, constraint := splitConstraint(rest)
		if locator == "" {
			return ComponentURI{}, &MalformedURIError{Input: raw, Reason: "git: scheme requires a non-empty remote URL"}
		}
		if _, err := url.Parse(locator); err != nil {
			return ComponentURI{}, &MalformedURIError{Input: raw, Reason: fmt.Sprintf("invalid remote URL: %v", err)}
		}
		return ComponentURI{Scheme: SchemeGit, RemoteURL: locator, Constraint: constraint, raw: raw}, nil

	case SchemeRegistry:
		locator, constraint := splitConstraint(rest)
		if locator == "" {
			return ComponentURI{}, &MalformedURIError{Input: raw, Reason: "registry: scheme requires a non-empty component name"}
		}
		return ComponentURI{Scheme: SchemeRegistry, RegistryName: locator, Constraint: constraint, raw: raw}, nil

	default:
		return ComponentURI{}, &MalformedURIError{Input: raw, Reason: fmt.Sprintf("unknown scheme %q", scheme)}
	}
}

// splitConstraint separates a trailing "@constraint" suffix, if present.
// The '@' nearest the end is used so git remote URLs containing '@' (SSH
// form, user@host) are not mistaken for a constraint separator unless a
// constraint genuinely follows the final path segment.
func splitConstraint(s string) (locator, constraint string) {
	at := strings.LastIndex(s, "@")
	if at == -1 {
		return s, ""
	}
	// An '@' immediately followed by a constraint-looking token (digit, '^',
	// '~', '>', '<', '=') is treated as the version separator; an '@' used
	// for SSH-style user@host is followed by a hostname instead.
	suffix := s[at+1:]
	if suffix == "" {
		return s, ""
	}
	switch suffix[0] {
	case '^', '~', '>', '<', '=', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return s[:at], suffix
	}
	return s, ""
}

func splitOwnerRepo(locator string) (owner, repo, subPath string, err error) {
	parts := strings.SplitN(locator, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("expected owner/repo[/subpath], got %q", locator)
	}
	owner, repo = parts[0], parts[1]
	if len(parts) == 3 {
		subPath = parts[2]
	}
	return owner, repo, subPath, nil
}

// String reconstructs the canonical URI string.
func (u ComponentURI) String() string { return u.raw }

// Identity returns the scheme+locator identity used to track a component
// across the resolution graph, independent of which version ultimately
// gets resolved. Two ancestors depending on the same component through
// different ranges share this identity so their constraints can be
// accumulated and intersected against a single resolved version.
func (u ComponentURI) Identity() string {
	switch u.Scheme {
	case SchemePath, SchemeFile:
		return fmt.Sprintf("%s:%s", u.Scheme, u.LocalPath)
	case SchemeGitHub, SchemeGitLab:
		key := fmt.Sprintf("%s:%s/%s", u.Scheme, u.Owner, u.Repo)
		if u.SubPath != "" {
			key += "/" + u.SubPath
		}
		return key
	case SchemeGit:
		return fmt.Sprintf("git:%s", u.RemoteURL)
	case SchemeRegistry:
		return fmt.Sprintf("registry:%s", u.RegistryName)
	default:
		return u.raw
	}
}

// CacheKey returns the stable key used to index the two-tier cache,
// combining scheme, locator, and version so two requests for the same
// component at different version constraints never collide on one cache
// entry. Local schemes have no separate version axis, so path:/file:
// components are keyed on locator alone.
func (u ComponentURI) CacheKey() string {
	if u.IsLocal() {
		return u.Identity()
	}
	ref := u.Constraint
	if ref == "" {
		ref = "latest"
	}
	return fmt.Sprintf("%s@%s", u.Identity(), ref)
}

// WithVersion returns a copy of u pinned to version, overriding whatever
// constraint it already carried. The resolver calls this once it has
// picked the exact version to fetch, so the cache key and the fetch
// request both name that version rather than "latest".
func (u ComponentURI) WithVersion(version string) ComponentURI {
	u.Constraint = version
	u.raw = fmt.Sprintf("%s@%s", u.Identity(), version)
	return u
}

// IsLocal reports whether this URI refers to the local filesystem, meaning
// its cache key has no version part and the watcher can report it on disk
// change.
func (u ComponentURI) IsLocal() bool {
	return u.Scheme == SchemePath || u.Scheme == SchemeFile
}

// DisplayName returns a short human-readable identity for progress output
// and error messages.
func (u ComponentURI) DisplayName() string {
	switch u.Scheme {
	case SchemePath, SchemeFile:
		return u.LocalPath
	case SchemeGitHub, SchemeGitLab:
		return fmt.Sprintf("%s/%s", u.Owner, u.Repo)
	case SchemeGit:
		return u.RemoteURL
	case SchemeRegistry:
		return u.RegistryName
	default:
		return u.raw
	}
}
