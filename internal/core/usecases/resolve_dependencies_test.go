package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

type fakeCache struct {
	store map[string]entities.ComponentBundle
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string]entities.ComponentBundle{}} }

func (c *fakeCache) Get(ctx context.Context, key string) (entities.ComponentBundle, bool, error) {
	b, ok := c.store[key]
	return b, ok, nil
}
func (c *fakeCache) Store(ctx context.Context, key string, bundle entities.ComponentBundle) error {
	c.store[key] = bundle
	return nil
}
func (c *fakeCache) Invalidate(ctx context.Context, key string) error { delete(c.store, key); return nil }
func (c *fakeCache) Clear(ctx context.Context) error                 { c.store = map[string]entities.ComponentBundle{}; return nil }
func (c *fakeCache) Cleanup(ctx context.Context, maxAge time.Duration, minAccessCount uint64) (int, error) {
	return 0, nil
}
func (c *fakeCache) Stats(ctx context.Context) (entities.CacheStats, error) { return entities.CacheStats{}, nil }

type fakeFetcher struct {
	manifests map[string]entities.ComponentManifest
}

func (f *fakeFetcher) Supports(scheme entities.URIScheme) bool { return scheme == entities.SchemePath }

func (f *fakeFetcher) Fetch(ctx context.Context, uri entities.ComponentURI) (entities.ComponentBundle, error) {
	manifest, ok := f.manifests[uri.LocalPath]
	if !ok {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String()}
	}
	return entities.ComponentBundle{Manifest: manifest, ResolvedURI: uri, LocalPath: uri.LocalPath}, nil
}

type fakeRegistry struct{ fetcher *fakeFetcher }

func (r *fakeRegistry) FetcherFor(scheme entities.URIScheme) (Fetcher, bool) {
	if r.fetcher.Supports(scheme) {
		return r.fetcher, true
	}
	return nil, false
}

func mustVer(t *testing.T, s string) entities.SemVersion {
	t.Helper()
	v, err := entities.ParseSemVer(s)
	if err != nil {
		t.Fatalf("ParseSemVer(%q): %v", s, err)
	}
	return v
}

func TestBundleResolverHappyPath(t *testing.T) {
	fetcher := &fakeFetcher{manifests: map[string]entities.ComponentManifest{
		"./auth": {
			Name: "auth", Version: mustVer(t, "1.2.0"),
			APICompatibility: entities.APICompatibility{Min: mustVer(t, "1.0.0"), Max: mustVer(t, "9.0.0")},
		},
	}}
	resolver := &BundleResolver{
		Fetchers:    &fakeRegistry{fetcher: fetcher},
		Cache:       newFakeCache(),
		Compat:      DefaultCompatibilityChecker{},
		HostVersion: mustVer(t, "2.0.0"),
	}

	roots := []entities.DependencyRequirement{{Alias: "auth", URI: "path:./auth", Constraint: "^1.0.0"}}
	graph, bundles, err := resolver.Resolve(context.Background(), roots)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if graph.Size() != 1 {
		t.Fatalf("expected 1 node, got %d", graph.Size())
	}
	if _, ok := bundles["auth"]; !ok {
		t.Fatalf("expected bundle for alias 'auth', got %v", bundles)
	}
}

func TestBundleResolverUnsatisfiableConstraint(t *testing.T) {
	fetcher := &fakeFetcher{manifests: map[string]entities.ComponentManifest{
		"./auth": {
			Name: "auth", Version: mustVer(t, "3.0.0"),
			APICompatibility: entities.APICompatibility{Min: mustVer(t, "1.0.0"), Max: mustVer(t, "9.0.0")},
		},
	}}
	resolver := &BundleResolver{
		Fetchers:    &fakeRegistry{fetcher: fetcher},
		Cache:       newFakeCache(),
		Compat:      DefaultCompatibilityChecker{},
		HostVersion: mustVer(t, "2.0.0"),
	}

	roots := []entities.DependencyRequirement{{Alias: "auth", URI: "path:./auth", Constraint: "^1.0.0"}}
	_, _, err := resolver.Resolve(context.Background(), roots)
	if err == nil {
		t.Fatal("expected an unsatisfiable constraint error")
	}
	if _, ok := err.(*entities.UnsatisfiableConstraintsError); !ok {
		t.Fatalf("expected *UnsatisfiableConstraintsError, got %T: %v", err, err)
	}
}

// fakeVersionedFetcher fakes a registry that can enumerate a component's
// published versions, so the resolver's highest-satisfying-version
// selection can be exercised without a real HTTP registry.
type fakeVersionedFetcher struct {
	versions  map[string][]string
	manifests map[string]map[string]entities.ComponentManifest
}

func (f *fakeVersionedFetcher) Supports(scheme entities.URIScheme) bool {
	return scheme == entities.SchemeRegistry
}

func (f *fakeVersionedFetcher) ListVersions(ctx context.Context, uri entities.ComponentURI) ([]entities.SemVersion, error) {
	raw := f.versions[uri.RegistryName]
	versions := make([]entities.SemVersion, 0, len(raw))
	for _, s := range raw {
		v, err := entities.ParseSemVer(s)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func (f *fakeVersionedFetcher) Fetch(ctx context.Context, uri entities.ComponentURI) (entities.ComponentBundle, error) {
	byVersion, ok := f.manifests[uri.RegistryName]
	if !ok {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String()}
	}
	manifest, ok := byVersion[uri.Constraint]
	if !ok {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String()}
	}
	return entities.ComponentBundle{Manifest: manifest, ResolvedURI: uri, LocalPath: uri.RegistryName}, nil
}

func widePermissiveCompat(t *testing.T) entities.APICompatibility {
	return entities.APICompatibility{Min: mustVer(t, "1.0.0"), Max: mustVer(t, "9.0.0")}
}

// TestBundleResolverPicksHighestSatisfyingRegistryVersion exercises the
// "root declares ui-kit and utils; ui-kit itself depends on utils under a
// narrower range" scenario: the resolver must pick the highest utils
// version satisfying both the root's and ui-kit's constraints.
func TestBundleResolverPicksHighestSatisfyingRegistryVersion(t *testing.T) {
	fetcher := &fakeVersionedFetcher{
		versions: map[string][]string{
			"ui-kit": {"1.2.0"},
			"utils":  {"2.1.3", "2.2.0"},
		},
		manifests: map[string]map[string]entities.ComponentManifest{
			"ui-kit": {"1.2.0": {
				Name: "ui-kit", Version: mustVer(t, "1.2.0"), APICompatibility: widePermissiveCompat(t),
				Dependencies: []entities.DependencyRequirement{{Alias: "utils", URI: "registry:utils", Constraint: "^2.0.0"}},
			}},
			"utils": {
				"2.1.3": {Name: "utils", Version: mustVer(t, "2.1.3"), APICompatibility: widePermissiveCompat(t)},
				"2.2.0": {Name: "utils", Version: mustVer(t, "2.2.0"), APICompatibility: widePermissiveCompat(t)},
			},
		},
	}
	resolver := &BundleResolver{
		Fetchers:    fakeFetcherRegistryFor(fetcher),
		Cache:       newFakeCache(),
		Compat:      DefaultCompatibilityChecker{},
		HostVersion: mustVer(t, "2.0.0"),
	}

	roots := []entities.DependencyRequirement{
		{Alias: "ui-kit", URI: "registry:ui-kit", Constraint: "^1.0.0"},
		{Alias: "utils", URI: "registry:utils", Constraint: "~2.1.0"},
	}
	graph, bundles, err := resolver.Resolve(context.Background(), roots)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if graph.Size() != 2 {
		t.Fatalf("expected 2 nodes, got %d", graph.Size())
	}
	if got := bundles["utils"].Manifest.Version.String(); got != "2.1.3" {
		t.Fatalf("expected utils 2.1.3 (highest satisfying ~2.1.0 and ^2.0.0), got %s", got)
	}
	if got := bundles["ui-kit"].Manifest.Version.String(); got != "1.2.0" {
		t.Fatalf("expected ui-kit 1.2.0, got %s", got)
	}

	order, err := graph.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder: %v", err)
	}
	if len(order) != 2 || order[0] != "utils" || order[1] != "ui-kit" {
		t.Fatalf("expected installation order [utils, ui-kit], got %v", order)
	}
}

// TestBundleResolverUnsatisfiableAcrossRegistryVersions mirrors the scenario
// above but with ui-kit requiring a utils major version the registry never
// published, so no candidate satisfies every ancestor's constraint.
func TestBundleResolverUnsatisfiableAcrossRegistryVersions(t *testing.T) {
	fetcher := &fakeVersionedFetcher{
		versions: map[string][]string{
			"ui-kit": {"1.2.0"},
			"utils":  {"2.1.3", "2.2.0"},
		},
		manifests: map[string]map[string]entities.ComponentManifest{
			"ui-kit": {"1.2.0": {
				Name: "ui-kit", Version: mustVer(t, "1.2.0"), APICompatibility: widePermissiveCompat(t),
				Dependencies: []entities.DependencyRequirement{{Alias: "utils", URI: "registry:utils", Constraint: "^3.0.0"}},
			}},
			"utils": {
				"2.1.3": {Name: "utils", Version: mustVer(t, "2.1.3"), APICompatibility: widePermissiveCompat(t)},
				"2.2.0": {Name: "utils", Version: mustVer(t, "2.2.0"), APICompatibility: widePermissiveCompat(t)},
			},
		},
	}
	resolver := &BundleResolver{
		Fetchers:    fakeFetcherRegistryFor(fetcher),
		Cache:       newFakeCache(),
		Compat:      DefaultCompatibilityChecker{},
		HostVersion: mustVer(t, "2.0.0"),
	}

	roots := []entities.DependencyRequirement{
		{Alias: "ui-kit", URI: "registry:ui-kit", Constraint: "^1.0.0"},
		{Alias: "utils", URI: "registry:utils", Constraint: "~2.1.0"},
	}
	_, _, err := resolver.Resolve(context.Background(), roots)
	if err == nil {
		t.Fatal("expected an unsatisfiable constraint error")
	}
	unsat, ok := err.(*entities.UnsatisfiableConstraintsError)
	if !ok {
		t.Fatalf("expected *UnsatisfiableConstraintsError, got %T: %v", err, err)
	}
	if unsat.Alias != "utils" {
		t.Fatalf("expected the error to name utils, got %s", unsat.Alias)
	}
}

// fakeFetcherRegistryFor wraps a single fetcher that handles the registry:
// scheme, for tests exercising VersionLister behavior.
func fakeFetcherRegistryFor(f Fetcher) FetcherRegistry {
	return fakeFetcherRegistryFunc(func(scheme entities.URIScheme) (Fetcher, bool) {
		if f.Supports(scheme) {
			return f, true
		}
		return nil, false
	})
}

type fakeFetcherRegistryFunc func(scheme entities.URIScheme) (Fetcher, bool)

func (fn fakeFetcherRegistryFunc) FetcherFor(scheme entities.URIScheme) (Fetcher, bool) { return fn(scheme) }

// TestBundleResolverDiamondDependencyConflict exercises two direct roots
// that each pull in the same transitive component under incompatible
// ranges: the second ancestor's constraint must be checked against the
// version already resolved for the first, not silently ignored.
func TestBundleResolverDiamondDependencyConflict(t *testing.T) {
	fetcher := &fakeFetcher{manifests: map[string]entities.ComponentManifest{
		"./left": {
			Name: "left", Version: mustVer(t, "1.0.0"), APICompatibility: widePermissiveCompat(t),
			Dependencies: []entities.DependencyRequirement{{Alias: "shared", URI: "path:./shared", Constraint: "^1.0.0"}},
		},
		"./right": {
			Name: "right", Version: mustVer(t, "1.0.0"), APICompatibility: widePermissiveCompat(t),
			Dependencies: []entities.DependencyRequirement{{Alias: "shared", URI: "path:./shared", Constraint: "^2.0.0"}},
		},
		"./shared": {
			Name: "shared", Version: mustVer(t, "1.0.0"), APICompatibility: widePermissiveCompat(t),
		},
	}}
	resolver := &BundleResolver{
		Fetchers:    &fakeRegistry{fetcher: fetcher},
		Cache:       newFakeCache(),
		Compat:      DefaultCompatibilityChecker{},
		HostVersion: mustVer(t, "2.0.0"),
	}

	roots := []entities.DependencyRequirement{
		{Alias: "left", URI: "path:./left"},
		{Alias: "right", URI: "path:./right"},
	}
	_, _, err := resolver.Resolve(context.Background(), roots)
	if err == nil {
		t.Fatal("expected an unsatisfiable constraint error for the diamond dependency")
	}
	if _, ok := err.(*entities.UnsatisfiableConstraintsError); !ok {
		t.Fatalf("expected *UnsatisfiableConstraintsError, got %T: %v", err, err)
	}
}

// TestBundleResolverDiamondDependencyCompatible is the same shape but with
// ranges both satisfied by the one resolved version, proving the
// re-validation on an already-resolved identity doesn't reject legitimate
// shared dependencies.
func TestBundleResolverDiamondDependencyCompatible(t *testing.T) {
	fetcher := &fakeFetcher{manifests: map[string]entities.ComponentManifest{
		"./left": {
			Name: "left", Version: mustVer(t, "1.0.0"), APICompatibility: widePermissiveCompat(t),
			Dependencies: []entities.DependencyRequirement{{Alias: "shared", URI: "path:./shared", Constraint: "^1.0.0"}},
		},
		"./right": {
			Name: "right", Version: mustVer(t, "1.0.0"), APICompatibility: widePermissiveCompat(t),
			Dependencies: []entities.DependencyRequirement{{Alias: "shared", URI: "path:./shared", Constraint: "~1.0.0"}},
		},
		"./shared": {
			Name: "shared", Version: mustVer(t, "1.0.0"), APICompatibility: widePermissiveCompat(t),
		},
	}}
	resolver := &BundleResolver{
		Fetchers:    &fakeRegistry{fetcher: fetcher},
		Cache:       newFakeCache(),
		Compat:      DefaultCompatibilityChecker{},
		HostVersion: mustVer(t, "2.0.0"),
	}

	roots := []entities.DependencyRequirement{
		{Alias: "left", URI: "path:./left"},
		{Alias: "right", URI: "path:./right"},
	}
	graph, bundles, err := resolver.Resolve(context.Background(), roots)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if graph.Size() != 3 {
		t.Fatalf("expected 3 nodes, got %d", graph.Size())
	}
	if _, ok := bundles["path:./shared"]; !ok {
		t.Fatalf("expected a single shared bundle, got %v", bundles)
	}
}

func TestBundleResolverIncompatibleHost(t *testing.T) {
	fetcher := &fakeFetcher{manifests: map[string]entities.ComponentManifest{
		"./auth": {
			Name: "auth", Version: mustVer(t, "1.0.0"),
			APICompatibility: entities.APICompatibility{Min: mustVer(t, "5.0.0"), Max: mustVer(t, "9.0.0")},
		},
	}}
	resolver := &BundleResolver{
		Fetchers:    &fakeRegistry{fetcher: fetcher},
		Cache:       newFakeCache(),
		Compat:      DefaultCompatibilityChecker{},
		HostVersion: mustVer(t, "2.0.0"),
	}

	roots := []entities.DependencyRequirement{{Alias: "auth", URI: "path:./auth"}}
	_, _, err := resolver.Resolve(context.Background(), roots)
	if err == nil {
		t.Fatal("expected an incompatible-host error")
	}
	if _, ok := err.(*entities.IncompatibleError); !ok {
		t.Fatalf("expected *IncompatibleError, got %T: %v", err, err)
	}
}
