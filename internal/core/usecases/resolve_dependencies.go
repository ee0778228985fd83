package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

// BundleResolver implements the dependency resolution algorithm: it
// walks a root set of dependency requirements depth-first, fetching each
// manifest through the cache-then-fetcher chain, narrowing each
// component's cumulative constraint set as ancestors impose their own
// requirements, and failing fast on an unsatisfiable set or a cycle.
// A component's version is chosen when the walk first reaches it; a
// constraint added afterwards by a component visited later is checked
// against that choice, and resolution fails if it excludes it.
//
// Components are identified by their URI's identity rather than by the
// locally-declared alias: two manifests may depend on the same component
// under different aliases, and their constraints must still be intersected
// against a single resolved version.
type BundleResolver struct {
	Fetchers          FetcherRegistry
	Cache             ComponentCache
	Compat            CompatibilityChecker
	HostVersion       entities.SemVersion
	AllowExperimental bool
}

type resolutionState struct {
	constraints map[string][]entities.VersionConstraint // identity -> cumulative constraints
	uris        map[string]entities.ComponentURI        // identity -> URI
	rootAlias   map[string]string                       // identity -> project-declared alias, when this is a root
	bundles     map[string]entities.ComponentBundle     // identity -> fetched bundle
	graph       *entities.DependencyGraph
	resolved    map[string]bool
}

// Resolve runs the algorithm and returns the populated dependency graph
// plus every bundle it fetched: root dependencies are keyed by their project
// alias, transitive ones by their URI identity.
func (r *BundleResolver) Resolve(ctx context.Context, roots []entities.DependencyRequirement) (*entities.DependencyGraph, map[string]entities.ComponentBundle, error) {
	state := &resolutionState{
		constraints: make(map[string][]entities.VersionConstraint),
		uris:        make(map[string]entities.ComponentURI),
		rootAlias:   make(map[string]string),
		bundles:     make(map[string]entities.ComponentBundle),
		graph:       entities.NewDependencyGraph(),
		resolved:    make(map[string]bool),
	}

	rootIdentities := make([]string, 0, len(roots))
	for _, root := range roots {
		uri, err := entities.ParseComponentURI(root.URI)
		if err != nil {
			return nil, nil, err
		}
		identity := uri.Identity()
		state.uris[identity] = uri
		state.rootAlias[identity] = root.Alias
		if root.Constraint != "" {
			c, err := entities.ParseConstraint(root.Constraint)
			if err != nil {
				return nil, nil, err
			}
			state.constraints[identity] = append(state.constraints[identity], c)
		}
		rootIdentities = append(rootIdentities, identity)
	}
	sort.Strings(rootIdentities)

	for _, identity := range rootIdentities {
		if err := r.resolveIdentity(ctx, state, identity, nil); err != nil {
			return nil, nil, err
		}
	}

	if _, err := state.graph.TopologicalOrder(); err != nil {
		return nil, nil, err
	}
	if err := r.validateNoVersionConflicts(state); err != nil {
		return nil, nil, err
	}

	bundlesByAlias := make(map[string]entities.ComponentBundle, len(state.bundles))
	for identity, bundle := range state.bundles {
		alias := identity
		if root, isRoot := state.rootAlias[identity]; isRoot {
			alias = root
		}
		bundlesByAlias[alias] = bundle
	}

	return state.graph, bundlesByAlias, nil
}

func (r *BundleResolver) nodeAlias(state *resolutionState, identity string) string {
	if alias, ok := state.rootAlias[identity]; ok {
		return alias
	}
	return identity
}

func (r *BundleResolver) resolveIdentity(ctx context.Context, state *resolutionState, identity string, ancestorStack []string) error {
	for _, a := range ancestorStack {
		if a == identity {
			cycle := append(append([]string{}, ancestorStack...), identity)
			return &entities.CircularDependencyError{Cycle: cycle}
		}
	}
	if state.resolved[identity] {
		// A sibling discovered via a different ancestor may have just
		// appended a fresh constraint for this already-resolved identity
		// (a diamond dependency). Re-check the version already chosen
		// against the now-larger constraint set rather than silently
		// accepting it.
		bundle, ok := state.bundles[identity]
		if !ok {
			return nil
		}
		if !entities.IntersectAll(state.constraints[identity], bundle.Manifest.Version) {
			return r.unsatisfiableConstraintsError(state, identity)
		}
		return nil
	}

	uri, err := r.resolveVersion(ctx, state, identity)
	if err != nil {
		return err
	}
	bundle, err := r.fetchThroughCache(ctx, uri)
	if err != nil {
		return err
	}

	version := bundle.Manifest.Version
	if !entities.IntersectAll(state.constraints[identity], version) {
		return r.unsatisfiableConstraintsError(state, identity)
	}

	status := r.Compat.Check(r.HostVersion, bundle.Manifest)
	if status.Blocking() && !r.AllowExperimental {
		return &entities.IncompatibleError{
			ComponentName: bundle.Manifest.Name,
			HostVersion:   r.HostVersion.String(),
			Status:        status,
			Detail: status.Describe(bundle.Manifest.Name, r.HostVersion,
				bundle.Manifest.APICompatibility.Min, bundle.Manifest.APICompatibility.Max),
		}
	}

	state.bundles[identity] = bundle
	alias := r.nodeAlias(state, identity)
	_ = state.graph.AddNode(&entities.DependencyNode{Alias: alias, URI: uri, Version: version})
	state.resolved[identity] = true

	nextStack := append(append([]string{}, ancestorStack...), identity)

	type childRef struct {
		identity   string
		constraint string
	}
	children := make([]childRef, 0, len(bundle.Manifest.Dependencies))
	for _, dep := range bundle.Manifest.Dependencies {
		childURI, err := entities.ParseComponentURI(dep.URI)
		if err != nil {
			return fmt.Errorf("component %q declared an invalid dependency URI: %w", bundle.Manifest.Name, err)
		}
		childIdentity := childURI.Identity()
		state.uris[childIdentity] = childURI
		if dep.Constraint != "" {
			c, err := entities.ParseConstraint(dep.Constraint)
			if err != nil {
				return err
			}
			state.constraints[childIdentity] = append(state.constraints[childIdentity], c)
		}
		children = append(children, childRef{identity: childIdentity, constraint: dep.Constraint})
	}
	sort.Slice(children, func(i, j int) bool { return children[i].identity < children[j].identity })

	for _, child := range children {
		if err := r.resolveIdentity(ctx, state, child.identity, nextStack); err != nil {
			return err
		}
		childAlias := r.nodeAlias(state, child.identity)
		_ = state.graph.AddEdge(&entities.DependencyEdge{Alias: alias, DependsOn: childAlias, Constraint: child.constraint})
	}

	return nil
}

// resolveVersion picks the concrete version to fetch for identity. If the
// URI already pins an exact version or ref, that's used unchanged. Otherwise,
// when the fetcher registered for its scheme can enumerate the component's
// published versions (VersionLister), the highest version satisfying every
// constraint accumulated for this identity so far is selected and pinned
// onto the returned URI, implementing the "pick the highest satisfying
// version" step of resolution. Fetchers with no such notion (a single git
// ref, a local path) leave the URI as-is; the constraint is still checked
// against whatever version comes back, in resolveIdentity.
func (r *BundleResolver) resolveVersion(ctx context.Context, state *resolutionState, identity string) (entities.ComponentURI, error) {
	uri := state.uris[identity]
	if uri.Constraint != "" {
		return uri, nil
	}

	fetcher, ok := r.Fetchers.FetcherFor(uri.Scheme)
	if !ok {
		return uri, nil
	}
	lister, ok := fetcher.(VersionLister)
	if !ok {
		return uri, nil
	}

	versions, err := lister.ListVersions(ctx, uri)
	if err != nil {
		return entities.ComponentURI{}, err
	}

	var best *entities.SemVersion
	for i := range versions {
		v := versions[i]
		if !entities.IntersectAll(state.constraints[identity], v) {
			continue
		}
		if best == nil || v.GreaterThan(*best) {
			best = &v
		}
	}
	if best == nil {
		return entities.ComponentURI{}, r.unsatisfiableConstraintsError(state, identity)
	}

	pinned := uri.WithVersion(best.String())
	state.uris[identity] = pinned
	return pinned, nil
}

// unsatisfiableConstraintsError builds an UnsatisfiableConstraintsError
// naming identity's alias and the full constraint set accumulated for it.
func (r *BundleResolver) unsatisfiableConstraintsError(state *resolutionState, identity string) error {
	constraints := state.constraints[identity]
	constraintStrs := make([]string, 0, len(constraints))
	for _, c := range constraints {
		constraintStrs = append(constraintStrs, c.String())
	}
	return &entities.UnsatisfiableConstraintsError{Alias: r.nodeAlias(state, identity), Constraints: constraintStrs}
}

// fetchThroughCache tries the cache first, falling back to the registered
// fetcher on a miss and storing the result.
func (r *BundleResolver) fetchThroughCache(ctx context.Context, uri entities.ComponentURI) (entities.ComponentBundle, error) {
	key := uri.CacheKey()

	if bundle, hit, err := r.Cache.Get(ctx, key); err != nil {
		return entities.ComponentBundle{}, err
	} else if hit {
		return bundle, nil
	}

	fetcher, ok := r.Fetchers.FetcherFor(uri.Scheme)
	if !ok {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String(), Err: fmt.Errorf("no fetcher registered for scheme %q", uri.Scheme)}
	}

	bundle, err := fetcher.Fetch(ctx, uri)
	if err != nil {
		return entities.ComponentBundle{}, err
	}

	if err := r.Cache.Store(ctx, key, bundle); err != nil {
		// A store failure degrades to uncached operation; the caller may
		// proceed with the fetched bundle. It is not fatal to resolution.
		return bundle, nil
	}
	return bundle, nil
}

// validateNoVersionConflicts enforces the post-resolution rule:
// for each component path, exactly one resolved version.
func (r *BundleResolver) validateNoVersionConflicts(state *resolutionState) error {
	byName := make(map[string][]string)
	for _, bundle := range state.bundles {
		byName[bundle.Manifest.Name] = append(byName[bundle.Manifest.Name], bundle.Manifest.Version.String())
	}
	for name, versions := range byName {
		seen := make(map[string]bool, len(versions))
		var unique []string
		for _, v := range versions {
			if !seen[v] {
				seen[v] = true
				unique = append(unique, v)
			}
		}
		if len(unique) > 1 {
			sort.Strings(unique)
			return &entities.VersionConflictError{Path: name, Versions: unique}
		}
	}
	return nil
}
