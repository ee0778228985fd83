package fetcher

import (
	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.FetcherRegistry = (*Registry)(nil)

// Registry dispatches a ComponentURI's scheme to the Fetcher registered to
// handle it.
type Registry struct {
	fetchers map[entities.URIScheme]usecases.Fetcher
}

// NewRegistry builds a Registry from a fixed set of fetchers, one per
// scheme the host config wires up.
func NewRegistry(fetchers ...usecases.Fetcher) *Registry {
	r := &Registry{fetchers: make(map[entities.URIScheme]usecases.Fetcher, len(fetchers))}
	for _, f := range fetchers {
		for _, scheme := range []entities.URIScheme{
			entities.SchemePath, entities.SchemeFile, entities.SchemeGitHub,
			entities.SchemeGitLab, entities.SchemeGit, entities.SchemeRegistry,
		} {
			if f.Supports(scheme) {
				r.fetchers[scheme] = f
			}
		}
	}
	return r
}

// FetcherFor returns the Fetcher registered for scheme, if any.
func (r *Registry) FetcherFor(scheme entities.URIScheme) (usecases.Fetcher, bool) {
	f, ok := r.fetchers[scheme]
	return f, ok
}
