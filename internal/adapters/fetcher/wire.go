package fetcher

import (
	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

// NewRegistryFromHostConfig builds a Registry with one fetcher per scheme,
// configured from the generator's own host config.
func NewRegistryFromHostConfig(cfg entities.HostConfig, manifestLoader usecases.ManifestLoader) *Registry {
	return NewRegistry(
		NewLocalFetcher(manifestLoader),
		NewGitHubFetcher(cfg.FetchTimeout, cfg.RegistryToken, manifestLoader),
		NewGitLabFetcher(cfg.FetchTimeout, cfg.RegistryToken, manifestLoader),
		NewGitFetcher(manifestLoader),
		NewRegistryFetcher(cfg.RegistryURL, cfg.FetchTimeout, cfg.RegistryToken, manifestLoader),
	)
}
