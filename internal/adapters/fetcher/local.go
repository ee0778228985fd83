package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.Fetcher = LocalFetcher{}

// LocalFetcher resolves path: and file: component references straight off
// the filesystem. It does no copying: the bundle's LocalPath is the
// component's own directory. The resolver caches the resulting bundle like
// any other, so a cached entry keeps the manifest as first fetched until
// that entry is invalidated.
type LocalFetcher struct {
	manifestLoader usecases.ManifestLoader
}

// NewLocalFetcher constructs a LocalFetcher.
func NewLocalFetcher(manifestLoader usecases.ManifestLoader) LocalFetcher {
	return LocalFetcher{manifestLoader: manifestLoader}
}

func (LocalFetcher) Supports(scheme entities.URIScheme) bool {
	return scheme == entities.SchemePath || scheme == entities.SchemeFile
}

func (f LocalFetcher) Fetch(ctx context.Context, uri entities.ComponentURI) (entities.ComponentBundle, error) {
	dir := uri.LocalPath
	manifestPath, err := findManifest(dir)
	if err != nil {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}

	manifest, err := f.manifestLoader.Load(data, manifestPath)
	if err != nil {
		return entities.ComponentBundle{}, err
	}
	manifest.SourcePath = manifestPath

	return entities.ComponentBundle{
		Manifest:    manifest,
		ResolvedURI: uri,
		LocalPath:   dir,
		FetchedAt:   nowUnix(),
	}, nil
}

// findManifest locates the manifest file in dir, trying
// entities.ManifestFileNames in priority order.
func findManifest(dir string) (string, error) {
	for _, name := range entities.ManifestFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no manifest found in %s (tried %v)", dir, entities.ManifestFileNames)
}
