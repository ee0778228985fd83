package fetcher

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.Fetcher = (*RegistryFetcher)(nil)
var _ usecases.VersionLister = (*RegistryFetcher)(nil)

// RegistryFetcher fetches a component's manifest and a tar.gz archive of
// its files from a rustgen component registry. The registry's base URL defaults to
// entities.DefaultHostConfig's RegistryURL and is otherwise taken from the
// host config the caller was constructed with.
type RegistryFetcher struct {
	client      *http.Client
	baseURL     string
	token       string
	manifestLdr usecases.ManifestLoader
}

// NewRegistryFetcher constructs a RegistryFetcher against baseURL (no
// trailing slash expected; one is trimmed if present).
func NewRegistryFetcher(baseURL string, timeout time.Duration, token string, manifestLoader usecases.ManifestLoader) *RegistryFetcher {
	return &RegistryFetcher{
		client:      newHTTPClient(timeout),
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		token:       token,
		manifestLdr: manifestLoader,
	}
}

func (*RegistryFetcher) Supports(scheme entities.URIScheme) bool { return scheme == entities.SchemeRegistry }

func (f *RegistryFetcher) headers() map[string]string {
	if f.token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + f.token}
}

func (f *RegistryFetcher) Fetch(ctx context.Context, uri entities.ComponentURI) (entities.ComponentBundle, error) {
	version := uri.Constraint
	if version == "" {
		version = "latest"
	}

	manifestURL := fmt.Sprintf("%s/v1/components/%s/%s/manifest", f.baseURL, uri.RegistryName, version)
	data, err := getBytes(ctx, f.client, manifestURL, f.headers())
	if err != nil {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}
	manifest, err := f.manifestLdr.Load(data, manifestURL)
	if err != nil {
		return entities.ComponentBundle{}, err
	}

	dir, err := materializeDir(uri.RegistryName)
	if err != nil {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}

	archiveURL := fmt.Sprintf("%s/v1/components/%s/%s/archive", f.baseURL, uri.RegistryName, version)
	archive, err := getBytes(ctx, f.client, archiveURL, f.headers())
	if err != nil {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}
	if err := extractTarGz(archive, dir); err != nil {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}

	manifestPath := filepath.Join(dir, entities.ManifestFileNames[0])
	manifest.SourcePath = manifestPath

	return entities.ComponentBundle{
		Manifest:    manifest,
		ResolvedURI: uri,
		LocalPath:   dir,
		FetchedAt:   nowUnix(),
	}, nil
}

// ListVersions queries the registry for every published version of a
// component. The resolver uses it to pick the highest version satisfying
// the cumulative constraint set before fetching a manifest or archive.
func (f *RegistryFetcher) ListVersions(ctx context.Context, uri entities.ComponentURI) ([]entities.SemVersion, error) {
	versionsURL := fmt.Sprintf("%s/v1/components/%s/versions", f.baseURL, uri.RegistryName)
	data, err := getBytes(ctx, f.client, versionsURL, f.headers())
	if err != nil {
		return nil, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}

	var resp struct {
		Versions []string `json:"versions"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}

	versions := make([]entities.SemVersion, 0, len(resp.Versions))
	for _, s := range resp.Versions {
		v, err := entities.ParseSemVer(s)
		if err != nil {
			return nil, &entities.FetchFailedError{URI: uri.String(), Err: fmt.Errorf("invalid version %q in registry response: %w", s, err)}
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// extractTarGz unpacks a gzip-compressed tar archive into dir. No
// third-party archive library appears anywhere in the example corpus, so
// this uses archive/tar + compress/gzip directly (see DESIGN.md).
func extractTarGz(data []byte, dir string) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("opening gzip archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target := filepath.Join(dir, filepath.Clean(header.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("tar entry %q escapes archive root", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(header.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}
}
