package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.Fetcher = (*GitHubFetcher)(nil)

// GitHubFetcher fetches a component's manifest and files as raw blobs off
// raw.githubusercontent.com.
// Asset globs are resolved against the GitHub trees API since raw-content
// URLs cannot list a directory.
type GitHubFetcher struct {
	client         *http.Client
	manifestLoader usecases.ManifestLoader
	token          string

	// rawBaseURL and apiBaseURL default to the real GitHub endpoints;
	// tests override them to point at an httptest.Server.
	rawBaseURL string
	apiBaseURL string
}

// NewGitHubFetcher constructs a GitHubFetcher. token, if non-empty, is sent
// as a bearer token on the trees API call (raw-content fetches are
// unauthenticated and work against public repos without one).
func NewGitHubFetcher(timeout time.Duration, token string, manifestLoader usecases.ManifestLoader) *GitHubFetcher {
	return &GitHubFetcher{
		client:         newHTTPClient(timeout),
		manifestLoader: manifestLoader,
		token:          token,
		rawBaseURL:     "https://raw.githubusercontent.com",
		apiBaseURL:     "https://api.github.com",
	}
}

func (*GitHubFetcher) Supports(scheme entities.URIScheme) bool { return scheme == entities.SchemeGitHub }

func (f *GitHubFetcher) Fetch(ctx context.Context, uri entities.ComponentURI) (entities.ComponentBundle, error) {
	ref := uri.Constraint
	if ref == "" {
		ref = "main"
	}

	repoDir := path.Join(uri.Owner, uri.Repo, uri.SubPath)
	manifest, manifestRelPath, manifestData, err := f.fetchManifest(ctx, uri, repoDir, ref)
	if err != nil {
		return entities.ComponentBundle{}, err
	}

	dir, err := materializeDir(fmt.Sprintf("%s-%s", uri.Owner, uri.Repo))
	if err != nil {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}

	if err := writeRelFile(dir, manifestRelPath, manifestData); err != nil {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}

	if err := f.fetchListedFiles(ctx, dir, repoDir, ref, manifest); err != nil {
		return entities.ComponentBundle{}, err
	}
	if err := f.fetchAssets(ctx, dir, repoDir, ref, manifest); err != nil {
		return entities.ComponentBundle{}, err
	}

	manifest.SourcePath = manifestRelPath
	return entities.ComponentBundle{
		Manifest:    manifest,
		ResolvedURI: uri,
		LocalPath:   dir,
		FetchedAt:   nowUnix(),
	}, nil
}

func (f *GitHubFetcher) fetchManifest(ctx context.Context, uri entities.ComponentURI, repoDir, ref string) (entities.ComponentManifest, string, []byte, error) {
	var lastErr error
	for _, name := range entities.ManifestFileNames {
		relPath := name
		url := fmt.Sprintf("%s/%s/%s/%s", f.rawBaseURL, repoDir, ref, relPath)
		data, err := getBytes(ctx, f.client, url, nil)
		if err != nil {
			lastErr = err
			continue
		}
		manifest, err := f.manifestLoader.Load(data, uri.String()+"/"+relPath)
		if err != nil {
			return entities.ComponentManifest{}, "", nil, err
		}
		return manifest, relPath, data, nil
	}
	return entities.ComponentManifest{}, "", nil, &entities.FetchFailedError{URI: uri.String(), Err: lastErr}
}

func (f *GitHubFetcher) fetchListedFiles(ctx context.Context, dir, repoDir, ref string, manifest entities.ComponentManifest) error {
	for _, t := range manifest.Templates {
		if err := f.fetchOne(ctx, dir, repoDir, ref, t.SourcePath); err != nil {
			return err
		}
	}
	for _, h := range manifest.Hooks {
		if err := f.fetchOne(ctx, dir, repoDir, ref, h.Path); err != nil {
			return err
		}
	}
	return nil
}

func (f *GitHubFetcher) fetchOne(ctx context.Context, dir, repoDir, ref, relPath string) error {
	url := fmt.Sprintf("%s/%s/%s/%s", f.rawBaseURL, repoDir, ref, relPath)
	data, err := getBytes(ctx, f.client, url, nil)
	if err != nil {
		return &entities.FetchFailedError{URI: url, Err: err}
	}
	return writeRelFile(dir, relPath, data)
}

func (f *GitHubFetcher) fetchAssets(ctx context.Context, dir, repoDir, ref string, manifest entities.ComponentManifest) error {
	if len(manifest.Assets) == 0 {
		return nil
	}

	paths, err := f.listTree(ctx, repoDir, ref)
	if err != nil {
		return err
	}

	for _, a := range manifest.Assets {
		matcher := entities.NewGlobMatcher(a.Pattern)
		for _, p := range paths {
			if p == a.Pattern || matcher.Match(p) || matcher.Match(path.Base(p)) {
				if err := f.fetchOne(ctx, dir, repoDir, ref, p); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

type githubTreeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

func (f *GitHubFetcher) listTree(ctx context.Context, repoDir, ref string) ([]string, error) {
	url := fmt.Sprintf("%s/repos/%s/git/trees/%s?recursive=1", f.apiBaseURL, repoDir, ref)
	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if f.token != "" {
		headers["Authorization"] = "Bearer " + f.token
	}

	data, err := getBytes(ctx, f.client, url, headers)
	if err != nil {
		return nil, &entities.FetchFailedError{URI: url, Err: err}
	}

	var resp githubTreeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &entities.FetchFailedError{URI: url, Err: err}
	}

	paths := make([]string, 0, len(resp.Tree))
	for _, entry := range resp.Tree {
		if entry.Type == "blob" {
			paths = append(paths, entry.Path)
		}
	}
	return paths, nil
}
