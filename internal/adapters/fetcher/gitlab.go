package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.Fetcher = (*GitLabFetcher)(nil)

// GitLabFetcher fetches a component's manifest and files as raw blobs off
// gitlab.com's raw-file endpoint. Asset globs are resolved
// against the GitLab repository tree API.
type GitLabFetcher struct {
	client         *http.Client
	manifestLoader usecases.ManifestLoader
	token          string

	// rawBaseURL and apiBaseURL default to the real gitlab.com endpoints;
	// tests override them to point at an httptest.Server.
	rawBaseURL string
	apiBaseURL string
}

// NewGitLabFetcher constructs a GitLabFetcher. token, if non-empty, is sent
// as a private token on every request (required for private projects).
func NewGitLabFetcher(timeout time.Duration, token string, manifestLoader usecases.ManifestLoader) *GitLabFetcher {
	return &GitLabFetcher{
		client:         newHTTPClient(timeout),
		manifestLoader: manifestLoader,
		token:          token,
		rawBaseURL:     "https://gitlab.com",
		apiBaseURL:     "https://gitlab.com",
	}
}

func (*GitLabFetcher) Supports(scheme entities.URIScheme) bool { return scheme == entities.SchemeGitLab }

func (f *GitLabFetcher) Fetch(ctx context.Context, uri entities.ComponentURI) (entities.ComponentBundle, error) {
	ref := uri.Constraint
	if ref == "" {
		ref = "main"
	}

	projectPath := path.Join(uri.Owner, uri.Repo, uri.SubPath)
	manifest, manifestRelPath, data, err := f.fetchManifest(ctx, uri, projectPath, ref)
	if err != nil {
		return entities.ComponentBundle{}, err
	}

	dir, err := materializeDir(fmt.Sprintf("%s-%s", uri.Owner, uri.Repo))
	if err != nil {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}
	if err := writeRelFile(dir, manifestRelPath, data); err != nil {
		return entities.ComponentBundle{}, &entities.FetchFailedError{URI: uri.String(), Err: err}
	}

	for _, t := range manifest.Templates {
		if err := f.fetchOne(ctx, dir, projectPath, ref, t.SourcePath); err != nil {
			return entities.ComponentBundle{}, err
		}
	}
	for _, h := range manifest.Hooks {
		if err := f.fetchOne(ctx, dir, projectPath, ref, h.Path); err != nil {
			return entities.ComponentBundle{}, err
		}
	}
	if err := f.fetchAssets(ctx, dir, projectPath, ref, manifest); err != nil {
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

func (f *GitLabFetcher) rawURL(projectPath, ref, relPath string) string {
	return fmt.Sprintf("%s/%s/-/raw/%s/%s", f.rawBaseURL, projectPath, ref, relPath)
}

func (f *GitLabFetcher) headers() map[string]string {
	if f.token == "" {
		return nil
	}
	return map[string]string{"PRIVATE-TOKEN": f.token}
}

func (f *GitLabFetcher) fetchManifest(ctx context.Context, uri entities.ComponentURI, projectPath, ref string) (entities.ComponentManifest, string, []byte, error) {
	var lastErr error
	for _, name := range entities.ManifestFileNames {
		data, err := getBytes(ctx, f.client, f.rawURL(projectPath, ref, name), f.headers())
		if err != nil {
			lastErr = err
			continue
		}
		manifest, err := f.manifestLoader.Load(data, uri.String()+"/"+name)
		if err != nil {
			return entities.ComponentManifest{}, "", nil, err
		}
		return manifest, name, data, nil
	}
	return entities.ComponentManifest{}, "", nil, &entities.FetchFailedError{URI: uri.String(), Err: lastErr}
}

func (f *GitLabFetcher) fetchOne(ctx context.Context, dir, projectPath, ref, relPath string) error {
	url := f.rawURL(projectPath, ref, relPath)
	data, err := getBytes(ctx, f.client, url, f.headers())
	if err != nil {
		return &entities.FetchFailedError{URI: url, Err: err}
	}
	return writeRelFile(dir, relPath, data)
}

type gitlabTreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

func (f *GitLabFetcher) fetchAssets(ctx context.Context, dir, projectPath, ref string, manifest entities.ComponentManifest) error {
	if len(manifest.Assets) == 0 {
		return nil
	}

	apiURL := fmt.Sprintf("%s/api/v4/projects/%s/repository/tree?recursive=true&per_page=100&ref=%s",
		f.apiBaseURL, url.PathEscape(projectPath), url.QueryEscape(ref))
	data, err := getBytes(ctx, f.client, apiURL, f.headers())
	if err != nil {
		return &entities.FetchFailedError{URI: apiURL, Err: err}
	}

	var entries []gitlabTreeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return &entities.FetchFailedError{URI: apiURL, Err: err}
	}

	for _, a := range manifest.Assets {
		matcher := entities.NewGlobMatcher(a.Pattern)
		for _, e := range entries {
			if e.Type != "blob" {
				continue
			}
			if e.Path == a.Pattern || matcher.Match(e.Path) || matcher.Match(path.Base(e.Path)) {
				if err := f.fetchOne(ctx, dir, projectPath, ref, e.Path); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
