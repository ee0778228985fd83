package fetcher

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rustgen-dev/rustgen/internal/adapters/manifest"
	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

func buildTestArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}); err != nil {
			t.Fatalf("writing tar header for %s: %v", name, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("writing tar content for %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return buf.Bytes()
}

func TestRegistryFetcherFetch(t *testing.T) {
	archive := buildTestArchive(t, map[string]string{
		"rustgen-component.yml":     sampleManifestYAML,
		"templates/main.go.tmpl": "package main\n",
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/components/auth-component/latest/manifest":
			w.Write([]byte(sampleManifestYAML))
		case "/v1/components/auth-component/latest/archive":
			w.Write(archive)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewRegistryFetcher(srv.URL, 0, "", manifest.NewLoader())
	uri, err := entities.ParseComponentURI("registry:auth-component")
	if err != nil {
		t.Fatal(err)
	}

	bundle, err := f.Fetch(context.Background(), uri)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer os.RemoveAll(bundle.LocalPath)

	if bundle.Manifest.Name != "auth-component" {
		t.Fatalf("unexpected manifest: %+v", bundle.Manifest)
	}
	data, err := os.ReadFile(filepath.Join(bundle.LocalPath, "templates", "main.go.tmpl"))
	if err != nil {
		t.Fatalf("expected archive to be extracted: %v", err)
	}
	if string(data) != "package main\n" {
		t.Fatalf("unexpected template content: %q", data)
	}
}

func TestRegistryFetcherSendsBearerToken(t *testing.T) {
	archive := buildTestArchive(t, map[string]string{"rustgen-component.yml": sampleManifestYAML})
	var sawAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/v1/components/auth-component/latest/manifest":
			w.Write([]byte(sampleManifestYAML))
		case "/v1/components/auth-component/latest/archive":
			w.Write(archive)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewRegistryFetcher(srv.URL, 0, "registry-token", manifest.NewLoader())
	uri, err := entities.ParseComponentURI("registry:auth-component")
	if err != nil {
		t.Fatal(err)
	}

	bundle, err := f.Fetch(context.Background(), uri)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer os.RemoveAll(bundle.LocalPath)

	if sawAuth != "Bearer registry-token" {
		t.Fatalf("expected Authorization %q, got %q", "Bearer registry-token", sawAuth)
	}
}

func TestRegistryFetcherMissingManifestReturnsFetchFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewRegistryFetcher(srv.URL, 0, "", manifest.NewLoader())
	uri, err := entities.ParseComponentURI("registry:missing")
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.Fetch(context.Background(), uri)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := err.(*entities.FetchFailedError); !ok {
		t.Fatalf("expected *FetchFailedError, got %T: %v", err, err)
	}
}
