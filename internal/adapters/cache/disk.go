package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

// entryDirName derives a filesystem-safe directory name for a cache key:
// component cache keys carry ':' and '/' (scheme:locator), neither of which
// is safe across platforms, so the directory is named by the key's SHA-256
// hex digest. The original key is kept in meta.json for reverse lookup.
func entryDirName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// metaFile is the on-disk bookkeeping record for one cached bundle. Field
// names are primitive (string/int64/bool) throughout because entities'
// SemVersion and ComponentURI carry unexported parser state and are not
// themselves JSON-serializable; reconstruction re-parses through
// entities.ParseSemVer/ParseComponentURI.
type metaFile struct {
	Key          string    `json:"key"`
	CachedAt     time.Time `json:"cached_at"`
	LastVerified time.Time `json:"last_verified"`
	AccessCount  uint64    `json:"access_count"`

	Digest      string `json:"digest"`
	FetchedAt   int64  `json:"fetched_at"`
	ResolvedURI string `json:"resolved_uri"`

	ManifestName                 string `json:"manifest_name"`
	ManifestVersion              string `json:"manifest_version"`
	ManifestDescription          string `json:"manifest_description,omitempty"`
	ManifestHomepage             string `json:"manifest_homepage,omitempty"`
	ManifestRepository           string `json:"manifest_repository,omitempty"`
	APICompatibilityAPIVersion   string `json:"api_compatibility_api_version"`
	APICompatibilityMin          string `json:"api_compatibility_min"`
	APICompatibilityMax          string `json:"api_compatibility_max,omitempty"`
	APICompatibilityExperimental bool   `json:"api_compatibility_experimental,omitempty"`

	Dependencies []dependencyMeta `json:"dependencies,omitempty"`
	Templates    []templateMeta   `json:"templates,omitempty"`
	Hooks        []hookMeta       `json:"hooks,omitempty"`
	Assets       []assetMeta      `json:"assets,omitempty"`
}

type dependencyMeta struct {
	Alias      string `json:"alias"`
	URI        string `json:"uri"`
	Constraint string `json:"constraint,omitempty"`
}

type templateMeta struct {
	Name       string   `json:"name"`
	SourcePath string   `json:"source_path"`
	OutputPath string   `json:"output_path"`
	Target     string   `json:"target,omitempty"`
	Variables  []string `json:"variables,omitempty"`
	Overwrite  bool     `json:"overwrite"`
}

type hookMeta struct {
	Timing string `json:"timing"`
	Path   string `json:"path"`
}

type assetMeta struct {
	Pattern    string `json:"pattern"`
	OutputPath string `json:"output_path"`
}

func bundleToMeta(key string, entry entities.CacheEntry) metaFile {
	b := entry.Bundle
	m := metaFile{
		Key:                          key,
		CachedAt:                     entry.CachedAt,
		LastVerified:                 entry.LastVerified,
		AccessCount:                  entry.AccessCount,
		Digest:                       b.Digest,
		FetchedAt:                    b.FetchedAt,
		ResolvedURI:                  b.ResolvedURI.String(),
		ManifestName:                 b.Manifest.Name,
		ManifestVersion:              b.Manifest.Version.String(),
		ManifestDescription:          b.Manifest.Description,
		ManifestHomepage:             b.Manifest.Homepage,
		ManifestRepository:           b.Manifest.Repository,
		APICompatibilityAPIVersion:   b.Manifest.APICompatibility.APIVersion.String(),
		APICompatibilityMin:          b.Manifest.APICompatibility.Min.String(),
		APICompatibilityMax:          b.Manifest.APICompatibility.Max.String(),
		APICompatibilityExperimental: b.Manifest.APICompatibility.Experimental,
	}
	for _, d := range b.Manifest.Dependencies {
		m.Dependencies = append(m.Dependencies, dependencyMeta{Alias: d.Alias, URI: d.URI, Constraint: d.Constraint})
	}
	for _, t := range b.Manifest.Templates {
		m.Templates = append(m.Templates, templateMeta{
			Name: t.Name, SourcePath: t.SourcePath, OutputPath: t.OutputPath,
			Target: string(t.Target), Variables: t.Variables, Overwrite: t.Overwrite,
		})
	}
	for _, h := range b.Manifest.Hooks {
		m.Hooks = append(m.Hooks, hookMeta{Timing: string(h.Timing), Path: h.Path})
	}
	for _, a := range b.Manifest.Assets {
		m.Assets = append(m.Assets, assetMeta{Pattern: a.Pattern, OutputPath: a.OutputPath})
	}
	return m
}

func metaToEntry(m metaFile, localPath string) (entities.CacheEntry, error) {
	uri, err := entities.ParseComponentURI(m.ResolvedURI)
	if err != nil {
		return entities.CacheEntry{}, fmt.Errorf("cache meta %q: %w", m.Key, err)
	}
	version, err := entities.ParseSemVer(m.ManifestVersion)
	if err != nil {
		return entities.CacheEntry{}, fmt.Errorf("cache meta %q: %w", m.Key, err)
	}
	apiVersion, err := entities.ParseSemVer(m.APICompatibilityAPIVersion)
	if err != nil {
		return entities.CacheEntry{}, fmt.Errorf("cache meta %q: %w", m.Key, err)
	}
	min, err := entities.ParseSemVer(m.APICompatibilityMin)
	if err != nil {
		return entities.CacheEntry{}, fmt.Errorf("cache meta %q: %w", m.Key, err)
	}
	var max entities.SemVersion
	if m.APICompatibilityMax != "" {
		max, err = entities.ParseSemVer(m.APICompatibilityMax)
		if err != nil {
			return entities.CacheEntry{}, fmt.Errorf("cache meta %q: %w", m.Key, err)
		}
	}

	manifest := entities.ComponentManifest{
		Name:        m.ManifestName,
		Version:     version,
		Description: m.ManifestDescription,
		Homepage:    m.ManifestHomepage,
		Repository:  m.ManifestRepository,
		APICompatibility: entities.APICompatibility{
			APIVersion:   apiVersion,
			Min:          min,
			Max:          max,
			Experimental: m.APICompatibilityExperimental,
		},
		SourcePath: localPath,
	}
	for _, d := range m.Dependencies {
		manifest.Dependencies = append(manifest.Dependencies, entities.DependencyRequirement{Alias: d.Alias, URI: d.URI, Constraint: d.Constraint})
	}
	for _, t := range m.Templates {
		manifest.Templates = append(manifest.Templates, entities.ProvidesTemplate{
			Name: t.Name, SourcePath: t.SourcePath, OutputPath: t.OutputPath,
			Target: entities.TemplateTarget(t.Target), Variables: t.Variables, Overwrite: t.Overwrite,
		})
	}
	for _, h := range m.Hooks {
		manifest.Hooks = append(manifest.Hooks, entities.Hook{Timing: entities.HookTiming(h.Timing), Path: h.Path})
	}
	for _, a := range m.Assets {
		manifest.Assets = append(manifest.Assets, entities.AssetRef{Pattern: a.Pattern, OutputPath: a.OutputPath})
	}

	bundle := entities.ComponentBundle{
		Manifest:    manifest,
		ResolvedURI: uri,
		LocalPath:   localPath,
		Digest:      m.Digest,
		FetchedAt:   m.FetchedAt,
	}

	return entities.CacheEntry{
		Bundle:       bundle,
		CachedAt:     m.CachedAt,
		LastVerified: m.LastVerified,
		AccessCount:  m.AccessCount,
	}, nil
}

// diskStore persists cache entries under baseDir/<entryDirName>/{meta.json, files/...}.
type diskStore struct {
	baseDir string
}

func newDiskStore(baseDir string) diskStore { return diskStore{baseDir: baseDir} }

func (d diskStore) entryDir(key string) string {
	return filepath.Join(d.baseDir, entryDirName(key))
}

func (d diskStore) save(key string, entry entities.CacheEntry) error {
	if d.baseDir == "" {
		return nil
	}
	dir := d.entryDir(key)
	filesDir := filepath.Join(dir, "files")
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		return fmt.Errorf("creating cache entry dir: %w", err)
	}

	if entry.Bundle.LocalPath != "" && entry.Bundle.LocalPath != filesDir {
		if err := copyTree(entry.Bundle.LocalPath, filesDir); err != nil {
			return fmt.Errorf("persisting bundle files: %w", err)
		}
	}

	meta := bundleToMeta(key, entry)
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache meta: %w", err)
	}
	tmp := filepath.Join(dir, "meta.json.tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache meta: %w", err)
	}
	return os.Rename(tmp, filepath.Join(dir, "meta.json"))
}

func (d diskStore) load(key string) (entities.CacheEntry, bool, error) {
	if d.baseDir == "" {
		return entities.CacheEntry{}, false, nil
	}
	dir := d.entryDir(key)
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return entities.CacheEntry{}, false, nil
		}
		return entities.CacheEntry{}, false, err
	}

	var meta metaFile
	if err := json.Unmarshal(data, &meta); err != nil {
		return entities.CacheEntry{}, false, fmt.Errorf("parsing cache meta: %w", err)
	}

	entry, err := metaToEntry(meta, filepath.Join(dir, "files"))
	if err != nil {
		return entities.CacheEntry{}, false, err
	}
	return entry, true, nil
}

func (d diskStore) remove(key string) error {
	if d.baseDir == "" {
		return nil
	}
	err := os.RemoveAll(d.entryDir(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (d diskStore) clear() error {
	if d.baseDir == "" {
		return nil
	}
	entries, err := os.ReadDir(d.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(d.baseDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// copyTree recursively copies the contents of src into dst, creating dst if
// necessary. It skips src entirely when src == dst (nothing to do).
func copyTree(src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	if absSrc == absDst {
		return nil
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
