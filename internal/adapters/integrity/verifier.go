// Package integrity computes and checks the SRI-style digest of a fetched
// component bundle.
package integrity

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.IntegrityVerifier = Verifier{}

// Verifier implements usecases.IntegrityVerifier. It performs no network
// I/O: every byte it hashes comes from bundle.LocalPath on disk.
type Verifier struct{}

// NewVerifier constructs a Verifier.
func NewVerifier() Verifier { return Verifier{} }

// Compute hashes the canonicalized contents of a bundle per the scheme: the
// manifest's canonical YAML form, a newline, then templates, assets, and
// hooks, in that order, each group's entries in lexicographic name order,
// each written as "<name>:<bytes>\n".
func (Verifier) Compute(bundle entities.ComponentBundle, algorithm string) (string, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return "", err
	}

	manifestYAML, err := canonicalManifest(bundle.Manifest)
	if err != nil {
		return "", err
	}
	h.Write(manifestYAML)
	h.Write([]byte("\n"))

	templateItems := make([]namedPath, 0, len(bundle.Manifest.Templates))
	for _, t := range bundle.Manifest.Templates {
		templateItems = append(templateItems, namedPath{name: t.Name, relPath: t.SourcePath})
	}
	templateEntries, err := collectGroup(bundle.LocalPath, templateItems)
	if err != nil {
		return "", err
	}

	var assetItems []namedPath
	for _, a := range bundle.Manifest.Assets {
		matched, err := matchAssetFiles(bundle.LocalPath, a.Pattern)
		if err != nil {
			return "", err
		}
		for _, rel := range matched {
			assetItems = append(assetItems, namedPath{name: rel, relPath: rel})
		}
	}
	assetEntries, err := collectGroup(bundle.LocalPath, assetItems)
	if err != nil {
		return "", err
	}

	hookItems := make([]namedPath, 0, len(bundle.Manifest.Hooks))
	for _, hk := range bundle.Manifest.Hooks {
		hookItems = append(hookItems, namedPath{name: hk.Path, relPath: hk.Path})
	}
	hookEntries, err := collectGroup(bundle.LocalPath, hookItems)
	if err != nil {
		return "", err
	}

	for _, group := range [][]fileEntry{templateEntries, assetEntries, hookEntries} {
		for _, e := range group {
			fmt.Fprintf(h, "%s:", e.name)
			h.Write(e.data)
			h.Write([]byte("\n"))
		}
	}

	return fmt.Sprintf("%s-%x", algorithm, h.Sum(nil)), nil
}

// Verify recomputes the digest using the algorithm named in expected and
// compares it byte-for-byte.
func (v Verifier) Verify(bundle entities.ComponentBundle, expected string) error {
	algo, _, ok := strings.Cut(expected, "-")
	if !ok {
		return &entities.IntegrityFailedError{URI: bundle.ResolvedURI.String(), Expected: expected, Actual: ""}
	}
	actual, err := v.Compute(bundle, algo)
	if err != nil {
		return err
	}
	if actual != expected {
		return &entities.IntegrityFailedError{URI: bundle.ResolvedURI.String(), Expected: expected, Actual: actual}
	}
	return nil
}

func newHash(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "sha256":
		return sha256.New(), nil
	case "sha384":
		return sha512.New384(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported integrity algorithm %q", algorithm)
	}
}

// canonicalManifestYAML mirrors adapters/manifest.yamlManifest's field
// order, which is the manifest schema's declared order: this is the fixed
// field order §4.C requires canonical-form hashing to use.
type canonicalManifestYAML struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description,omitempty"`
	Homepage    string `yaml:"homepage,omitempty"`
	Repository  string `yaml:"repository,omitempty"`

	APICompatibility canonicalAPICompat `yaml:"api_compatibility"`

	Dependencies []canonicalDependency `yaml:"dependencies,omitempty"`
	Templates    []canonicalTemplate   `yaml:"templates,omitempty"`
	Hooks        []canonicalHook       `yaml:"hooks,omitempty"`
	Assets       []canonicalAsset      `yaml:"assets,omitempty"`
}

type canonicalAPICompat struct {
	APIVersion   string `yaml:"api_version"`
	Min          string `yaml:"min"`
	Max          string `yaml:"max,omitempty"`
	Experimental bool   `yaml:"experimental,omitempty"`
}

type canonicalDependency struct {
	Alias      string `yaml:"alias"`
	URI        string `yaml:"uri"`
	Constraint string `yaml:"constraint,omitempty"`
}

type canonicalTemplate struct {
	Name       string   `yaml:"name"`
	SourcePath string   `yaml:"source_path"`
	OutputPath string   `yaml:"output_path"`
	Target     string   `yaml:"target"`
	Variables  []string `yaml:"variables,omitempty"`
	Overwrite  bool     `yaml:"overwrite,omitempty"`
}

type canonicalHook struct {
	Timing string `yaml:"timing"`
	Path   string `yaml:"path"`
}

type canonicalAsset struct {
	Pattern    string `yaml:"pattern"`
	OutputPath string `yaml:"output_path,omitempty"`
}

// canonicalManifest serializes a manifest's hash-relevant fields to the
// canonical YAML form §4.C step 1 requires: a fixed field order and each
// entry list sorted into lexicographic order so the digest is invariant
// under the order fields were declared in the source manifest file.
func canonicalManifest(m entities.ComponentManifest) ([]byte, error) {
	deps := append([]entities.DependencyRequirement{}, m.Dependencies...)
	sort.Slice(deps, func(i, j int) bool { return deps[i].Alias < deps[j].Alias })
	depsOut := make([]canonicalDependency, 0, len(deps))
	for _, d := range deps {
		depsOut = append(depsOut, canonicalDependency{Alias: d.Alias, URI: d.URI, Constraint: d.Constraint})
	}

	templates := append([]entities.ProvidesTemplate{}, m.Templates...)
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	templatesOut := make([]canonicalTemplate, 0, len(templates))
	for _, t := range templates {
		templatesOut = append(templatesOut, canonicalTemplate{
			Name: t.Name, SourcePath: t.SourcePath, OutputPath: t.OutputPath,
			Target: string(t.Target), Variables: t.Variables, Overwrite: t.Overwrite,
		})
	}

	hooks := append([]entities.Hook{}, m.Hooks...)
	sort.Slice(hooks, func(i, j int) bool { return hooks[i].Path < hooks[j].Path })
	hooksOut := make([]canonicalHook, 0, len(hooks))
	for _, hk := range hooks {
		hooksOut = append(hooksOut, canonicalHook{Timing: string(hk.Timing), Path: hk.Path})
	}

	assets := append([]entities.AssetRef{}, m.Assets...)
	sort.Slice(assets, func(i, j int) bool { return assets[i].Pattern < assets[j].Pattern })
	assetsOut := make([]canonicalAsset, 0, len(assets))
	for _, a := range assets {
		assetsOut = append(assetsOut, canonicalAsset{Pattern: a.Pattern, OutputPath: a.OutputPath})
	}

	doc := canonicalManifestYAML{
		Name:        m.Name,
		Version:     m.Version.String(),
		Description: m.Description,
		Homepage:    m.Homepage,
		Repository:  m.Repository,
		APICompatibility: canonicalAPICompat{
			APIVersion:   m.APICompatibility.APIVersion.String(),
			Min:          m.APICompatibility.Min.String(),
			Max:          m.APICompatibility.Max.String(),
			Experimental: m.APICompatibility.Experimental,
		},
		Dependencies: depsOut,
		Templates:    templatesOut,
		Hooks:        hooksOut,
		Assets:       assetsOut,
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing manifest: %w", err)
	}
	return out, nil
}

type fileEntry struct {
	name string
	data []byte
}

// namedPath is one entry queued for hashing: the name it's hashed under and
// the path (relative to the bundle root) its bytes are read from.
type namedPath struct {
	name    string
	relPath string
}

// collectGroup reads the files for one of (templates, assets, hooks) in
// lexicographic name order. A listed file that is missing on disk is a
// non-fatal omission: the manifest enumerates what a component SHOULD
// ship, but integrity hashing only ever covers what's actually present.
func collectGroup(root string, items []namedPath) ([]fileEntry, error) {
	sorted := append([]namedPath{}, items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })

	var entries []fileEntry
	for _, it := range sorted {
		data, err := os.ReadFile(filepath.Join(root, it.relPath))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", it.relPath, err)
		}
		entries = append(entries, fileEntry{name: it.name, data: data})
	}
	return entries, nil
}

// matchAssetFiles walks bundle.LocalPath and returns every regular file
// whose path (relative to root, forward-slash separated) matches pattern.
func matchAssetFiles(root, pattern string) ([]string, error) {
	matcher := entities.NewGlobMatcher(pattern)
	var matches []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == pattern || matcher.Match(rel) || matcher.Match(filepath.Base(rel)) {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
