// Package manifest parses and validates component manifest files
// (rustgen-component.yml, falling back to component.yml).
package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.ManifestLoader = Loader{}

// Loader implements usecases.ManifestLoader over YAML-encoded manifest bytes.
type Loader struct{}

// NewLoader constructs a manifest Loader.
func NewLoader() Loader { return Loader{} }

// yamlManifest is the wire shape of a component manifest. Field names follow
// the snake_case the project's other YAML surfaces use.
type yamlManifest struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	Homepage    string `yaml:"homepage"`
	Repository  string `yaml:"repository"`

	APICompatibility struct {
		APIVersion   string `yaml:"api_version"`
		Min          string `yaml:"min"`
		Max          string `yaml:"max"`
		Experimental bool   `yaml:"experimental"`
	} `yaml:"api_compatibility"`

	Dependencies []yamlDependency `yaml:"dependencies"`
	Templates    []yamlTemplate   `yaml:"templates"`
	Hooks        []yamlHook       `yaml:"hooks"`
	Assets       []yamlAsset      `yaml:"assets"`
}

type yamlDependency struct {
	Alias      string `yaml:"alias"`
	URI        string `yaml:"uri"`
	Constraint string `yaml:"constraint"`
}

type yamlTemplate struct {
	Name       string   `yaml:"name"`
	SourcePath string   `yaml:"source_path"`
	OutputPath string   `yaml:"output_path"`
	Target     string   `yaml:"target"`
	Variables  []string `yaml:"variables"`
	Overwrite  bool     `yaml:"overwrite"`
}

type yamlHook struct {
	Timing string `yaml:"timing"`
	Path   string `yaml:"path"`
}

type yamlAsset struct {
	Pattern    string `yaml:"pattern"`
	OutputPath string `yaml:"output_path"`
}

// Load parses manifest YAML bytes and validates the result.
func (Loader) Load(data []byte, sourcePath string) (entities.ComponentManifest, error) {
	var wire yamlManifest
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return entities.ComponentManifest{}, &entities.ManifestParseError{Source: sourcePath, Err: err}
	}

	version, err := entities.ParseSemVer(wire.Version)
	if err != nil {
		return entities.ComponentManifest{}, &entities.ManifestParseError{Source: sourcePath, Err: fmt.Errorf("version: %w", err)}
	}

	apiVersion, err := entities.ParseSemVer(wire.APICompatibility.APIVersion)
	if err != nil {
		return entities.ComponentManifest{}, &entities.ManifestParseError{Source: sourcePath, Err: fmt.Errorf("api_compatibility.api_version: %w", err)}
	}
	min, err := entities.ParseSemVer(wire.APICompatibility.Min)
	if err != nil {
		return entities.ComponentManifest{}, &entities.ManifestParseError{Source: sourcePath, Err: fmt.Errorf("api_compatibility.min: %w", err)}
	}
	// max is optional: a manifest may omit an upper bound entirely.
	var max entities.SemVersion
	if wire.APICompatibility.Max != "" {
		max, err = entities.ParseSemVer(wire.APICompatibility.Max)
		if err != nil {
			return entities.ComponentManifest{}, &entities.ManifestParseError{Source: sourcePath, Err: fmt.Errorf("api_compatibility.max: %w", err)}
		}
	}

	deps := make([]entities.DependencyRequirement, 0, len(wire.Dependencies))
	for _, d := range wire.Dependencies {
		deps = append(deps, entities.DependencyRequirement{Alias: d.Alias, URI: d.URI, Constraint: d.Constraint})
	}

	templates := make([]entities.ProvidesTemplate, 0, len(wire.Templates))
	for _, t := range wire.Templates {
		templates = append(templates, entities.ProvidesTemplate{
			Name: t.Name, SourcePath: t.SourcePath, OutputPath: t.OutputPath,
			Target: entities.TemplateTarget(t.Target), Variables: t.Variables, Overwrite: t.Overwrite,
		})
	}

	hooks := make([]entities.Hook, 0, len(wire.Hooks))
	for _, h := range wire.Hooks {
		hooks = append(hooks, entities.Hook{Timing: entities.HookTiming(h.Timing), Path: h.Path})
	}

	assets := make([]entities.AssetRef, 0, len(wire.Assets))
	for _, a := range wire.Assets {
		assets = append(assets, entities.AssetRef{Pattern: a.Pattern, OutputPath: a.OutputPath})
	}

	m := entities.ComponentManifest{
		Name:        wire.Name,
		Version:     version,
		Description: wire.Description,
		Homepage:    wire.Homepage,
		Repository:  wire.Repository,
		APICompatibility: entities.APICompatibility{
			APIVersion:   apiVersion,
			Min:          min,
			Max:          max,
			Experimental: wire.APICompatibility.Experimental,
		},
		Dependencies: deps,
		Templates:    templates,
		Hooks:        hooks,
		Assets:       assets,
		SourcePath:   sourcePath,
	}

	if err := m.Validate(); err != nil {
		return entities.ComponentManifest{}, err
	}
	return m, nil
}
