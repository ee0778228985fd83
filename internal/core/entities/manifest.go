package entities

import "fmt"

// ManifestFileNames lists the manifest file names checked, in priority
// order, when resolving a component directory.
var ManifestFileNames = []string{"rustgen-component.yml", "component.yml"}

// DependencyRequirement is one entry of a manifest's declared dependencies:
// an alias the component refers to its dependency by, the URI it resolves
// against, and the version constraint applied on top of that URI's own
// constraint.
type DependencyRequirement struct {
	Alias      string
	URI        string
	Constraint string
}

// TemplateTarget classifies which layer of the generated project a
// component-provided template contributes to.
type TemplateTarget string

const (
	TargetFrontend  TemplateTarget = "frontend"
	TargetBackend   TemplateTarget = "backend"
	TargetMigration TemplateTarget = "migration"
	TargetConfig    TemplateTarget = "config"
)

// ProvidesTemplate is one template a component contributes to the
// generation output, along with the output path it renders to, which
// layer of the generated project it targets, the variables it declares
// itself needing from the context, and whether it's allowed to overwrite
// a file another component already wrote there.
type ProvidesTemplate struct {
	Name       string
	SourcePath string
	OutputPath string
	Target     TemplateTarget
	Variables  []string
	Overwrite  bool
}

// HookTiming identifies the generation-lifecycle phase a hook script runs
// at.
type HookTiming string

const (
	HookPreGenerate  HookTiming = "pre-generate"
	HookPostGenerate HookTiming = "post-generate"
	HookPreBuild     HookTiming = "pre-build"
	HookPostBuild    HookTiming = "post-build"
)

// Hook is a component-provided script invoked around rendering.
type Hook struct {
	Timing HookTiming
	Path   string
}

// AssetRef is a non-template file a component ships verbatim.
// Pattern may be a literal relative path or a glob recognized by
// GlobMatcher.
type AssetRef struct {
	Pattern    string
	OutputPath string
}

// ComponentManifest is the parsed, validated contents of a component's
// manifest file.
type ComponentManifest struct {
	Name        string
	Version     SemVersion
	Description string

	// Homepage and Repository are optional metadata carried over from
	// original_source's manifest format; they have no effect on resolution
	// or rendering and are surfaced only for display/introspection.
	Homepage   string
	Repository string

	APICompatibility APICompatibility

	Dependencies []DependencyRequirement

	Templates []ProvidesTemplate
	Hooks     []Hook
	Assets    []AssetRef

	// SourcePath is the manifest's own location on disk after fetch, used
	// to resolve Templates/Hooks/Assets paths relative to it. Not part of
	// the serialized manifest.
	SourcePath string
}

// Validate checks the manifest-local invariants.
func (m ComponentManifest) Validate() error {
	if m.Name == "" {
		return &InvalidManifestError{Field: "name", Message: "component name is required"}
	}
	if err := ValidateProjectName(m.Name); err != nil {
		return &InvalidManifestError{Field: "name", Message: err.Error()}
	}
	if m.APICompatibility.APIVersion.IsZero() {
		return &InvalidManifestError{Field: "api_compatibility.api_version", Message: "api_version is required"}
	}
	if m.APICompatibility.Min.IsZero() {
		return &InvalidManifestError{Field: "api_compatibility.min_version", Message: "min_version is required"}
	}
	if !m.APICompatibility.Max.IsZero() && m.APICompatibility.Max.LessThan(m.APICompatibility.Min) {
		return &InvalidManifestError{Field: "api_compatibility.max_version", Message: "max_version cannot be lower than min_version"}
	}

	seenAliases := make(map[string]bool, len(m.Dependencies))
	for _, dep := range m.Dependencies {
		if dep.Alias == "" {
			return &InvalidManifestError{Field: "dependencies", Message: "dependency alias cannot be empty"}
		}
		if seenAliases[dep.Alias] {
			return &InvalidManifestError{Field: "dependencies." + dep.Alias, Message: "duplicate dependency alias"}
		}
		seenAliases[dep.Alias] = true
		if _, err := ParseComponentURI(dep.URI); err != nil {
			return &InvalidManifestError{Field: "dependencies." + dep.Alias, Message: fmt.Sprintf("invalid dependency URI: %v", err)}
		}
		if dep.Constraint != "" {
			if _, err := ParseConstraint(dep.Constraint); err != nil {
				return &InvalidManifestError{Field: "dependencies." + dep.Alias, Message: fmt.Sprintf("invalid constraint: %v", err)}
			}
		}
	}

	seenOutputs := make(map[string]string, len(m.Templates))
	for _, tpl := range m.Templates {
		if tpl.Name == "" || tpl.SourcePath == "" || tpl.OutputPath == "" {
			return &InvalidManifestError{Field: "templates", Message: "template requires name, source_path, and output_path"}
		}
		switch tpl.Target {
		case TargetFrontend, TargetBackend, TargetMigration, TargetConfig:
		default:
			return &InvalidManifestError{Field: "templates." + tpl.Name, Message: fmt.Sprintf("unknown template target %q", tpl.Target)}
		}
		if owner, exists := seenOutputs[tpl.OutputPath]; exists && !tpl.Overwrite {
			return &InvalidManifestError{Field: "templates." + tpl.Name,
				Message: fmt.Sprintf("output path %q already claimed by template %q without overwrite", tpl.OutputPath, owner)}
		}
		seenOutputs[tpl.OutputPath] = tpl.Name
	}

	for _, hook := range m.Hooks {
		switch hook.Timing {
		case HookPreGenerate, HookPostGenerate, HookPreBuild, HookPostBuild:
		default:
			return &InvalidManifestError{Field: "hooks", Message: fmt.Sprintf("unknown hook timing %q", hook.Timing)}
		}
		if hook.Path == "" {
			return &InvalidManifestError{Field: "hooks", Message: "hook path cannot be empty"}
		}
	}

	for _, asset := range m.Assets {
		if asset.Pattern == "" {
			return &InvalidManifestError{Field: "assets", Message: "asset pattern cannot be empty"}
		}
	}

	return nil
}

// DependencyAlias looks up a declared dependency by alias.
func (m ComponentManifest) DependencyAlias(alias string) (DependencyRequirement, bool) {
	for _, dep := range m.Dependencies {
		if dep.Alias == alias {
			return dep, true
		}
	}
	return DependencyRequirement{}, false
}
