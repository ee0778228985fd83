package entities

import "fmt"

// ProjectConfiguration is the root input: the project specification parsed
// from the user's YAML file. It is materialized once per
// generation invocation and is immutable thereafter.
type ProjectConfiguration struct {
	SchemaVersion string
	APIVersion    string
	Name          string
	Version       string

	Database DatabaseSettings
	Server   ServerSettings

	Models     map[string]ModelDefinition
	ModelOrder []string

	Endpoints []EndpointDefinition

	Middleware []MiddlewareDirective

	// Components maps a local alias to the component URI string it resolves
	// to.
	Components map[string]string

	Registry RegistrySettings
}

// RegistrySettings holds optional component-registry configuration declared
// in the project YAML.
type RegistrySettings struct {
	URL   string
	Token string
}

// DefaultSchemaVersion and DefaultAPIVersion are the compiled-in defaults
// applied when the project YAML omits these fields.
const (
	DefaultSchemaVersion = "1.0.0"
	DefaultAPIVersion    = "1.0.0"
)

// CompatibleAPIVersionRange is the compiled-in range of project api_version
// values this generator accepts (rule 3).
const CompatibleAPIVersionRange = ">=1.0.0, <2.0.0"

// ModelList returns the models in their declared order.
func (p ProjectConfiguration) ModelList() []ModelDefinition {
	out := make([]ModelDefinition, 0, len(p.ModelOrder))
	for _, name := range p.ModelOrder {
		out = append(out, p.Models[name])
	}
	return out
}

// Validate runs every configuration rule in order, fail-fast: the first
// violation found is returned.
func (p ProjectConfiguration) Validate() error {
	if err := ValidateProjectName(p.Name); err != nil {
		return &InvalidConfigError{Rule: "rule-1", Field: "name", Message: err.Error()}
	}

	if _, err := ParseSemVer(p.Version); err != nil {
		return &InvalidConfigError{Rule: "rule-2", Field: "version", Message: "project version must be valid semver"}
	}

	if _, err := ParseSemVer(p.SchemaVersion); err != nil {
		return &InvalidConfigError{Rule: "rule-3", Field: "schema_version", Message: "schema_version must be valid semver"}
	}
	apiVersion, err := ParseSemVer(p.APIVersion)
	if err != nil {
		return &InvalidConfigError{Rule: "rule-3", Field: "api_version", Message: "api_version must be valid semver"}
	}
	compatRange, err := ParseConstraint(CompatibleAPIVersionRange)
	if err != nil {
		return &InvalidConfigError{Rule: "rule-3", Field: "api_version", Message: fmt.Sprintf("internal error: invalid compiled-in compatible range: %v", err)}
	}
	if !compatRange.Satisfies(apiVersion) {
		return &InvalidConfigError{Rule: "rule-3", Field: "api_version",
			Message: fmt.Sprintf("api_version %s falls outside the compatible range %s", p.APIVersion, CompatibleAPIVersionRange)}
	}

	if err := p.Database.Validate(); err != nil {
		return &InvalidConfigError{Rule: "rule-4", Field: "database", Message: err.Error()}
	}

	if len(p.Models) == 0 {
		return &InvalidConfigError{Rule: "rule-5", Field: "models", Message: "at least one model is required"}
	}
	if len(p.Endpoints) == 0 {
		return &InvalidConfigError{Rule: "rule-5", Field: "endpoints", Message: "at least one endpoint is required"}
	}

	tableNames := make(map[string]string, len(p.Models))
	for _, name := range p.ModelOrder {
		model := p.Models[name]
		if err := model.Validate(); err != nil {
			return &InvalidConfigError{Rule: "rule-6", Field: "models." + name, Message: err.Error()}
		}
		if owner, exists := tableNames[model.TableName]; exists {
			return &InvalidConfigError{Rule: "rule-6", Field: "models." + name,
				Message: fmt.Sprintf("table name %q already used by model %q", model.TableName, owner)}
		}
		tableNames[model.TableName] = name
	}

	for _, name := range p.ModelOrder {
		model := p.Models[name]
		for _, relName := range model.RelationOrder {
			rel := model.Relationships[relName]
			if _, ok := p.Models[rel.TargetModel]; !ok {
				return &InvalidConfigError{Rule: "rule-7", Field: fmt.Sprintf("models.%s.relationships.%s", name, relName),
					Message: fmt.Sprintf("relationship targets unknown model %q", rel.TargetModel)}
			}
			if rel.ForeignKey != "" {
				if _, ok := model.FieldByName(rel.ForeignKey); !ok {
					return &InvalidConfigError{Rule: "rule-7", Field: fmt.Sprintf("models.%s.relationships.%s", name, relName),
						Message: fmt.Sprintf("foreign key %q does not exist on model %q", rel.ForeignKey, name)}
				}
			}
		}
	}

	seenPaths := make(map[string]bool, len(p.Endpoints))
	for _, ep := range p.Endpoints {
		if err := ep.Validate(); err != nil {
			return &InvalidConfigError{Rule: "rule-9", Field: "endpoints." + ep.Path, Message: err.Error()}
		}
		if seenPaths[ep.Path] {
			return &InvalidConfigError{Rule: "rule-9", Field: "endpoints." + ep.Path, Message: "duplicate endpoint path"}
		}
		seenPaths[ep.Path] = true
		if _, ok := p.Models[ep.Model]; !ok {
			return &InvalidConfigError{Rule: "rule-9", Field: "endpoints." + ep.Path,
				Message: fmt.Sprintf("endpoint references unknown model %q", ep.Model)}
		}
	}

	if cyclePath, ok := p.findOwningCycle(); ok {
		return &InvalidConfigError{Rule: "rule-10", Field: "models",
			Message: fmt.Sprintf("circular owning relationship: %v", cyclePath)}
	}

	for _, mw := range p.Middleware {
		if err := mw.Validate(); err != nil {
			return &InvalidConfigError{Rule: "rule-11", Field: string(mw.Kind), Message: err.Error()}
		}
	}

	return nil
}

// findOwningCycle walks the graph formed by one-to-one and many-to-one
// relationships (the "owning" kinds) looking for a cycle. A self-reference
// is explicitly permitted and is not reported as
// a cycle unless revisited through a longer path.
func (p ProjectConfiguration) findOwningCycle() ([]string, bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(p.ModelOrder))
	var stack []string

	var visit func(name string) ([]string, bool)
	visit = func(name string) ([]string, bool) {
		color[name] = gray
		stack = append(stack, name)

		model := p.Models[name]
		for _, relName := range model.RelationOrder {
			rel := model.Relationships[relName]
			if !rel.Kind.Owns() {
				continue
			}
			if rel.TargetModel == name {
				// Self-reference is explicitly permitted.
				continue
			}
			switch color[rel.TargetModel] {
			case gray:
				cycleStart := indexOf(stack, rel.TargetModel)
				return append(append([]string{}, stack[cycleStart:]...), rel.TargetModel), true
			case white:
				if cyclePath, found := visit(rel.TargetModel); found {
					return cyclePath, true
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
		return nil, false
	}

	for _, name := range p.ModelOrder {
		if color[name] == white {
			if cyclePath, found := visit(name); found {
				return cyclePath, true
			}
		}
	}
	return nil, false
}

func indexOf(s []string, v string) int {
	for i, item := range s {
		if item == v {
			return i
		}
	}
	return -1
}
