package entities

import "time"

// HostLanguageType is the target-language type a semantic field type maps
// to. The generated project is Go, so these are Go type
// expressions rather than Rust/TypeScript ones.
type HostLanguageType string

// FieldContext is the per-field render-ready data the context builder
// synthesizes for every model field.
type FieldContext struct {
	Name          string
	PascalCase    string
	SnakeCase     string
	CamelCase     string
	KebabCase     string
	SemanticType  SemanticType
	GoType        HostLanguageType // pointer-wrapped when Nullable, except []byte and json.RawMessage
	SQLType       string           // per DatabaseEngine
	Nullable      bool
	PrimaryKey    bool
	Unique        bool
	HasDefault    bool
	DefaultLiteral string
}

// RelationshipContext is the render-ready form of a Relationship.
type RelationshipContext struct {
	Name        string
	Kind        RelationshipKind
	TargetModel string
	TargetPascal string
	ForeignKey  string
}

// ModelContext is the render-ready form of a ModelDefinition, with every
// naming derivative precomputed.
type ModelContext struct {
	Name          string
	PascalCase    string
	SnakeCase     string
	CamelCase     string
	KebabCase     string
	TableName     string
	Fields        []FieldContext
	Relationships []RelationshipContext
	Indexes       []Index
	PrimaryKey    FieldContext
}

// EndpointContext is the render-ready form of an EndpointDefinition.
type EndpointContext struct {
	Path           string
	PascalCase     string
	SnakeCase      string
	Model          ModelContext
	EnabledOps     []string // "create", "read_all", "read_one", "update", "delete"
	HandlerNames   map[string]string // op -> generated function name
	PaginationEnabled bool
}

// FeatureFlags are project-wide booleans the context builder derives once
// and downstream templates branch on.
type FeatureFlags struct {
	HasAuth          bool
	HasPagination    bool
	HasValidation    bool
	HasUUIDFields    bool
	HasDateTimeFields bool
	HasJSONFields    bool
	HasRelationships bool
	HasMiddleware    bool
}

// GenerationMetadata is the block of provenance information stamped into
// the generated project.
type GenerationMetadata struct {
	GeneratedAt   time.Time
	GeneratorName string
	GeneratorVer  string
	ModelCount    int
	EndpointCount int
	DatabaseEngine DatabaseEngine
}

// TemplateContext is the complete, immutable data model handed to the
// template engine for a generation run.
type TemplateContext struct {
	ProjectName string
	Version     string

	Database DatabaseSettings
	Server   ServerSettings

	Models    []ModelContext
	Endpoints []EndpointContext

	Middleware []MiddlewareDirective

	Features FeatureFlags
	Metadata GenerationMetadata

	// Dependencies is the deduplicated, sorted list of third-party
	// dependencies the generated project requires.
	Dependencies []string

	// Components carries each resolved bundle the generator must also
	// render templates for, keyed by alias, so the engine can iterate
	// each resolved component's own contributed templates.
	Components map[string]ComponentBundle
}

// ModelByName looks up a model context by its original name.
func (c TemplateContext) ModelByName(name string) (ModelContext, bool) {
	for _, m := range c.Models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelContext{}, false
}
