package usecases

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

// DefaultContextBuilder implements the pure configuration-to-context
// transformation from project configuration to template context. It never fails for a validated
// configuration: ProjectConfiguration.Validate already guarantees every
// reference resolves.
type DefaultContextBuilder struct{}

func (DefaultContextBuilder) Build(config entities.ProjectConfiguration, resolved map[string]entities.ComponentBundle, metadata entities.GenerationMetadata) (entities.TemplateContext, error) {
	models := make([]entities.ModelContext, 0, len(config.ModelOrder))
	for _, name := range config.ModelOrder {
		models = append(models, buildModelContext(config.Models[name]))
	}

	endpoints := make([]entities.EndpointContext, 0, len(config.Endpoints))
	for _, ep := range config.Endpoints {
		model, ok := config.Models[ep.Model]
		if !ok {
			return entities.TemplateContext{}, fmt.Errorf("context builder: endpoint %q references unknown model %q (validation should have caught this)", ep.Path, ep.Model)
		}
		endpoints = append(endpoints, buildEndpointContext(ep, buildModelContext(model)))
	}

	features := deriveFeatures(config)
	deps := deriveDependencies(config, features)

	metadata.ModelCount = len(models)
	metadata.EndpointCount = len(endpoints)
	metadata.DatabaseEngine = config.Database.Engine

	return entities.TemplateContext{
		ProjectName:  config.Name,
		Version:      config.Version,
		Database:     config.Database,
		Server:       config.Server,
		Models:       models,
		Endpoints:    endpoints,
		Middleware:   config.Middleware,
		Features:     features,
		Metadata:     metadata,
		Dependencies: deps,
		Components:   resolved,
	}, nil
}

func buildModelContext(m entities.ModelDefinition) entities.ModelContext {
	fields := make([]entities.FieldContext, 0, len(m.Fields))
	for _, f := range m.Fields {
		fields = append(fields, buildFieldContext(f))
	}

	rels := make([]entities.RelationshipContext, 0, len(m.RelationOrder))
	for _, relName := range m.RelationOrder {
		rel := m.Relationships[relName]
		rels = append(rels, entities.RelationshipContext{
			Name:         rel.Name,
			Kind:         rel.Kind,
			TargetModel:  rel.TargetModel,
			TargetPascal: pascalCase(rel.TargetModel),
			ForeignKey:   rel.ForeignKey,
		})
	}

	var pk entities.FieldContext
	if f, ok := m.PrimaryKeyField(); ok {
		pk = buildFieldContext(f)
	}

	return entities.ModelContext{
		Name:          m.Name,
		PascalCase:    pascalCase(m.Name),
		SnakeCase:     snakeCase(m.Name),
		CamelCase:     camelCase(m.Name),
		KebabCase:     kebabCase(m.Name),
		TableName:     m.TableName,
		Fields:        fields,
		Relationships: rels,
		Indexes:       m.Indexes,
		PrimaryKey:    pk,
	}
}

func buildFieldContext(f entities.FieldDefinition) entities.FieldContext {
	return entities.FieldContext{
		Name:           f.Name,
		PascalCase:     pascalCase(f.Name),
		SnakeCase:      snakeCase(f.Name),
		CamelCase:      camelCase(f.Name),
		KebabCase:      kebabCase(f.Name),
		SemanticType:   f.Type,
		GoType:         goType(f),
		SQLType:        "", // resolved per-engine by the sql_type template filter
		Nullable:       f.IsOptional(),
		PrimaryKey:     f.PrimaryKey,
		Unique:         f.Unique,
		HasDefault:     f.HasDefault,
		DefaultLiteral: f.Default,
	}
}

// goType maps a semantic type to a Go type expression, wrapping it in a
// pointer when the field is optional.
func goType(f entities.FieldDefinition) entities.HostLanguageType {
	base := map[entities.SemanticType]string{
		entities.TypeInteger:  "int64",
		entities.TypeString:   "string",
		entities.TypeText:     "string",
		entities.TypeBoolean:  "bool",
		entities.TypeDateTime: "time.Time",
		entities.TypeDate:     "time.Time",
		entities.TypeTime:     "time.Time",
		entities.TypeUUID:     "uuid.UUID",
		entities.TypeJSON:     "json.RawMessage",
		entities.TypeFloat:    "float32",
		entities.TypeDouble:   "float64",
		entities.TypeDecimal:  "string",
		entities.TypeBinary:   "[]byte",
	}[f.Type]

	if f.IsOptional() && base != "[]byte" && base != "json.RawMessage" {
		return entities.HostLanguageType("*" + base)
	}
	return entities.HostLanguageType(base)
}

func buildEndpointContext(ep entities.EndpointDefinition, model entities.ModelContext) entities.EndpointContext {
	var ops []string
	handlers := make(map[string]string, 5)
	slug := entities.EndpointSlug(ep.Path)

	add := func(enabled bool, op string) {
		if enabled {
			ops = append(ops, op)
			handlers[op] = fmt.Sprintf("%s_%s", op, slug)
		}
	}
	add(ep.CRUD.Create, "create")
	add(ep.CRUD.ReadAll, "read_all")
	add(ep.CRUD.ReadOne, "read_one")
	add(ep.CRUD.Update, "update")
	add(ep.CRUD.Delete, "delete")

	return entities.EndpointContext{
		Path:              ep.Path,
		PascalCase:        pascalCase(slug),
		SnakeCase:         snakeCase(slug),
		Model:             model,
		EnabledOps:        ops,
		HandlerNames:      handlers,
		PaginationEnabled: ep.CRUD.ReadAll,
	}
}

// deriveFeatures computes the project-wide feature booleans the template
// context exposes to conditional template blocks.
func deriveFeatures(config entities.ProjectConfiguration) entities.FeatureFlags {
	var f entities.FeatureFlags

	for _, mw := range config.Middleware {
		f.HasMiddleware = true
		if mw.Kind == entities.MiddlewareAuth {
			f.HasAuth = true
		}
	}

	for _, ep := range config.Endpoints {
		if ep.CRUD.ReadAll {
			f.HasPagination = true
		}
	}

	for _, name := range config.ModelOrder {
		model := config.Models[name]
		if len(model.RelationOrder) > 0 {
			f.HasRelationships = true
		}
		for _, field := range model.Fields {
			switch field.Type {
			case entities.TypeUUID:
				f.HasUUIDFields = true
			case entities.TypeDateTime, entities.TypeDate, entities.TypeTime:
				f.HasDateTimeFields = true
			case entities.TypeJSON:
				f.HasJSONFields = true
			}
			if field.Constraints.Pattern != "" || field.Constraints.MinLength != nil ||
				field.Constraints.MaxLength != nil || field.Constraints.MinValue != nil ||
				field.Constraints.MaxValue != nil {
				f.HasValidation = true
			}
		}
	}

	return f
}

// deriveDependencies computes the deduplicated, sorted third-party
// go.mod-style dependency list.
func deriveDependencies(config entities.ProjectConfiguration, features entities.FeatureFlags) []string {
	set := map[string]bool{
		"github.com/go-chi/chi/v5": true,
	}
	switch config.Database.Engine {
	case entities.EngineSQLite:
		set["modernc.org/sqlite"] = true
	case entities.EnginePostgres:
		set["github.com/jackc/pgx/v5"] = true
	case entities.EngineMySQL:
		set["github.com/go-sql-driver/mysql"] = true
	}
	if features.HasUUIDFields {
		set["github.com/google/uuid"] = true
	}
	if features.HasValidation {
		set["github.com/go-playground/validator/v10"] = true
	}
	if features.HasAuth {
		set["github.com/golang-jwt/jwt/v5"] = true
	}

	deps := make([]string, 0, len(set))
	for dep := range set {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

func pascalCase(s string) string {
	parts := splitIdentifier(s)
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func camelCase(s string) string {
	p := pascalCase(s)
	if p == "" {
		return p
	}
	return strings.ToLower(p[:1]) + p[1:]
}

func snakeCase(s string) string {
	return strings.Join(splitIdentifier(s), "_")
}

func kebabCase(s string) string {
	return strings.Join(splitIdentifier(s), "-")
}

// splitIdentifier breaks a name on underscores, hyphens, and spaces into
// lowercase word fragments, the common input shape of model/endpoint
// identifiers.
func splitIdentifier(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '/'
	})
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}
