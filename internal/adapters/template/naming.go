package template

import "strings"

// The four identifier-reshaping filters exposed to templates
// (snake_case/pascal_case/camel_case/kebab_case). Deliberately duplicated
// from internal/core/usecases/build_context.go's unexported helpers of the
// same name: those precompute the ModelContext/FieldContext naming fields
// once per build, while these are live template-facing filters applied to
// arbitrary strings a template author passes through a pipeline (e.g. a
// literal or a component-declared name) — two different call sites for the
// identical conversion rule, not a layering violation.

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

func splitIdentifier(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '/'
	})
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}
