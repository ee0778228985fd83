package entities

import (
	"regexp"
	"strings"
)

// Validation patterns for the project configuration rules.
var (
	// projectNamePattern matches project identifiers:
	// letter first, then alphanumeric/underscore/hyphen, max 50 chars.
	projectNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,49}$`)

	// urlEnvPattern matches the shouty-snake-case shape of a database
	// url_env setting.
	urlEnvPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

	// endpointPathPattern matches an HTTP route path.
	endpointPathPattern = regexp.MustCompile(`^/[A-Za-z0-9/_-]*$`)
)

// ValidateProjectName checks a project name against the naming rule.
func ValidateProjectName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if !projectNamePattern.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// ValidateURLEnv checks a database url_env setting against the naming rule.
func ValidateURLEnv(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if !urlEnvPattern.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// ValidateEndpointPath checks an endpoint path against the routing rule.
func ValidateEndpointPath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if !endpointPathPattern.MatchString(path) {
		return ErrInvalidName
	}
	return nil
}

// NormalizeName converts a display name to a valid identifier.
// "Payment Service" -> "payment-service"
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "_", "-")

	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	return strings.Trim(name, "-")
}

// ValidatePath checks if a filesystem path is valid (non-empty, no traversal).
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.Contains(path, "..") {
		return ErrInvalidName
	}
	return nil
}

// EndpointSlug converts an endpoint path into the identifier fragment used
// for handler symbol naming: strip the leading slash, replace
// the rest with underscores.
func EndpointSlug(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	return strings.ReplaceAll(trimmed, "/", "_")
}
