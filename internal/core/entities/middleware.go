package entities

// MiddlewareKind identifies a middleware directive.
type MiddlewareKind string

const (
	MiddlewareCORS      MiddlewareKind = "cors"
	MiddlewareRateLimit MiddlewareKind = "rate_limit"
	MiddlewareAuth      MiddlewareKind = "auth"
	MiddlewareLogging   MiddlewareKind = "logging"
)

// MiddlewareDirective configures a single middleware layer.
type MiddlewareDirective struct {
	Kind MiddlewareKind

	// CORS
	AllowOrigin string

	// RateLimit
	MaxRequests   int
	WindowSeconds int
}

// Validate checks middleware-specific invariants.
func (m MiddlewareDirective) Validate() error {
	switch m.Kind {
	case MiddlewareCORS:
		if m.AllowOrigin == "" {
			return NewValidationError("Middleware", string(m.Kind), "", "cors middleware requires a non-empty allow_origin", ErrEmptyName)
		}
	case MiddlewareRateLimit:
		if m.MaxRequests <= 0 {
			return NewValidationError("Middleware", string(m.Kind), "", "rate_limit middleware requires a positive max_requests", nil)
		}
		if m.WindowSeconds <= 0 {
			return NewValidationError("Middleware", string(m.Kind), "", "rate_limit middleware requires a positive window_seconds", nil)
		}
	}
	return nil
}
