package entities

import "fmt"

// CompatibilityStatus classifies a component's declared API-compatibility
// range against the host generator's own version.
type CompatibilityStatus string

const (
	StatusCompatible             CompatibilityStatus = "compatible"
	StatusCompatibleExperimental CompatibilityStatus = "compatible_experimental"
	StatusTooOld                 CompatibilityStatus = "too_old"
	StatusTooNew                 CompatibilityStatus = "too_new"
)

// APICompatibility is the manifest-declared range of host API versions a
// component supports.
type APICompatibility struct {
	// APIVersion is the host API the component was developed against.
	APIVersion SemVersion
	Min        SemVersion
	// Max is optional; its zero value (SemVersion.IsZero()) means the
	// manifest declared no upper bound.
	Max SemVersion
	// Experimental marks the component as not yet hardened against its
	// declared range, regardless of whether host falls inside it.
	Experimental bool
}

// ComputeCompatibility is a pure function: given the host's API version and
// a component's declared compatibility range, it returns the compatibility
// status assigned by comparing the two version ranges. Whether that status
// blocks generation is reported by CompatibilityStatus.Blocking.
//
// Rules:
//   - host < Min                                -> too_old
//   - Max set and host > Max                     -> too_new
//   - otherwise, compat.Experimental             -> compatible_experimental
//   - otherwise                                  -> compatible
func ComputeCompatibility(host SemVersion, compat APICompatibility) CompatibilityStatus {
	if host.LessThan(compat.Min) {
		return StatusTooOld
	}
	if !compat.Max.IsZero() && host.GreaterThan(compat.Max) {
		return StatusTooNew
	}
	if compat.Experimental {
		return StatusCompatibleExperimental
	}
	return StatusCompatible
}

// Blocking reports whether a status should halt generation absent an
// explicit override flag.
func (s CompatibilityStatus) Blocking() bool {
	return s == StatusTooOld || s == StatusTooNew
}

func (s CompatibilityStatus) String() string { return string(s) }

// Describe renders a human-readable compatibility explanation used in both
// error remedies and the resolution explainer. max may be the zero value
// when the manifest declared no upper bound.
func (s CompatibilityStatus) Describe(componentName string, host, min, max SemVersion) string {
	switch s {
	case StatusTooOld:
		return fmt.Sprintf("%s requires host >= %s, but host is %s", componentName, min, host)
	case StatusTooNew:
		return fmt.Sprintf("%s supports up to host %s, but host is %s", componentName, max, host)
	case StatusCompatibleExperimental:
		return fmt.Sprintf("%s is marked experimental; host %s is within its declared range", componentName, host)
	default:
		return fmt.Sprintf("%s is compatible with host %s", componentName, host)
	}
}
