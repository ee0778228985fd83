package entities

import (
	"fmt"

	mastersemver "github.com/Masterminds/semver/v3"
)

// SemVersion wraps a parsed, validated semantic version. It is the only
// version representation used once parsing has succeeded; every consumer
// downstream (resolver, compatibility checker, lockfile) works with this
// type rather than re-parsing strings.
type SemVersion struct {
	raw string
	v   *mastersemver.Version
}

// ParseSemVer parses a version string with Masterminds/semver's NewVersion:
// a leading "v" is accepted, and a version missing its minor or patch part
// ("1", "1.2") is accepted with the missing parts read as zero.
func ParseSemVer(s string) (SemVersion, error) {
	v, err := mastersemver.NewVersion(s)
	if err != nil {
		return SemVersion{}, fmt.Errorf("invalid semantic version %q: %w", s, err)
	}
	return SemVersion{raw: s, v: v}, nil
}

func (s SemVersion) String() string    { return s.raw }
func (s SemVersion) Major() uint64     { return s.v.Major() }
func (s SemVersion) Minor() uint64     { return s.v.Minor() }
func (s SemVersion) Patch() uint64     { return s.v.Patch() }
func (s SemVersion) Prerelease() string { return s.v.Prerelease() }

// IsZero reports whether s is the unset zero value, as opposed to a
// successfully parsed version. Callers use this to treat an optional
// version field (a manifest's max_version, say) as absent.
func (s SemVersion) IsZero() bool { return s.v == nil }

// LessThan, GreaterThan, Equal delegate to the underlying comparator.
func (s SemVersion) LessThan(o SemVersion) bool    { return s.v.LessThan(o.v) }
func (s SemVersion) GreaterThan(o SemVersion) bool { return s.v.GreaterThan(o.v) }
func (s SemVersion) Equal(o SemVersion) bool       { return s.v.Equal(o.v) }

// VersionConstraint wraps a parsed constraint expression.
type VersionConstraint struct {
	raw string
	c   *mastersemver.Constraints
}

// ParseConstraint parses a constraint string. The grammar is delegated
// entirely to Masterminds/semver, which implements the caret/tilde/range
// the same constraint syntax npm's semver uses.
func ParseConstraint(s string) (VersionConstraint, error) {
	c, err := mastersemver.NewConstraint(s)
	if err != nil {
		return VersionConstraint{}, fmt.Errorf("invalid version constraint %q: %w", s, err)
	}
	return VersionConstraint{raw: s, c: c}, nil
}

func (c VersionConstraint) String() string { return c.raw }

// Satisfies reports whether the given version satisfies this constraint.
func (c VersionConstraint) Satisfies(v SemVersion) bool {
	return c.c.Check(v.v)
}

// IntersectAll reports whether a single version can satisfy every
// constraint in the set simultaneously.
func IntersectAll(constraints []VersionConstraint, v SemVersion) bool {
	for _, c := range constraints {
		if !c.Satisfies(v) {
			return false
		}
	}
	return true
}
