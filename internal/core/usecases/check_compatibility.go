package usecases

import "github.com/rustgen-dev/rustgen/internal/core/entities"

// DefaultCompatibilityChecker implements CompatibilityChecker by deferring
// entirely to the pure entities.ComputeCompatibility function. It carries no state and does no I/O.
type DefaultCompatibilityChecker struct{}

func (DefaultCompatibilityChecker) Check(hostVersion entities.SemVersion, manifest entities.ComponentManifest) entities.CompatibilityStatus {
	return entities.ComputeCompatibility(hostVersion, manifest.APICompatibility)
}
