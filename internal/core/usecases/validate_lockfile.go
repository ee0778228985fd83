package usecases

import (
	"context"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

// ValidateLockfile loads a lockfile and checks it both structurally
// (entities.Lockfile.Validate) and against a project's current manifest
// dependencies.
type ValidateLockfile struct {
	Lockfiles LockfileManager
}

// LockfileValidationResult reports the outcome of a lockfile validation.
type LockfileValidationResult struct {
	StructurallyValid bool
	UpToDate          bool
	StaleAliases      []string
	Err               error
}

func (v *ValidateLockfile) Run(ctx context.Context, lockPath string, manifestDeps []entities.DependencyRequirement) LockfileValidationResult {
	lock, err := v.Lockfiles.Load(ctx, lockPath)
	if err != nil {
		return LockfileValidationResult{Err: err}
	}

	if err := lock.Validate(); err != nil {
		return LockfileValidationResult{StructurallyValid: false, Err: err}
	}

	upToDate := lock.IsUpToDate(manifestDeps)
	result := LockfileValidationResult{StructurallyValid: true, UpToDate: upToDate}
	if !upToDate {
		result.StaleAliases = staleAliases(lock, manifestDeps)
	}
	return result
}
