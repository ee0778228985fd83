package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

// GeneratePipeline wires every port into the full generation flow:
// K -> H -> I for the intrinsic side, A -> B -> C -> D and
// J -> F, E -> G for the component side, with I reading from both D
// (resolved component bundles) and H (the built context) to emit the
// final file set.
type GeneratePipeline struct {
	ConfigLoader  ProjectConfigLoader
	Lockfiles     LockfileManager
	Resolver      DependencyResolver
	ContextBuilder ContextBuilder
	Templates     TemplateEngine
	Output        OutputWriter
	Progress      ProgressReporter
	Logger        Logger

	GeneratorName    string
	GeneratorVersion string
	Platform         string
}

// GenerateOptions configures one run of the pipeline.
type GenerateOptions struct {
	ConfigPath string
	OutputDir  string
	LockPath   string
	Force      bool

	// Update rewrites the lockfile from this run's resolution even when the
	// existing one is up to date. Resolution itself runs on every call.
	Update bool

	// Frozen turns a stale lockfile into a fatal error instead of a warning.
	Frozen bool
}

// Run executes one end-to-end generation.
func (p *GeneratePipeline) Run(ctx context.Context, opts GenerateOptions) (GenerationStats, error) {
	start := time.Now()
	stats := GenerationStats{}

	p.Progress.ReportInfo("loading project configuration")
	config, err := p.ConfigLoader.Load(ctx, opts.ConfigPath)
	if err != nil {
		return stats, fmt.Errorf("loading configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return stats, err
	}

	roots := ComponentRequirements(config)

	existingLock, lockErr := p.Lockfiles.Load(ctx, opts.LockPath)
	hasLock := lockErr == nil

	if hasLock && !existingLock.IsUpToDate(roots) {
		err := &entities.LockfileOutOfDateError{Aliases: staleAliases(existingLock, roots)}
		if opts.Frozen {
			return stats, err
		}
		p.Progress.ReportInfo(err.Error())
	}

	// Resolution always runs: the two-tier cache means an up-to-date
	// lockfile costs no network I/O to re-derive, and re-deriving (rather
	// than trusting stale lockfile content) is what lets the pipeline
	// recover a bundle's actual file contents, which the lockfile itself
	// never stores.
	resolveStart := time.Now()
	p.Progress.ReportInfo("resolving component dependencies")
	graph, bundles, err := p.Resolver.Resolve(ctx, roots)
	if err != nil {
		return stats, err
	}
	stats.ResolutionTime = time.Since(resolveStart)
	stats.ComponentsUsed = len(bundles)

	if opts.Update || !hasLock || !existingLock.IsUpToDate(roots) {
		newLock := BuildLockfile(p.GeneratorName, p.GeneratorVersion, p.Platform, graph, bundles, roots)
		if err := p.Lockfiles.Save(ctx, opts.LockPath, newLock); err != nil {
			p.Logger.Warn("failed to persist lockfile", "error", err)
		}
	}

	p.Progress.ReportInfo("building template context")
	metadata := entities.GenerationMetadata{
		GeneratedAt:   start,
		GeneratorName: p.GeneratorName,
		GeneratorVer:  p.GeneratorVersion,
	}
	tctx, err := p.ContextBuilder.Build(config, bundles, metadata)
	if err != nil {
		return stats, err
	}

	renderStart := time.Now()
	p.Progress.ReportInfo("rendering templates")
	files, err := p.Templates.RenderAll(ctx, tctx)
	if err != nil {
		return stats, err
	}
	stats.RenderTime = time.Since(renderStart)

	if err := p.Output.Write(ctx, opts.OutputDir, files, opts.Force); err != nil {
		return stats, err
	}
	stats.FilesWritten = len(files)
	stats.DatabaseEngine = config.Database.Engine

	p.Progress.ReportSuccess(fmt.Sprintf("generated %d files in %s", stats.FilesWritten, time.Since(start)))
	return stats, nil
}

// ComponentRequirements flattens the project's component-alias map into
// the resolver's root requirement list. No version constraint is implied
// by the project config itself; the component's own manifest carries
// api_compatibility, and any alias-level pin lives in the URI's own
// version specifier.
func ComponentRequirements(config entities.ProjectConfiguration) []entities.DependencyRequirement {
	reqs := make([]entities.DependencyRequirement, 0, len(config.Components))
	for alias, uri := range config.Components {
		reqs = append(reqs, entities.DependencyRequirement{Alias: alias, URI: uri})
	}
	return reqs
}

func staleAliases(lock entities.Lockfile, roots []entities.DependencyRequirement) []string {
	var stale []string
	for _, root := range roots {
		locked, ok := lock.Components[root.Alias]
		if !ok {
			stale = append(stale, root.Alias)
			continue
		}
		if root.Constraint == "" {
			continue
		}
		constraint, err := entities.ParseConstraint(root.Constraint)
		if err != nil {
			stale = append(stale, root.Alias)
			continue
		}
		version, err := entities.ParseSemVer(locked.Version)
		if err != nil || !constraint.Satisfies(version) {
			stale = append(stale, root.Alias)
		}
	}
	return stale
}

// BuildLockfile derives a Lockfile from a resolved dependency graph and
// its fetched bundles, tagging each component direct or transitive
// against the given root requirement set.
func BuildLockfile(name, version, platform string, graph *entities.DependencyGraph, bundles map[string]entities.ComponentBundle, roots []entities.DependencyRequirement) entities.Lockfile {
	rootAliases := make(map[string]bool, len(roots))
	for _, r := range roots {
		rootAliases[r.Alias] = true
	}

	lock := entities.NewLockfile(time.Now(), entities.GeneratorInfo{Name: name, Version: version, Platform: platform})

	for alias, bundle := range bundles {
		deps := make(map[string]string)
		for _, dep := range graph.Dependencies(alias) {
			deps[dep.Alias] = dep.Version.String()
		}
		lock.Components[alias] = entities.LockedComponent{
			Alias:       alias,
			OriginalURI: bundle.ResolvedURI.String(),
			Version:     bundle.Manifest.Version.String(),
			ResolvedURL: bundle.ResolvedURI.String(),
			Integrity:   bundle.Digest,
			Dependencies: deps,
			ResolvedAt:  time.Now(),
		}

		reason := entities.ReasonTransitiveViaAlias
		if rootAliases[alias] {
			reason = entities.ReasonDirect
		}
		depAliases := make([]string, 0, len(deps))
		for depAlias := range deps {
			depAliases = append(depAliases, depAlias)
		}
		lock.ResolutionTree = append(lock.ResolutionTree, entities.ResolutionTreeEntry{
			Alias: alias, Reason: reason, Dependencies: depAliases,
		})
	}

	lock.Stats = entities.LockfileStats{ComponentCount: len(lock.Components)}
	return lock
}

