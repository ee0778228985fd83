// Package lockfile reads and writes rustgen.lock, the reproducible record
// of a resolved component dependency graph.
package lockfile

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.LockfileManager = Manager{}

// Manager implements usecases.LockfileManager over a YAML file on disk,
// the same encoding internal/adapters/manifest uses for component
// manifests.
type Manager struct{}

// NewManager constructs a lockfile Manager.
func NewManager() Manager { return Manager{} }

// wireLockfile mirrors entities.Lockfile with yaml tags; kept separate so
// the entity package stays free of encoding concerns.
type wireLockfile struct {
	FormatVersion int                       `yaml:"format_version"`
	GeneratedAt   time.Time                 `yaml:"generated_at"`
	Generator     wireGenerator             `yaml:"generator"`
	Components    map[string]wireComponent  `yaml:"components"`
	Resolution    []wireResolutionTreeEntry `yaml:"resolution_tree"`
	Stats         wireStats                 `yaml:"stats"`
}

type wireGenerator struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Platform string `yaml:"platform"`
}

type wireComponent struct {
	OriginalURI  string            `yaml:"original_uri"`
	Version      string            `yaml:"version"`
	ResolvedURL  string            `yaml:"resolved_url"`
	Integrity    string            `yaml:"integrity"`
	Dependencies map[string]string `yaml:"dependencies,omitempty"`
	ResolvedAt   time.Time         `yaml:"resolved_at"`
	SizeBytes    int64             `yaml:"size_bytes,omitempty"`
}

type wireResolutionTreeEntry struct {
	Alias        string   `yaml:"alias"`
	Reason       string   `yaml:"reason"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

type wireStats struct {
	ComponentCount   int            `yaml:"component_count"`
	TotalBytes       int64          `yaml:"total_bytes"`
	ResolutionTimeMS int64          `yaml:"resolution_time_ms"`
	RequestCounts    map[string]int `yaml:"request_counts,omitempty"`
}

// Load reads and parses the lockfile at path. A missing file is not an
// error: it returns a fresh, empty lockfile so first-run generation and
// lockfile validation can share the same code path.
func (Manager) Load(ctx context.Context, path string) (entities.Lockfile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return entities.NewLockfile(time.Time{}, entities.GeneratorInfo{}), nil
	}
	if err != nil {
		return entities.Lockfile{}, fmt.Errorf("reading lockfile %s: %w", path, err)
	}

	var wire wireLockfile
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return entities.Lockfile{}, fmt.Errorf("parsing lockfile %s: %w", path, err)
	}

	lockfile, err := wire.toEntity()
	if err != nil {
		return entities.Lockfile{}, fmt.Errorf("lockfile %s: %w", path, err)
	}

	if err := lockfile.Validate(); err != nil {
		return entities.Lockfile{}, fmt.Errorf("lockfile %s is invalid: %w", path, err)
	}
	return lockfile, nil
}

// Save serializes lockfile to path as YAML, creating or overwriting it.
func (Manager) Save(ctx context.Context, path string, lockfile entities.Lockfile) error {
	if err := lockfile.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid lockfile: %w", err)
	}

	data, err := yaml.Marshal(fromEntity(lockfile))
	if err != nil {
		return fmt.Errorf("encoding lockfile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing lockfile %s: %w", path, err)
	}
	return nil
}

func fromEntity(l entities.Lockfile) wireLockfile {
	wire := wireLockfile{
		FormatVersion: l.FormatVersion,
		GeneratedAt:   l.GeneratedAt,
		Generator: wireGenerator{
			Name:     l.Generator.Name,
			Version:  l.Generator.Version,
			Platform: l.Generator.Platform,
		},
		Components: make(map[string]wireComponent, len(l.Components)),
		Stats: wireStats{
			ComponentCount:   l.Stats.ComponentCount,
			TotalBytes:       l.Stats.TotalBytes,
			ResolutionTimeMS: l.Stats.ResolutionTimeMS,
			RequestCounts:    l.Stats.RequestCounts,
		},
	}

	for alias, comp := range l.Components {
		wire.Components[alias] = wireComponent{
			OriginalURI:  comp.OriginalURI,
			Version:      comp.Version,
			ResolvedURL:  comp.ResolvedURL,
			Integrity:    comp.Integrity,
			Dependencies: comp.Dependencies,
			ResolvedAt:   comp.ResolvedAt,
			SizeBytes:    comp.SizeBytes,
		}
	}

	for _, entry := range l.ResolutionTree {
		wire.Resolution = append(wire.Resolution, wireResolutionTreeEntry{
			Alias: entry.Alias, Reason: string(entry.Reason), Dependencies: entry.Dependencies,
		})
	}

	return wire
}

func (w wireLockfile) toEntity() (entities.Lockfile, error) {
	l := entities.Lockfile{
		FormatVersion: w.FormatVersion,
		GeneratedAt:   w.GeneratedAt,
		Generator: entities.GeneratorInfo{
			Name: w.Generator.Name, Version: w.Generator.Version, Platform: w.Generator.Platform,
		},
		Components: make(map[string]entities.LockedComponent, len(w.Components)),
		Stats: entities.LockfileStats{
			ComponentCount:   w.Stats.ComponentCount,
			TotalBytes:       w.Stats.TotalBytes,
			ResolutionTimeMS: w.Stats.ResolutionTimeMS,
			RequestCounts:    w.Stats.RequestCounts,
		},
	}

	for alias, comp := range w.Components {
		l.Components[alias] = entities.LockedComponent{
			Alias:        alias,
			OriginalURI:  comp.OriginalURI,
			Version:      comp.Version,
			ResolvedURL:  comp.ResolvedURL,
			Integrity:    comp.Integrity,
			Dependencies: comp.Dependencies,
			ResolvedAt:   comp.ResolvedAt,
			SizeBytes:    comp.SizeBytes,
		}
	}

	for _, entry := range w.Resolution {
		l.ResolutionTree = append(l.ResolutionTree, entities.ResolutionTreeEntry{
			Alias: entry.Alias, Reason: entities.ResolutionReason(entry.Reason), Dependencies: entry.Dependencies,
		})
	}

	return l, nil
}
