// Package explain renders a dependency resolution as a compact,
// token-efficient summary for human or LLM-assisted inspection, in a
// hand-rolled TOON (Token-Optimized Object Notation) style: abbreviated
// keys, flat per-line records, no generic decoder. No dependency is
// imported for this: the format is simple enough, and narrow enough to
// this one use, that a small formatter is clearer than a general-purpose
// encoder.
package explain

import (
	"fmt"
	"strings"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.ResolutionExplainer = (*Explainer)(nil)

// Explainer implements usecases.ResolutionExplainer.
type Explainer struct{}

// NewExplainer constructs an Explainer.
func NewExplainer() *Explainer { return &Explainer{} }

// reasonAbbrev maps each resolution reason to a single-letter code.
var reasonAbbrev = map[entities.ResolutionReason]string{
	entities.ReasonDirect:             "D",
	entities.ReasonTransitiveViaAlias: "T",
	entities.ReasonConflictResolution: "C",
}

// Explain renders the graph's topological install order annotated with
// each component's pinned version, resolution reason, and direct
// dependencies, one line per component.
func (e *Explainer) Explain(graph *entities.DependencyGraph, lockfile entities.Lockfile) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("explain: graph is nil")
	}

	order, err := graph.TopologicalOrder()
	if err != nil {
		return "", err
	}

	reasons := make(map[string]entities.ResolutionReason, len(lockfile.ResolutionTree))
	for _, entry := range lockfile.ResolutionTree {
		reasons[entry.Alias] = entry.Reason
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "@resolution\nN%d\n", len(order))

	for _, alias := range order {
		node := graph.Nodes[alias]
		if node == nil {
			continue
		}

		reasonCode := "?"
		if r, ok := reasons[alias]; ok {
			if abbr, ok := reasonAbbrev[r]; ok {
				reasonCode = abbr
			}
		}

		deps := make([]string, 0, len(graph.Edges[alias]))
		for _, edge := range graph.Edges[alias] {
			deps = append(deps, edge.DependsOn)
		}

		integrity := ""
		if comp, ok := lockfile.Components[alias]; ok && comp.Integrity != "" {
			integrity = shortIntegrity(comp.Integrity)
		}

		fmt.Fprintf(&sb, "%s v%s %s", alias, node.Version.String(), reasonCode)
		if integrity != "" {
			fmt.Fprintf(&sb, " i%s", integrity)
		}
		if len(deps) > 0 {
			fmt.Fprintf(&sb, " ->%s", strings.Join(deps, ","))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "files%d bytes%d", lockfile.Stats.ComponentCount, lockfile.Stats.TotalBytes)

	return sb.String(), nil
}

// shortIntegrity truncates an "algo-hexdigest" integrity string to its
// algorithm plus a short digest prefix, enough to spot a mismatch at a
// glance without spending tokens on the full digest.
func shortIntegrity(integrity string) string {
	algo, digest, found := strings.Cut(integrity, "-")
	if !found {
		if len(integrity) > 12 {
			return integrity[:12]
		}
		return integrity
	}
	if len(digest) > 8 {
		digest = digest[:8]
	}
	return algo + "-" + digest
}
