package explain

import (
	"strings"
	"testing"
	"time"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

func mustURI(t *testing.T, raw string) entities.ComponentURI {
	t.Helper()
	uri, err := entities.ParseComponentURI(raw)
	if err != nil {
		t.Fatalf("ParseComponentURI(%q): %v", raw, err)
	}
	return uri
}

func mustVersion(t *testing.T, raw string) entities.SemVersion {
	t.Helper()
	v, err := entities.ParseSemVer(raw)
	if err != nil {
		t.Fatalf("ParseSemVer(%q): %v", raw, err)
	}
	return v
}

func buildFixture(t *testing.T) (*entities.DependencyGraph, entities.Lockfile) {
	t.Helper()
	graph := entities.NewDependencyGraph()

	auth := &entities.DependencyNode{Alias: "auth", URI: mustURI(t, "github:acme/auth@^1.2.0"), Version: mustVersion(t, "1.2.0")}
	crypto := &entities.DependencyNode{Alias: "crypto", URI: mustURI(t, "github:acme/crypto@^2.0.0"), Version: mustVersion(t, "2.0.0")}

	if err := graph.AddNode(crypto); err != nil {
		t.Fatalf("AddNode crypto: %v", err)
	}
	if err := graph.AddNode(auth); err != nil {
		t.Fatalf("AddNode auth: %v", err)
	}
	if err := graph.AddEdge(&entities.DependencyEdge{Alias: "auth", DependsOn: "crypto", Constraint: "^2.0.0"}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	lockfile := entities.NewLockfile(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), entities.GeneratorInfo{Name: "rustgen", Version: "0.1.0"})
	lockfile.Components["auth"] = entities.LockedComponent{Alias: "auth", OriginalURI: "github:acme/auth@^1.2.0", Version: "1.2.0", Integrity: "sha256-abcdef1234567890"}
	lockfile.Components["crypto"] = entities.LockedComponent{Alias: "crypto", OriginalURI: "github:acme/crypto@^2.0.0", Version: "2.0.0", Integrity: "sha256-1111222233334444"}
	lockfile.ResolutionTree = []entities.ResolutionTreeEntry{
		{Alias: "auth", Reason: entities.ReasonDirect, Dependencies: []string{"crypto"}},
		{Alias: "crypto", Reason: entities.ReasonTransitiveViaAlias},
	}
	lockfile.Stats = entities.LockfileStats{ComponentCount: 2, TotalBytes: 4096}

	return graph, lockfile
}

func TestExplainOrdersDependenciesBeforeDependents(t *testing.T) {
	graph, lockfile := buildFixture(t)
	e := NewExplainer()

	out, err := e.Explain(graph, lockfile)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}

	cryptoIdx := strings.Index(out, "crypto ")
	authIdx := strings.Index(out, "auth ")
	if cryptoIdx == -1 || authIdx == -1 {
		t.Fatalf("expected both aliases in output, got:\n%s", out)
	}
	if cryptoIdx > authIdx {
		t.Errorf("expected crypto (dependency) to appear before auth (dependent), got:\n%s", out)
	}
}

func TestExplainIncludesReasonAndDependencyEdge(t *testing.T) {
	graph, lockfile := buildFixture(t)
	e := NewExplainer()

	out, err := e.Explain(graph, lockfile)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}

	if !strings.Contains(out, "auth v1.2.0 D") {
		t.Errorf("expected direct-reason line for auth, got:\n%s", out)
	}
	if !strings.Contains(out, "->crypto") {
		t.Errorf("expected auth -> crypto edge, got:\n%s", out)
	}
	if !strings.Contains(out, "crypto v2.0.0 T") {
		t.Errorf("expected transitive-reason line for crypto, got:\n%s", out)
	}
}

func TestExplainReturnsCircularDependencyError(t *testing.T) {
	graph := entities.NewDependencyGraph()
	a := &entities.DependencyNode{Alias: "a", Version: mustVersion(t, "1.0.0")}
	b := &entities.DependencyNode{Alias: "b", Version: mustVersion(t, "1.0.0")}
	if err := graph.AddNode(a); err != nil {
		t.Fatalf("AddNode a: %v", err)
	}
	if err := graph.AddNode(b); err != nil {
		t.Fatalf("AddNode b: %v", err)
	}
	if err := graph.AddEdge(&entities.DependencyEdge{Alias: "a", DependsOn: "b"}); err != nil {
		t.Fatalf("AddEdge a->b: %v", err)
	}
	if err := graph.AddEdge(&entities.DependencyEdge{Alias: "b", DependsOn: "a"}); err != nil {
		t.Fatalf("AddEdge b->a: %v", err)
	}

	e := NewExplainer()
	if _, err := e.Explain(graph, entities.Lockfile{}); err == nil {
		t.Fatal("expected circular dependency error, got nil")
	}
}
