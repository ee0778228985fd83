package integrity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

func testBundle(t *testing.T, dir string) entities.ComponentBundle {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "templates", "main.go.tmpl"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	min, _ := entities.ParseSemVer("1.0.0")
	max, _ := entities.ParseSemVer("2.0.0")
	version, _ := entities.ParseSemVer("1.0.0")

	return entities.ComponentBundle{
		Manifest: entities.ComponentManifest{
			Name: "auth", Version: version,
			APICompatibility: entities.APICompatibility{Min: min, Max: max},
			Templates: []entities.ProvidesTemplate{
				{Name: "main", SourcePath: "templates/main.go.tmpl", OutputPath: "main.go", Target: entities.TargetBackend},
			},
		},
		LocalPath: dir,
	}
}

func TestVerifierComputeIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	bundle := testBundle(t, dir)

	d1, err := NewVerifier().Compute(bundle, "sha256")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	d2, err := NewVerifier().Compute(bundle, "sha256")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("expected deterministic digest, got %q vs %q", d1, d2)
	}
	if len(d1) < len("sha256-") || d1[:7] != "sha256-" {
		t.Fatalf("expected sha256- prefixed digest, got %q", d1)
	}
}

// testBundleWithGroups builds a bundle with one template, one asset, and
// one hook so the group ordering (templates, assets, hooks) can be
// exercised; reverseOrder assigns the manifest's hook, asset, and template
// lists in the opposite order. Each group holds a single entry, so order
// within a group is not varied.
func testBundleWithGroups(t *testing.T, dir string, reverseOrder bool) entities.ComponentBundle {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "hooks"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "static"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go.tmpl"), []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "static", "logo.png"), []byte("binary"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "hooks", "pre.sh"), []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	version, _ := entities.ParseSemVer("1.0.0")
	min, _ := entities.ParseSemVer("1.0.0")
	max, _ := entities.ParseSemVer("2.0.0")

	templates := []entities.ProvidesTemplate{{Name: "main", SourcePath: "main.go.tmpl", OutputPath: "main.go", Target: entities.TargetBackend}}
	assets := []entities.AssetRef{{Pattern: "static/logo.png", OutputPath: "static/logo.png"}}
	hooks := []entities.Hook{{Timing: entities.HookPreGenerate, Path: "hooks/pre.sh"}}

	m := entities.ComponentManifest{
		Name: "auth", Version: version,
		APICompatibility: entities.APICompatibility{Min: min, Max: max},
	}
	if reverseOrder {
		m.Hooks = hooks
		m.Assets = assets
		m.Templates = templates
	} else {
		m.Templates = templates
		m.Assets = assets
		m.Hooks = hooks
	}

	return entities.ComponentBundle{Manifest: m, LocalPath: dir}
}

func TestVerifierComputeInvariantUnderGroupInsertionOrder(t *testing.T) {
	d1 := t.TempDir()
	d2 := t.TempDir()

	digest1, err := NewVerifier().Compute(testBundleWithGroups(t, d1, false), "sha256")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	digest2, err := NewVerifier().Compute(testBundleWithGroups(t, d2, true), "sha256")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if digest1 != digest2 {
		t.Fatalf("expected digest invariant under manifest list insertion order, got %q vs %q", digest1, digest2)
	}
}

func TestVerifierVerifyDetectsTamper(t *testing.T) {
	dir := t.TempDir()
	bundle := testBundle(t, dir)
	verifier := NewVerifier()

	digest, err := verifier.Compute(bundle, "sha256")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if err := verifier.Verify(bundle, digest); err != nil {
		t.Fatalf("Verify of untampered bundle failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "templates", "main.go.tmpl"), []byte("package main\n\nvar tampered = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err = verifier.Verify(bundle, digest)
	if err == nil {
		t.Fatal("expected integrity failure after tampering")
	}
	if _, ok := err.(*entities.IntegrityFailedError); !ok {
		t.Fatalf("expected *IntegrityFailedError, got %T", err)
	}
}
