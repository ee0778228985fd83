package lockfile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

func sampleLockfile(t *testing.T) entities.Lockfile {
	t.Helper()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := entities.NewLockfile(now, entities.GeneratorInfo{Name: "rustgen", Version: "0.1.0", Platform: "linux/amd64"})
	l.Components["auth"] = entities.LockedComponent{
		Alias:       "auth",
		OriginalURI: "github:acme/auth-component",
		Version:     "1.2.0",
		ResolvedURL: "https://raw.githubusercontent.com/acme/auth-component/v1.2.0",
		Integrity:   "sha256-" + "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd",
		ResolvedAt:  now,
	}
	l.ResolutionTree = []entities.ResolutionTreeEntry{
		{Alias: "auth", Reason: entities.ReasonDirect},
	}
	l.Stats = entities.LockfileStats{ComponentCount: 1}
	return l
}

func TestManagerSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rustgen.lock")
	mgr := NewManager()
	original := sampleLockfile(t)

	if err := mgr.Save(context.Background(), path, original); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := mgr.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.FormatVersion != original.FormatVersion {
		t.Fatalf("format version mismatch: got %d want %d", loaded.FormatVersion, original.FormatVersion)
	}
	if !loaded.GeneratedAt.Equal(original.GeneratedAt) {
		t.Fatalf("generated_at mismatch: got %v want %v", loaded.GeneratedAt, original.GeneratedAt)
	}
	auth, ok := loaded.Components["auth"]
	if !ok {
		t.Fatal("expected auth component to round-trip")
	}
	if auth.Version != "1.2.0" || auth.Integrity != original.Components["auth"].Integrity {
		t.Fatalf("component fields didn't round-trip: %+v", auth)
	}
	if len(loaded.ResolutionTree) != 1 || loaded.ResolutionTree[0].Alias != "auth" {
		t.Fatalf("resolution tree didn't round-trip: %+v", loaded.ResolutionTree)
	}
}

func TestManagerLoadMissingFileReturnsEmptyLockfile(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager()

	loaded, err := mgr.Load(context.Background(), filepath.Join(dir, "nonexistent.lock"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Components) != 0 {
		t.Fatalf("expected empty lockfile, got %+v", loaded.Components)
	}
	if loaded.FormatVersion != entities.CurrentLockfileVersion {
		t.Fatalf("expected current format version, got %d", loaded.FormatVersion)
	}
}

func TestManagerSaveRejectsInvalidLockfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rustgen.lock")
	mgr := NewManager()

	invalid := entities.NewLockfile(time.Now(), entities.GeneratorInfo{})
	invalid.Components["bad"] = entities.LockedComponent{OriginalURI: "not a uri", Version: "1.0.0"}

	if err := mgr.Save(context.Background(), path, invalid); err == nil {
		t.Fatal("expected error saving invalid lockfile")
	}
}
