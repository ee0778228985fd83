package hostconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

func TestLoaderDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := Loader{ConfigFile: filepath.Join(dir, "missing-global.toml")}

	cfg, err := loader.Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RegistryURL != entities.DefaultHostConfig().RegistryURL {
		t.Fatalf("expected default registry URL, got %q", cfg.RegistryURL)
	}
	if cfg.FetchTimeout != entities.DefaultHostConfig().FetchTimeout {
		t.Fatalf("expected default fetch timeout, got %v", cfg.FetchTimeout)
	}
}

func TestLoaderProjectConfigOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	projectToml := "registry_url = \"https://registry.example.com\"\nfrozen = true\n"
	if err := os.WriteFile(filepath.Join(dir, "rustgen.toml"), []byte(projectToml), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := Loader{ConfigFile: filepath.Join(dir, "missing-global.toml")}
	cfg, err := loader.Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RegistryURL != "https://registry.example.com" {
		t.Fatalf("expected project config to override registry URL, got %q", cfg.RegistryURL)
	}
	if !cfg.Frozen {
		t.Fatal("expected frozen=true from project config")
	}
}

func TestLoaderEnvOverridesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	projectToml := "registry_url = \"https://registry.example.com\"\n"
	if err := os.WriteFile(filepath.Join(dir, "rustgen.toml"), []byte(projectToml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RUSTGEN_REGISTRY_URL", "https://env-registry.example.com")

	loader := Loader{ConfigFile: filepath.Join(dir, "missing-global.toml")}
	cfg, err := loader.Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RegistryURL != "https://env-registry.example.com" {
		t.Fatalf("expected env var to override project config, got %q", cfg.RegistryURL)
	}
}

func TestLoaderCLIOverrideWinsOverEverything(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RUSTGEN_REGISTRY_URL", "https://env-registry.example.com")

	loader := Loader{
		ConfigFile: filepath.Join(dir, "missing-global.toml"),
		Overrides:  entities.HostConfig{RegistryURL: "https://flag-registry.example.com"},
	}
	cfg, err := loader.Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RegistryURL != "https://flag-registry.example.com" {
		t.Fatalf("expected CLI override to win, got %q", cfg.RegistryURL)
	}
}
