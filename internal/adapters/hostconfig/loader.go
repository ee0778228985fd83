package hostconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.HostConfigLoader = Loader{}

// Loader implements usecases.HostConfigLoader, layering settings highest
// precedence first: CLI flags (via Overrides), RUSTGEN_* environment
// variables, a project-local rustgen.toml, the global XDG config.toml, and
// compiled-in defaults, built with viper around a Loader value so it can
// be reused safely instead of relying on package-level state.
type Loader struct {
	// Overrides holds values already parsed from CLI flags; a non-zero
	// field here wins over every other layer. The CLI layer in cmd/
	// populates this from cobra flag values before calling Load.
	Overrides entities.HostConfig

	// ConfigFile, if set, is used instead of XDG path resolution for the
	// global config layer (the --config flag escape hatch).
	ConfigFile string
}

// Load resolves the host config for a project rooted at projectRoot.
func (l Loader) Load(ctx context.Context, projectRoot string) (entities.HostConfig, error) {
	v := viper.New()
	v.SetConfigType("toml")

	defaults := entities.DefaultHostConfig()
	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("registry_url", defaults.RegistryURL)
	v.SetDefault("registry_token", defaults.RegistryToken)
	v.SetDefault("fetch_timeout", defaults.FetchTimeout.String())
	v.SetDefault("frozen", defaults.Frozen)
	v.SetDefault("verbose", defaults.Verbose)

	globalPath := l.ConfigFile
	if globalPath == "" {
		globalPath = ResolveXDGPaths().ConfigFile()
	}
	v.SetConfigFile(globalPath)
	_ = v.ReadInConfig() // absent global config is not an error

	projectPath := filepath.Join(projectRoot, "rustgen.toml")
	v.SetConfigFile(projectPath)
	_ = v.MergeInConfig() // absent project config is not an error

	v.SetEnvPrefix("RUSTGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("fetch_timeout"))
	if err != nil {
		return entities.HostConfig{}, fmt.Errorf("parsing fetch_timeout: %w", err)
	}

	cfg := entities.HostConfig{
		CacheDir:      v.GetString("cache_dir"),
		RegistryURL:   v.GetString("registry_url"),
		RegistryToken: v.GetString("registry_token"),
		FetchTimeout:  timeout,
		Frozen:        v.GetBool("frozen"),
		Verbose:       v.GetBool("verbose"),
	}

	applyOverride(&cfg.CacheDir, l.Overrides.CacheDir)
	applyOverride(&cfg.RegistryURL, l.Overrides.RegistryURL)
	applyOverride(&cfg.RegistryToken, l.Overrides.RegistryToken)
	if l.Overrides.FetchTimeout != 0 {
		cfg.FetchTimeout = l.Overrides.FetchTimeout
	}
	if l.Overrides.Frozen {
		cfg.Frozen = true
	}
	if l.Overrides.Verbose {
		cfg.Verbose = true
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = ResolveXDGPaths().ComponentCacheDir()
	}

	return cfg, nil
}

func applyOverride(field *string, override string) {
	if override != "" {
		*field = override
	}
}
