// Package hostconfig resolves and loads the generator binary's own ambient
// settings: cache directory, registry URL, network timeout,
// verbosity — distinct from the project YAML the tool generates from.
package hostconfig

import (
	"os"
	"path/filepath"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

const appName = "rustgen"

// ResolveXDGPaths resolves rustgen's XDG Base Directory paths, honoring
// RUSTGEN_CONFIG_HOME/RUSTGEN_CACHE_DIR ahead of the generic XDG_*
// variables, ahead of the platform defaults.
func ResolveXDGPaths() entities.XDGPaths {
	home, _ := os.UserHomeDir()

	return entities.XDGPaths{
		ConfigHome: firstNonEmpty(
			os.Getenv("RUSTGEN_CONFIG_HOME"),
			joinIfSet(os.Getenv("XDG_CONFIG_HOME"), appName),
			filepath.Join(home, ".config", appName),
		),
		DataHome: firstNonEmpty(
			joinIfSet(os.Getenv("XDG_DATA_HOME"), appName),
			filepath.Join(home, ".local", "share", appName),
		),
		CacheHome: firstNonEmpty(
			os.Getenv("RUSTGEN_CACHE_DIR"),
			joinIfSet(os.Getenv("XDG_CACHE_HOME"), appName),
			filepath.Join(home, ".cache", appName),
		),
	}
}

func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func joinIfSet(base, suffix string) string {
	if base == "" {
		return ""
	}
	return filepath.Join(base, suffix)
}
