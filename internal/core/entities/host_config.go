package entities

import "time"

// HostConfig is the generator binary's own ambient configuration: settings
// about how the tool runs, not about the project it generates. It is
// distinct from ProjectConfiguration, which is the YAML project
// specification the tool consumes.
//
// Layering, highest precedence first: command-line flags, environment
// variables (RUSTGEN_*), a project-local rustgen.toml, the global XDG
// config file, compiled-in defaults.
type HostConfig struct {
	CacheDir       string
	RegistryURL    string
	RegistryToken  string
	FetchTimeout   time.Duration
	Frozen         bool // corresponds to --frozen: LockfileOutOfDate becomes fatal
	Verbose        bool
}

// DefaultHostConfig returns the compiled-in defaults.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		RegistryURL:  "https://registry.rustgen.dev",
		FetchTimeout: 30 * time.Second,
	}
}
