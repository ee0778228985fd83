// Package cmd implements the rustgen CLI commands using Cobra.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustgen-dev/rustgen/internal/adapters/hostconfig"
	"github.com/rustgen-dev/rustgen/internal/core/entities"
)

// Build-time version information, set via SetVersionInfo from main.go.
var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
	appBuiltBy = "unknown"
)

// hostAPIVersion is the generator's own API version, checked against each
// component manifest's api_compatibility range. It tracks the template
// contract (built-in template set, context shape, func map), not the
// binary's release version.
const hostAPIVersion = "1.0.0"

const generatorName = "rustgen"

// Persistent flag values accessible to all subcommands.
var (
	cfgFile           string
	projectRoot       string
	verbose           bool
	cacheDir          string
	registryURL       string
	registryToken     string
	fetchTimeout      time.Duration
	frozen            bool
	allowExperimental bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rustgen",
	Short: "Declarative backend generator built from reusable components",
	Long: `rustgen generates a backend project from a declarative YAML
specification: models, endpoints, and a database engine, plus reusable
components pulled from local paths, git, GitHub, GitLab, or a registry.

Each generation resolves the project's component dependencies (with
SemVer constraint satisfaction and SRI-style integrity verification),
records the result in rustgen.lock, and renders the project's templates
against the resolved configuration.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the global config file (env: RUSTGEN_CONFIG_HOME)")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project", "p", ".", "project root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output (env: RUSTGEN_VERBOSE)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "component cache directory (env: RUSTGEN_CACHE_DIR)")
	rootCmd.PersistentFlags().StringVar(&registryURL, "registry-url", "", "registry: scheme base URL")
	rootCmd.PersistentFlags().StringVar(&registryToken, "registry-token", "", "bearer token for private git/registry fetches")
	rootCmd.PersistentFlags().DurationVar(&fetchTimeout, "timeout", 0, "per-fetch network timeout")
	rootCmd.PersistentFlags().BoolVar(&frozen, "frozen", false, "fail instead of warning when rustgen.lock is out of date")
	rootCmd.PersistentFlags().BoolVar(&allowExperimental, "allow-experimental", false, "proceed even when a component's api_compatibility range would otherwise block generation (too_old or too_new)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "generation", Title: "Generation"},
		&cobra.Group{ID: "inspection", Title: "Inspection"},
	)
}

// Execute runs the root command. This is the main entry point called from main.go.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets build-time version information from ldflags.
// Call this from main.go before Execute().
func SetVersionInfo(version, commit, date, builtBy string) {
	appVersion = version
	appCommit = commit
	appDate = date
	appBuiltBy = builtBy

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		fmt.Sprintf("rustgen %s (commit: %s, built: %s by %s)\n", version, commit, date, builtBy),
	)
}

// resolveHostConfig loads the generator's own ambient settings, layering
// these persistent flags over RUSTGEN_* environment variables, a
// project-local rustgen.toml, and the global XDG config.toml.
func resolveHostConfig(cmd *cobra.Command) (entities.HostConfig, error) {
	loader := hostconfig.Loader{
		ConfigFile: cfgFile,
		Overrides: entities.HostConfig{
			CacheDir:      cacheDir,
			RegistryURL:   registryURL,
			RegistryToken: registryToken,
			FetchTimeout:  fetchTimeout,
			Frozen:        frozen,
			Verbose:       verbose,
		},
	}
	return loader.Load(cmd.Context(), projectRoot)
}
