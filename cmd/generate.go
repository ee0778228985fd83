package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustgen-dev/rustgen/internal/adapters/cache"
	"github.com/rustgen-dev/rustgen/internal/adapters/cli"
	"github.com/rustgen-dev/rustgen/internal/adapters/config"
	"github.com/rustgen-dev/rustgen/internal/adapters/fetcher"
	"github.com/rustgen-dev/rustgen/internal/adapters/filesystem"
	"github.com/rustgen-dev/rustgen/internal/adapters/integrity"
	"github.com/rustgen-dev/rustgen/internal/adapters/lockfile"
	"github.com/rustgen-dev/rustgen/internal/adapters/logging"
	"github.com/rustgen-dev/rustgen/internal/adapters/manifest"
	"github.com/rustgen-dev/rustgen/internal/adapters/template"
	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var (
	generateConfigPath string
	generateOutputDir  string
	generateLockPath   string
	generateForce      bool
	generateUpdate     bool
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	GroupID: "generation",
	Short:   "Resolve a project's components and render its backend",
	Long: `generate loads the project YAML specification, resolves its component
dependencies against rustgen.lock, fetches and verifies any component not
already cached, and renders the built-in plus component-contributed
templates into the output directory.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateConfigPath, "file", "f", "rustgen.yaml", "project specification file")
	generateCmd.Flags().StringVarP(&generateOutputDir, "output", "o", ".", "output directory for the generated project")
	generateCmd.Flags().StringVar(&generateLockPath, "lockfile", "rustgen.lock", "lockfile path")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "overwrite existing output files")
	generateCmd.Flags().BoolVar(&generateUpdate, "update", false, "rewrite rustgen.lock from this run's resolution even if it is up to date")

	rootCmd.AddCommand(generateCmd)
}

// buildResolver assembles a usecases.BundleResolver from the concrete
// fetcher, cache, and compatibility adapters, wired against the host
// config resolved for this invocation. It is shared by every subcommand
// that needs to resolve a dependency graph without necessarily running
// the full generation pipeline (lockfile explain).
func buildResolver(cmd *cobra.Command) (*usecases.BundleResolver, entities.HostConfig, error) {
	hostCfg, err := resolveHostConfig(cmd)
	if err != nil {
		return nil, entities.HostConfig{}, fmt.Errorf("loading host configuration: %w", err)
	}

	manifestLoader := manifest.NewLoader()
	registry := fetcher.NewRegistryFromHostConfig(hostCfg, manifestLoader)
	verifier := integrity.NewVerifier()
	componentCache := cache.New(hostCfg.CacheDir, verifier)

	hostVersion, err := entities.ParseSemVer(hostAPIVersion)
	if err != nil {
		return nil, entities.HostConfig{}, fmt.Errorf("parsing host API version: %w", err)
	}

	resolver := &usecases.BundleResolver{
		Fetchers:          registry,
		Cache:             componentCache,
		Compat:            usecases.DefaultCompatibilityChecker{},
		HostVersion:       hostVersion,
		AllowExperimental: allowExperimental,
	}
	return resolver, hostCfg, nil
}

// buildPipeline assembles a usecases.GeneratePipeline from the concrete
// adapters, wired against the host config resolved for this invocation.
func buildPipeline(cmd *cobra.Command) (*usecases.GeneratePipeline, error) {
	resolver, hostCfg, err := buildResolver(cmd)
	if err != nil {
		return nil, err
	}

	logLevel := logging.LevelInfo
	if hostCfg.Verbose {
		logLevel = logging.LevelDebug
	}
	logger := logging.New(logLevel)

	return &usecases.GeneratePipeline{
		ConfigLoader:   config.NewLoader(),
		Lockfiles:      lockfile.NewManager(),
		Resolver:       resolver,
		ContextBuilder: usecases.DefaultContextBuilder{},
		Templates:      template.NewEngine(),
		Output:         filesystem.NewOutputWriter(),
		Progress:       cli.NewProgressReporter(),
		Logger:         logger,

		GeneratorName:    generatorName,
		GeneratorVersion: appVersion,
		Platform:         hostAPIVersion,
	}, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	hostCfg, err := resolveHostConfig(cmd)
	if err != nil {
		return err
	}

	pipeline, err := buildPipeline(cmd)
	if err != nil {
		return err
	}

	stats, err := pipeline.Run(cmd.Context(), usecases.GenerateOptions{
		ConfigPath: generateConfigPath,
		OutputDir:  generateOutputDir,
		LockPath:   generateLockPath,
		Force:      generateForce,
		Update:     generateUpdate,
		Frozen:     hostCfg.Frozen,
	})
	if err != nil {
		cli.NewReportFormatter().PrintValidationReport(err)
		return err
	}

	cli.NewReportFormatter().PrintGenerationReport(stats)
	return nil
}
