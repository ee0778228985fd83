package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustgen-dev/rustgen/internal/adapters/config"
	"github.com/rustgen-dev/rustgen/internal/adapters/explain"
	lockfileadapter "github.com/rustgen-dev/rustgen/internal/adapters/lockfile"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var lockfileCmd = &cobra.Command{
	Use:     "lockfile",
	GroupID: "inspection",
	Short:   "Inspect and validate rustgen.lock",
}

var lockfileValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check rustgen.lock's structural invariants",
	Long: `validate loads rustgen.lock and checks its structural invariants:
component URIs, pinned versions, integrity digest shape, and that every
dependency and resolution-tree entry names a locked alias. It does not
compare the lockfile against the project's declared component
dependencies. It performs no network I/O.`,
	RunE: runLockfileValidate,
}

var lockfileExplainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Resolve dependencies and print a compact resolution summary",
	Long: `explain resolves the project's component dependencies (the same
resolution generate performs) and prints the resulting install order,
pinned versions, resolution reasons, and dependency edges in a compact,
token-efficient format.`,
	RunE: runLockfileExplain,
}

func init() {
	lockfileCmd.AddCommand(lockfileValidateCmd)
	lockfileCmd.AddCommand(lockfileExplainCmd)
	rootCmd.AddCommand(lockfileCmd)

	lockfileValidateCmd.Flags().StringVarP(&generateLockPath, "lockfile", "l", "rustgen.lock", "lockfile path")
	lockfileExplainCmd.Flags().StringVarP(&generateConfigPath, "file", "f", "rustgen.yaml", "project specification file")
}

func runLockfileValidate(cmd *cobra.Command, args []string) error {
	manager := lockfileadapter.NewManager()
	lock, err := manager.Load(cmd.Context(), generateLockPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", generateLockPath, err)
	}
	if err := lock.Validate(); err != nil {
		return err
	}

	fmt.Printf("%s is valid: %d components, generated %s\n",
		generateLockPath, lock.Stats.ComponentCount, lock.GeneratedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runLockfileExplain(cmd *cobra.Command, args []string) error {
	resolver, _, err := buildResolver(cmd)
	if err != nil {
		return err
	}

	projectConfig, err := config.NewLoader().Load(cmd.Context(), generateConfigPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", generateConfigPath, err)
	}

	roots := usecases.ComponentRequirements(projectConfig)
	graph, bundles, err := resolver.Resolve(cmd.Context(), roots)
	if err != nil {
		return err
	}

	lock := usecases.BuildLockfile(generatorName, appVersion, hostAPIVersion, graph, bundles, roots)

	summary, err := explain.NewExplainer().Explain(graph, lock)
	if err != nil {
		return err
	}

	fmt.Println(summary)
	return nil
}
