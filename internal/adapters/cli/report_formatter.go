package cli

import (
	"errors"
	"fmt"

	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.ReportFormatter = (*ReportFormatter)(nil)

// ReportFormatter formats validation and generation reports for terminal
// display, styled with the same lipgloss palette as ProgressReporter.
type ReportFormatter struct{}

// NewReportFormatter creates a new ReportFormatter.
func NewReportFormatter() *ReportFormatter {
	return &ReportFormatter{}
}

// PrintValidationReport prints a configuration validation result. A nil
// err prints a single success line; a *entities.InvalidConfigError prints
// its rule and field; any other error prints as-is.
func (f *ReportFormatter) PrintValidationReport(err error) {
	if err == nil {
		fmt.Println(successStyle.Render("✓ configuration is valid"))
		return
	}

	var cfgErr *entities.InvalidConfigError
	if errors.As(err, &cfgErr) {
		fmt.Println(errorStyle.Render("✗ " + cfgErr.Field + ": " + cfgErr.Message))
		fmt.Println(mutedStyle.Render("  violates " + cfgErr.Rule))
		return
	}

	fmt.Println(errorStyle.Render("✗ " + err.Error()))
}

// PrintGenerationReport prints a summary of a completed generation run.
func (f *ReportFormatter) PrintGenerationReport(stats usecases.GenerationStats) {
	fmt.Println(titleStyle.Render("Generation complete"))
	fmt.Printf("  %s %d\n", mutedStyle.Render("Files written:"), stats.FilesWritten)
	fmt.Printf("  %s %d\n", mutedStyle.Render("Components used:"), stats.ComponentsUsed)
	fmt.Printf("  %s %s\n", mutedStyle.Render("Database engine:"), stats.DatabaseEngine)
	fmt.Printf("  %s %s\n", mutedStyle.Render("Resolution time:"), stats.ResolutionTime)
	fmt.Printf("  %s %s\n", mutedStyle.Render("Render time:"), stats.RenderTime)
}
