package cli

import (
	"fmt"

	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.ProgressReporter = (*ProgressReporter)(nil)

// ProgressReporter reports pipeline progress to the terminal using
// lipgloss-styled output.
type ProgressReporter struct{}

// NewProgressReporter creates a new ProgressReporter.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{}
}

// ReportProgress prints a step's progress, with a bar when total is known.
func (r *ProgressReporter) ReportProgress(step string, current, total int, message string) {
	if total > 0 {
		percent := (current * 100) / total
		fmt.Printf("  %s %3d%% %s\n", renderProgressBar(percent), percent, message)
		return
	}
	fmt.Printf("  %s\n", message)
}

// ReportError prints an error in the error style.
func (r *ProgressReporter) ReportError(err error) {
	fmt.Println(errorStyle.Render("✗ " + err.Error()))
}

// ReportSuccess prints a success message in the success style.
func (r *ProgressReporter) ReportSuccess(message string) {
	fmt.Println(successStyle.Render("✓ " + message))
}

// ReportInfo prints an informational message.
func (r *ProgressReporter) ReportInfo(message string) {
	fmt.Println(mutedStyle.Render("ℹ " + message))
}
