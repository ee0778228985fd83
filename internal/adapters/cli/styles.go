package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#2563eb")
	colorSuccess = lipgloss.Color("#10b981")
	colorWarning = lipgloss.Color("#f59e0b")
	colorError   = lipgloss.Color("#ef4444")
	colorMuted   = lipgloss.Color("#6b7280")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// renderProgressBar draws a filled/empty bar at the given percentage.
func renderProgressBar(percent int) string {
	const width = 20
	filled := (percent * width) / 100
	if filled > width {
		filled = width
	}
	empty := width - filled

	bar := ""
	for i := 0; i < filled; i++ {
		bar += "█"
	}
	emptyBar := ""
	for i := 0; i < empty; i++ {
		emptyBar += "░"
	}
	return mutedStyle.Render("[") + successStyle.Render(bar) + mutedStyle.Render(emptyBar) + mutedStyle.Render("]")
}
