package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("86")  // Cyan
	colorSecondary = lipgloss.Color("240") // Gray
	colorSuccess   = lipgloss.Color("82")  // Green
	colorWarning   = lipgloss.Color("214") // Orange
	colorDanger    = lipgloss.Color("196") // Red
	colorMuted     = lipgloss.Color("245") // Light gray
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSecondary).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	activeTabStyle = tabStyle.
			Bold(true).
			Foreground(colorPrimary).
			Underline(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	focusedValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	goodVerdictStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSuccess)

	badVerdictStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorDanger)
)

// deltaColor grades a lap delta: green near the best lap, red beyond two
// seconds.
func deltaColor(delta float64) lipgloss.Color {
	switch {
	case delta >= 2:
		return colorDanger
	case delta >= 1:
		return colorWarning
	default:
		return colorSuccess
	}
}
