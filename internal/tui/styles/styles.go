// Package styles defines shared lipgloss styles for the TUI.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#8B5CF6") // Violet accent
	secondaryColor = lipgloss.Color("#78716C") // Stone gray for secondary text
	successColor   = lipgloss.Color("#34D399") // Emerald for completed agents
	errorColor     = lipgloss.Color("#F87171") // Red for failed agents
	warningColor   = lipgloss.Color("#FBBF24") // Amber for recommendations and alerts
	runningColor   = lipgloss.Color("#60A5FA") // Blue for the active agent

	// TitleStyle for headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// SubtleStyle for hints/help text
	SubtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// SelectedStyle for selected items and key hints
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// SectionStyle for panel and card headings
	SectionStyle = lipgloss.NewStyle().
			Bold(true)

	// StatusBarStyle for bottom status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// BoxStyle for panel borders
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(1, 2)

	// CardStyle for insight cards
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	// CalloutStyle for highlighted recommendations
	CalloutStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(warningColor).
			Foreground(warningColor).
			PaddingLeft(1)

	// SuccessStyle for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	// AlertStyle for user-visible failure alerts
	AlertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(errorColor).
			Padding(0, 1)

	// RunningStyle for the active timeline entry
	RunningStyle = lipgloss.NewStyle().
			Foreground(runningColor)
)
