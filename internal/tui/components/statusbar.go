package components

import (
	"strings"

	"github.com/boss6825/pharmintel/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// StatusBar renders a bottom help bar showing contextual key hints, with an
// optional right-aligned label such as the run id.
type StatusBar struct {
	Right string
}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// WithRight returns a copy of the bar that shows label on the right edge.
func (s StatusBar) WithRight(label string) StatusBar {
	s.Right = label
	return s
}

// Render returns the status bar string for the given width and items.
// Items are joined with " • " and the right label is kept only if it fits.
func (s StatusBar) Render(width int, items []string) string {
	content := strings.Join(items, " • ")

	if s.Right != "" {
		gap := width - lipgloss.Width(content) - lipgloss.Width(s.Right) - 1
		if gap > 0 {
			content += strings.Repeat(" ", gap) + s.Right
		}
	}

	return styles.StatusBarStyle.Width(width).Render(content)
}
