package views

import "strings"

// splitWidths divides the screen into a main column and the agent timeline
// column, mirroring a two-column layout with a fixed-ish sidebar.
func splitWidths(width int) (main, side int) {
	side = width * 35 / 100
	if side < 30 {
		side = 30
	}
	if side > 48 {
		side = 48
	}
	main = width - side
	if main < 20 {
		main = 20
	}
	return main, side
}

// fillTo returns the newlines needed to push the status bar to the last row
// of a screen of the given height.
func fillTo(content string, height int) string {
	lines := strings.Count(content, "\n")
	if remaining := height - lines - 1; remaining > 0 {
		return strings.Repeat("\n", remaining)
	}
	return ""
}
