package components

import "strings"

// ScrollbarLines renders a 1-column vertical scrollbar as one string per row.
// Rows are blank while the content fits; once scrollable, a track (│) with a
// thumb (█) sized and positioned by the visible fraction is drawn.
func ScrollbarLines(viewHeight, contentHeight, yOffset int) []string {
	if viewHeight <= 0 {
		return nil
	}

	lines := make([]string, viewHeight)
	if contentHeight <= viewHeight {
		for i := range lines {
			lines[i] = " "
		}
		return lines
	}

	thumbSize := max(viewHeight*viewHeight/contentHeight, 1)
	maxYOffset := contentHeight - viewHeight
	thumbMaxTop := viewHeight - thumbSize

	thumbTop := 0
	if maxYOffset > 0 {
		thumbTop = yOffset * thumbMaxTop / maxYOffset
	}
	thumbTop = min(max(thumbTop, 0), thumbMaxTop)

	for i := range lines {
		if i >= thumbTop && i < thumbTop+thumbSize {
			lines[i] = "█"
		} else {
			lines[i] = "│"
		}
	}
	return lines
}

// RenderScrollbar is ScrollbarLines joined with newlines.
func RenderScrollbar(viewHeight, contentHeight, yOffset int) string {
	return strings.Join(ScrollbarLines(viewHeight, contentHeight, yOffset), "\n")
}
