package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// ScrollViewport shows a pre-rendered document (insight cards, report
// preview) in a bubbles viewport with a 1-column scrollbar. Unlike the event
// log it opens at the top and never follows new content.
type ScrollViewport struct {
	viewport viewport.Model
	lines    []string
	width    int // total width including scrollbar
	height   int
}

// NewScrollViewport creates a viewport; width includes the scrollbar column.
func NewScrollViewport(width, height int) ScrollViewport {
	vp := viewport.New(max(width-1, 0), height)
	vp.SetContent("")
	return ScrollViewport{viewport: vp, width: width, height: height}
}

// SetSize updates the dimensions, keeping the scroll offset in range.
func (s *ScrollViewport) SetSize(width, height int) {
	if s.width == width && s.height == height {
		return
	}
	s.width = width
	s.height = height
	s.viewport.Width = s.ContentWidth()
	s.viewport.Height = height
	s.viewport.SetContent(strings.Join(s.lines, "\n"))
	s.viewport.SetYOffset(s.viewport.YOffset)
}

// SetContent replaces the document. Lines wider than the content area are
// hard-wrapped; ANSI styling is preserved.
func (s *ScrollViewport) SetContent(content string) {
	cw := s.ContentWidth()
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if cw > 0 && ansi.StringWidth(line) > cw {
			lines = append(lines, strings.Split(ansi.Hardwrap(line, cw, true), "\n")...)
			continue
		}
		lines = append(lines, line)
	}
	s.lines = lines
	s.viewport.SetContent(strings.Join(lines, "\n"))
	s.viewport.SetYOffset(s.viewport.YOffset)
}

// Update handles scroll keys and mouse wheel events.
func (s *ScrollViewport) Update(msg tea.Msg) (ScrollViewport, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "home", "g":
			s.viewport.GotoTop()
			return *s, nil
		case "end", "G":
			s.viewport.GotoBottom()
			return *s, nil
		}
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return *s, cmd
}

// View renders the visible lines padded to the content width, followed by the
// scrollbar column.
func (s ScrollViewport) View() string {
	contentLines := strings.Split(s.viewport.View(), "\n")
	scrollbar := ScrollbarLines(s.height, len(s.lines), s.viewport.YOffset)
	cw := s.ContentWidth()

	var b strings.Builder
	for i := 0; i < s.height; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		cl := ""
		if i < len(contentLines) {
			cl = contentLines[i]
		}
		b.WriteString(cl)
		if pad := cw - ansi.StringWidth(cl); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		if i < len(scrollbar) {
			b.WriteString(scrollbar[i])
		}
	}
	return b.String()
}

// ContentWidth returns the width available for content.
func (s ScrollViewport) ContentWidth() int {
	return max(s.width-1, 0)
}

// LineCount returns the number of (wrapped) document lines.
func (s ScrollViewport) LineCount() int {
	return len(s.lines)
}

// YOffset returns the index of the first visible line.
func (s ScrollViewport) YOffset() int {
	return s.viewport.YOffset
}

// AtTop returns true if the first line is visible.
func (s ScrollViewport) AtTop() bool {
	return s.viewport.AtTop()
}

// AtBottom returns true if the last line is visible.
func (s ScrollViewport) AtBottom() bool {
	return s.viewport.AtBottom()
}

// ScrollPercent returns how far through the document the view is, 0 to 1.
func (s ScrollViewport) ScrollPercent() float64 {
	return s.viewport.ScrollPercent()
}
