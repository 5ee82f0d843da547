package components

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	return strings.Join(lines, "\n")
}

func TestScrollViewport_StartsAtTop(t *testing.T) {
	sv := NewScrollViewport(20, 5)
	sv.SetContent(numberedLines(20))

	if !sv.AtTop() {
		t.Error("document should open at the top")
	}
	view := sv.View()
	if !strings.HasPrefix(view, "line 0") {
		t.Errorf("expected first line visible, got %q", view)
	}
	if rows := strings.Split(view, "\n"); len(rows) != 5 {
		t.Errorf("expected 5 rows, got %d", len(rows))
	}
}

func TestScrollViewport_Scrolling(t *testing.T) {
	sv := NewScrollViewport(20, 5)
	sv.SetContent(numberedLines(20))

	sv, _ = sv.Update(tea.KeyMsg{Type: tea.KeyDown})
	if sv.YOffset() != 1 {
		t.Errorf("YOffset after down = %d, want 1", sv.YOffset())
	}

	sv, _ = sv.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	if !sv.AtBottom() {
		t.Error("G should jump to the bottom")
	}

	sv, _ = sv.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if !sv.AtTop() {
		t.Error("g should jump to the top")
	}
}

func TestScrollViewport_WrapsWideLines(t *testing.T) {
	sv := NewScrollViewport(11, 5) // 10 content columns
	sv.SetContent(strings.Repeat("x", 25))

	if sv.LineCount() != 3 {
		t.Errorf("expected 3 wrapped lines, got %d", sv.LineCount())
	}
	for _, row := range strings.Split(sv.View(), "\n") {
		if w := ansi.StringWidth(row); w != 11 {
			t.Errorf("row %q has width %d, want 11", row, w)
		}
	}
}

func TestScrollViewport_SetSizeClampsOffset(t *testing.T) {
	sv := NewScrollViewport(20, 5)
	sv.SetContent(numberedLines(10))
	sv, _ = sv.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})

	sv.SetSize(20, 10)
	if sv.YOffset() != 0 {
		t.Errorf("YOffset = %d, want 0 once everything fits", sv.YOffset())
	}
}

func TestActivityLog_FollowsNewEvents(t *testing.T) {
	l := NewActivityLog(30, 3, 0)
	for i := 0; i < 6; i++ {
		l.Add(LogInfo, fmt.Sprintf("event %d", i))
	}

	view := ansi.Strip(l.View())
	if !strings.Contains(view, "event 5") {
		t.Errorf("expected newest event visible, got %q", view)
	}
	if strings.Contains(view, "event 0") {
		t.Errorf("oldest event should be scrolled out, got %q", view)
	}
}

func TestActivityLog_ScrollBackPausesFollowing(t *testing.T) {
	l := NewActivityLog(30, 3, 0)
	for i := 0; i < 6; i++ {
		l.Add(LogDone, fmt.Sprintf("event %d", i))
	}

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyUp})
	if l.Following() {
		t.Error("scrolling up should stop following")
	}

	l.Add(LogFailed, "event 6")
	if strings.Contains(ansi.Strip(l.View()), "event 6") {
		t.Error("paused log should not jump to new events")
	}

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyEnd})
	if !l.Following() {
		t.Error("end should resume following")
	}
	if !strings.Contains(ansi.Strip(l.View()), "event 6") {
		t.Error("expected newest event after resuming")
	}
}

func TestActivityLog_Limit(t *testing.T) {
	l := NewActivityLog(30, 3, 4)
	for i := 0; i < 10; i++ {
		l.Add(LogNote, fmt.Sprintf("event %d", i))
	}
	if l.Len() != 4 || l.Rows() != 4 {
		t.Errorf("expected 4 retained events, got %d (%d rows)", l.Len(), l.Rows())
	}
	if strings.Contains(ansi.Strip(l.View()), "event 5") {
		t.Error("only the last three events fit the view")
	}
}

func TestActivityLog_RewrapsOnResize(t *testing.T) {
	l := NewActivityLog(41, 5, 0)
	l.Add(LogRunning, strings.Repeat("word ", 7))
	if l.Rows() != 1 {
		t.Fatalf("expected 1 row at width 40, got %d", l.Rows())
	}

	l.SetSize(21, 5)
	if l.Rows() < 2 {
		t.Errorf("expected event to wrap at width 20, got %d rows", l.Rows())
	}
	for _, row := range strings.Split(l.View(), "\n") {
		if w := ansi.StringWidth(row); w != 21 {
			t.Errorf("row %q has width %d, want 21", row, w)
		}
	}
}
