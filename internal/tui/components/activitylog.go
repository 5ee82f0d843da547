package components

import (
	"strings"

	"github.com/boss6825/pharmintel/internal/tui/styles"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const defaultLogLimit = 500

// LogKind selects how an activity line is coloured.
type LogKind int

const (
	LogInfo LogKind = iota
	LogRunning
	LogDone
	LogFailed
	LogNote
)

func (k LogKind) style() lipgloss.Style {
	switch k {
	case LogRunning:
		return styles.RunningStyle
	case LogDone:
		return styles.SuccessStyle
	case LogFailed:
		return styles.ErrorStyle
	case LogNote:
		return styles.SubtleStyle
	default:
		return lipgloss.NewStyle()
	}
}

type logLine struct {
	kind LogKind
	text string
	rows []string // text wrapped to the current content width
}

// ActivityLog is the append-only agent event log shown under the insight
// cards. It follows new events until the user scrolls back, and resumes
// following once they return to the bottom.
type ActivityLog struct {
	vp     viewport.Model
	lines  []logLine
	rows   int
	limit  int
	follow bool
	width  int
	height int
}

// NewActivityLog creates a log that keeps at most limit events (0 uses 500).
func NewActivityLog(width, height, limit int) ActivityLog {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	l := ActivityLog{
		vp:     viewport.New(max(width-1, 0), height),
		limit:  limit,
		follow: true,
		width:  width,
		height: height,
	}
	return l
}

// Add appends one event.
func (l *ActivityLog) Add(kind LogKind, text string) {
	if len(l.lines) >= l.limit {
		l.rows -= len(l.lines[0].rows)
		l.lines = l.lines[1:]
	}
	line := logLine{kind: kind, text: text}
	line.rows = l.wrap(line)
	l.rows += len(line.rows)
	l.lines = append(l.lines, line)
	l.sync()
}

// Update handles scroll keys.
func (l ActivityLog) Update(msg tea.Msg) (ActivityLog, tea.Cmd) {
	var cmd tea.Cmd
	l.vp, cmd = l.vp.Update(msg)

	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "end", "G":
			l.vp.GotoBottom()
			l.follow = true
		default:
			l.follow = l.vp.AtBottom()
		}
	}
	return l, cmd
}

// View renders the visible rows padded to width, with a scrollbar column.
func (l ActivityLog) View() string {
	visible := strings.Split(l.vp.View(), "\n")
	bar := ScrollbarLines(l.height, l.rows, l.vp.YOffset)
	cw := l.contentWidth()

	out := make([]string, l.height)
	for i := range out {
		row := ""
		if i < len(visible) {
			row = visible[i]
		}
		if pad := cw - ansi.StringWidth(row); pad > 0 {
			row += strings.Repeat(" ", pad)
		}
		if i < len(bar) {
			row += bar[i]
		}
		out[i] = row
	}
	return strings.Join(out, "\n")
}

// SetSize resizes the log and rewraps every event.
func (l *ActivityLog) SetSize(width, height int) {
	if l.width == width && l.height == height {
		return
	}
	l.width, l.height = width, height
	l.vp.Width = l.contentWidth()
	l.vp.Height = height

	l.rows = 0
	for i := range l.lines {
		l.lines[i].rows = l.wrap(l.lines[i])
		l.rows += len(l.lines[i].rows)
	}
	l.sync()
}

// Following reports whether the log scrolls to new events.
func (l ActivityLog) Following() bool {
	return l.follow
}

// Len returns the number of retained events.
func (l ActivityLog) Len() int {
	return len(l.lines)
}

// Rows returns the number of wrapped rows.
func (l ActivityLog) Rows() int {
	return l.rows
}

func (l ActivityLog) contentWidth() int {
	return max(l.width-1, 0)
}

func (l ActivityLog) wrap(line logLine) []string {
	text := line.text
	if cw := l.contentWidth(); cw > 0 {
		text = ansi.Wrap(text, cw, "")
	}
	st := line.kind.style()
	rows := strings.Split(text, "\n")
	for i, r := range rows {
		rows[i] = st.Render(r)
	}
	return rows
}

func (l *ActivityLog) sync() {
	all := make([]string, 0, l.rows)
	for _, line := range l.lines {
		all = append(all, line.rows...)
	}
	l.vp.SetContent(strings.Join(all, "\n"))
	if l.follow {
		l.vp.GotoBottom()
	} else {
		l.vp.SetYOffset(l.vp.YOffset)
	}
}
