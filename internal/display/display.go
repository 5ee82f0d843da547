// Package display prints a run's timeline to a plain terminal for headless
// runs: one line per event, a live status line, and a closing summary.
package display

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/boss6825/pharmintel/internal/timeline"
	"github.com/charmbracelet/x/ansi"
)

// Status represents the overall state of the run being displayed.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusRunning:
		return "Running"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// State holds the current display state.
type State struct {
	Done      int
	Total     int
	Current   string
	Status    Status
	StartTime time.Time
}

// Display manages the event log and the terminal status line.
type Display struct {
	mu       sync.Mutex
	writer   io.Writer
	live     bool
	state    State
	ticker   *time.Ticker
	done     chan struct{}
	wg       sync.WaitGroup // Ensures goroutine exits before Stop() returns
	active   bool
	lastLine string
}

// New creates a Display writing to w. With live set, a status line is kept
// at the bottom and redrawn every second; otherwise only event lines are
// written, which suits pipes and log files.
func New(w io.Writer, live bool) *Display {
	return &Display{
		writer: w,
		live:   live,
		done:   make(chan struct{}),
	}
}

// Start begins the status line update loop.
func (d *Display) Start(total int) {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return
	}
	d.active = true
	d.state = State{Total: total, Status: StatusRunning, StartTime: time.Now()}
	if !d.live {
		d.mu.Unlock()
		return
	}
	d.ticker = time.NewTicker(time.Second)
	d.wg.Add(1)
	d.mu.Unlock()

	go d.updateLoop()
}

// Stop halts the update loop and clears the status line.
// Blocks until the update goroutine has exited.
func (d *Display) Stop() {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	d.active = false
	live := d.live
	d.mu.Unlock()

	if !live {
		return
	}
	d.ticker.Stop()
	close(d.done)
	d.wg.Wait()
	d.clearLine()
}

// Update records a timeline event and prints it above the status line.
func (d *Display) Update(u timeline.Update) {
	d.mu.Lock()
	if u.Seq > 0 {
		d.state.Done = u.Seq
	}
	d.state.Current = currentName(u.Entries)
	d.mu.Unlock()

	d.PrintAbove("%s", FormatUpdate(u))
}

// Finish prints the closing summary and records the final status.
func (d *Display) Finish(s timeline.Summary) {
	d.mu.Lock()
	switch {
	case s.Aborted || s.Failed > 0:
		d.state.Status = StatusFailed
	default:
		d.state.Status = StatusCompleted
	}
	d.mu.Unlock()

	d.PrintAbove("%s", FormatSummary(s))
}

// Cancelled marks the run as cancelled.
func (d *Display) Cancelled() {
	d.mu.Lock()
	d.state.Status = StatusCancelled
	d.mu.Unlock()
	d.PrintAbove("Run cancelled")
}

func (d *Display) updateLoop() {
	defer d.wg.Done()
	d.render()
	for {
		select {
		case <-d.ticker.C:
			d.render()
		case <-d.done:
			return
		}
	}
}

func (d *Display) render() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.live || !d.active {
		return
	}

	line := formatLine(d.state, time.Since(d.state.StartTime))
	// Only update if changed (reduces flicker)
	if line == d.lastLine {
		return
	}
	d.lastLine = line
	fmt.Fprintf(d.writer, "\r\033[K%s", line)
}

// formatLine creates the status line string.
func formatLine(state State, elapsed time.Duration) string {
	if state.Total == 0 {
		return ""
	}
	current := state.Current
	if current == "" {
		current = "-"
	}
	return fmt.Sprintf("Agents %d/%d: %s │ ⏱ %s │ %s",
		state.Done,
		state.Total,
		ansi.Truncate(current, 40, "..."),
		formatDuration(elapsed),
		state.Status)
}

func (d *Display) clearLine() {
	fmt.Fprintf(d.writer, "\r\033[K")
}

// PrintAbove prints a message above the status line.
func (d *Display) PrintAbove(format string, args ...interface{}) {
	d.mu.Lock()
	if d.live {
		fmt.Fprint(d.writer, "\r\033[K")
		d.lastLine = ""
	}
	fmt.Fprintf(d.writer, format+"\n", args...)
	d.mu.Unlock()
	d.render()
}

// Glyph is the timeline marker for an entry status.
func Glyph(s timeline.Status) string {
	switch s {
	case timeline.StatusRunning:
		return "◐"
	case timeline.StatusCompleted:
		return "●"
	case timeline.StatusError:
		return "✕"
	default:
		return "○"
	}
}

// FormatUpdate renders one event, e.g. "[00:00:01] ● Master Agent: Query decomposed".
func FormatUpdate(u timeline.Update) string {
	name := ""
	if u.Index >= 0 && u.Index < len(u.Entries) {
		name = u.Entries[u.Index].Name
	}
	ts := u.Timestamp
	if ts == "" {
		ts = "--:--:--"
	}
	line := fmt.Sprintf("[%s] %s %s", ts, Glyph(u.Status), name)
	if u.Message != "" {
		line += ": " + u.Message
	}
	return line
}

// FormatSummary renders the closing line for a run.
func FormatSummary(s timeline.Summary) string {
	line := fmt.Sprintf("%d/%d agents succeeded", s.Succeeded, s.Total)
	if s.Failed > 0 {
		line += fmt.Sprintf(", %d failed", s.Failed)
	}
	if s.Skipped > 0 {
		line += fmt.Sprintf(", %d skipped", s.Skipped)
	}
	if s.Aborted {
		line += " (aborted)"
	}
	return line + " in " + formatDuration(s.Duration)
}

func currentName(entries []timeline.Entry) string {
	for _, e := range entries {
		if e.Status == timeline.StatusRunning {
			return e.Name
		}
	}
	return ""
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
