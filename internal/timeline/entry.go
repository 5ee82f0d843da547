package timeline

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a timeline entry.
type Status string

// Entry status constants
const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Default progress messages shown while a run advances.
const (
	MessageWaiting    = "Waiting..."
	MessageAnalyzing  = "Analyzing query..."
	MessageProcessing = "Processing..."
	MessageCompleted  = "Completed"
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// CanTransition reports whether an entry may move from one status to another.
// Statuses only move forward: idle -> running -> completed|error. An idle entry
// may also go straight to error when an aborted run skips it.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusIdle:
		return to == StatusRunning || to == StatusError
	case StatusRunning:
		return to == StatusCompleted || to == StatusError
	default:
		return false
	}
}

// Entry is one named unit of work shown on the agent timeline.
type Entry struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"` // set on entering a terminal status
}

// newEntries builds the idle starting snapshot for a run.
func newEntries(names []string) []Entry {
	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{
			Name:    name,
			Status:  StatusIdle,
			Message: MessageWaiting,
		}
	}
	return entries
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// CountStatus returns how many entries currently have the given status.
func CountStatus(entries []Entry, status Status) int {
	n := 0
	for i := range entries {
		if entries[i].Status == status {
			n++
		}
	}
	return n
}

// FormatElapsed renders an offset from run start as HH:MM:SS, floored to the second.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
