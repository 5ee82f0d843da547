package timeline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoTasks is returned when a run is started without any task names.
	ErrNoTasks = errors.New("timeline: at least one task is required")

	// ErrInvalidSchedule is returned when a schedule does not fit the task list.
	ErrInvalidSchedule = errors.New("timeline: invalid schedule")
)

// Step is the completion event for one task: at Offset from run start the task
// with index Task reaches a terminal status and the next task starts running.
type Step struct {
	Task    int
	Offset  time.Duration
	Message string // completion message; MessageCompleted when empty
	Fail    string // when set, the task ends in StatusError with this message
}

// Schedule holds the begin event plus one Step per task, in task order.
type Schedule struct {
	Begin        time.Duration
	BeginMessage string // MessageAnalyzing when empty
	Steps        []Step
}

// EvenSchedule returns a schedule where task k completes at (k+1)*interval and
// the first task starts immediately.
func EvenSchedule(n int, interval time.Duration) Schedule {
	steps := make([]Step, n)
	for i := range steps {
		steps[i] = Step{Task: i, Offset: time.Duration(i+1) * interval}
	}
	return Schedule{Steps: steps}
}

// Validate checks that the schedule covers exactly n tasks in order with
// non-decreasing offsets.
func (s Schedule) Validate(n int) error {
	if len(s.Steps) != n {
		return fmt.Errorf("%w: %d steps for %d tasks", ErrInvalidSchedule, len(s.Steps), n)
	}
	if s.Begin < 0 {
		return fmt.Errorf("%w: negative begin offset %v", ErrInvalidSchedule, s.Begin)
	}

	prev := s.Begin
	for i, step := range s.Steps {
		if step.Task != i {
			return fmt.Errorf("%w: step %d targets task %d", ErrInvalidSchedule, i, step.Task)
		}
		if step.Offset < prev {
			return fmt.Errorf("%w: step %d offset %v is before %v", ErrInvalidSchedule, i, step.Offset, prev)
		}
		prev = step.Offset
	}
	return nil
}

// Scale returns a copy of the schedule with every offset multiplied by factor.
func (s Schedule) Scale(factor float64) Schedule {
	if factor <= 0 {
		factor = 1
	}
	out := Schedule{
		Begin:        time.Duration(float64(s.Begin) * factor),
		BeginMessage: s.BeginMessage,
		Steps:        make([]Step, len(s.Steps)),
	}
	for i, step := range s.Steps {
		step.Offset = time.Duration(float64(step.Offset) * factor)
		out.Steps[i] = step
	}
	return out
}

// Total is the offset of the last event, i.e. the nominal run duration.
func (s Schedule) Total() time.Duration {
	if len(s.Steps) == 0 {
		return s.Begin
	}
	return s.Steps[len(s.Steps)-1].Offset
}

// FailurePolicy decides what happens to the remaining tasks once one fails.
type FailurePolicy string

const (
	// PolicyContinue keeps activating the remaining tasks after a failure.
	PolicyContinue FailurePolicy = "continue"
	// PolicyAbort skips every remaining task and ends the run.
	PolicyAbort FailurePolicy = "abort"
)

// ParseFailurePolicy validates and normalizes a failure policy value.
func ParseFailurePolicy(value string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case PolicyContinue, "":
		return PolicyContinue, nil
	case PolicyAbort:
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("invalid failure policy %q (valid: continue, abort)", value)
	}
}
