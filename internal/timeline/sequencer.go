// Package timeline advances an ordered list of tasks through their statuses on
// a fixed schedule and reports every change to a display collaborator.
package timeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Update is delivered once per schedule event.
type Update struct {
	RunID     string
	Seq       int // 0 for the begin event, k+1 for the completion of task k
	Index     int // entry the event finished (or started, for the begin event)
	Status    Status
	Message   string
	Timestamp string
	Entries   []Entry // snapshot after the event; owned by the receiver
}

// Summary is delivered once when a run reaches a terminal state.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Aborted   bool
	Duration  time.Duration
}

// Sequencer starts runs. Only the most recently started run is live: starting
// a new run cancels the previous one and bumps a generation counter so that any
// event already in flight for an older run is dropped.
type Sequencer struct {
	policy FailurePolicy
	logger *slog.Logger
	newID  func() string

	mu      sync.Mutex
	gen     uint64
	current *Run
}

// New creates a Sequencer with the continue failure policy.
func New() *Sequencer {
	return &Sequencer{
		policy: PolicyContinue,
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.NewString,
	}
}

// WithPolicy sets the failure policy for runs started afterwards.
func (s *Sequencer) WithPolicy(p FailurePolicy) *Sequencer {
	s.policy = p
	return s
}

// WithLogger sets the logger used for run lifecycle events.
func (s *Sequencer) WithLogger(l *slog.Logger) *Sequencer {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithIDFunc overrides run ID generation (useful for testing).
func (s *Sequencer) WithIDFunc(fn func() string) *Sequencer {
	if fn != nil {
		s.newID = fn
	}
	return s
}

// Policy returns the configured failure policy.
func (s *Sequencer) Policy() FailurePolicy {
	return s.policy
}

// Start creates a fresh run for names and begins advancing it on schedule.
//
// onUpdate is called once per event and onComplete exactly once when the last
// task is terminal. Both are called from the run's goroutine, one at a time and
// in schedule order. They must not cancel or start runs on this Sequencer
// synchronously; hand the work off to another goroutine instead.
func (s *Sequencer) Start(ctx context.Context, names []string, sched Schedule, onUpdate func(Update), onComplete func(Summary)) (*Run, error) {
	if len(names) == 0 {
		return nil, ErrNoTasks
	}
	if err := sched.Validate(len(names)); err != nil {
		return nil, err
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}
	if onComplete == nil {
		onComplete = func(Summary) {}
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	prev := s.current
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &Run{
		id:         s.newID(),
		sched:      sched,
		policy:     s.policy,
		entries:    newEntries(names),
		ctx:        runCtx,
		cancel:     cancel,
		done:       make(chan struct{}),
		onUpdate:   onUpdate,
		onComplete: onComplete,
		startedAt:  time.Now(),
		logger:     s.logger,
		stale:      func() bool { return s.generation() != gen },
	}

	s.mu.Lock()
	if s.gen == gen {
		s.current = r
	}
	s.mu.Unlock()

	r.logger.Info("run started", "run_id", r.id, "tasks", len(names), "total", sched.Total(), "policy", string(r.policy))
	go r.drive()
	return r, nil
}

// Cancel cancels the live run, if any.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	s.gen++
	r := s.current
	s.current = nil
	s.mu.Unlock()

	if r != nil {
		r.Cancel()
	}
}

// Current returns the live run or nil.
func (s *Sequencer) Current() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Sequencer) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Run is one execution of a schedule over a fixed list of entries.
type Run struct {
	id     string
	sched  Schedule
	policy FailurePolicy

	stateMu sync.Mutex
	entries []Entry
	aborted bool
	skipped int

	// emitMu serializes delivery with cancellation: once Cancel holds it and
	// sets cancelled, no callback can start.
	emitMu    sync.Mutex
	cancelled bool

	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	doneOnce   sync.Once
	onUpdate   func(Update)
	onComplete func(Summary)
	startedAt  time.Time
	logger     *slog.Logger
	stale      func() bool
}

// ID returns the run identifier carried by every Update and Summary.
func (r *Run) ID() string {
	return r.id
}

// Snapshot returns a copy of the current entries.
func (r *Run) Snapshot() []Entry {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return cloneEntries(r.entries)
}

// Done is closed once the run has completed or been cancelled.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run is done or ctx ends.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel discards all pending events. When Cancel returns no further callback
// will be delivered for this run. Safe to call more than once.
func (r *Run) Cancel() {
	r.cancel()

	r.emitMu.Lock()
	already := r.cancelled
	r.cancelled = true
	r.emitMu.Unlock()

	if !already {
		r.logger.Info("run cancelled", "run_id", r.id)
	}
}

// Cancelled reports whether the run was cancelled before it finished.
func (r *Run) Cancelled() bool {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	return r.cancelled
}

// drive fires the schedule events in order from a single goroutine.
func (r *Run) drive() {
	defer r.doneOnce.Do(func() { close(r.done) })

	if !r.waitUntil(r.sched.Begin) {
		return
	}
	if !r.emit(r.begin) {
		return
	}

	for k, step := range r.sched.Steps {
		if !r.waitUntil(step.Offset) {
			return
		}
		if !r.emit(func() Update { return r.advance(k, step) }) {
			return
		}
		if r.isAborted() {
			break
		}
	}

	r.finish()
}

// waitUntil sleeps until offset after run start. Returns false if the run
// was cancelled while waiting.
func (r *Run) waitUntil(offset time.Duration) bool {
	delay := offset - time.Since(r.startedAt)
	if delay <= 0 {
		return r.ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-r.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// live must be called with emitMu held.
func (r *Run) live() bool {
	return !r.cancelled && r.ctx.Err() == nil && !r.stale()
}

// emit applies one event and delivers its update, unless the run is no
// longer live. The snapshot is read and written under stateMu so each event
// builds on the current state.
func (r *Run) emit(apply func() Update) bool {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	if !r.live() {
		return false
	}

	u := apply()
	r.logger.Debug("timeline event", "run_id", r.id, "seq", u.Seq, "index", u.Index, "status", string(u.Status))
	r.onUpdate(u)
	return true
}

func (r *Run) begin() Update {
	msg := r.sched.BeginMessage
	if msg == "" {
		msg = MessageAnalyzing
	}

	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	r.setStatus(0, StatusRunning, msg, "")
	return r.update(0, 0)
}

// advance finishes task k and starts task k+1.
func (r *Run) advance(k int, step Step) Update {
	label := FormatElapsed(step.Offset)

	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	failed := step.Fail != ""
	if failed {
		r.setStatus(k, StatusError, step.Fail, label)
		r.logger.Warn("task failed", "run_id", r.id, "task", r.entries[k].Name, "reason", step.Fail)
	} else {
		msg := step.Message
		if msg == "" {
			msg = MessageCompleted
		}
		r.setStatus(k, StatusCompleted, msg, label)
	}

	switch {
	case failed && r.policy == PolicyAbort:
		skip := "Skipped: " + r.entries[k].Name + " failed"
		for j := k + 1; j < len(r.entries); j++ {
			r.setStatus(j, StatusError, skip, label)
			r.skipped++
		}
		r.aborted = true
	case k+1 < len(r.entries):
		r.setStatus(k+1, StatusRunning, MessageProcessing, "")
	}

	return r.update(k+1, k)
}

// setStatus must be called with stateMu held. Transitions that would move an
// entry backwards are ignored.
func (r *Run) setStatus(i int, to Status, message, timestamp string) {
	e := &r.entries[i]
	if !CanTransition(e.Status, to) {
		r.logger.Error("rejected status transition", "run_id", r.id, "task", e.Name, "from", string(e.Status), "to", string(to))
		return
	}
	e.Status = to
	e.Message = message
	if to.Terminal() {
		e.Timestamp = timestamp
	}
}

// update must be called with stateMu held.
func (r *Run) update(seq, index int) Update {
	e := r.entries[index]
	return Update{
		RunID:     r.id,
		Seq:       seq,
		Index:     index,
		Status:    e.Status,
		Message:   e.Message,
		Timestamp: e.Timestamp,
		Entries:   cloneEntries(r.entries),
	}
}

func (r *Run) isAborted() bool {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.aborted
}

// finish delivers the summary exactly once.
func (r *Run) finish() {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	if !r.live() {
		return
	}

	summary := r.summary()
	r.logger.Info("run completed", "run_id", r.id, "succeeded", summary.Succeeded, "failed", summary.Failed, "aborted", summary.Aborted)
	r.onComplete(summary)
}

func (r *Run) summary() Summary {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	return Summary{
		RunID:     r.id,
		Total:     len(r.entries),
		Succeeded: CountStatus(r.entries, StatusCompleted),
		Failed:    CountStatus(r.entries, StatusError) - r.skipped,
		Skipped:   r.skipped,
		Aborted:   r.aborted,
		Duration:  time.Since(r.startedAt),
	}
}
