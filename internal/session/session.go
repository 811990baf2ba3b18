// Package session tracks per-user multi-turn dialogs for document
// requests: URL received, rename prompt, optional new filename, with
// timeout-based abandonment.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	pics2pdf "github.com/alnah/go-pics2pdf"
)

// Dialog prompts and notices.
const (
	PromptRename  = "Do you want to rename the PDF file? (yes/no)"
	PromptNewName = "Please enter the new name for the PDF file (without extension):"
	MsgAbandoned  = "You did not respond in time. The renaming process has been aborted."
)

// DefaultTimeout is how long a user may take to answer a prompt before
// the dialog is abandoned.
const DefaultTimeout = 60 * time.Second

// phase is the dialog position for one user. "No session" is implicit:
// the slot's dialog pointer is nil.
type phase int

const (
	phaseRenameChoice phase = iota + 1 // waiting for yes/no
	phaseNewName                       // waiting for the new base filename
)

// Runner executes one document generation end to end, including
// delivery and user-visible failure notices. It never returns an error;
// all fallibility is absorbed behind its boundary.
type Runner interface {
	Run(ctx context.Context, userID, url, outputName string)
}

// NotifyFunc sends a dialog prompt or notice to the user.
type NotifyFunc func(ctx context.Context, userID, text string)

// CancelFunc stops a scheduled task. It reports whether the task was
// stopped before firing, matching time.Timer.Stop semantics.
type CancelFunc func() bool

// ScheduleFunc arms a one-shot task. Injected so tests can drive
// timeouts without real timers.
type ScheduleFunc func(d time.Duration, fn func()) CancelFunc

// realSchedule backs ScheduleFunc with time.AfterFunc.
func realSchedule(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// dialog is the transient per-user session state.
type dialog struct {
	phase  phase
	url    string
	cancel CancelFunc
	gen    int // bumped on every transition; a stale timer firing is a no-op
}

// userSlot serializes all handling for one user. Holding mu across the
// pipeline run keeps the session alive until the run completes, so a
// following message from the same user always starts a fresh session
// instead of racing the in-flight run.
type userSlot struct {
	mu     sync.Mutex
	dialog *dialog
}

// Manager owns the per-user conversation state machines. Sessions are
// keyed only by user identifier; different users never interact.
type Manager struct {
	mu      sync.Mutex
	slots   map[string]*userSlot
	runner  Runner
	notify  NotifyFunc
	timeout time.Duration
	sched   ScheduleFunc
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTimeout overrides the abandonment timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) ManagerOption {
	if d <= 0 {
		panic("session: WithTimeout duration must be positive")
	}
	return func(m *Manager) {
		m.timeout = d
	}
}

// WithScheduler replaces the timer backend, enabling deterministic tests.
func WithScheduler(s ScheduleFunc) ManagerOption {
	return func(m *Manager) {
		if s != nil {
			m.sched = s
		}
	}
}

// NewManager creates a Manager that invokes runner for completed
// dialogs and notify for prompts and notices.
func NewManager(runner Runner, notify NotifyFunc, opts ...ManagerOption) *Manager {
	m := &Manager{
		slots:   make(map[string]*userSlot),
		runner:  runner,
		notify:  notify,
		timeout: DefaultTimeout,
		sched:   realSchedule,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire returns the user's slot with its lock held, creating it on
// first contact. A slot retired between lookup and lock is stale;
// looping picks up its replacement.
func (m *Manager) acquire(userID string) *userSlot {
	for {
		m.mu.Lock()
		s, ok := m.slots[userID]
		if !ok {
			s = &userSlot{}
			m.slots[userID] = s
		}
		m.mu.Unlock()

		s.mu.Lock()
		m.mu.Lock()
		current := m.slots[userID] == s
		m.mu.Unlock()
		if current {
			return s
		}
		s.mu.Unlock()
	}
}

// retire drops the slot from the map once its dialog is gone, so the
// map does not grow with every user ever seen. Caller holds slot.mu.
func (m *Manager) retire(userID string, slot *userSlot) {
	m.mu.Lock()
	if m.slots[userID] == slot && slot.dialog == nil {
		delete(m.slots, userID)
	}
	m.mu.Unlock()
}

// HandleText advances the user's dialog with an inbound text message.
//
// No session: the text is taken as the page URL, a rename prompt is
// sent, and the abandonment timer is armed. AwaitingRenameChoice: "yes"
// (case-insensitive) moves to the filename prompt, anything else runs
// the pipeline with the default name. AwaitingNewName: the raw text
// becomes the base filename and the pipeline runs.
//
// Cancelling the armed timer and transitioning happen as one step under
// the slot lock; a timer that already fired but lost the race sees the
// bumped generation and does nothing.
func (m *Manager) HandleText(ctx context.Context, userID, text string) {
	slot := m.acquire(userID)
	defer slot.mu.Unlock()

	d := slot.dialog
	if d == nil {
		d = &dialog{phase: phaseRenameChoice, url: text}
		slot.dialog = d
		m.armLocked(userID, slot, d)
		m.notify(ctx, userID, PromptRename)
		return
	}

	d.cancel()
	d.gen++

	switch d.phase {
	case phaseRenameChoice:
		if strings.EqualFold(text, "yes") {
			d.phase = phaseNewName
			m.armLocked(userID, slot, d)
			m.notify(ctx, userID, PromptNewName)
			return
		}
		// Anything but "yes" is a "no": keep the default name.
		m.runner.Run(ctx, userID, d.url, pics2pdf.DefaultOutputName)
		slot.dialog = nil
		m.retire(userID, slot)

	case phaseNewName:
		m.runner.Run(ctx, userID, d.url, text)
		slot.dialog = nil
		m.retire(userID, slot)
	}
}

// armLocked schedules the abandonment task for the dialog's current
// generation. Caller holds slot.mu; any previous timer for this dialog
// was already cancelled.
func (m *Manager) armLocked(userID string, slot *userSlot, d *dialog) {
	gen := d.gen
	d.cancel = m.sched(m.timeout, func() {
		m.expire(userID, slot, gen)
	})
}

// expire abandons the dialog if it is still in the generation the timer
// was armed for. A timer firing after a transition is a no-op.
func (m *Manager) expire(userID string, slot *userSlot, gen int) {
	slot.mu.Lock()
	d := slot.dialog
	if d == nil || d.gen != gen {
		slot.mu.Unlock()
		return
	}
	slot.dialog = nil
	m.retire(userID, slot)
	slot.mu.Unlock()

	m.notify(context.Background(), userID, MsgAbandoned)
}

// Active reports whether the user currently has a session. Exposed for
// observability and tests.
func (m *Manager) Active(userID string) bool {
	m.mu.Lock()
	slot, ok := m.slots[userID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.dialog != nil
}
