package timekeeper

import (
	"time"

	"eyedoro/internal/core/model"
)

// MaxWorkRemaining bounds the work time AddTime may accumulate.
const MaxWorkRemaining = 7 * 24 * time.Hour

// Phase represents the current TimeKeeper mode.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseWorking Phase = "working"
	PhaseOnBreak Phase = "on_break"
	PhasePaused  Phase = "paused"
)

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventWorkStarted       EventType = "work-started"
	EventPreBreakWarning   EventType = "pre-break-warning"
	EventBreakStarting     EventType = "break-starting"
	EventBreakComplete     EventType = "break-complete"
	EventHideNotifications EventType = "hide-notifications"
	EventPaused            EventType = "paused"
	EventResumed           EventType = "resumed"
	EventTimeExtended      EventType = "time-extended"
	EventBreakSkipped      EventType = "break-skipped"
	EventReset             EventType = "reset"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type  EventType
	Phase Phase
	// CountdownSeconds is the work time left when a pre-break warning fires.
	CountdownSeconds int
	WorkDuration     time.Duration
	BreakDuration    time.Duration
	// Added is the extension granted by AddTime.
	Added time.Duration
	// Early marks a break-complete caused by a command rather than the timer.
	Early        bool
	SoundEnabled bool
	At           time.Time
}

// Publisher receives events produced inside a transition. Publish is called
// with the TimeKeeper lock held and must only enqueue.
type Publisher interface {
	Publish(event Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

func (fn PublisherFunc) Publish(event Event) {
	fn(event)
}

// Snapshot is a consistent read of the session state.
type Snapshot struct {
	Phase          Phase
	PausedFrom     Phase
	PhaseStartedAt time.Time
	// PhaseEndsAt is zero unless a phase-end timer is armed.
	PhaseEndsAt time.Time
	// WarningAt is zero unless a pre-break warning is armed.
	WarningAt time.Time
	// Warning is set once the pre-break warning of the running work phase has fired.
	Warning bool
	Active  model.SessionConfig
	Config  model.SessionConfig
	Now     time.Time
}

// WorkRemaining mirrors TimeKeeper.WorkRemaining for the snapshot's instant.
func (snapshot Snapshot) WorkRemaining() time.Duration {
	if snapshot.Phase != PhaseWorking || snapshot.PhaseStartedAt.IsZero() {
		return snapshot.Config.WorkDuration
	}
	return remainingOf(snapshot.Active.WorkDuration, snapshot.PhaseStartedAt, snapshot.Now)
}

// BreakRemaining mirrors TimeKeeper.BreakRemaining for the snapshot's instant.
func (snapshot Snapshot) BreakRemaining() time.Duration {
	if snapshot.Phase != PhaseOnBreak || snapshot.PhaseStartedAt.IsZero() {
		return snapshot.Config.BreakDuration
	}
	return remainingOf(snapshot.Active.BreakDuration, snapshot.PhaseStartedAt, snapshot.Now)
}

// At returns the snapshot re-evaluated at now. Phase data is unchanged.
func (snapshot Snapshot) At(now time.Time) Snapshot {
	snapshot.Now = now
	return snapshot
}

func remainingOf(total time.Duration, startedAt, now time.Time) time.Duration {
	remaining := total - now.Sub(startedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CountdownSeconds rounds a remaining duration up to whole seconds with a floor of one.
func CountdownSeconds(remaining time.Duration) int {
	seconds := int((remaining + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}
