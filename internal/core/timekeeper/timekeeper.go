package timekeeper

import (
	"sync"
	"time"

	"eyedoro/internal/core/clock"
	"eyedoro/internal/core/model"
	"eyedoro/internal/logger"
)

// Store is the configuration store consulted by the work-duration safety clamp.
type Store interface {
	Reload() (model.SessionConfig, error)
	Save(config model.SessionConfig) error
}

// Options contains runtime collaborators for TimeKeeper.
type Options struct {
	Clock  clock.Clock
	Store  Store
	Logger *logger.Logger
}

// TimeKeeper is the state machine that owns the work/break cycle.
type TimeKeeper struct {
	mu             sync.Mutex
	clock          clock.Clock
	store          Store
	log            *logger.Logger
	publisher      Publisher
	scheduler      *Scheduler
	config         model.SessionConfig
	active         model.SessionConfig
	phase          Phase
	pausedFrom     Phase
	phaseStartedAt time.Time
	warned         bool
	shutdown       bool
}

// New creates an idle TimeKeeper with the provided configuration.
func New(config model.SessionConfig, options Options) *TimeKeeper {
	if options.Clock == nil {
		options.Clock = clock.System
	}

	keeper := &TimeKeeper{
		clock:  options.Clock,
		store:  options.Store,
		log:    options.Logger.Named("timekeeper"),
		config: config,
		active: config,
		phase:  PhaseIdle,
	}
	keeper.scheduler = NewScheduler(options.Clock, keeper.guard)
	return keeper
}

// SetPublisher injects the event sink.
func (keeper *TimeKeeper) SetPublisher(publisher Publisher) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.publisher = publisher
}

// Initialize starts the first work phase. Calling it again is a no-op.
func (keeper *TimeKeeper) Initialize() error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.shutdown {
		return ErrShutdown
	}
	if keeper.phase != PhaseIdle {
		return nil
	}
	keeper.log.Info("session started: work %s, break %s", keeper.config.WorkDuration, keeper.config.BreakDuration)
	keeper.startWorkLocked(keeper.clock.Now())
	return nil
}

// Shutdown cancels every pending timer. The keeper ignores all later commands.
func (keeper *TimeKeeper) Shutdown() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.shutdown {
		return
	}
	keeper.shutdown = true
	keeper.scheduler.CancelAll()
	keeper.phase = PhaseIdle
	keeper.pausedFrom = ""
	keeper.phaseStartedAt = time.Time{}
	keeper.warned = false
	keeper.log.Info("session shut down")
}

// Snapshot returns a consistent copy of the session state.
func (keeper *TimeKeeper) Snapshot() Snapshot {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.snapshotLocked(keeper.clock.Now())
}

// Config returns the configuration the next phase will use.
func (keeper *TimeKeeper) Config() model.SessionConfig {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.config
}

// WorkRemaining returns the time left in the running work phase, or the full
// configured work duration when no work phase is running.
func (keeper *TimeKeeper) WorkRemaining() time.Duration {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.workRemainingLocked(keeper.clock.Now())
}

// BreakRemaining returns the time left in the running break, or the full
// configured break duration when no break is running.
func (keeper *TimeKeeper) BreakRemaining() time.Duration {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.snapshotLocked(keeper.clock.Now()).BreakRemaining()
}

// Pause stops the clock. A running break is ended first.
func (keeper *TimeKeeper) Pause() error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if err := keeper.requireStartedLocked(); err != nil {
		return err
	}
	keeper.pauseLocked(keeper.clock.Now())
	return nil
}

// Resume starts a fresh full-duration work phase.
func (keeper *TimeKeeper) Resume() error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if err := keeper.requireStartedLocked(); err != nil {
		return err
	}
	if keeper.phase != PhasePaused {
		return ErrNotPaused
	}
	keeper.resumeLocked(keeper.clock.Now())
	return nil
}

// TogglePause pauses a running session or resumes a paused one. It reports
// whether the session is paused afterwards.
func (keeper *TimeKeeper) TogglePause() (bool, error) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if err := keeper.requireStartedLocked(); err != nil {
		return keeper.phase == PhasePaused, err
	}
	now := keeper.clock.Now()
	if keeper.phase == PhasePaused {
		keeper.resumeLocked(now)
		return false, nil
	}
	keeper.pauseLocked(now)
	return true, nil
}

func (keeper *TimeKeeper) pauseLocked(now time.Time) {
	switch keeper.phase {
	case PhasePaused:
		return
	case PhaseOnBreak:
		keeper.scheduler.CancelAll()
		keeper.emitLocked(Event{Type: EventBreakComplete, Early: true}, now)
	}

	keeper.scheduler.CancelAll()
	keeper.pausedFrom = keeper.phase
	keeper.phase = PhasePaused
	keeper.phaseStartedAt = time.Time{}
	keeper.warned = false
	keeper.log.Info("paused (from %s)", keeper.pausedFrom)
	keeper.emitLocked(Event{Type: EventPaused}, now)
}

func (keeper *TimeKeeper) resumeLocked(now time.Time) {
	keeper.log.Info("resumed")
	keeper.startWorkLocked(now)
	keeper.emitLocked(Event{Type: EventResumed}, now)
}

// TakeBreakNow ends the running work phase and starts a break immediately.
func (keeper *TimeKeeper) TakeBreakNow() error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if err := keeper.requireStartedLocked(); err != nil {
		return err
	}
	switch keeper.phase {
	case PhaseOnBreak:
		return ErrAlreadyOnBreak
	case PhasePaused:
		return ErrPaused
	}
	now := keeper.clock.Now()
	keeper.log.Info("break requested with %s of work left", keeper.workRemainingLocked(now).Round(time.Second))
	keeper.emitLocked(Event{Type: EventHideNotifications}, now)
	keeper.startBreakLocked(now)
	return nil
}

// EndBreakEarly finishes the running break. It reports whether a break was active.
func (keeper *TimeKeeper) EndBreakEarly() bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.shutdown || keeper.phase != PhaseOnBreak {
		return false
	}
	keeper.log.Info("break ended early")
	keeper.finishBreakLocked(keeper.clock.Now(), true)
	return true
}

// AddTime extends the running work phase by seconds and re-arms its timers
// from the new remaining time.
func (keeper *TimeKeeper) AddTime(seconds int) error {
	if seconds <= 0 {
		return ErrInvalidSeconds
	}
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if err := keeper.requireStartedLocked(); err != nil {
		return err
	}
	switch keeper.phase {
	case PhasePaused:
		return ErrPaused
	case PhaseWorking:
	default:
		return ErrNotWorking
	}

	now := keeper.clock.Now()
	current := keeper.workRemainingLocked(now)
	if int64(seconds) > int64((MaxWorkRemaining-current)/time.Second) {
		return ErrExtensionTooLong
	}
	added := time.Duration(seconds) * time.Second
	remaining := current + added
	keeper.phaseStartedAt = now.Add(remaining - keeper.active.WorkDuration)
	keeper.armWorkTimersLocked(remaining)
	keeper.log.Info("work extended by %s, %s left", added, remaining.Round(time.Second))

	keeper.emitLocked(Event{Type: EventHideNotifications}, now)
	keeper.emitLocked(Event{Type: EventTimeExtended, Added: added}, now)
	return nil
}

// SkipBreak abandons the upcoming break and restarts a full work phase.
func (keeper *TimeKeeper) SkipBreak() error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if err := keeper.requireStartedLocked(); err != nil {
		return err
	}
	switch keeper.phase {
	case PhasePaused:
		return ErrPaused
	case PhaseWorking:
	default:
		return ErrNotWorking
	}

	now := keeper.clock.Now()
	keeper.log.Info("break skipped")
	keeper.emitLocked(Event{Type: EventHideNotifications}, now)
	keeper.emitLocked(Event{Type: EventBreakSkipped}, now)
	keeper.startWorkLocked(now)
	return nil
}

// ForceCloseAll is the emergency reset: every timer and surface goes away
// and a fresh work phase starts. It always succeeds.
func (keeper *TimeKeeper) ForceCloseAll() bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.scheduler.CancelAll()
	if keeper.shutdown {
		return true
	}
	now := keeper.clock.Now()
	keeper.log.Warn("force close from %s", keeper.phase)
	keeper.emitLocked(Event{Type: EventReset}, now)
	keeper.startWorkLocked(now)
	return true
}

// ApplyConfig installs a new configuration. A work duration change restarts
// the running work phase; a break duration change re-arms the running break
// from its original start; a notify change re-arms only the warning. Every
// other change takes effect at the next phase entry.
func (keeper *TimeKeeper) ApplyConfig(config model.SessionConfig) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.config = config
	if keeper.shutdown {
		return
	}
	now := keeper.clock.Now()

	switch keeper.phase {
	case PhaseWorking:
		if config.WorkDuration != keeper.active.WorkDuration {
			keeper.log.Info("work duration changed to %s, restarting work", config.WorkDuration)
			keeper.startWorkLocked(now)
			return
		}
		if config.NotifyEnabled != keeper.active.NotifyEnabled || config.NotifyBeforeBreak != keeper.active.NotifyBeforeBreak {
			keeper.active.NotifyEnabled = config.NotifyEnabled
			keeper.active.NotifyBeforeBreak = config.NotifyBeforeBreak
			shown := keeper.warned
			keeper.armWarningLocked(keeper.workRemainingLocked(now))
			if shown {
				// The popup of the disarmed warning would otherwise stay up.
				keeper.emitLocked(Event{Type: EventHideNotifications}, now)
			}
		}
	case PhaseOnBreak:
		if config.BreakDuration == keeper.active.BreakDuration {
			return
		}
		keeper.active.BreakDuration = config.BreakDuration
		remaining := remainingOf(config.BreakDuration, keeper.phaseStartedAt, now)
		if remaining <= 0 {
			keeper.log.Info("break duration changed to %s, already elapsed", config.BreakDuration)
			keeper.finishBreakLocked(now, false)
			return
		}
		keeper.log.Info("break duration changed to %s, %s left", config.BreakDuration, remaining.Round(time.Second))
		keeper.scheduler.Arm(SlotPhaseEnd, remaining, keeper.breakElapsedLocked)
	}
}

func (keeper *TimeKeeper) guard(fn func()) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.shutdown {
		return
	}
	fn()
}

func (keeper *TimeKeeper) requireStartedLocked() error {
	if keeper.shutdown {
		return ErrShutdown
	}
	if keeper.phase == PhaseIdle {
		return ErrNotStarted
	}
	return nil
}

func (keeper *TimeKeeper) startWorkLocked(now time.Time) {
	keeper.enforceWorkFloorLocked()
	keeper.scheduler.CancelAll()
	keeper.phase = PhaseWorking
	keeper.pausedFrom = ""
	keeper.active = keeper.config
	keeper.phaseStartedAt = now
	keeper.armWorkTimersLocked(keeper.active.WorkDuration)
	keeper.emitLocked(Event{
		Type:          EventWorkStarted,
		WorkDuration:  keeper.active.WorkDuration,
		BreakDuration: keeper.config.BreakDuration,
	}, now)
}

// enforceWorkFloorLocked guards against a corrupted store producing
// pathologically short work phases.
func (keeper *TimeKeeper) enforceWorkFloorLocked() {
	if keeper.config.WorkDuration >= model.MinWorkDuration {
		return
	}
	keeper.log.Warn("work duration %s below floor, reloading settings", keeper.config.WorkDuration)
	if keeper.store != nil {
		reloaded, err := keeper.store.Reload()
		if err != nil {
			keeper.log.Error("reload settings: %v", err)
		} else if reloaded.WorkDuration >= model.MinWorkDuration {
			keeper.config = reloaded
			return
		}
	}

	keeper.config.WorkDuration = model.DefaultWorkDuration
	keeper.log.Warn("work duration forced to %s", keeper.config.WorkDuration)
	if keeper.store != nil {
		if err := keeper.store.Save(keeper.config); err != nil {
			keeper.log.Error("persist work duration: %v", err)
		}
	}
}

func (keeper *TimeKeeper) armWorkTimersLocked(remaining time.Duration) {
	keeper.armWarningLocked(remaining)
	keeper.scheduler.Arm(SlotPhaseEnd, remaining, keeper.workElapsedLocked)
}

func (keeper *TimeKeeper) armWarningLocked(remaining time.Duration) {
	keeper.warned = false
	lead := keeper.active.NotifyBeforeBreak
	if !keeper.active.NotifyEnabled || lead <= 0 || remaining <= lead {
		keeper.scheduler.Cancel(SlotWarning)
		return
	}
	keeper.scheduler.Arm(SlotWarning, remaining-lead, keeper.warningDueLocked)
}

func (keeper *TimeKeeper) warningDueLocked() {
	if keeper.phase != PhaseWorking {
		return
	}
	now := keeper.clock.Now()
	keeper.warned = true
	remaining := keeper.workRemainingLocked(now)
	keeper.log.Debug("pre-break warning, %s left", remaining)
	keeper.emitLocked(Event{
		Type:             EventPreBreakWarning,
		CountdownSeconds: CountdownSeconds(remaining),
		WorkDuration:     keeper.active.WorkDuration,
		BreakDuration:    keeper.config.BreakDuration,
	}, now)
}

func (keeper *TimeKeeper) workElapsedLocked() {
	if keeper.phase != PhaseWorking {
		return
	}
	keeper.startBreakLocked(keeper.clock.Now())
}

func (keeper *TimeKeeper) startBreakLocked(now time.Time) {
	keeper.scheduler.CancelAll()
	keeper.phase = PhaseOnBreak
	keeper.pausedFrom = ""
	keeper.active = keeper.config
	keeper.phaseStartedAt = now
	keeper.warned = false
	keeper.scheduler.Arm(SlotPhaseEnd, keeper.active.BreakDuration, keeper.breakElapsedLocked)
	keeper.log.Info("break started for %s", keeper.active.BreakDuration)
	keeper.emitLocked(Event{
		Type:          EventBreakStarting,
		WorkDuration:  keeper.active.WorkDuration,
		BreakDuration: keeper.active.BreakDuration,
	}, now)
}

func (keeper *TimeKeeper) breakElapsedLocked() {
	if keeper.phase != PhaseOnBreak {
		return
	}
	keeper.log.Info("break complete")
	keeper.finishBreakLocked(keeper.clock.Now(), false)
}

func (keeper *TimeKeeper) finishBreakLocked(now time.Time, early bool) {
	keeper.scheduler.CancelAll()
	keeper.emitLocked(Event{Type: EventBreakComplete, Early: early}, now)
	keeper.startWorkLocked(now)
}

func (keeper *TimeKeeper) workRemainingLocked(now time.Time) time.Duration {
	if keeper.phase != PhaseWorking || keeper.phaseStartedAt.IsZero() {
		return keeper.config.WorkDuration
	}
	return remainingOf(keeper.active.WorkDuration, keeper.phaseStartedAt, now)
}

func (keeper *TimeKeeper) snapshotLocked(now time.Time) Snapshot {
	return Snapshot{
		Phase:          keeper.phase,
		PausedFrom:     keeper.pausedFrom,
		PhaseStartedAt: keeper.phaseStartedAt,
		PhaseEndsAt:    keeper.scheduler.Deadline(SlotPhaseEnd),
		WarningAt:      keeper.scheduler.Deadline(SlotWarning),
		Warning:        keeper.warned,
		Active:         keeper.active,
		Config:         keeper.config,
		Now:            now,
	}
}

func (keeper *TimeKeeper) emitLocked(event Event, now time.Time) {
	if event.Phase == "" {
		event.Phase = keeper.phase
	}
	if event.At.IsZero() {
		event.At = now
	}
	event.SoundEnabled = keeper.config.SoundEnabled
	keeper.log.Debug("event %s (phase %s)", event.Type, event.Phase)
	if keeper.publisher != nil {
		keeper.publisher.Publish(event)
	}
}
