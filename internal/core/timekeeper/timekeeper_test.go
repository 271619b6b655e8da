package timekeeper

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eyedoro/internal/core/clock"
	"eyedoro/internal/core/model"
)

var testEpoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]EventType, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.Type)
	}
	return types
}

func (r *recorder) last(eventType EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == eventType {
			return r.events[i], true
		}
	}
	return Event{}, false
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type memoryStore struct {
	reloaded model.SessionConfig
	err      error
	reloads  int
	saved    []model.SessionConfig
}

func (s *memoryStore) Reload() (model.SessionConfig, error) {
	s.reloads++
	return s.reloaded, s.err
}

func (s *memoryStore) Save(config model.SessionConfig) error {
	s.saved = append(s.saved, config)
	return nil
}

type harness struct {
	keeper *TimeKeeper
	clock  *clock.Fake
	events *recorder
}

func newHarness(t *testing.T, config model.SessionConfig) *harness {
	t.Helper()
	fake := clock.NewFake(testEpoch)
	events := &recorder{}
	keeper := New(config, Options{Clock: fake})
	keeper.SetPublisher(events)
	t.Cleanup(keeper.Shutdown)
	return &harness{keeper: keeper, clock: fake, events: events}
}

func shortConfig() model.SessionConfig {
	config := model.DefaultSessionConfig()
	config.WorkDuration = time.Minute
	config.BreakDuration = 30 * time.Second
	config.NotifyBeforeBreak = 10 * time.Second
	return config
}

func TestScenarioWorkBreakCycle(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())
	assert.Equal(t, PhaseWorking, h.keeper.Snapshot().Phase)

	h.clock.Advance(59*time.Second + 950*time.Millisecond)
	assert.Equal(t, PhaseWorking, h.keeper.Snapshot().Phase)

	h.clock.Advance(50 * time.Millisecond)
	snapshot := h.keeper.Snapshot()
	assert.Equal(t, PhaseOnBreak, snapshot.Phase)
	assert.Equal(t, testEpoch.Add(time.Minute), snapshot.PhaseStartedAt)

	h.clock.Advance(30 * time.Second)
	snapshot = h.keeper.Snapshot()
	assert.Equal(t, PhaseWorking, snapshot.Phase)
	assert.Equal(t, testEpoch.Add(90*time.Second), snapshot.PhaseStartedAt)
	assert.Equal(t, time.Minute, h.keeper.WorkRemaining())

	assert.Equal(t, []EventType{
		EventWorkStarted,
		EventPreBreakWarning,
		EventBreakStarting,
		EventBreakComplete,
		EventWorkStarted,
	}, h.events.types())
}

func TestPreBreakWarningCarriesCountdown(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())
	assert.Equal(t, testEpoch.Add(50*time.Second), h.keeper.Snapshot().WarningAt)

	h.clock.Advance(50 * time.Second)

	warning, ok := h.events.last(EventPreBreakWarning)
	require.True(t, ok)
	assert.Equal(t, 10, warning.CountdownSeconds)
	assert.Equal(t, time.Minute, warning.WorkDuration)
	assert.Equal(t, 30*time.Second, warning.BreakDuration)
	assert.Equal(t, PhaseWorking, warning.Phase)

	snapshot := h.keeper.Snapshot()
	assert.True(t, snapshot.Warning)
	assert.Equal(t, PhaseWorking, snapshot.Phase)
}

func TestWarningNotArmedWhenLeadExceedsRemaining(t *testing.T) {
	config := shortConfig()
	config.NotifyBeforeBreak = time.Minute
	h := newHarness(t, config)
	require.NoError(t, h.keeper.Initialize())
	assert.True(t, h.keeper.Snapshot().WarningAt.IsZero())

	config.NotifyBeforeBreak = 10 * time.Second
	config.NotifyEnabled = false
	h.keeper.ApplyConfig(config)
	assert.True(t, h.keeper.Snapshot().WarningAt.IsZero())

	h.clock.Advance(time.Minute)
	_, warned := h.events.last(EventPreBreakWarning)
	assert.False(t, warned)
}

func TestRemainingTimeIsMonotonic(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())

	previous := h.keeper.WorkRemaining()
	assert.Equal(t, time.Minute, previous)
	for i := 0; i < 59; i++ {
		h.clock.Advance(time.Second)
		current := h.keeper.WorkRemaining()
		assert.LessOrEqual(t, current, previous)
		previous = current
	}
	assert.Equal(t, time.Second, previous)

	snapshot := h.keeper.Snapshot()
	assert.Equal(t, snapshot.PhaseStartedAt.Add(time.Minute), snapshot.PhaseEndsAt)
}

func TestRemainingWhileNotRunningReturnsConfigured(t *testing.T) {
	h := newHarness(t, shortConfig())
	assert.Equal(t, time.Minute, h.keeper.WorkRemaining())
	assert.Equal(t, 30*time.Second, h.keeper.BreakRemaining())

	require.NoError(t, h.keeper.Initialize())
	h.clock.Advance(20 * time.Second)
	assert.Equal(t, 30*time.Second, h.keeper.BreakRemaining())

	require.NoError(t, h.keeper.Pause())
	assert.Equal(t, time.Minute, h.keeper.WorkRemaining())

	require.NoError(t, h.keeper.Resume())
	require.NoError(t, h.keeper.TakeBreakNow())
	h.clock.Advance(10 * time.Second)
	assert.Equal(t, time.Minute, h.keeper.WorkRemaining())
	assert.Equal(t, 20*time.Second, h.keeper.BreakRemaining())
}

func TestAddTimeExtendsRemainingAndRearmsWarning(t *testing.T) {
	config := shortConfig()
	config.WorkDuration = 2 * time.Minute
	h := newHarness(t, config)
	require.NoError(t, h.keeper.Initialize())

	h.clock.Advance(110 * time.Second)
	warning, ok := h.events.last(EventPreBreakWarning)
	require.True(t, ok)
	assert.Equal(t, 10, warning.CountdownSeconds)
	require.Equal(t, 10*time.Second, h.keeper.WorkRemaining())

	h.events.reset()
	require.NoError(t, h.keeper.AddTime(30))
	assert.Equal(t, 40*time.Second, h.keeper.WorkRemaining())
	assert.Equal(t, []EventType{EventHideNotifications, EventTimeExtended}, h.events.types())
	extended, _ := h.events.last(EventTimeExtended)
	assert.Equal(t, 30*time.Second, extended.Added)

	snapshot := h.keeper.Snapshot()
	assert.False(t, snapshot.Warning)
	assert.Equal(t, h.clock.Now().Add(30*time.Second), snapshot.WarningAt)
	assert.Equal(t, h.clock.Now().Add(40*time.Second), snapshot.PhaseEndsAt)

	h.clock.Advance(30 * time.Second)
	_, ok = h.events.last(EventPreBreakWarning)
	assert.True(t, ok)
	assert.Equal(t, PhaseWorking, h.keeper.Snapshot().Phase)

	h.clock.Advance(10 * time.Second)
	assert.Equal(t, PhaseOnBreak, h.keeper.Snapshot().Phase)
}

func TestAddTimeBySixtySeconds(t *testing.T) {
	config := shortConfig()
	config.WorkDuration = 5 * time.Minute
	config.NotifyBeforeBreak = time.Minute
	h := newHarness(t, config)
	require.NoError(t, h.keeper.Initialize())
	h.clock.Advance(3 * time.Minute)

	before := h.keeper.WorkRemaining()
	require.NoError(t, h.keeper.AddTime(60))
	after := h.keeper.WorkRemaining()
	assert.Equal(t, before+time.Minute, after)
	assert.Equal(t, h.clock.Now().Add(after-time.Minute), h.keeper.Snapshot().WarningAt)
}

func TestAddTimeRejections(t *testing.T) {
	h := newHarness(t, shortConfig())
	assert.ErrorIs(t, h.keeper.AddTime(10), ErrNotStarted)

	require.NoError(t, h.keeper.Initialize())
	assert.ErrorIs(t, h.keeper.AddTime(0), ErrInvalidSeconds)
	assert.ErrorIs(t, h.keeper.AddTime(-5), ErrInvalidSeconds)

	require.NoError(t, h.keeper.Pause())
	assert.ErrorIs(t, h.keeper.AddTime(10), ErrPaused)

	require.NoError(t, h.keeper.Resume())
	require.NoError(t, h.keeper.TakeBreakNow())
	assert.ErrorIs(t, h.keeper.AddTime(10), ErrNotWorking)
}

func TestAddTimeCannotOverflowRemaining(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())

	const maxInt32 = 1<<31 - 1
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, h.keeper.AddTime(maxInt32), ErrExtensionTooLong)
	}
	assert.Equal(t, time.Minute, h.keeper.WorkRemaining())

	room := int((MaxWorkRemaining - time.Minute) / time.Second)
	require.NoError(t, h.keeper.AddTime(room))
	assert.Equal(t, MaxWorkRemaining, h.keeper.WorkRemaining())
	assert.ErrorIs(t, h.keeper.AddTime(1), ErrExtensionTooLong)
	assert.Equal(t, PhaseWorking, h.keeper.Snapshot().Phase)
	assert.Equal(t, h.clock.Now().Add(MaxWorkRemaining), h.keeper.Snapshot().PhaseEndsAt)
}

func TestPauseResumeDiscardsElapsedWork(t *testing.T) {
	config := shortConfig()
	config.WorkDuration = 10 * time.Minute
	h := newHarness(t, config)
	require.NoError(t, h.keeper.Initialize())

	h.clock.Advance(4 * time.Minute)
	require.Equal(t, 6*time.Minute, h.keeper.WorkRemaining())

	require.NoError(t, h.keeper.Pause())
	snapshot := h.keeper.Snapshot()
	assert.Equal(t, PhasePaused, snapshot.Phase)
	assert.Equal(t, PhaseWorking, snapshot.PausedFrom)
	assert.True(t, snapshot.PhaseStartedAt.IsZero())
	assert.True(t, snapshot.PhaseEndsAt.IsZero())
	assert.Equal(t, 0, h.clock.Pending())

	h.clock.Advance(time.Hour)
	assert.Equal(t, PhasePaused, h.keeper.Snapshot().Phase)

	require.NoError(t, h.keeper.Resume())
	assert.Equal(t, 10*time.Minute, h.keeper.WorkRemaining())
	assert.Equal(t, PhaseWorking, h.keeper.Snapshot().Phase)
	assert.ErrorIs(t, h.keeper.Resume(), ErrNotPaused)
}

func TestPauseDuringBreakEndsBreakFirst(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())
	require.NoError(t, h.keeper.TakeBreakNow())

	h.events.reset()
	require.NoError(t, h.keeper.Pause())
	assert.Equal(t, []EventType{EventBreakComplete, EventPaused}, h.events.types())
	snapshot := h.keeper.Snapshot()
	assert.Equal(t, PhasePaused, snapshot.Phase)
	assert.Equal(t, PhaseOnBreak, snapshot.PausedFrom)

	require.NoError(t, h.keeper.Resume())
	assert.Equal(t, PhaseWorking, h.keeper.Snapshot().Phase)
	assert.Equal(t, time.Minute, h.keeper.WorkRemaining())
}

func TestTogglePause(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())

	paused, err := h.keeper.TogglePause()
	require.NoError(t, err)
	assert.True(t, paused)

	paused, err = h.keeper.TogglePause()
	require.NoError(t, err)
	assert.False(t, paused)
	assert.Equal(t, PhaseWorking, h.keeper.Snapshot().Phase)
	_, resumed := h.events.last(EventResumed)
	assert.True(t, resumed)
}

func TestConcurrentTogglesAlternate(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())

	const toggles = 40
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		pauses int
	)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			paused, err := h.keeper.TogglePause()
			assert.NoError(t, err)
			if paused {
				mu.Lock()
				pauses++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, toggles/2, pauses)
	assert.Equal(t, PhaseWorking, h.keeper.Snapshot().Phase)
	paused, resumed := 0, 0
	for _, eventType := range h.events.types() {
		switch eventType {
		case EventPaused:
			paused++
		case EventResumed:
			resumed++
		}
	}
	assert.Equal(t, toggles/2, paused)
	assert.Equal(t, toggles/2, resumed)
}

func TestTogglePauseBeforeInitialize(t *testing.T) {
	h := newHarness(t, shortConfig())
	paused, err := h.keeper.TogglePause()
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.False(t, paused)
}

func TestTakeBreakNowPhaseExclusivity(t *testing.T) {
	h := newHarness(t, shortConfig())
	assert.ErrorIs(t, h.keeper.TakeBreakNow(), ErrNotStarted)

	require.NoError(t, h.keeper.Initialize())
	require.NoError(t, h.keeper.TakeBreakNow())
	before := h.keeper.Snapshot()
	assert.Equal(t, PhaseOnBreak, before.Phase)

	h.clock.Advance(5 * time.Second)
	assert.ErrorIs(t, h.keeper.TakeBreakNow(), ErrAlreadyOnBreak)
	after := h.keeper.Snapshot()
	assert.Equal(t, before.Phase, after.Phase)
	assert.Equal(t, before.PhaseStartedAt, after.PhaseStartedAt)
	assert.Equal(t, before.PhaseEndsAt, after.PhaseEndsAt)
	assert.Equal(t, 1, h.clock.Pending())

	require.NoError(t, h.keeper.Pause())
	assert.ErrorIs(t, h.keeper.TakeBreakNow(), ErrPaused)
}

func TestTakeBreakNowHidesNotificationsFirst(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())
	h.events.reset()

	require.NoError(t, h.keeper.TakeBreakNow())
	assert.Equal(t, []EventType{EventHideNotifications, EventBreakStarting}, h.events.types())
}

func TestEndBreakEarly(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())

	before := h.keeper.Snapshot()
	assert.False(t, h.keeper.EndBreakEarly())
	assert.Equal(t, before, h.keeper.Snapshot())

	require.NoError(t, h.keeper.TakeBreakNow())
	h.clock.Advance(3 * time.Second)
	h.events.reset()

	assert.True(t, h.keeper.EndBreakEarly())
	complete, ok := h.events.last(EventBreakComplete)
	require.True(t, ok)
	assert.True(t, complete.Early)
	snapshot := h.keeper.Snapshot()
	assert.Equal(t, PhaseWorking, snapshot.Phase)
	assert.Equal(t, h.clock.Now(), snapshot.PhaseStartedAt)
}

func TestSkipBreakRestartsWork(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())
	h.clock.Advance(52 * time.Second)
	h.events.reset()

	require.NoError(t, h.keeper.SkipBreak())
	assert.Equal(t, []EventType{EventHideNotifications, EventBreakSkipped, EventWorkStarted}, h.events.types())
	assert.Equal(t, time.Minute, h.keeper.WorkRemaining())

	h.clock.Advance(59 * time.Second)
	assert.Equal(t, PhaseWorking, h.keeper.Snapshot().Phase)

	require.NoError(t, h.keeper.TakeBreakNow())
	assert.ErrorIs(t, h.keeper.SkipBreak(), ErrNotWorking)
}

func TestForceCloseAllIsIdempotent(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())
	require.NoError(t, h.keeper.TakeBreakNow())

	assert.True(t, h.keeper.ForceCloseAll())
	first := h.keeper.Snapshot()
	pendingAfterFirst := h.clock.Pending()
	reset, ok := h.events.last(EventReset)
	require.True(t, ok)
	assert.Equal(t, PhaseOnBreak, reset.Phase)

	assert.True(t, h.keeper.ForceCloseAll())
	second := h.keeper.Snapshot()

	assert.Equal(t, PhaseWorking, first.Phase)
	assert.Equal(t, first, second)
	assert.Equal(t, pendingAfterFirst, h.clock.Pending())
}

func TestWorkDurationEditRestartsWork(t *testing.T) {
	config := shortConfig()
	config.WorkDuration = 10 * time.Minute
	h := newHarness(t, config)
	require.NoError(t, h.keeper.Initialize())
	h.clock.Advance(3 * time.Minute)

	config.WorkDuration = 5 * time.Minute
	h.keeper.ApplyConfig(config)

	assert.Equal(t, 5*time.Minute, h.keeper.WorkRemaining())
	assert.Equal(t, h.clock.Now(), h.keeper.Snapshot().PhaseStartedAt)
}

func TestBreakDurationEditPreservesElapsed(t *testing.T) {
	config := shortConfig()
	config.BreakDuration = 5 * time.Minute
	h := newHarness(t, config)
	require.NoError(t, h.keeper.Initialize())
	require.NoError(t, h.keeper.TakeBreakNow())
	started := h.keeper.Snapshot().PhaseStartedAt
	h.clock.Advance(2 * time.Minute)

	config.BreakDuration = 4 * time.Minute
	h.keeper.ApplyConfig(config)

	snapshot := h.keeper.Snapshot()
	assert.Equal(t, started, snapshot.PhaseStartedAt)
	assert.Equal(t, 2*time.Minute, h.keeper.BreakRemaining())
	assert.Equal(t, started.Add(4*time.Minute), snapshot.PhaseEndsAt)

	h.clock.Advance(2 * time.Minute)
	assert.Equal(t, PhaseWorking, h.keeper.Snapshot().Phase)
}

func TestBreakDurationEditAlreadyElapsedEndsBreak(t *testing.T) {
	config := shortConfig()
	config.BreakDuration = 5 * time.Minute
	h := newHarness(t, config)
	require.NoError(t, h.keeper.Initialize())
	require.NoError(t, h.keeper.TakeBreakNow())
	h.clock.Advance(2 * time.Minute)
	h.events.reset()

	config.BreakDuration = time.Minute
	h.keeper.ApplyConfig(config)

	assert.Equal(t, PhaseWorking, h.keeper.Snapshot().Phase)
	complete, ok := h.events.last(EventBreakComplete)
	require.True(t, ok)
	assert.False(t, complete.Early)
}

func TestWorkDurationEditDuringBreakAppliesNextPhase(t *testing.T) {
	config := shortConfig()
	h := newHarness(t, config)
	require.NoError(t, h.keeper.Initialize())
	require.NoError(t, h.keeper.TakeBreakNow())

	config.WorkDuration = 3 * time.Minute
	h.keeper.ApplyConfig(config)
	assert.Equal(t, PhaseOnBreak, h.keeper.Snapshot().Phase)
	assert.Equal(t, 30*time.Second, h.keeper.BreakRemaining())

	h.clock.Advance(30 * time.Second)
	assert.Equal(t, 3*time.Minute, h.keeper.WorkRemaining())
}

func TestNotifyEditRearmsOnlyWarning(t *testing.T) {
	config := shortConfig()
	config.WorkDuration = 10 * time.Minute
	h := newHarness(t, config)
	require.NoError(t, h.keeper.Initialize())
	h.clock.Advance(time.Minute)
	before := h.keeper.Snapshot()

	config.NotifyBeforeBreak = 2 * time.Minute
	h.keeper.ApplyConfig(config)

	after := h.keeper.Snapshot()
	assert.Equal(t, before.PhaseStartedAt, after.PhaseStartedAt)
	assert.Equal(t, before.PhaseEndsAt, after.PhaseEndsAt)
	assert.Equal(t, before.PhaseEndsAt.Add(-2*time.Minute), after.WarningAt)
}

func TestDisablingFiredWarningHidesPopup(t *testing.T) {
	config := shortConfig()
	h := newHarness(t, config)
	require.NoError(t, h.keeper.Initialize())
	h.clock.Advance(51 * time.Second)
	require.True(t, h.keeper.Snapshot().Warning)

	h.events.reset()
	config.NotifyEnabled = false
	h.keeper.ApplyConfig(config)

	assert.Equal(t, []EventType{EventHideNotifications}, h.events.types())
	snapshot := h.keeper.Snapshot()
	assert.False(t, snapshot.Warning)
	assert.True(t, snapshot.WarningAt.IsZero())
	assert.Equal(t, PhaseWorking, snapshot.Phase)
}

func TestNotifyEditBeforeWarningStaysQuiet(t *testing.T) {
	config := shortConfig()
	h := newHarness(t, config)
	require.NoError(t, h.keeper.Initialize())
	h.clock.Advance(20 * time.Second)

	h.events.reset()
	config.NotifyEnabled = false
	h.keeper.ApplyConfig(config)
	assert.Empty(t, h.events.types())
}

func TestSafetyClampReloadsThenForcesDefault(t *testing.T) {
	config := shortConfig()
	config.WorkDuration = 5 * time.Second
	store := &memoryStore{reloaded: config}
	fake := clock.NewFake(testEpoch)
	keeper := New(config, Options{Clock: fake, Store: store})
	t.Cleanup(keeper.Shutdown)

	require.NoError(t, keeper.Initialize())
	assert.Equal(t, 1, store.reloads)
	require.Len(t, store.saved, 1)
	assert.Equal(t, model.DefaultWorkDuration, store.saved[0].WorkDuration)
	assert.Equal(t, model.DefaultWorkDuration, keeper.WorkRemaining())
}

func TestSafetyClampAcceptsHealedReload(t *testing.T) {
	config := shortConfig()
	config.WorkDuration = 5 * time.Second
	healed := shortConfig()
	healed.WorkDuration = 7 * time.Minute
	store := &memoryStore{reloaded: healed}
	keeper := New(config, Options{Clock: clock.NewFake(testEpoch), Store: store})
	t.Cleanup(keeper.Shutdown)

	require.NoError(t, keeper.Initialize())
	assert.Empty(t, store.saved)
	assert.Equal(t, 7*time.Minute, keeper.WorkRemaining())
}

func TestSafetyClampSurvivesReloadError(t *testing.T) {
	config := shortConfig()
	config.WorkDuration = 0
	store := &memoryStore{err: errors.New("disk gone")}
	keeper := New(config, Options{Clock: clock.NewFake(testEpoch), Store: store})
	t.Cleanup(keeper.Shutdown)

	require.NoError(t, keeper.Initialize())
	assert.Equal(t, model.DefaultWorkDuration, keeper.WorkRemaining())
	require.Len(t, store.saved, 1)
}

func TestShutdownCancelsTimers(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())
	require.Positive(t, h.clock.Pending())

	h.keeper.Shutdown()
	assert.Equal(t, 0, h.clock.Pending())
	assert.Equal(t, PhaseIdle, h.keeper.Snapshot().Phase)
	assert.ErrorIs(t, h.keeper.Initialize(), ErrShutdown)
	assert.ErrorIs(t, h.keeper.Pause(), ErrShutdown)
	assert.True(t, h.keeper.ForceCloseAll())
	assert.Equal(t, PhaseIdle, h.keeper.Snapshot().Phase)
}

func TestInitializeTwiceIsNoop(t *testing.T) {
	h := newHarness(t, shortConfig())
	require.NoError(t, h.keeper.Initialize())
	h.clock.Advance(10 * time.Second)
	require.NoError(t, h.keeper.Initialize())
	assert.Equal(t, 50*time.Second, h.keeper.WorkRemaining())
}

func TestCountdownSeconds(t *testing.T) {
	assert.Equal(t, 1, CountdownSeconds(0))
	assert.Equal(t, 1, CountdownSeconds(200*time.Millisecond))
	assert.Equal(t, 10, CountdownSeconds(10*time.Second))
	assert.Equal(t, 11, CountdownSeconds(10*time.Second+time.Millisecond))
}
