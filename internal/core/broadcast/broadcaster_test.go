package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eyedoro/internal/core/clock"
	"eyedoro/internal/core/model"
	"eyedoro/internal/core/timekeeper"
	"eyedoro/internal/logger"
)

var epoch = time.Date(2026, 4, 6, 14, 0, 0, 0, time.UTC)

type staticSource struct {
	snapshot timekeeper.Snapshot
}

func (s *staticSource) Snapshot() timekeeper.Snapshot { return s.snapshot }

type fakeOverlay struct {
	display      Display
	remaining    []time.Duration
	destroyErr   error
	destroyPanic bool
	destroyed    int
	forced       int
}

func (o *fakeOverlay) SetRemaining(remaining time.Duration) {
	o.remaining = append(o.remaining, remaining)
}

func (o *fakeOverlay) Destroy() error {
	o.destroyed++
	if o.destroyPanic {
		panic("window already gone")
	}
	return o.destroyErr
}

func (o *fakeOverlay) ForceDestroy() error {
	o.forced++
	return nil
}

type fakeFactory struct {
	created []*fakeOverlay
	failOn  int
	prepare func(*fakeOverlay)
}

func (f *fakeFactory) CreateOverlay(display Display, _ BreakInfo) (Overlay, error) {
	if f.failOn > 0 && display.ID == f.failOn {
		return nil, errors.New("no gl context")
	}
	overlay := &fakeOverlay{display: display}
	if f.prepare != nil {
		f.prepare(overlay)
	}
	f.created = append(f.created, overlay)
	return overlay, nil
}

type fakeDisplays struct {
	displays []Display
	err      error
}

func (d fakeDisplays) Displays() ([]Display, error) { return d.displays, d.err }

type fakePopup struct {
	shown     []int
	countdown []int
	hidden    int
}

func (p *fakePopup) Show(seconds int, _ PopupInfo) { p.shown = append(p.shown, seconds) }
func (p *fakePopup) SetCountdown(seconds int)      { p.countdown = append(p.countdown, seconds) }
func (p *fakePopup) Hide()                         { p.hidden++ }

type fakeTray struct {
	tooltips []string
	phases   []timekeeper.Phase
}

func (t *fakeTray) SetTooltip(text string)           { t.tooltips = append(t.tooltips, text) }
func (t *fakeTray) SetPhase(phase timekeeper.Phase) { t.phases = append(t.phases, phase) }

type notification struct {
	title, body string
	silent      bool
}

type fakeNotifier struct {
	sent []notification
}

func (n *fakeNotifier) Notify(title, body string, silent bool) {
	n.sent = append(n.sent, notification{title, body, silent})
}

type fakeCues struct {
	played []model.Cue
}

func (c *fakeCues) Play(cue model.Cue) { c.played = append(c.played, cue) }

type fakeSink struct {
	mu     sync.Mutex
	events []timekeeper.EventType
}

func (s *fakeSink) Deliver(event timekeeper.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event.Type)
}

func (s *fakeSink) received() []timekeeper.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]timekeeper.EventType(nil), s.events...)
}

type fixture struct {
	b        *Broadcaster
	source   *staticSource
	factory  *fakeFactory
	popup    *fakePopup
	tray     *fakeTray
	notifier *fakeNotifier
	cues     *fakeCues
	sink     *fakeSink
}

func newFixture(displays Displays) *fixture {
	f := &fixture{
		source:   &staticSource{},
		factory:  &fakeFactory{},
		popup:    &fakePopup{},
		tray:     &fakeTray{},
		notifier: &fakeNotifier{},
		cues:     &fakeCues{},
		sink:     &fakeSink{},
	}
	f.b = New(f.source, Surfaces{
		Displays: displays,
		Overlays: f.factory,
		Popup:    f.popup,
		Tray:     f.tray,
		Notifier: f.notifier,
		Cues:     f.cues,
		Sinks:    []Sink{f.sink},
	}, logger.Discard())
	return f
}

func workingSnapshot(startedAt time.Time, work time.Duration) timekeeper.Snapshot {
	config := model.DefaultSessionConfig()
	config.WorkDuration = work
	return timekeeper.Snapshot{
		Phase:          timekeeper.PhaseWorking,
		PhaseStartedAt: startedAt,
		Active:         config,
		Config:         config,
		Now:            startedAt,
	}
}

func breakSnapshot(startedAt time.Time, length time.Duration) timekeeper.Snapshot {
	config := model.DefaultSessionConfig()
	config.BreakDuration = length
	return timekeeper.Snapshot{
		Phase:          timekeeper.PhaseOnBreak,
		PhaseStartedAt: startedAt,
		Active:         config,
		Config:         config,
		Now:            startedAt,
	}
}

func twoDisplays() Displays {
	return fakeDisplays{displays: []Display{
		{ID: 1, Name: "left", Primary: true, Width: 1920, Height: 1080},
		{ID: 2, Name: "right", X: 1920, Width: 2560, Height: 1440},
	}}
}

func TestBreakStartCreatesOverlayPerDisplay(t *testing.T) {
	f := newFixture(twoDisplays())
	f.source.snapshot = breakSnapshot(epoch, 5*time.Minute)

	f.b.handle(timekeeper.Event{Type: timekeeper.EventBreakStarting, BreakDuration: 5 * time.Minute, SoundEnabled: true})

	require.Len(t, f.factory.created, 2)
	assert.Equal(t, "left", f.factory.created[0].display.Name)
	assert.Equal(t, "right", f.factory.created[1].display.Name)
	assert.Equal(t, []timekeeper.Phase{timekeeper.PhaseOnBreak}, f.tray.phases)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Eye Break Time!", f.notifier.sent[0].title)
	assert.Equal(t, "Time for a 5 minute break to rest your eyes.", f.notifier.sent[0].body)
	assert.False(t, f.notifier.sent[0].silent)
	assert.Equal(t, []model.Cue{model.CueNotification}, f.cues.played)
}

func TestBreakStartDestroysStaleOverlaysFirst(t *testing.T) {
	f := newFixture(twoDisplays())
	f.source.snapshot = breakSnapshot(epoch, time.Minute)
	start := timekeeper.Event{Type: timekeeper.EventBreakStarting, BreakDuration: time.Minute}

	f.b.handle(start)
	stale := append([]*fakeOverlay(nil), f.factory.created...)
	f.b.handle(start)

	for _, overlay := range stale {
		assert.Equal(t, 1, overlay.destroyed)
	}
	assert.Len(t, f.b.overlays, 2)
	assert.Len(t, f.factory.created, 4)
}

func TestDisplayEnumerationFallsBackToPrimary(t *testing.T) {
	f := newFixture(fakeDisplays{err: errors.New("glfw init failed")})
	f.source.snapshot = breakSnapshot(epoch, time.Minute)

	f.b.handle(timekeeper.Event{Type: timekeeper.EventBreakStarting, BreakDuration: time.Minute})

	require.Len(t, f.factory.created, 1)
	assert.True(t, f.factory.created[0].display.Primary)
}

func TestOverlayCreateFailureKeepsOthers(t *testing.T) {
	f := newFixture(twoDisplays())
	f.factory.failOn = 1
	f.source.snapshot = breakSnapshot(epoch, time.Minute)

	f.b.handle(timekeeper.Event{Type: timekeeper.EventBreakStarting, BreakDuration: time.Minute})

	require.Len(t, f.factory.created, 1)
	assert.Equal(t, 2, f.factory.created[0].display.ID)
}

func TestBreakCompleteDestroysEveryOverlayBestEffort(t *testing.T) {
	displays := fakeDisplays{displays: []Display{{ID: 1}, {ID: 2}, {ID: 3}}}
	f := newFixture(displays)
	f.factory.prepare = func(overlay *fakeOverlay) {
		switch overlay.display.ID {
		case 1:
			overlay.destroyErr = errors.New("already destroyed")
		case 2:
			overlay.destroyPanic = true
		}
	}
	f.source.snapshot = breakSnapshot(epoch, time.Minute)
	f.b.handle(timekeeper.Event{Type: timekeeper.EventBreakStarting, BreakDuration: time.Minute})
	require.Len(t, f.factory.created, 3)

	f.source.snapshot = workingSnapshot(epoch.Add(time.Minute), 20*time.Minute)
	f.b.handle(timekeeper.Event{Type: timekeeper.EventBreakComplete, Early: true, SoundEnabled: true})

	for _, overlay := range f.factory.created {
		assert.Equal(t, 1, overlay.destroyed, "display %d", overlay.display.ID)
	}
	assert.Equal(t, 1, f.factory.created[0].forced)
	assert.Equal(t, 1, f.factory.created[1].forced)
	assert.Equal(t, 0, f.factory.created[2].forced)
	assert.Empty(t, f.b.overlays)

	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, "Break Ended", last.title)
	assert.Equal(t, model.CueSuccess, f.cues.played[len(f.cues.played)-1])
}

func TestDestroyWithoutOverlaysIsNoop(t *testing.T) {
	f := newFixture(twoDisplays())
	f.source.snapshot = workingSnapshot(epoch, time.Minute)
	assert.NotPanics(t, func() {
		f.b.handle(timekeeper.Event{Type: timekeeper.EventReset})
		f.b.handle(timekeeper.Event{Type: timekeeper.EventBreakComplete})
	})
	assert.Empty(t, f.factory.created)
}

func TestPopupCountdownDecrementsAndResyncs(t *testing.T) {
	f := newFixture(nil)
	f.source.snapshot = workingSnapshot(epoch, time.Minute)

	f.b.handle(timekeeper.Event{Type: timekeeper.EventPreBreakWarning, CountdownSeconds: 30})
	require.Equal(t, []int{30}, f.popup.shown)

	// Authoritative time runs faster than the local countdown so the fifth
	// tick has to correct it.
	for i := 1; i <= 5; i++ {
		f.b.tick(epoch.Add(time.Duration(60-30+i*2) * time.Second))
	}
	assert.Equal(t, []int{29, 28, 27, 26, 20}, f.popup.countdown)
}

func TestPopupResyncIgnoresSmallDrift(t *testing.T) {
	f := newFixture(nil)
	f.source.snapshot = workingSnapshot(epoch, time.Minute)
	f.b.handle(timekeeper.Event{Type: timekeeper.EventPreBreakWarning, CountdownSeconds: 30})

	for i := 1; i <= 5; i++ {
		// local 25 vs authoritative 23 at the fifth tick
		f.b.tick(epoch.Add(time.Duration(30+i) * time.Second).Add(2 * time.Second))
	}
	assert.Equal(t, 25, f.popup.countdown[4])
}

func TestPopupCountdownClampsAtZero(t *testing.T) {
	f := newFixture(nil)
	f.source.snapshot = workingSnapshot(epoch, time.Minute)
	f.b.handle(timekeeper.Event{Type: timekeeper.EventPreBreakWarning, CountdownSeconds: 1})

	f.b.tick(epoch.Add(59 * time.Second))
	f.b.tick(epoch.Add(59 * time.Second))
	assert.Equal(t, []int{0, 0}, f.popup.countdown)
}

func TestPopupHiddenOnNotificationEvents(t *testing.T) {
	f := newFixture(nil)
	f.source.snapshot = workingSnapshot(epoch, time.Minute)
	for _, eventType := range []timekeeper.EventType{
		timekeeper.EventHideNotifications,
		timekeeper.EventBreakSkipped,
		timekeeper.EventPaused,
		timekeeper.EventReset,
	} {
		f.b.handle(timekeeper.Event{Type: timekeeper.EventPreBreakWarning, CountdownSeconds: 10})
		f.b.handle(timekeeper.Event{Type: eventType})
		assert.False(t, f.b.popupVisible, eventType)
	}
	assert.Equal(t, 4, f.popup.hidden)

	f.b.handle(timekeeper.Event{Type: timekeeper.EventHideNotifications})
	assert.Equal(t, 4, f.popup.hidden)
}

func TestPopupHiddenWhenPhaseLeavesWorking(t *testing.T) {
	f := newFixture(nil)
	f.source.snapshot = workingSnapshot(epoch, time.Minute)
	f.b.handle(timekeeper.Event{Type: timekeeper.EventPreBreakWarning, CountdownSeconds: 10})

	f.source.snapshot = breakSnapshot(epoch.Add(time.Minute), time.Minute)
	f.b.tick(epoch.Add(time.Minute))
	assert.Equal(t, 1, f.popup.hidden)
	assert.Empty(t, f.popup.countdown)
}

func TestTickRefreshesTooltipAndOverlays(t *testing.T) {
	f := newFixture(fakeDisplays{displays: []Display{{ID: 1}}})
	f.source.snapshot = breakSnapshot(epoch, 5*time.Minute)
	f.b.handle(timekeeper.Event{Type: timekeeper.EventBreakStarting, BreakDuration: 5 * time.Minute})

	f.b.tick(epoch.Add(75 * time.Second))

	assert.Equal(t, "Eye Doro - Protecting your eyes\nBreak: 3:45 remaining", f.tray.tooltips[len(f.tray.tooltips)-1])
	assert.Equal(t, []time.Duration{3*time.Minute + 45*time.Second}, f.factory.created[0].remaining)
}

func TestTooltip(t *testing.T) {
	working := workingSnapshot(epoch, 20*time.Minute).At(epoch.Add(90*time.Second + 400*time.Millisecond))
	assert.Equal(t, "Eye Doro - Protecting your eyes\nWork: 18:29 remaining", Tooltip(working))

	paused := timekeeper.Snapshot{Phase: timekeeper.PhasePaused}
	assert.Equal(t, "Eye Doro - Protecting your eyes\nPaused", Tooltip(paused))

	assert.Equal(t, "Eye Doro - Protecting your eyes", Tooltip(timekeeper.Snapshot{Phase: timekeeper.PhaseIdle}))
}

func TestSoundDisabledSilencesCuesAndNotifications(t *testing.T) {
	f := newFixture(twoDisplays())
	f.source.snapshot = breakSnapshot(epoch, time.Minute)

	f.b.handle(timekeeper.Event{Type: timekeeper.EventBreakStarting, BreakDuration: time.Minute, SoundEnabled: false})

	assert.Empty(t, f.cues.played)
	require.Len(t, f.notifier.sent, 1)
	assert.True(t, f.notifier.sent[0].silent)
}

func TestTimeExtendedMessage(t *testing.T) {
	assert.Equal(t, "Added 1 minute to your work session.", extendedMessage(60*time.Second))
	assert.Equal(t, "Added 5 minutes to your work session.", extendedMessage(5*time.Minute))
}

func TestEventsReachSinksInOrder(t *testing.T) {
	f := newFixture(nil)
	f.source.snapshot = workingSnapshot(epoch, time.Minute)
	extra := &fakeSink{}
	f.b.AddSink(extra)

	f.b.Publish(timekeeper.Event{Type: timekeeper.EventWorkStarted})
	f.b.Publish(timekeeper.Event{Type: timekeeper.EventPaused})
	f.b.Publish(timekeeper.Event{Type: timekeeper.EventResumed})
	f.b.drain()

	want := []timekeeper.EventType{timekeeper.EventWorkStarted, timekeeper.EventPaused, timekeeper.EventResumed}
	assert.Equal(t, want, f.sink.received())
	assert.Equal(t, want, extra.received())
}

func TestPanickingSurfaceDoesNotStopDelivery(t *testing.T) {
	f := newFixture(nil)
	f.source.snapshot = workingSnapshot(epoch, time.Minute)
	f.b.surfaces.Notifier = panicNotifier{}

	assert.NotPanics(t, func() {
		f.b.handle(timekeeper.Event{Type: timekeeper.EventResumed})
	})
	assert.Equal(t, []timekeeper.EventType{timekeeper.EventResumed}, f.sink.received())
}

type panicNotifier struct{}

func (panicNotifier) Notify(string, string, bool) { panic("dbus unavailable") }

func TestRunDrainsThenTearsDown(t *testing.T) {
	fake := clock.NewFake(epoch)
	f := newFixture(fakeDisplays{displays: []Display{{ID: 1}}})
	f.b.clock = fake
	f.source.snapshot = breakSnapshot(epoch, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.b.Run(ctx)
		close(done)
	}()

	f.b.Publish(timekeeper.Event{Type: timekeeper.EventBreakStarting, BreakDuration: time.Minute})
	require.Eventually(t, func() bool {
		return len(f.sink.received()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	require.Len(t, f.factory.created, 1)
	assert.Equal(t, 1, f.factory.created[0].destroyed)
}
