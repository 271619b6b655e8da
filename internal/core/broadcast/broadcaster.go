// Package broadcast fans session events out to the observer surfaces and
// keeps their lifecycle in lockstep with the session phase.
package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eyedoro/internal/core/clock"
	"eyedoro/internal/core/model"
	"eyedoro/internal/core/timekeeper"
	"eyedoro/internal/logger"
)

const (
	// TickInterval is the cadence of tooltip, overlay and popup refreshes.
	TickInterval = time.Second
	// PopupResyncEvery is how many ticks the popup counts locally before it
	// is compared with the authoritative remaining time.
	PopupResyncEvery = 5
	// PopupTolerance is the drift, in seconds, accepted before a resync.
	PopupTolerance = 2
)

// Option configures the Broadcaster.
type Option func(*Broadcaster)

// WithClock overrides the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(b *Broadcaster) {
		b.clock = clk
	}
}

// WithQueueSize sets the capacity of the wake-up channel.
func WithQueueSize(n int) Option {
	return func(b *Broadcaster) {
		b.notify = make(chan struct{}, n)
	}
}

// Broadcaster serializes every surface operation on its own goroutine.
// Publish only enqueues, so it is safe to call with the TimeKeeper lock held.
type Broadcaster struct {
	source   Source
	surfaces Surfaces
	clock    clock.Clock
	log      *logger.Logger

	mu     sync.Mutex
	queue  []timekeeper.Event
	sinks  []Sink
	notify chan struct{}

	// Owned by the run goroutine.
	overlays     []Overlay
	popupVisible bool
	popupSeconds int
	popupTicks   int
}

// New creates a broadcaster reading authoritative state from source.
func New(source Source, surfaces Surfaces, log *logger.Logger, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		source:   source,
		surfaces: surfaces,
		clock:    clock.System,
		log:      log.Named("broadcast"),
		notify:   make(chan struct{}, 32),
		sinks:    append([]Sink(nil), surfaces.Sinks...),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddSink registers an extra event sink.
func (b *Broadcaster) AddSink(sink Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sink)
}

// Publish queues an event. Non-blocking.
func (b *Broadcaster) Publish(event timekeeper.Event) {
	b.mu.Lock()
	b.queue = append(b.queue, event)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Run processes events and ticks until ctx is cancelled, then tears down
// every surface it still owns.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := b.clock.NewTicker(TickInterval)
	defer ticker.Stop()
	b.log.Info("broadcaster started")

	b.refreshTooltip(b.source.Snapshot())
	for {
		select {
		case <-ctx.Done():
			b.drain()
			b.teardown()
			b.log.Info("broadcaster stopped")
			return
		case <-b.notify:
			b.drain()
		case now := <-ticker.C():
			b.tick(now)
		}
	}
}

// Tooltip derives the tray tooltip from the session state.
func Tooltip(snapshot timekeeper.Snapshot) string {
	text := "Eye Doro - Protecting your eyes"
	switch snapshot.Phase {
	case timekeeper.PhasePaused:
		text += "\nPaused"
	case timekeeper.PhaseOnBreak:
		text += "\nBreak: " + FormatClock(snapshot.BreakRemaining()) + " remaining"
	case timekeeper.PhaseWorking:
		text += "\nWork: " + FormatClock(snapshot.WorkRemaining()) + " remaining"
	}
	return text
}

// FormatClock renders a duration as m:ss, truncating partial seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func (b *Broadcaster) drain() {
	for {
		event, ok := b.dequeue()
		if !ok {
			return
		}
		b.handle(event)
	}
}

func (b *Broadcaster) dequeue() (timekeeper.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return timekeeper.Event{}, false
	}
	event := b.queue[0]
	b.queue = b.queue[1:]
	return event, true
}

func (b *Broadcaster) handle(event timekeeper.Event) {
	b.log.Debug("handling %s", event.Type)
	snapshot := b.source.Snapshot()

	switch event.Type {
	case timekeeper.EventWorkStarted:
		b.setTrayPhase(timekeeper.PhaseWorking)

	case timekeeper.EventPreBreakWarning:
		b.showPopup(event, snapshot)
		b.playCue(event, model.CueWarning)

	case timekeeper.EventBreakStarting:
		b.hidePopup()
		b.destroyOverlays()
		b.createOverlays(event, snapshot)
		b.setTrayPhase(timekeeper.PhaseOnBreak)
		minutes := int((event.BreakDuration + 30*time.Second) / time.Minute)
		b.sendNotification(event, "Eye Break Time!",
			fmt.Sprintf("Time for a %d minute break to rest your eyes.", minutes))
		b.playCue(event, model.CueNotification)

	case timekeeper.EventBreakComplete:
		b.destroyOverlays()
		if event.Early {
			b.sendNotification(event, "Break Ended", "You ended your break early. Back to work!")
		} else {
			b.sendNotification(event, "Break Complete!", "Great job! Back to work with refreshed eyes.")
		}
		b.playCue(event, model.CueSuccess)

	case timekeeper.EventHideNotifications:
		b.hidePopup()

	case timekeeper.EventPaused:
		b.hidePopup()
		b.destroyOverlays()
		b.setTrayPhase(timekeeper.PhasePaused)
		b.sendNotification(event, "Eye Doro Paused", "Break reminders are temporarily disabled.")

	case timekeeper.EventResumed:
		b.setTrayPhase(timekeeper.PhaseWorking)
		b.sendNotification(event, "Eye Doro Resumed", "Break reminders are now active.")

	case timekeeper.EventTimeExtended:
		b.sendNotification(event, "Time Extended", extendedMessage(event.Added))

	case timekeeper.EventBreakSkipped:
		b.hidePopup()
		b.sendNotification(event, "Break Skipped", "Break reminder skipped. Starting next work cycle.")

	case timekeeper.EventReset:
		b.hidePopup()
		b.destroyOverlays()
	}

	b.refreshTooltip(snapshot)
	b.deliver(event)
}

func (b *Broadcaster) tick(now time.Time) {
	snapshot := b.source.Snapshot().At(now)
	b.refreshTooltip(snapshot)

	if len(b.overlays) > 0 {
		remaining := snapshot.BreakRemaining()
		for _, overlay := range b.overlays {
			b.protect("overlay refresh", func() { overlay.SetRemaining(remaining) })
		}
	}

	if !b.popupVisible {
		return
	}
	if snapshot.Phase != timekeeper.PhaseWorking {
		b.hidePopup()
		return
	}
	if b.popupSeconds > 0 {
		b.popupSeconds--
	}
	b.popupTicks++
	if b.popupTicks%PopupResyncEvery == 0 {
		authoritative := ceilSeconds(snapshot.WorkRemaining())
		drift := b.popupSeconds - authoritative
		if drift > PopupTolerance || drift < -PopupTolerance {
			b.log.Debug("popup countdown resync %d -> %d", b.popupSeconds, authoritative)
			b.popupSeconds = authoritative
		}
	}
	seconds := b.popupSeconds
	b.protect("popup countdown", func() { b.surfaces.Popup.SetCountdown(seconds) })
}

func (b *Broadcaster) showPopup(event timekeeper.Event, snapshot timekeeper.Snapshot) {
	if b.surfaces.Popup == nil {
		return
	}
	b.popupVisible = true
	b.popupSeconds = event.CountdownSeconds
	b.popupTicks = 0
	info := PopupInfo{
		WorkDuration:  event.WorkDuration,
		BreakDuration: event.BreakDuration,
		Theme:         snapshot.Config.Theme,
	}
	b.protect("popup show", func() { b.surfaces.Popup.Show(event.CountdownSeconds, info) })
}

func (b *Broadcaster) hidePopup() {
	if !b.popupVisible || b.surfaces.Popup == nil {
		return
	}
	b.popupVisible = false
	b.protect("popup hide", b.surfaces.Popup.Hide)
}

func (b *Broadcaster) createOverlays(event timekeeper.Event, snapshot timekeeper.Snapshot) {
	if b.surfaces.Overlays == nil {
		return
	}
	displays := b.displays()
	info := BreakInfo{
		Duration:     event.BreakDuration,
		Remaining:    snapshot.BreakRemaining(),
		Theme:        snapshot.Config.Theme,
		SoundEnabled: event.SoundEnabled,
	}
	for _, display := range displays {
		var overlay Overlay
		err := b.protectErr("overlay create", func() error {
			var err error
			overlay, err = b.surfaces.Overlays.CreateOverlay(display, info)
			return err
		})
		if err != nil {
			b.log.Error("create overlay on display %d: %v", display.ID, err)
			continue
		}
		if overlay != nil {
			b.overlays = append(b.overlays, overlay)
		}
	}
	b.log.Info("created %d break overlays across %d displays", len(b.overlays), len(displays))
}

func (b *Broadcaster) displays() []Display {
	if b.surfaces.Displays != nil {
		var displays []Display
		err := b.protectErr("display enumeration", func() error {
			var err error
			displays, err = b.surfaces.Displays.Displays()
			return err
		})
		if err != nil {
			b.log.Warn("enumerate displays: %v", err)
		} else if len(displays) > 0 {
			return displays
		}
	}
	return []Display{{ID: 0, Name: "primary", Primary: true}}
}

// destroyOverlays tears down every overlay. A failed Destroy is retried once
// through ForceDestroy and never stops the remaining overlays.
func (b *Broadcaster) destroyOverlays() {
	overlays := b.overlays
	b.overlays = nil
	for i, overlay := range overlays {
		err := b.protectErr("overlay destroy", overlay.Destroy)
		if err == nil {
			continue
		}
		b.log.Warn("destroy overlay %d: %v, forcing", i, err)
		if err := b.protectErr("overlay force destroy", overlay.ForceDestroy); err != nil {
			b.log.Error("force destroy overlay %d: %v", i, err)
		}
	}
}

func (b *Broadcaster) teardown() {
	b.hidePopup()
	b.destroyOverlays()
}

func (b *Broadcaster) refreshTooltip(snapshot timekeeper.Snapshot) {
	if b.surfaces.Tray == nil {
		return
	}
	text := Tooltip(snapshot)
	b.protect("tray tooltip", func() { b.surfaces.Tray.SetTooltip(text) })
}

func (b *Broadcaster) setTrayPhase(phase timekeeper.Phase) {
	if b.surfaces.Tray == nil {
		return
	}
	b.protect("tray phase", func() { b.surfaces.Tray.SetPhase(phase) })
}

func (b *Broadcaster) sendNotification(event timekeeper.Event, title, body string) {
	if b.surfaces.Notifier == nil {
		return
	}
	b.protect("notification", func() { b.surfaces.Notifier.Notify(title, body, !event.SoundEnabled) })
}

func (b *Broadcaster) playCue(event timekeeper.Event, cue model.Cue) {
	if b.surfaces.Cues == nil || !event.SoundEnabled {
		return
	}
	b.protect("audio cue", func() { b.surfaces.Cues.Play(cue) })
}

func (b *Broadcaster) deliver(event timekeeper.Event) {
	b.mu.Lock()
	sinks := append([]Sink(nil), b.sinks...)
	b.mu.Unlock()
	for _, sink := range sinks {
		b.protect("event sink", func() { sink.Deliver(event) })
	}
}

func (b *Broadcaster) protect(what string, fn func()) {
	_ = b.protectErr(what, func() error {
		fn()
		return nil
	})
}

func (b *Broadcaster) protectErr(what string, fn func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%s panicked: %v", what, recovered)
			b.log.Error("%v", err)
		}
	}()
	return fn()
}

func extendedMessage(added time.Duration) string {
	seconds := int(added / time.Second)
	minutes := (seconds + 30) / 60
	plural := ""
	if seconds >= 120 {
		plural = "s"
	}
	return fmt.Sprintf("Added %d minute%s to your work session.", minutes, plural)
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
