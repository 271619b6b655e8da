package broadcast

import (
	"time"

	"eyedoro/internal/core/model"
	"eyedoro/internal/core/timekeeper"
)

// Display describes one connected monitor.
type Display struct {
	ID      int
	Name    string
	X, Y    int
	Width   int
	Height  int
	Primary bool
}

// Displays enumerates the connected monitors.
type Displays interface {
	Displays() ([]Display, error)
}

// BreakInfo is handed to every overlay at creation.
type BreakInfo struct {
	Duration     time.Duration
	Remaining    time.Duration
	Theme        model.Theme
	SoundEnabled bool
}

// Overlay is one full-screen break surface.
type Overlay interface {
	SetRemaining(remaining time.Duration)
	Destroy() error
	// ForceDestroy is the fallback when Destroy fails.
	ForceDestroy() error
}

// OverlayFactory creates break overlays.
type OverlayFactory interface {
	CreateOverlay(display Display, info BreakInfo) (Overlay, error)
}

// PopupInfo accompanies a pre-break countdown popup.
type PopupInfo struct {
	WorkDuration  time.Duration
	BreakDuration time.Duration
	Theme         model.Theme
}

// Popup is the single pre-break countdown surface.
type Popup interface {
	Show(countdownSeconds int, info PopupInfo)
	SetCountdown(seconds int)
	Hide()
}

// Tray is the system tray surface.
type Tray interface {
	SetTooltip(text string)
	SetPhase(phase timekeeper.Phase)
}

// Notifier dispatches system notifications.
type Notifier interface {
	Notify(title, body string, silent bool)
}

// CuePlayer plays audio cues.
type CuePlayer interface {
	Play(cue model.Cue)
}

// Sink receives every event, e.g. an IPC subscriber fan-out.
type Sink interface {
	Deliver(event timekeeper.Event)
}

// Source is the authoritative session state.
type Source interface {
	Snapshot() timekeeper.Snapshot
}

// Surfaces groups the observer surfaces. Nil members are skipped.
type Surfaces struct {
	Displays Displays
	Overlays OverlayFactory
	Popup    Popup
	Tray     Tray
	Notifier Notifier
	Cues     CuePlayer
	Sinks    []Sink
}
