// Package ipc carries the command surface across the process boundary as
// newline-delimited JSON over the single-instance socket.
package ipc

import (
	"encoding/json"
	"time"

	"eyedoro/internal/core/timekeeper"
)

// Command names accepted by the server.
const (
	CommandGetConfig               = "getConfig"
	CommandSaveConfig              = "saveConfig"
	CommandGetWorkTimeRemainingMs  = "getWorkTimeRemainingMs"
	CommandGetBreakTimeRemainingMs = "getBreakTimeRemainingMs"
	CommandGetStatus               = "getStatus"
	CommandTogglePause             = "togglePause"
	CommandPause                   = "pause"
	CommandResume                  = "resume"
	CommandEndBreakEarly           = "endBreakEarly"
	CommandForceCloseAll           = "forceCloseAll"
	CommandStartBreakNow           = "startBreakNow"
	CommandAddTime                 = "addTime"
	CommandSkipBreak               = "skipBreak"
	CommandSubscribe               = "subscribe"
)

// EventThemeChanged is pushed to subscribers when the theme changes.
const EventThemeChanged = "theme-changed"

// Request is one command invocation.
type Request struct {
	ID      string          `json:"id"`
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
	Origin  string          `json:"origin,omitempty"`
}

// Message is either a response, correlated by ID, or a pushed event.
type Message struct {
	ID     string          `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Event  *EventMessage   `json:"event,omitempty"`
}

// EventMessage is the wire form of a session event.
type EventMessage struct {
	Type             string           `json:"type"`
	Phase            timekeeper.Phase `json:"phase,omitempty"`
	CountdownSeconds int              `json:"countdownSeconds,omitempty"`
	WorkDurationMs   int64            `json:"workDurationMs,omitempty"`
	BreakDurationMs  int64            `json:"breakDurationMs,omitempty"`
	AddedMs          int64            `json:"addedMs,omitempty"`
	Early            bool             `json:"early,omitempty"`
	Theme            string           `json:"theme,omitempty"`
	Origin           string           `json:"origin,omitempty"`
	At               time.Time        `json:"at"`
}

// EventOf converts a session event to its wire form.
func EventOf(event timekeeper.Event) EventMessage {
	return EventMessage{
		Type:             string(event.Type),
		Phase:            event.Phase,
		CountdownSeconds: event.CountdownSeconds,
		WorkDurationMs:   event.WorkDuration.Milliseconds(),
		BreakDurationMs:  event.BreakDuration.Milliseconds(),
		AddedMs:          event.Added.Milliseconds(),
		Early:            event.Early,
		At:               event.At,
	}
}
