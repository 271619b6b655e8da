package timekeeper

import "errors"

var (
	// ErrNotStarted is returned by commands issued before Initialize.
	ErrNotStarted = errors.New("session not started")
	// ErrShutdown is returned by commands issued after Shutdown.
	ErrShutdown       = errors.New("session shut down")
	ErrPaused         = errors.New("session is paused")
	ErrAlreadyOnBreak = errors.New("break already active")
	ErrNotWorking     = errors.New("no work phase running")
	ErrNotPaused      = errors.New("session is not paused")
	// ErrInvalidSeconds rejects non-positive extensions.
	ErrInvalidSeconds = errors.New("seconds must be a positive integer")
	// ErrExtensionTooLong rejects extensions past MaxWorkRemaining.
	ErrExtensionTooLong = errors.New("extension exceeds the longest allowed work phase")
)
