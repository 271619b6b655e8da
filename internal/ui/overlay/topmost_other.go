//go:build !windows

package overlay

import (
	"fyne.io/fyne/v2"

	"eyedoro/internal/core/broadcast"
)

// Full-screen splash windows already sit above regular windows here.
func pinToDisplay(fyne.Window, broadcast.Display) {}
