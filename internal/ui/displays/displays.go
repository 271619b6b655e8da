// Package displays enumerates connected monitors through GLFW.
package displays

import (
	"errors"
	"sort"

	"fyne.io/fyne/v2"
	"github.com/go-gl/glfw/v3.3/glfw"

	"eyedoro/internal/core/broadcast"
)

// ErrNoDisplays is returned when GLFW reports no monitors.
var ErrNoDisplays = errors.New("no displays connected")

// GLFW queries monitors on the fyne main thread, where GLFW is initialized.
type GLFW struct{}

// Displays returns every connected monitor with the primary one first.
func (GLFW) Displays() ([]broadcast.Display, error) {
	var found []broadcast.Display
	fyne.DoAndWait(func() {
		primary := glfw.GetPrimaryMonitor()
		for index, monitor := range glfw.GetMonitors() {
			mode := monitor.GetVideoMode()
			if mode == nil {
				continue
			}
			x, y := monitor.GetPos()
			found = append(found, broadcast.Display{
				ID:      index,
				Name:    monitor.GetName(),
				X:       x,
				Y:       y,
				Width:   mode.Width,
				Height:  mode.Height,
				Primary: monitor == primary,
			})
		}
	})
	if len(found) == 0 {
		return nil, ErrNoDisplays
	}
	return Arrange(found), nil
}

// Arrange orders displays primary first, then left to right, top to bottom.
// Without a reported primary the first display is promoted.
func Arrange(displays []broadcast.Display) []broadcast.Display {
	arranged := append([]broadcast.Display(nil), displays...)
	sort.SliceStable(arranged, func(i, j int) bool {
		a, b := arranged[i], arranged[j]
		if a.Primary != b.Primary {
			return a.Primary
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	if len(arranged) > 0 && !arranged[0].Primary {
		arranged[0].Primary = true
	}
	return arranged
}
