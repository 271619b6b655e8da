//go:build windows

package overlay

import (
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"

	"eyedoro/internal/core/broadcast"
)

const (
	swpShowWindow = 0x0040
	hwndTopmost   = ^uintptr(0) // (HWND)-1
)

var (
	user32DLL        = syscall.NewLazyDLL("user32.dll")
	procSetWindowPos = user32DLL.NewProc("SetWindowPos")
)

// pinToDisplay moves the window onto display and keeps it above others.
func pinToDisplay(window fyne.Window, display broadcast.Display) {
	nativeWindow, ok := window.(driver.NativeWindow)
	if !ok {
		return
	}

	nativeWindow.RunNative(func(context any) {
		var hwnd uintptr
		switch value := context.(type) {
		case driver.WindowsWindowContext:
			hwnd = value.HWND
		case *driver.WindowsWindowContext:
			hwnd = value.HWND
		default:
			return
		}
		if hwnd == 0 {
			return
		}

		procSetWindowPos.Call(
			hwnd,
			hwndTopmost,
			intToUintptr(display.X),
			intToUintptr(display.Y),
			intToUintptr(display.Width),
			intToUintptr(display.Height),
			swpShowWindow,
		)
	})
}

// Coordinates left of or above the primary display are negative.
func intToUintptr(value int) uintptr {
	return uintptr(uint32(int32(value)))
}
