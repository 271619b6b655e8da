// Package popup shows the pre-break countdown with its quick actions.
package popup

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"eyedoro/internal/core/broadcast"
)

// Callbacks defines popup action handlers. They run off the UI thread.
type Callbacks struct {
	OnStartNow func()
	OnAddTime  func(seconds int)
	OnSkip     func()
}

// Window is the single countdown popup. It is built lazily on first Show.
type Window struct {
	app       fyne.App
	callbacks Callbacks
	window    fyne.Window
	headline  *widget.Label
	detail    *widget.Label
}

// New creates the popup surface.
func New(app fyne.App, callbacks Callbacks) *Window {
	return &Window{app: app, callbacks: callbacks}
}

// Show displays the popup with countdownSeconds left.
func (popup *Window) Show(countdownSeconds int, info broadcast.PopupInfo) {
	fyne.Do(func() {
		popup.ensureWindow()
		popup.headline.SetText(headline(countdownSeconds))
		popup.detail.SetText(detail(info))
		popup.window.Show()
		popup.window.RequestFocus()
	})
}

// SetCountdown updates the displayed countdown.
func (popup *Window) SetCountdown(seconds int) {
	fyne.Do(func() {
		if popup.headline == nil {
			return
		}
		popup.headline.SetText(headline(seconds))
	})
}

// Hide removes the popup from screen.
func (popup *Window) Hide() {
	fyne.Do(func() {
		if popup.window != nil {
			popup.window.Hide()
		}
	})
}

func (popup *Window) ensureWindow() {
	if popup.window != nil {
		return
	}

	window := popup.app.NewWindow("EyeDoro")
	window.SetFixedSize(true)
	window.SetCloseIntercept(window.Hide)

	popup.headline = widget.NewLabelWithStyle(headline(0), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	popup.detail = widget.NewLabel("Take a break and rest your eyes")

	closeButton := widget.NewButtonWithIcon("", theme.CancelIcon(), window.Hide)
	closeButton.Importance = widget.LowImportance

	startNow := widget.NewButton("Start now", popup.action(func() {
		if popup.callbacks.OnStartNow != nil {
			popup.callbacks.OnStartNow()
		}
	}))
	startNow.Importance = widget.HighImportance
	addMinute := widget.NewButton("+1 min", popup.action(func() {
		if popup.callbacks.OnAddTime != nil {
			popup.callbacks.OnAddTime(60)
		}
	}))
	addFive := widget.NewButton("+5 min", popup.action(func() {
		if popup.callbacks.OnAddTime != nil {
			popup.callbacks.OnAddTime(300)
		}
	}))
	skip := widget.NewButton("Skip", popup.action(func() {
		if popup.callbacks.OnSkip != nil {
			popup.callbacks.OnSkip()
		}
	}))
	skip.Importance = widget.LowImportance

	header := container.NewBorder(nil, nil, nil, closeButton, popup.headline)
	buttons := container.NewHBox(startNow, addMinute, addFive, layout.NewSpacer(), skip)
	window.SetContent(container.NewPadded(container.NewVBox(header, popup.detail, buttons)))
	window.Resize(fyne.NewSize(380, 140))
	window.CenterOnScreen()
	popup.window = window
}

// action hides the popup and runs handler away from the UI thread.
func (popup *Window) action(handler func()) func() {
	return func() {
		popup.window.Hide()
		go handler()
	}
}

func headline(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("Almost time - %d:%02d", seconds/60, seconds%60)
}

func detail(info broadcast.PopupInfo) string {
	minutes := int(info.BreakDuration.Minutes() + 0.5)
	if minutes < 1 {
		return "Take a break and rest your eyes"
	}
	return fmt.Sprintf("Take a %d minute break and rest your eyes", minutes)
}
