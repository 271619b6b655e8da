// Package preferences is the settings window.
package preferences

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"eyedoro/internal/core/command"
	"eyedoro/internal/core/model"
	"eyedoro/internal/storage"
)

// Origin tags configuration saves made from this window.
const Origin = "settings"

// Backend is the slice of the command surface the window needs.
type Backend interface {
	GetConfig() command.ConfigView
	SavePatch(origin string, patch model.ConfigPatch) command.SaveConfigResult
	GetStatus() command.Status
}

// Window handles the preferences UI.
type Window struct {
	window  fyne.Window
	backend Backend

	status     *widget.Label
	work       *widget.Slider
	workLabel  *widget.Label
	brk        *widget.Slider
	breakLabel *widget.Label
	notifyLead *widget.Entry
	notify     *widget.Check
	sound      *widget.Check
	autoStart  *widget.Check
	theme      *widget.RadioGroup
	base       model.SessionConfig
}

// New creates a hidden preferences window.
func New(app fyne.App, backend Backend) *Window {
	window := app.NewWindow("EyeDoro Settings")
	prefs := &Window{window: window, backend: backend}

	prefs.status = widget.NewLabel("")
	prefs.workLabel = widget.NewLabel("")
	prefs.work = widget.NewSlider(MinWorkMinutes, MaxWorkMinutes)
	prefs.work.Step = 1
	prefs.work.OnChanged = func(value float64) {
		prefs.workLabel.SetText(fmt.Sprintf("Work duration: %.0f minutes", value))
	}
	prefs.breakLabel = widget.NewLabel("")
	prefs.brk = widget.NewSlider(MinBreakMinutes, MaxBreakMinutes)
	prefs.brk.Step = 1
	prefs.brk.OnChanged = func(value float64) {
		prefs.breakLabel.SetText(fmt.Sprintf("Break duration: %.0f minutes", value))
	}
	prefs.notifyLead = widget.NewEntry()
	prefs.notify = widget.NewCheck("Show a warning before each break", nil)
	prefs.sound = widget.NewCheck("Play sounds", nil)
	prefs.autoStart = widget.NewCheck("Launch at login", nil)
	prefs.theme = widget.NewRadioGroup(ThemeLabels, nil)
	prefs.theme.Horizontal = true

	heading := func(text string) *widget.Label {
		return widget.NewLabelWithStyle(text, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}
	form := container.NewVBox(
		heading("Current Status"),
		prefs.status,
		heading("Timer Settings"),
		prefs.workLabel, prefs.work,
		prefs.breakLabel, prefs.brk,
		heading("Notifications"),
		prefs.notify,
		container.NewBorder(nil, nil, widget.NewLabel("Warn this many seconds ahead"), nil, prefs.notifyLead),
		prefs.sound,
		heading("Appearance"),
		prefs.theme,
		heading("Startup"),
		prefs.autoStart,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	saveButton.Importance = widget.HighImportance
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, container.NewVScroll(form)))
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(440, 560))
	return prefs
}

// Show reloads the stored settings and displays the window.
func (prefs *Window) Show() {
	prefs.load(FormOf(prefs.backend.GetConfig().Config()))
	prefs.status.SetText(statusLine(prefs.backend.GetStatus()))
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// Hide closes the window without saving.
func (prefs *Window) Hide() {
	prefs.window.Hide()
}

// ThemeChanged follows theme changes made elsewhere. Changes this window
// originated are ignored.
func (prefs *Window) ThemeChanged(change storage.ThemeChange) {
	if change.Origin == Origin {
		return
	}
	fyne.Do(func() {
		prefs.theme.SetSelected(ThemeLabel(change.Theme))
	})
}

func (prefs *Window) load(form Form) {
	prefs.base = form.Base
	prefs.work.SetValue(form.WorkMinutes)
	prefs.brk.SetValue(form.BreakMinutes)
	prefs.notifyLead.SetText(form.NotifySeconds)
	prefs.notify.SetChecked(form.NotifyEnabled)
	prefs.sound.SetChecked(form.SoundEnabled)
	prefs.autoStart.SetChecked(form.AutoStart)
	prefs.theme.SetSelected(form.Theme)
}

func (prefs *Window) current() Form {
	return Form{
		Base:          prefs.base,
		WorkMinutes:   prefs.work.Value,
		BreakMinutes:  prefs.brk.Value,
		NotifySeconds: prefs.notifyLead.Text,
		NotifyEnabled: prefs.notify.Checked,
		SoundEnabled:  prefs.sound.Checked,
		AutoStart:     prefs.autoStart.Checked,
		Theme:         prefs.theme.Selected,
	}
}

func (prefs *Window) handleSave() {
	patch, err := prefs.current().Patch()
	if err != nil {
		dialog.ShowError(err, prefs.window)
		return
	}

	result := prefs.backend.SavePatch(Origin, patch)
	if !result.Success {
		dialog.ShowError(errors.New(result.Error), prefs.window)
		prefs.load(FormOf(result.Config.Config()))
		return
	}
	if len(result.Corrected) > 0 {
		prefs.load(FormOf(result.Config.Config()))
		dialog.ShowInformation("Settings adjusted",
			"Reset to defaults: "+strings.Join(result.Corrected, ", "), prefs.window)
		return
	}
	prefs.window.Hide()
}

func statusLine(status command.Status) string {
	switch {
	case status.IsBreakActive:
		return "On break, " + remainingText(status.BreakTimeRemainingMs) + " left"
	case status.IsPaused:
		return "Paused"
	case status.IsWorking:
		return "Working, next break in " + remainingText(status.WorkTimeRemainingMs)
	default:
		return "Starting"
	}
}

func remainingText(ms uint64) string {
	total := time.Duration(ms) * time.Millisecond
	seconds := int((total + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
