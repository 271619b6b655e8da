// Package tray owns the system tray icon, tooltip and phase-dependent menu.
package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/systray"

	"eyedoro/internal/core/timekeeper"
	"eyedoro/resources"
)

// Callbacks defines tray action handlers. They run on the UI thread.
type Callbacks struct {
	OnEndBreakEarly func()
	OnTogglePause   func()
	OnTakeBreakNow  func()
	OnSettings      func()
	OnQuit          func()
}

// Action identifies a tray menu entry.
type Action int

const (
	ActionEndBreakEarly Action = iota
	ActionTogglePause
	ActionTakeBreakNow
	ActionSettings
	ActionQuit
)

type entry struct {
	action Action
	label  string
}

// Manager handles system tray state.
type Manager struct {
	app       desktop.App
	callbacks Callbacks
	phase     timekeeper.Phase
}

// New installs the tray menu for the idle phase.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{app: app, callbacks: callbacks, phase: timekeeper.PhaseIdle}
	manager.refresh()
	return manager
}

// SetTooltip replaces the tray tooltip.
func (manager *Manager) SetTooltip(text string) {
	fyne.Do(func() {
		systray.SetTooltip(text)
	})
}

// SetPhase rebuilds the menu and icon for phase.
func (manager *Manager) SetPhase(phase timekeeper.Phase) {
	fyne.Do(func() {
		if manager.phase == phase {
			return
		}
		manager.phase = phase
		manager.refresh()
	})
}

func (manager *Manager) refresh() {
	if manager.app == nil {
		return
	}

	title := fyne.NewMenuItem("Eye Doro", nil)
	title.Disabled = true
	items := []*fyne.MenuItem{title, fyne.NewMenuItemSeparator()}
	for _, item := range menuEntries(manager.phase) {
		if item.action == ActionQuit {
			items = append(items, fyne.NewMenuItemSeparator())
		}
		menuItem := fyne.NewMenuItem(item.label, manager.handler(item.action))
		if item.action == ActionQuit {
			// Quit is handled here; fyne's own quit item is suppressed.
			menuItem.IsQuit = true
		}
		items = append(items, menuItem)
	}

	manager.app.SetSystemTrayMenu(fyne.NewMenu("EyeDoro", items...))
	manager.app.SetSystemTrayIcon(resources.MustIcon(iconFor(manager.phase)))
}

func (manager *Manager) handler(action Action) func() {
	var callback func()
	switch action {
	case ActionEndBreakEarly:
		callback = manager.callbacks.OnEndBreakEarly
	case ActionTogglePause:
		callback = manager.callbacks.OnTogglePause
	case ActionTakeBreakNow:
		callback = manager.callbacks.OnTakeBreakNow
	case ActionSettings:
		callback = manager.callbacks.OnSettings
	case ActionQuit:
		callback = manager.callbacks.OnQuit
	}
	return func() {
		if callback != nil {
			callback()
		}
	}
}

// menuEntries lists the actions offered in phase. Settings are not
// reachable during a break.
func menuEntries(phase timekeeper.Phase) []entry {
	if phase == timekeeper.PhaseOnBreak {
		return []entry{
			{action: ActionEndBreakEarly, label: "End Break Early"},
			{action: ActionQuit, label: "Quit"},
		}
	}

	pauseLabel := "Pause"
	if phase == timekeeper.PhasePaused {
		pauseLabel = "Resume"
	}
	return []entry{
		{action: ActionTogglePause, label: pauseLabel},
		{action: ActionTakeBreakNow, label: "Take Break Now"},
		{action: ActionSettings, label: "Settings"},
		{action: ActionQuit, label: "Quit"},
	}
}

func iconFor(phase timekeeper.Phase) resources.IconKind {
	switch phase {
	case timekeeper.PhaseOnBreak:
		return resources.IconBreak
	case timekeeper.PhasePaused:
		return resources.IconPaused
	case timekeeper.PhaseIdle:
		return resources.IconApp
	default:
		return resources.IconWorking
	}
}
