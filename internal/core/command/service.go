// Package command is the externally invocable surface of the session clock.
// Every operation answers with a structured result instead of an error so
// the IPC server, the tray and the CLI can all render it the same way.
package command

import (
	"errors"
	"time"

	"eyedoro/internal/core/model"
	"eyedoro/internal/core/timekeeper"
	"eyedoro/internal/logger"
)

// Keeper is the session clock as seen by the command layer.
type Keeper interface {
	Snapshot() timekeeper.Snapshot
	WorkRemaining() time.Duration
	BreakRemaining() time.Duration
	TogglePause() (bool, error)
	Pause() error
	Resume() error
	TakeBreakNow() error
	EndBreakEarly() bool
	AddTime(seconds int) error
	SkipBreak() error
	ForceCloseAll() bool
	ApplyConfig(config model.SessionConfig)
}

// ConfigStore persists configuration edits.
type ConfigStore interface {
	Current() model.SessionConfig
	SaveFrom(config model.SessionConfig, origin string) error
}

// Autostart toggles launching at login.
type Autostart interface {
	SetAutostart(enabled bool) error
}

// Result is the generic command outcome.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SaveConfigResult carries the configuration in effect after saveConfig.
type SaveConfigResult struct {
	Success   bool       `json:"success"`
	Error     string     `json:"error,omitempty"`
	Config    ConfigView `json:"config"`
	Corrected []string   `json:"corrected,omitempty"`
}

// PauseResult reports the pause state after togglePause.
type PauseResult struct {
	Success bool   `json:"success"`
	Paused  bool   `json:"paused"`
	Error   string `json:"error,omitempty"`
}

// Status is the phase-derived view returned by getStatus.
type Status struct {
	IsWorking            bool             `json:"isWorking"`
	IsBreakActive        bool             `json:"isBreakActive"`
	IsPaused             bool             `json:"isPaused"`
	IsPreBreakWarning    bool             `json:"isPreBreakWarning"`
	Phase                timekeeper.Phase `json:"phase"`
	WorkTimeRemainingMs  uint64           `json:"workTimeRemainingMs"`
	BreakTimeRemainingMs uint64           `json:"breakTimeRemainingMs"`
}

// Service implements the command surface on top of a Keeper.
type Service struct {
	keeper    Keeper
	store     ConfigStore
	autostart Autostart
	log       *logger.Logger
}

// NewService wires the command surface. autostart may be nil.
func NewService(keeper Keeper, store ConfigStore, autostart Autostart, log *logger.Logger) *Service {
	return &Service{
		keeper:    keeper,
		store:     store,
		autostart: autostart,
		log:       log.Named("command"),
	}
}

// GetConfig returns the stored configuration.
func (service *Service) GetConfig() ConfigView {
	return ViewOf(service.store.Current())
}

// SaveConfig decodes a partial JSON config, applies it and persists it.
func (service *Service) SaveConfig(origin string, raw []byte) SaveConfigResult {
	patch, err := DecodePatch(raw)
	if err != nil {
		return SaveConfigResult{Error: err.Error(), Config: service.GetConfig()}
	}
	return service.SavePatch(origin, patch)
}

// SavePatch applies a typed patch. Invalid fields are replaced by their
// defaults and listed in Corrected.
func (service *Service) SavePatch(origin string, patch model.ConfigPatch) SaveConfigResult {
	current := service.store.Current()
	next := patch.Apply(current)
	corrected := next.Normalize()
	if len(corrected) > 0 {
		service.log.Warn("config from %s corrected: %v", origin, corrected)
	}

	if err := service.store.SaveFrom(next, origin); err != nil {
		service.log.Error("save config: %v", err)
		return SaveConfigResult{Error: err.Error(), Config: ViewOf(current)}
	}
	service.keeper.ApplyConfig(next)

	if next.AutoStart != current.AutoStart && service.autostart != nil {
		if err := service.autostart.SetAutostart(next.AutoStart); err != nil {
			service.log.Error("set autostart: %v", err)
		}
	}
	return SaveConfigResult{Success: true, Config: ViewOf(next), Corrected: corrected}
}

// GetWorkTimeRemainingMs returns the work time left in milliseconds.
func (service *Service) GetWorkTimeRemainingMs() uint64 {
	return durationMs(service.keeper.WorkRemaining())
}

// GetBreakTimeRemainingMs returns the break time left in milliseconds.
func (service *Service) GetBreakTimeRemainingMs() uint64 {
	return durationMs(service.keeper.BreakRemaining())
}

// GetStatus returns the phase flags and both remaining times.
func (service *Service) GetStatus() Status {
	return StatusOf(service.keeper.Snapshot())
}

// StatusOf derives a Status from a snapshot.
func StatusOf(snapshot timekeeper.Snapshot) Status {
	return Status{
		IsWorking:            snapshot.Phase == timekeeper.PhaseWorking,
		IsBreakActive:        snapshot.Phase == timekeeper.PhaseOnBreak,
		IsPaused:             snapshot.Phase == timekeeper.PhasePaused,
		IsPreBreakWarning:    snapshot.Phase == timekeeper.PhaseWorking && snapshot.Warning,
		Phase:                snapshot.Phase,
		WorkTimeRemainingMs:  durationMs(snapshot.WorkRemaining()),
		BreakTimeRemainingMs: durationMs(snapshot.BreakRemaining()),
	}
}

// TogglePause pauses or resumes.
func (service *Service) TogglePause() PauseResult {
	paused, err := service.keeper.TogglePause()
	if err != nil {
		return PauseResult{Paused: paused, Error: err.Error()}
	}
	return PauseResult{Success: true, Paused: paused}
}

// Pause stops the clock.
func (service *Service) Pause() Result {
	return resultOf(service.keeper.Pause())
}

// Resume starts a fresh work phase after a pause.
func (service *Service) Resume() Result {
	return resultOf(service.keeper.Resume())
}

// EndBreakEarly reports whether a break was active.
func (service *Service) EndBreakEarly() bool {
	return service.keeper.EndBreakEarly()
}

// ForceCloseAll always returns true.
func (service *Service) ForceCloseAll() bool {
	return service.keeper.ForceCloseAll()
}

// StartBreakNow starts a break. Being on break already counts as success.
func (service *Service) StartBreakNow() Result {
	err := service.keeper.TakeBreakNow()
	if errors.Is(err, timekeeper.ErrAlreadyOnBreak) {
		return Result{Success: true}
	}
	return resultOf(err)
}

// AddTime extends the running work phase. seconds is validated by ParseSeconds.
func (service *Service) AddTime(seconds any) Result {
	parsed, err := ParseSeconds(seconds)
	if err != nil {
		return Result{Error: err.Error()}
	}
	return resultOf(service.keeper.AddTime(parsed))
}

// SkipBreak restarts the work phase without a break.
func (service *Service) SkipBreak() Result {
	return resultOf(service.keeper.SkipBreak())
}

// Emergency runs the force-close path when a break is active. It reports
// whether it acted.
func (service *Service) Emergency() bool {
	if service.keeper.Snapshot().Phase != timekeeper.PhaseOnBreak {
		service.log.Debug("emergency shortcut ignored outside a break")
		return false
	}
	service.log.Warn("emergency shortcut, closing all break surfaces")
	return service.keeper.ForceCloseAll()
}

func resultOf(err error) Result {
	if err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true}
}
