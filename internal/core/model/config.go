package model

import (
	"fmt"
	"strings"
	"time"
)

// Theme selects the visual theme of every surface.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// ParseTheme accepts a theme name in any case.
func ParseTheme(value string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(value))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	case ThemeAuto:
		return ThemeAuto, nil
	default:
		return "", fmt.Errorf("unknown theme %q", value)
	}
}

// Valid reports whether the theme is one of the known values.
func (theme Theme) Valid() bool {
	switch theme {
	case ThemeLight, ThemeDark, ThemeAuto:
		return true
	}
	return false
}

const (
	// MinWorkDuration is the shortest work phase the session clock accepts.
	MinWorkDuration = time.Minute
	// MinBreakDuration is the shortest break the session clock accepts.
	MinBreakDuration = 30 * time.Second

	DefaultWorkDuration      = 20 * time.Minute
	DefaultBreakDuration     = 5 * time.Minute
	DefaultNotifyBeforeBreak = 60 * time.Second
)

// SessionConfig holds the durations and behavioral flags of the work/break cycle.
type SessionConfig struct {
	WorkDuration      time.Duration
	BreakDuration     time.Duration
	NotifyBeforeBreak time.Duration
	NotifyEnabled     bool
	SoundEnabled      bool
	Theme             Theme
	AutoStart         bool
}

// DefaultSessionConfig returns the built-in configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		WorkDuration:      DefaultWorkDuration,
		BreakDuration:     DefaultBreakDuration,
		NotifyBeforeBreak: DefaultNotifyBeforeBreak,
		NotifyEnabled:     true,
		SoundEnabled:      true,
		Theme:             ThemeLight,
		AutoStart:         false,
	}
}

// Normalize replaces every invalid field with its default and returns the
// names of the fields it corrected.
func (config *SessionConfig) Normalize() []string {
	defaults := DefaultSessionConfig()
	var corrected []string

	if config.WorkDuration < MinWorkDuration {
		config.WorkDuration = defaults.WorkDuration
		corrected = append(corrected, "workDurationMs")
	}
	if config.BreakDuration < MinBreakDuration {
		config.BreakDuration = defaults.BreakDuration
		corrected = append(corrected, "breakDurationMs")
	}
	if config.NotifyBeforeBreak <= 0 {
		config.NotifyBeforeBreak = defaults.NotifyBeforeBreak
		corrected = append(corrected, "notifyBeforeBreakMs")
	}
	if !config.Theme.Valid() {
		config.Theme = defaults.Theme
		corrected = append(corrected, "theme")
	}
	return corrected
}

// Validate reports the first invariant the configuration violates.
func (config SessionConfig) Validate() error {
	if config.WorkDuration < MinWorkDuration {
		return fmt.Errorf("work duration %s is below the %s floor", config.WorkDuration, MinWorkDuration)
	}
	if config.BreakDuration < MinBreakDuration {
		return fmt.Errorf("break duration %s is below the %s floor", config.BreakDuration, MinBreakDuration)
	}
	if config.NotifyBeforeBreak <= 0 {
		return fmt.Errorf("notify lead %s must be positive", config.NotifyBeforeBreak)
	}
	if !config.Theme.Valid() {
		return fmt.Errorf("unknown theme %q", config.Theme)
	}
	return nil
}

// ConfigPatch is a partial SessionConfig. Nil fields are left untouched.
type ConfigPatch struct {
	WorkDuration      *time.Duration
	BreakDuration     *time.Duration
	NotifyBeforeBreak *time.Duration
	NotifyEnabled     *bool
	SoundEnabled      *bool
	Theme             *Theme
	AutoStart         *bool
}

// Empty reports whether the patch changes nothing.
func (patch ConfigPatch) Empty() bool {
	return patch.WorkDuration == nil && patch.BreakDuration == nil &&
		patch.NotifyBeforeBreak == nil && patch.NotifyEnabled == nil &&
		patch.SoundEnabled == nil && patch.Theme == nil && patch.AutoStart == nil
}

// Apply returns config with the patch's fields overlaid. The result is not
// normalized.
func (patch ConfigPatch) Apply(config SessionConfig) SessionConfig {
	if patch.WorkDuration != nil {
		config.WorkDuration = *patch.WorkDuration
	}
	if patch.BreakDuration != nil {
		config.BreakDuration = *patch.BreakDuration
	}
	if patch.NotifyBeforeBreak != nil {
		config.NotifyBeforeBreak = *patch.NotifyBeforeBreak
	}
	if patch.NotifyEnabled != nil {
		config.NotifyEnabled = *patch.NotifyEnabled
	}
	if patch.SoundEnabled != nil {
		config.SoundEnabled = *patch.SoundEnabled
	}
	if patch.Theme != nil {
		config.Theme = *patch.Theme
	}
	if patch.AutoStart != nil {
		config.AutoStart = *patch.AutoStart
	}
	return config
}

// Cue names an audio cue played on a session transition.
type Cue string

const (
	CueWarning      Cue = "warning"
	CueNotification Cue = "notification"
	CueSuccess      Cue = "success"
)
