package preferences

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"eyedoro/internal/core/model"
)

// Slider bounds of the settings form, in minutes.
const (
	MinWorkMinutes  = 1
	MaxWorkMinutes  = 120
	MinBreakMinutes = 1
	MaxBreakMinutes = 30
)

// Theme labels offered by the form.
const (
	ThemeLabelLight  = "Light"
	ThemeLabelDark   = "Dark"
	ThemeLabelSystem = "System"
)

// ThemeLabels lists the form's theme choices in display order.
var ThemeLabels = []string{ThemeLabelLight, ThemeLabelDark, ThemeLabelSystem}

// Form holds the editable values as the widgets present them. Base is the
// configuration the form was loaded from; Patch only carries fields whose
// presented value differs from it, so values the widgets cannot show
// exactly survive a save.
type Form struct {
	Base          model.SessionConfig
	WorkMinutes   float64
	BreakMinutes  float64
	NotifySeconds string
	NotifyEnabled bool
	SoundEnabled  bool
	AutoStart     bool
	Theme         string
}

// FormOf renders config into form values.
func FormOf(config model.SessionConfig) Form {
	return Form{
		Base:          config,
		WorkMinutes:   clampMinutes(config.WorkDuration, MinWorkMinutes, MaxWorkMinutes),
		BreakMinutes:  clampMinutes(config.BreakDuration, MinBreakMinutes, MaxBreakMinutes),
		NotifySeconds: strconv.Itoa(int(config.NotifyBeforeBreak / time.Second)),
		NotifyEnabled: config.NotifyEnabled,
		SoundEnabled:  config.SoundEnabled,
		AutoStart:     config.AutoStart,
		Theme:         ThemeLabel(config.Theme),
	}
}

// Patch converts the edited fields into a patch. A malformed lead time is
// an error.
func (form Form) Patch() (model.ConfigPatch, error) {
	loaded := FormOf(form.Base)
	var patch model.ConfigPatch

	if form.NotifySeconds != loaded.NotifySeconds {
		seconds, err := strconv.Atoi(strings.TrimSpace(form.NotifySeconds))
		if err != nil || seconds <= 0 {
			return model.ConfigPatch{}, fmt.Errorf("notify before break: %q is not a positive number of seconds", form.NotifySeconds)
		}
		lead := time.Duration(seconds) * time.Second
		patch.NotifyBeforeBreak = &lead
	}
	if math.Round(form.WorkMinutes) != loaded.WorkMinutes {
		work := time.Duration(math.Round(form.WorkMinutes)) * time.Minute
		patch.WorkDuration = &work
	}
	if math.Round(form.BreakMinutes) != loaded.BreakMinutes {
		breakDuration := time.Duration(math.Round(form.BreakMinutes)) * time.Minute
		patch.BreakDuration = &breakDuration
	}
	if form.NotifyEnabled != loaded.NotifyEnabled {
		notify := form.NotifyEnabled
		patch.NotifyEnabled = &notify
	}
	if form.SoundEnabled != loaded.SoundEnabled {
		sound := form.SoundEnabled
		patch.SoundEnabled = &sound
	}
	if form.AutoStart != loaded.AutoStart {
		autoStart := form.AutoStart
		patch.AutoStart = &autoStart
	}
	if form.Theme != loaded.Theme {
		theme := ThemeOf(form.Theme)
		patch.Theme = &theme
	}
	return patch, nil
}

// ThemeLabel maps a theme to its form label.
func ThemeLabel(theme model.Theme) string {
	switch theme {
	case model.ThemeDark:
		return ThemeLabelDark
	case model.ThemeAuto:
		return ThemeLabelSystem
	default:
		return ThemeLabelLight
	}
}

// ThemeOf maps a form label back to a theme.
func ThemeOf(label string) model.Theme {
	switch label {
	case ThemeLabelDark:
		return model.ThemeDark
	case ThemeLabelSystem:
		return model.ThemeAuto
	default:
		return model.ThemeLight
	}
}

func clampMinutes(d time.Duration, low, high float64) float64 {
	minutes := math.Round(d.Minutes())
	return math.Max(low, math.Min(high, minutes))
}
