package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeReplacesInvalidFields(t *testing.T) {
	config := SessionConfig{
		WorkDuration:      59 * time.Second,
		BreakDuration:     10 * time.Second,
		NotifyBeforeBreak: 0,
		Theme:             "sepia",
		NotifyEnabled:     false,
	}

	corrected := config.Normalize()

	assert.Equal(t, []string{"workDurationMs", "breakDurationMs", "notifyBeforeBreakMs", "theme"}, corrected)
	assert.Equal(t, DefaultWorkDuration, config.WorkDuration)
	assert.Equal(t, DefaultBreakDuration, config.BreakDuration)
	assert.Equal(t, DefaultNotifyBeforeBreak, config.NotifyBeforeBreak)
	assert.Equal(t, ThemeLight, config.Theme)
	assert.False(t, config.NotifyEnabled)
	require.NoError(t, config.Validate())
}

func TestNormalizeKeepsFloorValues(t *testing.T) {
	config := DefaultSessionConfig()
	config.WorkDuration = MinWorkDuration
	config.BreakDuration = MinBreakDuration

	assert.Empty(t, config.Normalize())
	assert.Equal(t, MinWorkDuration, config.WorkDuration)
	assert.Equal(t, MinBreakDuration, config.BreakDuration)
}

func TestValidate(t *testing.T) {
	config := DefaultSessionConfig()
	require.NoError(t, config.Validate())

	config.WorkDuration = 30 * time.Second
	assert.ErrorContains(t, config.Validate(), "work duration")

	config = DefaultSessionConfig()
	config.Theme = "neon"
	assert.ErrorContains(t, config.Validate(), "theme")
}

func TestParseTheme(t *testing.T) {
	theme, err := ParseTheme(" Dark ")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	_, err = ParseTheme("purple")
	assert.Error(t, err)
	assert.False(t, Theme("Dark").Valid())
}

func TestPatchApply(t *testing.T) {
	work := 25 * time.Minute
	theme := ThemeDark
	sound := false
	patch := ConfigPatch{WorkDuration: &work, Theme: &theme, SoundEnabled: &sound}

	assert.False(t, patch.Empty())
	assert.True(t, ConfigPatch{}.Empty())

	base := DefaultSessionConfig()
	applied := patch.Apply(base)
	assert.Equal(t, work, applied.WorkDuration)
	assert.Equal(t, ThemeDark, applied.Theme)
	assert.False(t, applied.SoundEnabled)
	assert.Equal(t, base.BreakDuration, applied.BreakDuration)
	assert.Equal(t, DefaultWorkDuration, base.WorkDuration)
}
