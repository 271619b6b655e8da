package overlay

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"eyedoro/internal/core/model"
)

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "5:00", formatClock(5*time.Minute))
	assert.Equal(t, "0:59", formatClock(58*time.Second+100*time.Millisecond))
	assert.Equal(t, "12:05", formatClock(12*time.Minute+5*time.Second))
	assert.Equal(t, "0:00", formatClock(-time.Second))
}

func TestProgressOf(t *testing.T) {
	assert.Equal(t, 0.0, progressOf(5*time.Minute, 5*time.Minute))
	assert.Equal(t, 0.5, progressOf(4*time.Minute, 2*time.Minute))
	assert.Equal(t, 1.0, progressOf(time.Minute, 0))
	assert.Equal(t, 1.0, progressOf(0, time.Minute))
	assert.Equal(t, 0.0, progressOf(time.Minute, 2*time.Minute))
	assert.Equal(t, 1.0, progressOf(time.Minute, -time.Second))
}

func TestPaletteFollowsTheme(t *testing.T) {
	dark := paletteFor(model.ThemeDark, false)
	light := paletteFor(model.ThemeLight, true)
	assert.NotEqual(t, dark.background, light.background)

	assert.Equal(t, dark, paletteFor(model.ThemeAuto, true))
	assert.Equal(t, light, paletteFor(model.ThemeAuto, false))
	assert.Equal(t, color.NRGBA{R: 76, G: 175, B: 80, A: 255}, light.accent)
}
