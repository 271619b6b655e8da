// Package appearance applies the configured light or dark theme to the app.
package appearance

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"eyedoro/internal/core/model"
)

// forced pins the default theme to one variant regardless of the OS setting.
type forced struct {
	fyne.Theme
	variant fyne.ThemeVariant
}

func (t *forced) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.Theme.Color(name, t.variant)
}

// For returns the fyne theme for selected. Auto follows the OS.
func For(selected model.Theme) fyne.Theme {
	switch selected {
	case model.ThemeDark:
		return &forced{Theme: theme.DefaultTheme(), variant: theme.VariantDark}
	case model.ThemeLight:
		return &forced{Theme: theme.DefaultTheme(), variant: theme.VariantLight}
	default:
		return theme.DefaultTheme()
	}
}

// Apply switches every window of app to selected.
func Apply(app fyne.App, selected model.Theme) {
	fyne.Do(func() {
		app.Settings().SetTheme(For(selected))
	})
}
