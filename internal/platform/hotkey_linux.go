//go:build linux

package platform

import "golang.design/x/hotkey"

// Mod1 is Alt on common X11 keymaps.
func emergencyModifiers() []hotkey.Modifier {
	return []hotkey.Modifier{hotkey.ModCtrl, hotkey.Mod1, hotkey.ModShift}
}
