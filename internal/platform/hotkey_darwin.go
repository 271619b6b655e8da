//go:build darwin

package platform

import "golang.design/x/hotkey"

func emergencyModifiers() []hotkey.Modifier {
	return []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModOption, hotkey.ModShift}
}
