//go:build linux

package hotkey

import "golang.design/x/hotkey"

// Mod1 is Alt and Mod4 is Super on stock X11 modifier maps.
var modifierCodes = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"alt":   hotkey.Mod1,
	"shift": hotkey.ModShift,
	"win":   hotkey.Mod4,
}
