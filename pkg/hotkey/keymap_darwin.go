//go:build darwin

package hotkey

import "golang.design/x/hotkey"

var modifierCodes = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"alt":   hotkey.ModOption,
	"shift": hotkey.ModShift,
	"win":   hotkey.ModCmd,
}
