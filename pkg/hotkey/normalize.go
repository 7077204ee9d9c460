// Package hotkey binds global key chords to actions.
package hotkey

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// modifierAliases maps accepted modifier spellings to canonical names.
var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"shift":   "shift",
	"win":     "win",
	"super":   "win",
	"cmd":     "win",
}

// Chord is a parsed key combination: canonical modifier names and key names,
// each sorted.
type Chord struct {
	Mods []string
	Keys []string
}

// Normalize parses a chord spec such as "<ctrl>+x" into its canonical form.
// Modifiers are written in angle brackets, keys bare, tokens joined by sep.
// Unknown tokens are dropped with a warning so differently ordered or
// sloppily written specs still resolve to the same chord.
func Normalize(spec, sep string) (Chord, error) {
	if sep == "" {
		sep = "+"
	}
	var chord Chord
	for _, token := range strings.Split(spec, sep) {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, "<") && strings.HasSuffix(token, ">") {
			name := token[1 : len(token)-1]
			canonical, ok := modifierAliases[name]
			if !ok {
				slog.Warn("Hotkey: dropping unknown modifier", "token", token, "spec", spec)
				continue
			}
			if !contains(chord.Mods, canonical) {
				chord.Mods = append(chord.Mods, canonical)
			}
			continue
		}
		if _, ok := keyCodes[token]; !ok {
			slog.Warn("Hotkey: dropping unknown key", "token", token, "spec", spec)
			continue
		}
		if !contains(chord.Keys, token) {
			chord.Keys = append(chord.Keys, token)
		}
	}
	if len(chord.Keys) == 0 {
		return Chord{}, fmt.Errorf("chord %q has no usable key", spec)
	}
	sort.Strings(chord.Mods)
	sort.Strings(chord.Keys)
	return chord, nil
}

// Canonical renders the chord in its normalized spec form, modifiers first.
func (c Chord) Canonical(sep string) string {
	if sep == "" {
		sep = "+"
	}
	parts := make([]string, 0, len(c.Mods)+len(c.Keys))
	for _, m := range c.Mods {
		parts = append(parts, "<"+m+">")
	}
	parts = append(parts, c.Keys...)
	return strings.Join(parts, sep)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
