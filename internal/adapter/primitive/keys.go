package primitive

import (
	"fmt"
	"strings"
)

var keyAliases = map[string]string{
	"escape":     "esc",
	"return":     "enter",
	"control":    "ctrl",
	"command":    "cmd",
	"win":        "cmd",
	"meta":       "cmd",
	"super":      "cmd",
	"option":     "alt",
	"del":        "delete",
	"pgup":       "pageup",
	"pgdn":       "pagedown",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
	"spacebar":   "space",
	" ":          "space",
}

var namedKeys = map[string]bool{
	"enter": true, "esc": true, "tab": true, "space": true, "backspace": true,
	"delete": true, "insert": true, "home": true, "end": true, "pageup": true,
	"pagedown": true, "up": true, "down": true, "left": true, "right": true,
	"ctrl": true, "alt": true, "shift": true, "cmd": true,
}

const punctuationKeys = "-=,./;'[]\\`"

// NormalizeKey maps a key name to its canonical lower-case form and reports
// whether it is on the allow-list.
func NormalizeKey(key string) (string, bool) {
	k := strings.ToLower(key)
	if k != " " {
		k = strings.TrimSpace(k)
	}
	if alias, ok := keyAliases[k]; ok {
		k = alias
	}
	if namedKeys[k] {
		return k, true
	}
	if len(k) == 1 {
		c := k[0]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || strings.IndexByte(punctuationKeys, c) >= 0 {
			return k, true
		}
	}
	if len(k) >= 2 && k[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(k[1:], "%d", &n); err == nil && fmt.Sprint(n) == k[1:] && n >= 1 && n <= 12 {
			return k, true
		}
	}
	return "", false
}

// IsModifier reports whether a canonical key is held rather than tapped.
func IsModifier(key string) bool {
	switch key {
	case "ctrl", "alt", "shift", "cmd":
		return true
	}
	return false
}
