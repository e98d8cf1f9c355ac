package rod

import (
	"fmt"

	"github.com/go-rod/rod/lib/input"
)

var keyMap = map[string]input.Key{
	"enter":     input.Enter,
	"esc":       input.Escape,
	"tab":       input.Tab,
	"space":     input.Space,
	"backspace": input.Backspace,
	"delete":    input.Delete,
	"insert":    input.Insert,
	"home":      input.Home,
	"end":       input.End,
	"pageup":    input.PageUp,
	"pagedown":  input.PageDown,
	"up":        input.ArrowUp,
	"down":      input.ArrowDown,
	"left":      input.ArrowLeft,
	"right":     input.ArrowRight,
	"ctrl":      input.ControlLeft,
	"alt":       input.AltLeft,
	"shift":     input.ShiftLeft,
	"cmd":       input.MetaLeft,

	"f1": input.F1, "f2": input.F2, "f3": input.F3, "f4": input.F4,
	"f5": input.F5, "f6": input.F6, "f7": input.F7, "f8": input.F8,
	"f9": input.F9, "f10": input.F10, "f11": input.F11, "f12": input.F12,

	"a": input.KeyA, "b": input.KeyB, "c": input.KeyC, "d": input.KeyD,
	"e": input.KeyE, "f": input.KeyF, "g": input.KeyG, "h": input.KeyH,
	"i": input.KeyI, "j": input.KeyJ, "k": input.KeyK, "l": input.KeyL,
	"m": input.KeyM, "n": input.KeyN, "o": input.KeyO, "p": input.KeyP,
	"q": input.KeyQ, "r": input.KeyR, "s": input.KeyS, "t": input.KeyT,
	"u": input.KeyU, "v": input.KeyV, "w": input.KeyW, "x": input.KeyX,
	"y": input.KeyY, "z": input.KeyZ,

	"0": input.Digit0, "1": input.Digit1, "2": input.Digit2, "3": input.Digit3,
	"4": input.Digit4, "5": input.Digit5, "6": input.Digit6, "7": input.Digit7,
	"8": input.Digit8, "9": input.Digit9,

	"-":  input.Minus,
	"=":  input.Equal,
	",":  input.Comma,
	".":  input.Period,
	"/":  input.Slash,
	";":  input.Semicolon,
	"'":  input.Quote,
	"[":  input.BracketLeft,
	"]":  input.BracketRight,
	"\\": input.Backslash,
	"`":  input.Backquote,
}

// inputKeys maps normalized key names onto CDP key definitions.
func inputKeys(names []string) ([]input.Key, error) {
	keys := make([]input.Key, 0, len(names))
	for _, name := range names {
		k, ok := keyMap[name]
		if !ok {
			return nil, fmt.Errorf("no key mapping for %q", name)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func isModifierName(name string) bool {
	switch name {
	case "ctrl", "alt", "shift", "cmd":
		return true
	}
	return false
}
