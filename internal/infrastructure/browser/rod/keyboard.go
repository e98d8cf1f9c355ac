package rod

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"
)

// surface is the set of page operations the keyboard emulation drives.
type surface interface {
	newTab(ctx context.Context) error
	closeTab(ctx context.Context) error
	reload(ctx context.Context) error
	back(ctx context.Context) error
	forward(ctx context.Context) error
	navigate(ctx context.Context, target string) error
	combo(ctx context.Context, keys []string) error
	typeText(ctx context.Context, text string) error
}

type focus int

const (
	focusPage focus = iota
	focusAddress
	focusSearch
)

func (f focus) String() string {
	switch f {
	case focusAddress:
		return "address"
	case focusSearch:
		return "search"
	default:
		return "page"
	}
}

// keyboard emulates browser chrome shortcuts that CDP input events cannot
// reach (tabs, history, the address bar). Everything else goes to the page.
type keyboard struct {
	mu        sync.Mutex
	surface   surface
	searchURL string
	focus     focus
	buffer    strings.Builder
}

func newKeyboard(s surface, searchURL string) *keyboard {
	return &keyboard{surface: s, searchURL: searchURL}
}

func (k *keyboard) Hotkey(ctx context.Context, keys ...string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	switch chord(keys) {
	case "ctrl+t":
		k.reset(focusPage)
		return k.surface.newTab(ctx)
	case "ctrl+w":
		k.reset(focusPage)
		return k.surface.closeTab(ctx)
	case "f5", "ctrl+r":
		k.reset(focusPage)
		return k.surface.reload(ctx)
	case "alt+left":
		k.reset(focusPage)
		return k.surface.back(ctx)
	case "alt+right":
		k.reset(focusPage)
		return k.surface.forward(ctx)
	case "ctrl+l", "alt+d":
		k.reset(focusAddress)
		return nil
	case "ctrl+k", "ctrl+e":
		k.reset(focusSearch)
		return nil
	case "ctrl+a":
		if k.focus != focusPage {
			// select-all in the bar; the next write replaces the text
			k.buffer.Reset()
			return nil
		}
	}

	if k.focus != focusPage {
		k.reset(focusPage)
	}
	return k.surface.combo(ctx, keys)
}

func (k *keyboard) Write(ctx context.Context, text string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.focus != focusPage {
		k.buffer.WriteString(text)
		return nil
	}
	return k.surface.typeText(ctx, text)
}

func (k *keyboard) Press(ctx context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.focus == focusPage {
		if key == "f5" {
			return k.surface.reload(ctx)
		}
		return k.surface.combo(ctx, []string{key})
	}

	switch key {
	case "enter":
		return k.commit(ctx)
	case "esc":
		k.reset(focusPage)
		return nil
	case "backspace":
		s := k.buffer.String()
		if s != "" {
			_, size := utf8.DecodeLastRuneInString(s)
			k.buffer.Reset()
			k.buffer.WriteString(s[:len(s)-size])
		}
		return nil
	case "space":
		k.buffer.WriteByte(' ')
		return nil
	case "tab":
		k.reset(focusPage)
		return nil
	}
	if len(key) == 1 {
		k.buffer.WriteString(key)
	}
	return nil
}

func (k *keyboard) commit(ctx context.Context) error {
	text := strings.TrimSpace(k.buffer.String())
	mode := k.focus
	k.reset(focusPage)
	if text == "" {
		return nil
	}

	var target string
	switch mode {
	case focusAddress:
		target = resolveAddress(text, k.searchURL)
	default:
		target = searchFor(text, k.searchURL)
	}
	if err := k.surface.navigate(ctx, target); err != nil {
		return fmt.Errorf("commit %s bar: %w", mode, err)
	}
	return nil
}

func (k *keyboard) reset(f focus) {
	k.focus = f
	k.buffer.Reset()
}

// pending reports the focused bar and its buffered text.
func (k *keyboard) pending() (focus, string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.focus, k.buffer.String()
}

// chord renders a combo with cmd folded onto ctrl so mac-style shortcuts
// hit the same table.
func chord(keys []string) string {
	parts := make([]string, len(keys))
	for i, key := range keys {
		if key == "cmd" {
			key = "ctrl"
		}
		parts[i] = key
	}
	return strings.Join(parts, "+")
}

// resolveAddress turns address bar text into a URL, treating anything that
// does not look like a host as a search.
func resolveAddress(text, searchURL string) string {
	if strings.Contains(text, "://") || strings.HasPrefix(text, "about:") {
		return text
	}
	if strings.ContainsAny(text, " \t") {
		return searchFor(text, searchURL)
	}
	host := text
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if strings.Contains(host, ".") || strings.HasPrefix(host, "localhost") {
		return "https://" + text
	}
	return searchFor(text, searchURL)
}

func searchFor(term, searchURL string) string {
	return fmt.Sprintf(searchURL, url.QueryEscape(term))
}
