package matcher

import (
	"regexp"
	"strings"

	"gui-agent/internal/application/port/input"
	"gui-agent/internal/domain/entity"
)

var _ input.PatternMatcher = (*Matcher)(nil)

// Recognizer turns one kind of common request into an action without asking
// the model. It must not perform I/O.
type Recognizer interface {
	Name() string
	Recognize(task string) (entity.ActionDescriptor, bool)
}

// Matcher evaluates recognizers in priority order; the first hit wins.
type Matcher struct {
	recognizers []Recognizer
}

func New() *Matcher {
	return NewWith(URLRecognizer{}, SearchRecognizer{}, NewShortcutRecognizer(DefaultShortcuts()))
}

func NewWith(recognizers ...Recognizer) *Matcher {
	return &Matcher{recognizers: recognizers}
}

func (m *Matcher) Match(task entity.TaskRequest) (entity.ActionDescriptor, bool) {
	text := strings.TrimSpace(task.String())
	if text == "" {
		return entity.ActionDescriptor{}, false
	}
	for _, r := range m.recognizers {
		if a, ok := r.Recognize(text); ok {
			return a, true
		}
	}
	return entity.ActionDescriptor{}, false
}

var (
	urlPattern      = regexp.MustCompile(`(?i)(https?://[^\s]+|www\.[^\s]+)`)
	navigateKeyword = regexp.MustCompile(`(?i)\b(open|go\s+to|navigate|visit)\b`)
)

type URLRecognizer struct{}

func (URLRecognizer) Name() string { return "url" }

func (URLRecognizer) Recognize(task string) (entity.ActionDescriptor, bool) {
	if !navigateKeyword.MatchString(task) {
		return entity.ActionDescriptor{}, false
	}
	url := strings.TrimRight(urlPattern.FindString(task), `.,;:!?)]}"'`)
	if url == "" || strings.HasSuffix(url, "://") {
		return entity.ActionDescriptor{}, false
	}
	return entity.ActionDescriptor{
		Description: "Navigate to " + url,
		Script: entity.Sequence(
			entity.Call(entity.PrimitiveHotkey, "ctrl", "l"),
			entity.Call(entity.PrimitiveWrite, url),
			entity.Call(entity.PrimitivePress, "enter"),
		),
		Confidence:       entity.ConfidenceHigh,
		ExpectedResult:   "The browser loads " + url,
		VerificationHint: "Address bar shows " + url,
	}, true
}

var searchPattern = regexp.MustCompile(`(?i)\b(?:search|google)\b(?:\s+(?:for|about)\b)?(.*)$`)

type SearchRecognizer struct{}

func (SearchRecognizer) Name() string { return "search" }

// Recognize falls through when the request names no search term.
func (SearchRecognizer) Recognize(task string) (entity.ActionDescriptor, bool) {
	m := searchPattern.FindStringSubmatch(task)
	if m == nil {
		return entity.ActionDescriptor{}, false
	}
	term := strings.Trim(strings.TrimSpace(m[1]), `"'.!?`)
	term = strings.TrimSpace(term)
	if term == "" {
		return entity.ActionDescriptor{}, false
	}
	return entity.ActionDescriptor{
		Description: "Search for " + term,
		Script: entity.Sequence(
			entity.Call(entity.PrimitiveHotkey, "ctrl", "k"),
			entity.Call(entity.PrimitiveWrite, term),
			entity.Call(entity.PrimitivePress, "enter"),
		),
		Confidence:       entity.ConfidenceHigh,
		ExpectedResult:   "Search results for " + term,
		VerificationHint: "Results page lists matches for " + term,
	}, true
}

type Shortcut struct {
	Name        string
	Pattern     *regexp.Regexp
	Description string
	Keys        []string
	Expected    string
}

// DefaultShortcuts is the fixed-action table. Patterns must match the whole
// request, so compound tasks such as "open new tab and go to mail" go to the
// planner instead.
func DefaultShortcuts() []Shortcut {
	return []Shortcut{
		{
			Name:        "new_tab",
			Pattern:     regexp.MustCompile(`^(?:open|create)?\s*(?:a\s+)?new\s+(?:browser\s+)?tab$`),
			Description: "Open new tab",
			Keys:        []string{"ctrl", "t"},
			Expected:    "A new empty tab is focused",
		},
		{
			Name:        "close_tab",
			Pattern:     regexp.MustCompile(`^close\s+(?:the\s+|this\s+)?(?:current\s+)?tab$`),
			Description: "Close current tab",
			Keys:        []string{"ctrl", "w"},
			Expected:    "The current tab is closed",
		},
		{
			Name:        "refresh",
			Pattern:     regexp.MustCompile(`^(?:refresh|reload)(?:\s+(?:the|this))?(?:\s+page)?$`),
			Description: "Refresh page",
			Keys:        []string{"f5"},
			Expected:    "The page reloads",
		},
		{
			Name:        "back",
			Pattern:     regexp.MustCompile(`^(?:(?:go|navigate)\s+)?back(?:\s+a\s+page)?$`),
			Description: "Go back",
			Keys:        []string{"alt", "left"},
			Expected:    "The previous page is shown",
		},
		{
			Name:        "forward",
			Pattern:     regexp.MustCompile(`^(?:(?:go|navigate)\s+)?forward(?:\s+a\s+page)?$`),
			Description: "Go forward",
			Keys:        []string{"alt", "right"},
			Expected:    "The next page in history is shown",
		},
	}
}

type ShortcutRecognizer struct {
	shortcuts []Shortcut
}

func NewShortcutRecognizer(shortcuts []Shortcut) ShortcutRecognizer {
	return ShortcutRecognizer{shortcuts: shortcuts}
}

func (ShortcutRecognizer) Name() string { return "shortcut" }

func (r ShortcutRecognizer) Recognize(task string) (entity.ActionDescriptor, bool) {
	text := normalize(task)
	for _, s := range r.shortcuts {
		if s.Pattern.MatchString(text) {
			return entity.ActionDescriptor{
				Description:    s.Description,
				Script:         entity.Call(entity.PrimitiveHotkey, s.Keys...),
				Confidence:     entity.ConfidenceHigh,
				ExpectedResult: s.Expected,
			}, true
		}
	}
	return entity.ActionDescriptor{}, false
}

var spaces = regexp.MustCompile(`\s+`)

func normalize(task string) string {
	s := strings.ToLower(strings.TrimSpace(task))
	s = strings.TrimRight(s, ".!")
	s = strings.TrimPrefix(s, "please ")
	s = strings.TrimSuffix(s, " please")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
