package entity

import "time"

type EntryKind string

const (
	EntryDecision EntryKind = "decision"
	EntryAction   EntryKind = "action"
	EntryResult   EntryKind = "result"
)

type HistoryEntry struct {
	Seq        int               `json:"seq"`
	Kind       EntryKind         `json:"kind"`
	Role       Role              `json:"role"`
	Decision   *Decision         `json:"decision,omitempty"`
	Action     *ActionDescriptor `json:"action,omitempty"`
	Result     *ExecutionResult  `json:"result,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// History is the append-only, run-scoped record of everything the run did.
// Entries handed out are copies; recorded entries never change.
type History struct {
	entries []HistoryEntry
}

func NewHistory() *History {
	return &History{}
}

func (h *History) AppendDecision(role Role, d Decision) HistoryEntry {
	c := d.clone()
	return h.append(HistoryEntry{Kind: EntryDecision, Role: role, Decision: &c})
}

func (h *History) AppendAction(role Role, a ActionDescriptor) HistoryEntry {
	return h.append(HistoryEntry{Kind: EntryAction, Role: role, Action: &a})
}

func (h *History) AppendResult(r ExecutionResult) HistoryEntry {
	return h.append(HistoryEntry{Kind: EntryResult, Role: RoleRunner, Result: &r})
}

func (h *History) append(e HistoryEntry) HistoryEntry {
	e.Seq = len(h.entries) + 1
	e.RecordedAt = time.Now()
	h.entries = append(h.entries, e)
	return copyEntry(e)
}

func (h *History) Len() int {
	return len(h.entries)
}

// Recent returns copies of the last n entries, oldest first.
func (h *History) Recent(n int) []HistoryEntry {
	if n <= 0 {
		return nil
	}
	start := len(h.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]HistoryEntry, 0, len(h.entries)-start)
	for _, e := range h.entries[start:] {
		out = append(out, copyEntry(e))
	}
	return out
}

func (h *History) Entries() []HistoryEntry {
	return h.Recent(len(h.entries))
}

func copyEntry(e HistoryEntry) HistoryEntry {
	if e.Decision != nil {
		d := e.Decision.clone()
		e.Decision = &d
	}
	if e.Action != nil {
		a := *e.Action
		e.Action = &a
	}
	if e.Result != nil {
		r := *e.Result
		e.Result = &r
	}
	return e
}
