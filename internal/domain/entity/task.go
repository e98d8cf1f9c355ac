package entity

import (
	"fmt"
	"strings"
	"time"
)

// TaskRequest is the free-text task a run works on. It is a value type and
// never changes for the lifetime of a run.
type TaskRequest string

func NewTaskRequest(text string) TaskRequest {
	return TaskRequest(strings.TrimSpace(text))
}

func (t TaskRequest) String() string {
	return string(t)
}

func (t TaskRequest) Empty() bool {
	return strings.TrimSpace(string(t)) == ""
}

type OutcomeKind string

const (
	OutcomeCompleted     OutcomeKind = "completed"
	OutcomeFailed        OutcomeKind = "failed"
	OutcomeSafetyStopped OutcomeKind = "safety_stopped"
)

type TerminalOutcome struct {
	Kind   OutcomeKind `json:"kind"`
	Reason string      `json:"reason"`
}

func Completed(summary string) TerminalOutcome {
	return TerminalOutcome{Kind: OutcomeCompleted, Reason: summary}
}

func Failed(reason string) TerminalOutcome {
	return TerminalOutcome{Kind: OutcomeFailed, Reason: reason}
}

func SafetyStopped(reason string) TerminalOutcome {
	return TerminalOutcome{Kind: OutcomeSafetyStopped, Reason: reason}
}

// ExitCode maps the outcome to the process exit status of the command surface.
func (o TerminalOutcome) ExitCode() int {
	switch o.Kind {
	case OutcomeCompleted:
		return 0
	case OutcomeFailed:
		return 1
	default:
		return 2
	}
}

type RunReport struct {
	RunID     string          `json:"run_id"`
	Task      TaskRequest     `json:"task"`
	Outcome   TerminalOutcome `json:"outcome"`
	History   []HistoryEntry  `json:"history"`
	Retries   int             `json:"retries"`
	FastPath  bool            `json:"fast_path"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
}

func (r *RunReport) Summary() string {
	switch r.Outcome.Kind {
	case OutcomeCompleted:
		return fmt.Sprintf("Completed: %s", r.Outcome.Reason)
	case OutcomeFailed:
		return fmt.Sprintf("Failed after %d retries: %s", r.Retries, r.Outcome.Reason)
	default:
		return fmt.Sprintf("Safety stop after %d history entries: %s", len(r.History), r.Outcome.Reason)
	}
}
