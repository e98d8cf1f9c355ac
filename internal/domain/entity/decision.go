package entity

import (
	"fmt"
	"strings"
)

type DecisionType string

const (
	DecisionPlan     DecisionType = "plan"
	DecisionDelegate DecisionType = "delegate"
	DecisionComplete DecisionType = "complete"
	DecisionError    DecisionType = "error"
)

// Decision is the tagged variant emitted by the Planner and the Verifier.
// Only the fields of the variant named by Type are meaningful.
type Decision struct {
	Type DecisionType `json:"type"`

	// Plan
	Steps []string `json:"steps,omitempty"`
	Next  string   `json:"next,omitempty"`

	// Delegate
	Instruction string `json:"instruction,omitempty"`
	Expected    string `json:"expected,omitempty"`

	// Complete
	Reason string `json:"reason,omitempty"`

	// Error
	Issue    string `json:"issue,omitempty"`
	Recovery string `json:"recovery,omitempty"`

	// Fallback marks decisions synthesized locally after a model fault.
	Fallback bool `json:"fallback,omitempty"`
}

func NewPlan(steps []string, next string) Decision {
	return Decision{Type: DecisionPlan, Steps: append([]string(nil), steps...), Next: next}
}

func NewDelegate(instruction, expected string) Decision {
	return Decision{Type: DecisionDelegate, Instruction: instruction, Expected: expected}
}

func NewComplete(reason string) Decision {
	return Decision{Type: DecisionComplete, Reason: reason}
}

func NewError(issue, recovery string) Decision {
	return Decision{Type: DecisionError, Issue: issue, Recovery: recovery}
}

// FallbackDelegate is the deterministic substitute for an unusable Planner or
// Verifier response: hand the whole task to the Executor again.
func FallbackDelegate(task TaskRequest) Decision {
	d := NewDelegate(task.String(), "Complete the requested task")
	d.Fallback = true
	return d
}

// Validate reports whether the variant carries the fields it needs.
func (d Decision) Validate() error {
	switch d.Type {
	case DecisionPlan:
		if strings.TrimSpace(d.Next) == "" {
			return fmt.Errorf("plan decision has no next step")
		}
	case DecisionDelegate:
		if strings.TrimSpace(d.Instruction) == "" {
			return fmt.Errorf("delegate decision has no instruction")
		}
	case DecisionComplete:
	case DecisionError:
		if strings.TrimSpace(d.Issue) == "" && strings.TrimSpace(d.Recovery) == "" {
			return fmt.Errorf("error decision has neither issue nor recovery")
		}
	default:
		return fmt.Errorf("unknown decision type %q", d.Type)
	}
	return nil
}

// AsDelegate flattens a Plan into the Delegate of its next step.
func (d Decision) AsDelegate() Decision {
	if d.Type != DecisionPlan {
		return d
	}
	return NewDelegate(d.Next, d.Expected)
}

func (d Decision) String() string {
	switch d.Type {
	case DecisionPlan:
		return fmt.Sprintf("plan(%d steps) next=%q", len(d.Steps), d.Next)
	case DecisionDelegate:
		return fmt.Sprintf("delegate %q", d.Instruction)
	case DecisionComplete:
		return fmt.Sprintf("complete: %s", d.Reason)
	case DecisionError:
		return fmt.Sprintf("error: %s (recovery: %s)", d.Issue, d.Recovery)
	}
	return string(d.Type)
}

func (d Decision) clone() Decision {
	d.Steps = append([]string(nil), d.Steps...)
	return d
}
