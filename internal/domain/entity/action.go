package entity

import (
	"strings"
	"time"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence accepts anything starting with high/medium/low ("High -
// clear target", "med"). Unknown values are treated as low.
func ParseConfidence(s string) Confidence {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(v, "high"):
		return ConfidenceHigh
	case strings.HasPrefix(v, "med"):
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

type ActionDescriptor struct {
	Description      string     `json:"description"`
	Script           string     `json:"script"`
	Confidence       Confidence `json:"confidence"`
	ExpectedResult   string     `json:"expected_result,omitempty"`
	VerificationHint string     `json:"verification_hint,omitempty"`
	Fallback         bool       `json:"fallback,omitempty"`
}

// FallbackAction is the safe no-op used when the Executor response is unusable.
func FallbackAction() ActionDescriptor {
	return ActionDescriptor{
		Description:      "Safe fallback - press Escape",
		Script:           Call(PrimitivePress, "esc"),
		Confidence:       ConfidenceLow,
		ExpectedResult:   "Any open dialog or focused bar is dismissed",
		VerificationHint: "Check whether the screen changed",
		Fallback:         true,
	}
}

type ExecutionStatus string

const (
	StatusSuccess          ExecutionStatus = "success"
	StatusFailure          ExecutionStatus = "failure"
	StatusValidationFailed ExecutionStatus = "validation_failed"
)

type ExecutionResult struct {
	Status      ExecutionStatus `json:"status"`
	Observation string          `json:"observation"`
	Statements  int             `json:"statements"`
	Duration    time.Duration   `json:"duration"`
}

func (r ExecutionResult) Succeeded() bool {
	return r.Status == StatusSuccess
}
