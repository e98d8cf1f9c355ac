package envelope

import (
	"errors"
	"strings"

	"gui-agent/internal/domain/entity"
)

var ErrIncomplete = errors.New("structured object is missing required fields")

// decisionEnvelope is the union of every field the Planner and Verifier
// dialects use.
type decisionEnvelope struct {
	Type   string `json:"type"`
	Role   string `json:"role"`
	Status string `json:"status"`

	Steps           []string `json:"steps"`
	Plan            []string `json:"plan"`
	NextAction      string   `json:"next_action"`
	ExpectedOutcome string   `json:"expected_outcome"`

	CurrentStep string   `json:"current_step"`
	NextSteps   []string `json:"next_steps"`

	Instruction     string `json:"instruction"`
	NextInstruction string `json:"next_instruction"`
	ExpectedResult  string `json:"expected_result"`
	Expectation     string `json:"expectation"`

	Summary      string `json:"summary"`
	Reason       string `json:"reason"`
	Verification string `json:"verification"`

	Issue            string   `json:"issue"`
	RecoveryStrategy string   `json:"recovery_strategy"`
	FallbackOptions  []string `json:"fallback_options"`
}

// ParseDecision extracts a Decision from raw model text.
func ParseDecision(raw string) (entity.Decision, error) {
	env, err := decodeFirst[decisionEnvelope](raw)
	if err != nil {
		return entity.Decision{}, err
	}
	d := env.toDecision()
	if err := d.Validate(); err != nil {
		return entity.Decision{}, errors.Join(ErrIncomplete, err)
	}
	return d, nil
}

func (e decisionEnvelope) toDecision() entity.Decision {
	switch strings.ToLower(strings.TrimSpace(e.Type)) {
	case "plan":
		return e.plan()
	case "progress":
		next := e.CurrentStep
		if next == "" && len(e.NextSteps) > 0 {
			next = e.NextSteps[0]
		}
		return entity.NewPlan(e.NextSteps, next)
	case "delegate":
		return e.delegate()
	case "complete", "completed", "done":
		return entity.NewComplete(firstNonEmpty(e.Summary, e.Reason, e.Verification))
	case "error":
		return e.errorDecision()
	case "":
		return e.infer()
	}
	return entity.Decision{Type: entity.DecisionType(e.Type)}
}

// infer handles dialects that carry no type field.
func (e decisionEnvelope) infer() entity.Decision {
	if status := strings.ToLower(strings.TrimSpace(e.Status)); status != "" {
		switch status {
		case "complete", "completed", "done", "success":
			return entity.NewComplete(firstNonEmpty(e.Reason, e.Summary))
		default:
			return entity.NewDelegate(firstNonEmpty(e.NextInstruction, e.Instruction), e.ExpectedResult)
		}
	}
	switch {
	case e.Instruction != "" || e.NextInstruction != "":
		return e.delegate()
	case len(e.Steps) > 0 || len(e.Plan) > 0:
		return e.plan()
	case e.Issue != "":
		return e.errorDecision()
	case e.Summary != "":
		return entity.NewComplete(e.Summary)
	}
	return entity.Decision{}
}

func (e decisionEnvelope) plan() entity.Decision {
	steps := e.Steps
	if len(steps) == 0 {
		steps = e.Plan
	}
	next := e.NextAction
	// older planners used next_action as a routing marker, not a step
	if (next == "" || next == "delegate_to_slave") && len(steps) > 0 {
		next = steps[0]
	}
	if next == "delegate_to_slave" {
		next = ""
	}
	d := entity.NewPlan(steps, next)
	d.Expected = e.ExpectedOutcome
	return d
}

func (e decisionEnvelope) delegate() entity.Decision {
	return entity.NewDelegate(
		firstNonEmpty(e.Instruction, e.NextInstruction),
		firstNonEmpty(e.ExpectedResult, e.Expectation),
	)
}

func (e decisionEnvelope) errorDecision() entity.Decision {
	recovery := e.RecoveryStrategy
	if recovery == "" && len(e.FallbackOptions) > 0 {
		recovery = e.FallbackOptions[0]
	}
	return entity.NewError(e.Issue, recovery)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
