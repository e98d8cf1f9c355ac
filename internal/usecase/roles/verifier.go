package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gui-agent/internal/application/port/input"
	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/usecase/envelope"
)

var _ input.Verifier = (*Verifier)(nil)

var ErrVerifierDecision = errors.New("verifier may only complete or delegate")

type Verifier struct {
	caller *Caller
	tmpl   RoleTemplate
	logger output.LoggerPort
}

func NewVerifier(caller *Caller, tmpl RoleTemplate, logger output.LoggerPort) *Verifier {
	return &Verifier{caller: caller, tmpl: tmpl, logger: logger}
}

// Verify returns Complete or Delegate. A Plan is narrowed to the Delegate of
// its next step; an Error is reported as a malformed decision.
func (v *Verifier) Verify(ctx context.Context, req input.VerifyRequest) (entity.Decision, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Original Task: %s\n", req.Task)
	fmt.Fprintf(&b, "\nRecent steps:\n%s\n", renderHistory(req.Recent))
	b.WriteString("\nVerify the result on the screenshot and determine the next step.\n")

	raw, err := v.caller.Call(ctx, v.tmpl, b.String(), req.Snapshot)
	if err != nil {
		return entity.Decision{}, err
	}

	d, err := envelope.ParseDecision(raw)
	if err != nil {
		return entity.Decision{}, entity.NewFault(entity.MalformedDecision, entity.RoleVerifier, err)
	}

	switch d.Type {
	case entity.DecisionComplete, entity.DecisionDelegate:
	case entity.DecisionPlan:
		d = d.AsDelegate()
	default:
		return entity.Decision{}, entity.NewFault(entity.MalformedDecision, entity.RoleVerifier,
			fmt.Errorf("%w, got %s", ErrVerifierDecision, d.Type))
	}

	v.logger.Info("Verifier decision", "decision", d.String())
	return d, nil
}
