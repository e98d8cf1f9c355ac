package roles

import (
	"context"
	"fmt"
	"strings"

	"gui-agent/internal/application/port/input"
	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/usecase/envelope"
)

var _ input.Executor = (*Executor)(nil)

type Executor struct {
	caller *Caller
	tmpl   RoleTemplate
	logger output.LoggerPort
}

func NewExecutor(caller *Caller, tmpl RoleTemplate, logger output.LoggerPort) *Executor {
	return &Executor{caller: caller, tmpl: tmpl, logger: logger}
}

func (e *Executor) Act(ctx context.Context, req input.ActRequest) (entity.ActionDescriptor, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Instruction: %s\n", req.Instruction)
	if req.Expected != "" {
		fmt.Fprintf(&b, "Expected result: %s\n", req.Expected)
	}
	fmt.Fprintf(&b, "Overall task (context only): %s\n", req.Task)
	fmt.Fprintf(&b, "\nPrevious context:\n%s\n", renderHistory(req.Recent))

	raw, err := e.caller.Call(ctx, e.tmpl, b.String(), req.Snapshot)
	if err != nil {
		return entity.ActionDescriptor{}, err
	}

	a, err := envelope.ParseAction(raw)
	if err != nil {
		return entity.ActionDescriptor{}, entity.NewFault(entity.MalformedDecision, entity.RoleExecutor, err)
	}
	e.logger.Info("Executor action", "description", a.Description, "confidence", a.Confidence)
	return a, nil
}
