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

var _ input.Planner = (*Planner)(nil)

type Planner struct {
	caller *Caller
	tmpl   RoleTemplate
	logger output.LoggerPort
}

func NewPlanner(caller *Caller, tmpl RoleTemplate, logger output.LoggerPort) *Planner {
	return &Planner{caller: caller, tmpl: tmpl, logger: logger}
}

func (p *Planner) Plan(ctx context.Context, req input.PlanRequest) (entity.Decision, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "User Task: %s\n", req.Task)
	if req.Recovery != nil {
		fmt.Fprintf(&b, "\nThe previous attempt hit a problem: %s\nSuggested recovery: %s\n", req.Recovery.Issue, req.Recovery.Recovery)
	}
	if len(req.Recent) > 0 {
		fmt.Fprintf(&b, "\nRecent steps:\n%s\n", renderHistory(req.Recent))
	}

	raw, err := p.caller.Call(ctx, p.tmpl, b.String(), req.Snapshot)
	if err != nil {
		return entity.Decision{}, err
	}

	d, err := envelope.ParseDecision(raw)
	if err != nil {
		return entity.Decision{}, entity.NewFault(entity.MalformedDecision, entity.RolePlanner, err)
	}
	p.logger.Info("Planner decision", "decision", d.String())
	return d, nil
}
