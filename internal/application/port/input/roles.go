package input

import (
	"context"

	"gui-agent/internal/domain/entity"
)

// Role adapters return *entity.Fault on transport or parse failure.

type Planner interface {
	Plan(ctx context.Context, req PlanRequest) (entity.Decision, error)
}

type PlanRequest struct {
	Task     entity.TaskRequest
	Snapshot *entity.Snapshot
	// Recovery carries the issue and strategy of an Error decision when the
	// Planner is re-invoked after it.
	Recovery *entity.Decision
	Recent   []entity.HistoryEntry
}

type Executor interface {
	Act(ctx context.Context, req ActRequest) (entity.ActionDescriptor, error)
}

type ActRequest struct {
	Task        entity.TaskRequest
	Instruction string
	Expected    string
	Snapshot    *entity.Snapshot
	Recent      []entity.HistoryEntry
}

// Verifier decisions are restricted to Complete and Delegate.
type Verifier interface {
	Verify(ctx context.Context, req VerifyRequest) (entity.Decision, error)
}

type VerifyRequest struct {
	Task     entity.TaskRequest
	Snapshot *entity.Snapshot
	Recent   []entity.HistoryEntry
}

type PatternMatcher interface {
	Match(task entity.TaskRequest) (entity.ActionDescriptor, bool)
}

// ActionRunner never returns an error; every fault becomes a non-success
// ExecutionResult.
type ActionRunner interface {
	Run(ctx context.Context, script string) entity.ExecutionResult
}
