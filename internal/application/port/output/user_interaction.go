package output

import (
	"context"

	"gui-agent/internal/domain/entity"
)

// UserInteractionPort receives run progress for display.
type UserInteractionPort interface {
	ShowIteration(ctx context.Context, iteration, historyLen, historyLimit int)
	ShowDecision(ctx context.Context, role entity.Role, d entity.Decision)
	ShowAction(ctx context.Context, role entity.Role, a entity.ActionDescriptor)
	ShowResult(ctx context.Context, r entity.ExecutionResult)
	ShowFallback(ctx context.Context, role entity.Role, kind entity.FaultKind, retry int)
	ShowOutcome(ctx context.Context, report *entity.RunReport)
}
