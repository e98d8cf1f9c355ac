package input

import (
	"context"

	"gui-agent/internal/domain/entity"
)

// TaskExecutor is the exposed run contract. The returned error is reserved
// for misuse (an empty task); every run fault ends in a TerminalOutcome.
type TaskExecutor interface {
	Run(ctx context.Context, task entity.TaskRequest) (*entity.RunReport, error)
}
