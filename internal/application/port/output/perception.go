package output

import (
	"context"

	"gui-agent/internal/domain/entity"
)

type PerceptionPort interface {
	Capture(ctx context.Context) (*entity.Snapshot, error)
}
