package output

import (
	"time"

	"gui-agent/internal/domain/entity"
)

type MetricsPort interface {
	ObserveModelCall(role entity.Role, d time.Duration, err error)
	ObserveAction(status entity.ExecutionStatus, d time.Duration)
	IncFallback(role entity.Role, kind entity.FaultKind)
	ObserveRun(report *entity.RunReport)
}
