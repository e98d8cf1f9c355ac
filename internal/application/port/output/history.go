package output

import "gui-agent/internal/domain/entity"

type HistoryExporterPort interface {
	Export(report *entity.RunReport) (string, error)
}
