package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/json-iterator/go"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

var _ output.HistoryExporterPort = (*Exporter)(nil)

// Exporter writes finished run reports as indented JSON, one file per run.
type Exporter struct {
	dir    string
	logger output.LoggerPort
}

func NewExporter(dir string, logger output.LoggerPort) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

type exportedRun struct {
	RunID      string                 `json:"run_id"`
	Task       string                 `json:"task"`
	Outcome    entity.TerminalOutcome `json:"outcome"`
	Summary    string                 `json:"summary"`
	FastPath   bool                   `json:"fast_path"`
	Retries    int                    `json:"retries"`
	StartedAt  time.Time              `json:"started_at"`
	DurationMs int64                  `json:"duration_ms"`
	History    []entity.HistoryEntry  `json:"history"`
}

// Export returns the path of the written file.
func (e *Exporter) Export(report *entity.RunReport) (string, error) {
	if report == nil {
		return "", errors.New("nil run report")
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create history dir: %w", err)
	}

	data, err := json.MarshalIndent(exportedRun{
		RunID:      report.RunID,
		Task:       report.Task.String(),
		Outcome:    report.Outcome,
		Summary:    report.Summary(),
		FastPath:   report.FastPath,
		Retries:    report.Retries,
		StartedAt:  report.StartedAt,
		DurationMs: report.Duration.Milliseconds(),
		History:    report.History,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal history: %w", err)
	}

	started := report.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	name := fmt.Sprintf("%s_%s.json", started.Format("20060102_150405"), report.RunID)
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write history: %w", err)
	}

	e.logger.Info("History exported", "path", path, "entries", len(report.History))
	return path, nil
}
