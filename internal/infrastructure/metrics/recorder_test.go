package metrics

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gui-agent/internal/domain/entity"
)

func TestRecorder_ModelCalls(t *testing.T) {
	r := NewRecorder()

	r.ObserveModelCall(entity.RolePlanner, 2*time.Second, nil)
	r.ObserveModelCall(entity.RolePlanner, time.Second, errors.New("timeout"))
	r.ObserveModelCall(entity.RoleVerifier, time.Second, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.modelCallTotal.WithLabelValues("planner", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.modelCallTotal.WithLabelValues("planner", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.modelCallTotal.WithLabelValues("verifier", "ok")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.modelCallDuration))
}

func TestRecorder_FallbacksAndActions(t *testing.T) {
	r := NewRecorder()

	r.IncFallback(entity.RoleExecutor, entity.MalformedDecision)
	r.IncFallback(entity.RoleExecutor, entity.MalformedDecision)
	r.ObserveAction(entity.StatusSuccess, 300*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fallbackTotal.WithLabelValues("executor", "malformed_decision")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.actionDuration))
}

func TestRecorder_ObserveRun(t *testing.T) {
	r := NewRecorder()

	r.ObserveRun(&entity.RunReport{
		Outcome:  entity.Completed("tab opened"),
		FastPath: true,
		Duration: 3 * time.Second,
		History:  make([]entity.HistoryEntry, 2),
	})
	r.ObserveRun(&entity.RunReport{
		Outcome:  entity.Failed("retries exhausted"),
		Retries:  3,
		Duration: 40 * time.Second,
		History:  make([]entity.HistoryEntry, 9),
	})
	r.ObserveRun(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fastPathTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.runRetries))
	assert.Equal(t, 9.0, testutil.ToFloat64(r.runHistory))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun(&entity.RunReport{Outcome: entity.SafetyStopped("history limit"), Duration: time.Second})

	path := filepath.Join(t.TempDir(), "textfile", "gui_agent.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `gui_agent_run_total{outcome="safety_stopped"} 1`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestRecorder_WritePrometheusLint(t *testing.T) {
	r := NewRecorder()
	r.ObserveModelCall(entity.RoleExecutor, time.Second, nil)

	var buf bytes.Buffer
	require.NoError(t, r.WritePrometheus(&buf))
	assert.True(t, strings.Contains(buf.String(), "# TYPE gui_agent_model_call_duration_seconds histogram"))

	problems, err := testutil.GatherAndLint(r.Registry())
	require.NoError(t, err)
	assert.Empty(t, problems)
}
