package metrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

var _ output.MetricsPort = (*Recorder)(nil)

const namespace = "gui_agent"

// Recorder owns a private registry so that several runs in one process (and
// tests) never collide on the global one.
type Recorder struct {
	registry *prometheus.Registry

	modelCallDuration *prometheus.HistogramVec
	modelCallTotal    *prometheus.CounterVec
	actionDuration    *prometheus.HistogramVec
	fallbackTotal     *prometheus.CounterVec
	runTotal          *prometheus.CounterVec
	runDuration       prometheus.Histogram
	runRetries        prometheus.Gauge
	runHistory        prometheus.Gauge
	fastPathTotal     prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		modelCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Latency of role model calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"role"}),
		modelCallTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_call_total",
			Help:      "Role model calls by result.",
		}, []string{"role", "result"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Script execution time by status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		fallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_total",
			Help:      "Fallback decisions substituted for faulty role output.",
		}, []string{"role", "kind"}),
		runTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_total",
			Help:      "Finished runs by terminal outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of finished runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		runRetries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_retries",
			Help:      "Retry counter of the last finished run.",
		}),
		runHistory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_history_entries",
			Help:      "History length of the last finished run.",
		}),
		fastPathTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fast_path_total",
			Help:      "Runs completed by the pattern matcher without model calls.",
		}),
	}

	r.registry.MustRegister(
		r.modelCallDuration, r.modelCallTotal,
		r.actionDuration, r.fallbackTotal,
		r.runTotal, r.runDuration, r.runRetries, r.runHistory, r.fastPathTotal,
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveModelCall(role entity.Role, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.modelCallDuration.WithLabelValues(string(role)).Observe(d.Seconds())
	r.modelCallTotal.WithLabelValues(string(role), result).Inc()
}

func (r *Recorder) ObserveAction(status entity.ExecutionStatus, d time.Duration) {
	r.actionDuration.WithLabelValues(string(status)).Observe(d.Seconds())
}

func (r *Recorder) IncFallback(role entity.Role, kind entity.FaultKind) {
	r.fallbackTotal.WithLabelValues(string(role), string(kind)).Inc()
}

func (r *Recorder) ObserveRun(report *entity.RunReport) {
	if report == nil {
		return
	}
	r.runTotal.WithLabelValues(string(report.Outcome.Kind)).Inc()
	r.runDuration.Observe(report.Duration.Seconds())
	r.runRetries.Set(float64(report.Retries))
	r.runHistory.Set(float64(len(report.History)))
	if report.FastPath {
		r.fastPathTotal.Inc()
	}
}

// WritePrometheus writes the text exposition format to w.
func (r *Recorder) WritePrometheus(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteTextfile replaces path with the current metrics for the node
// exporter textfile collector. The file is renamed into place so the
// collector never reads a partial write.
func (r *Recorder) WriteTextfile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".metrics-*.prom")
	if err != nil {
		return fmt.Errorf("create temp metrics file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := r.WritePrometheus(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metrics file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish metrics file: %w", err)
	}
	return nil
}
