package actionrunner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gui-agent/internal/application/port/input"
	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

var _ input.ActionRunner = (*Runner)(nil)

type Config struct {
	MaxDuration    time.Duration
	MaxStatements  int
	MaxScriptBytes int
	// PrimitiveTimeout bounds a single actuator call, which is never
	// interrupted by run cancellation once started.
	PrimitiveTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxDuration:      15 * time.Second,
		MaxStatements:    64,
		MaxScriptBytes:   16 * 1024,
		PrimitiveTimeout: 10 * time.Second,
	}
}

// Interruptible is implemented by primitives that hold no actuator state and
// may therefore be cut short by cancellation (sleep).
type Interruptible interface {
	Interruptible() bool
}

type Runner struct {
	registry output.PrimitiveRegistry
	cfg      Config
	logger   output.LoggerPort
}

func New(registry output.PrimitiveRegistry, cfg Config, logger output.LoggerPort) *Runner {
	return &Runner{registry: registry, cfg: cfg, logger: logger}
}

// Validate parses the script and checks every statement against the
// allow-list without executing anything.
func (r *Runner) Validate(script string) (entity.Script, error) {
	if len(script) > r.cfg.MaxScriptBytes {
		return entity.Script{}, fmt.Errorf("script is %d bytes, limit %d", len(script), r.cfg.MaxScriptBytes)
	}
	parsed, err := Parse(script)
	if err != nil {
		return entity.Script{}, err
	}
	if len(parsed.Statements) == 0 {
		return entity.Script{}, errors.New("script has no statements")
	}
	if len(parsed.Statements) > r.cfg.MaxStatements {
		return entity.Script{}, fmt.Errorf("script has %d statements, limit %d", len(parsed.Statements), r.cfg.MaxStatements)
	}

	var slept float64
	for _, st := range parsed.Statements {
		p, ok := r.registry.Get(st.Primitive)
		if !ok {
			return entity.Script{}, fmt.Errorf("line %d: %s is not an allowed operation", st.Line, st.Primitive)
		}
		if err := p.Validate(st.Args); err != nil {
			return entity.Script{}, fmt.Errorf("line %d: %s: %w", st.Line, st.Primitive, err)
		}
		if st.Primitive == entity.PrimitiveSleep {
			secs, err := strconv.ParseFloat(st.Args[0], 64)
			if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
				return entity.Script{}, fmt.Errorf("line %d: sleep duration %q is not a finite number", st.Line, st.Args[0])
			}
			slept += secs
		}
	}
	// summed in seconds so the total cannot wrap
	if slept >= r.cfg.MaxDuration.Seconds() {
		return entity.Script{}, fmt.Errorf("script sleeps %.2fs in total, limit %s", slept, r.cfg.MaxDuration)
	}
	return parsed, nil
}

// Run validates and executes script. It never returns an error and never
// panics: every fault is reported in the result.
func (r *Runner) Run(ctx context.Context, script string) entity.ExecutionResult {
	start := time.Now()

	parsed, err := r.Validate(script)
	if err != nil {
		r.logger.Warn("Script rejected", "error", err)
		return entity.ExecutionResult{
			Status:      entity.StatusValidationFailed,
			Observation: "rejected before execution: " + err.Error(),
			Duration:    time.Since(start),
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.MaxDuration)
	defer cancel()

	executed, err := r.execute(runCtx, parsed)
	res := entity.ExecutionResult{Statements: executed, Duration: time.Since(start)}
	if err != nil {
		res.Status = entity.StatusFailure
		res.Observation = err.Error()
		r.logger.Warn("Script failed", "executed", executed, "total", len(parsed.Statements), "error", err)
		return res
	}

	res.Status = entity.StatusSuccess
	res.Observation = fmt.Sprintf("executed %d statements: %s", executed, summarize(parsed))
	r.logger.Debug("Script executed", "statements", executed, "duration", res.Duration)
	return res
}

func (r *Runner) execute(ctx context.Context, script entity.Script) (executed int, err error) {
	total := len(script.Statements)
	for i, st := range script.Statements {
		if cerr := ctx.Err(); cerr != nil {
			return i, stopReason(cerr, i, total, r.cfg.MaxDuration)
		}
		p, _ := r.registry.Get(st.Primitive)
		if err := r.invoke(ctx, p, st); err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return i, stopReason(cerr, i, total, r.cfg.MaxDuration)
			}
			return i, fmt.Errorf("statement %d (%s) failed: %w", i+1, st.Primitive, err)
		}
	}
	return total, nil
}

func (r *Runner) invoke(ctx context.Context, p output.PrimitivePort, st entity.Statement) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s panicked: %v", st.Primitive, rec)
		}
	}()

	if ip, ok := p.(Interruptible); ok && ip.Interruptible() {
		return p.Execute(ctx, st.Args)
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.PrimitiveTimeout)
	defer cancel()
	return p.Execute(pctx, st.Args)
}

func stopReason(err error, done, total int, limit time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("stopped after %d of %d statements: exceeded max duration %s", done, total, limit)
	}
	return fmt.Errorf("cancelled after %d of %d statements", done, total)
}

func summarize(script entity.Script) string {
	names := make([]string, 0, len(script.Statements))
	for _, st := range script.Statements {
		names = append(names, string(st.Primitive))
	}
	return strings.Join(names, ", ")
}
