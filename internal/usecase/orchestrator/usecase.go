package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gui-agent/internal/application/port/input"
	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

var _ input.TaskExecutor = (*UseCase)(nil)

var ErrEmptyTask = errors.New("task request is empty")

type Config struct {
	MaxRetries     int
	HistoryLimit   int
	SettleDelay    time.Duration
	VerifierWindow int
	ExecutorWindow int
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		HistoryLimit:   20,
		SettleDelay:    2 * time.Second,
		VerifierWindow: 3,
		ExecutorWindow: 2,
	}
}

type Deps struct {
	Matcher         input.PatternMatcher
	Planner         input.Planner
	Executor        input.Executor
	Verifier        input.Verifier
	Runner          input.ActionRunner
	Perception      output.PerceptionPort
	Logger          output.LoggerPort
	UserInteraction output.UserInteractionPort
	Metrics         output.MetricsPort
}

// UseCase drives Plan, Delegate, Execute and Verify for one task at a time
// per call. It keeps no state between runs.
type UseCase struct {
	Deps
	cfg Config
}

func New(deps Deps, cfg Config) *UseCase {
	return &UseCase{Deps: deps, cfg: cfg}
}

func (uc *UseCase) Run(ctx context.Context, task entity.TaskRequest) (*entity.RunReport, error) {
	if task.Empty() {
		return nil, ErrEmptyTask
	}

	runID := uuid.NewString()
	r := &run{
		uc:      uc,
		task:    task,
		history: entity.NewHistory(),
		log:     uc.Logger.WithField("run_id", runID),
	}

	started := time.Now()
	r.log.Info("Run started", "task", task.String())
	outcome := r.execute(ctx)

	report := &entity.RunReport{
		RunID:     runID,
		Task:      task,
		Outcome:   outcome,
		History:   r.history.Entries(),
		Retries:   r.retry,
		FastPath:  r.fastPath,
		StartedAt: started,
		Duration:  time.Since(started),
	}
	r.log.Info("Run finished",
		"outcome", outcome.Kind,
		"reason", outcome.Reason,
		"retries", r.retry,
		"history_len", len(report.History),
		"duration", report.Duration,
	)

	uc.Metrics.ObserveRun(report)
	uc.UserInteraction.ShowOutcome(ctx, report)
	return report, nil
}

// run holds the state of a single Run call.
type run struct {
	uc       *UseCase
	task     entity.TaskRequest
	history  *entity.History
	retry    int
	fastPath bool
	log      output.LoggerPort
}

func (r *run) execute(ctx context.Context) entity.TerminalOutcome {
	if outcome, done := r.tryFastPath(ctx); done {
		return outcome
	}

	decision := r.plan(ctx, nil)

	for iteration := 1; ; iteration++ {
		if err := ctx.Err(); err != nil {
			return r.cancelled(err)
		}
		if decision.Type == entity.DecisionComplete {
			summary := decision.Reason
			if summary == "" {
				summary = "task reported complete"
			}
			return entity.Completed(summary)
		}
		if !r.withinBounds() {
			break
		}

		r.uc.UserInteraction.ShowIteration(ctx, iteration, r.history.Len(), r.uc.cfg.HistoryLimit)
		r.log.Debug("Iteration", "iteration", iteration, "decision", decision.Type, "retry", r.retry, "history_len", r.history.Len())

		switch decision.Type {
		case entity.DecisionError:
			r.retry++
			if !r.withinBounds() {
				continue
			}
			recovery := decision
			decision = r.plan(ctx, &recovery)

		case entity.DecisionPlan:
			decision = decision.AsDelegate()
			r.record(ctx, entity.RoleOrchestrator, decision)

		case entity.DecisionDelegate:
			decision = r.delegate(ctx, decision)

		default:
			// unreachable for parsed decisions; treat like a malformed one
			decision = r.fallbackDecision(ctx, entity.RoleOrchestrator,
				entity.NewFault(entity.MalformedDecision, entity.RoleOrchestrator, fmt.Errorf("unexpected decision %q", decision.Type)))
			r.record(ctx, entity.RoleOrchestrator, decision)
		}
	}

	return r.limitOutcome()
}

// tryFastPath runs a matched action once. done is true only when the run
// should end here.
func (r *run) tryFastPath(ctx context.Context) (entity.TerminalOutcome, bool) {
	action, ok := r.uc.Matcher.Match(r.task)
	if !ok {
		return entity.TerminalOutcome{}, false
	}

	r.fastPath = true
	r.log.Info("Fast path matched", "action", action.Description)
	r.history.AppendAction(entity.RoleMatcher, action)
	r.uc.UserInteraction.ShowAction(ctx, entity.RoleMatcher, action)

	res := r.runAction(ctx, action)
	if res.Succeeded() {
		return entity.Completed(action.Description), true
	}
	if err := ctx.Err(); err != nil {
		return r.cancelled(err), true
	}
	r.log.Info("Fast path failed, planning instead", "observation", res.Observation)
	return entity.TerminalOutcome{}, false
}

func (r *run) plan(ctx context.Context, recovery *entity.Decision) entity.Decision {
	snap, err := r.capture(ctx, entity.RolePlanner)
	var d entity.Decision
	if err == nil {
		d, err = r.uc.Planner.Plan(ctx, input.PlanRequest{
			Task:     r.task,
			Snapshot: snap,
			Recovery: recovery,
			Recent:   r.history.Recent(r.uc.cfg.VerifierWindow),
		})
	}
	if err != nil {
		d = r.fallbackDecision(ctx, entity.RolePlanner, err)
	}
	r.record(ctx, entity.RolePlanner, d)
	return d
}

// delegate runs one Executor, Action Runner and Verifier cycle and returns
// the next decision.
func (r *run) delegate(ctx context.Context, d entity.Decision) entity.Decision {
	snap, err := r.capture(ctx, entity.RoleExecutor)
	var action entity.ActionDescriptor
	if err == nil {
		action, err = r.uc.Executor.Act(ctx, input.ActRequest{
			Task:        r.task,
			Instruction: d.Instruction,
			Expected:    d.Expected,
			Snapshot:    snap,
			Recent:      r.history.Recent(r.uc.cfg.ExecutorWindow),
		})
	}
	if err != nil {
		if entity.KindOf(err) != entity.MalformedDecision {
			// transport: hand the problem back to the Planner, the Error
			// branch counts the retry
			next := entity.NewError(err.Error(), "Re-plan from the current screen")
			next.Fallback = true
			r.log.Warn("Executor unavailable", "kind", entity.KindOf(err), "error", err)
			r.uc.Metrics.IncFallback(entity.RoleExecutor, entity.TransportFault)
			r.uc.UserInteraction.ShowFallback(ctx, entity.RoleExecutor, entity.TransportFault, r.retry+1)
			r.record(ctx, entity.RoleOrchestrator, next)
			return next
		}
		action = entity.FallbackAction()
		r.countFallback(ctx, entity.RoleExecutor, err)
	}

	r.history.AppendAction(entity.RoleExecutor, action)
	r.uc.UserInteraction.ShowAction(ctx, entity.RoleExecutor, action)
	r.runAction(ctx, action)

	if !r.withinBounds() || ctx.Err() != nil {
		return d
	}
	if err := r.settle(ctx); err != nil {
		return d
	}
	return r.verify(ctx)
}

func (r *run) verify(ctx context.Context) entity.Decision {
	snap, err := r.capture(ctx, entity.RoleVerifier)
	var d entity.Decision
	if err == nil {
		d, err = r.uc.Verifier.Verify(ctx, input.VerifyRequest{
			Task:     r.task,
			Snapshot: snap,
			Recent:   r.history.Recent(r.uc.cfg.VerifierWindow),
		})
	}
	if err != nil {
		d = r.fallbackDecision(ctx, entity.RoleVerifier, err)
	}
	r.record(ctx, entity.RoleVerifier, d)
	return d
}

// runAction executes a script, records the result and applies the retry
// rule: success resets the counter, anything else increments it.
func (r *run) runAction(ctx context.Context, action entity.ActionDescriptor) entity.ExecutionResult {
	res := r.uc.Runner.Run(ctx, action.Script)
	r.history.AppendResult(res)
	r.uc.Metrics.ObserveAction(res.Status, res.Duration)
	r.uc.UserInteraction.ShowResult(ctx, res)

	if res.Succeeded() {
		r.retry = 0
	} else {
		r.retry++
		r.log.Warn("Action did not succeed", "status", res.Status, "observation", res.Observation, "retry", r.retry)
	}
	return res
}

func (r *run) capture(ctx context.Context, role entity.Role) (*entity.Snapshot, error) {
	snap, err := r.uc.Perception.Capture(ctx)
	if err != nil {
		return nil, entity.NewFault(entity.TransportFault, role, fmt.Errorf("capture screen: %w", err))
	}
	return snap, nil
}

func (r *run) fallbackDecision(ctx context.Context, role entity.Role, err error) entity.Decision {
	r.countFallback(ctx, role, err)
	return entity.FallbackDelegate(r.task)
}

func (r *run) countFallback(ctx context.Context, role entity.Role, err error) {
	kind := entity.KindOf(err)
	if kind == "" {
		kind = entity.TransportFault
	}
	r.retry++
	r.log.Warn("Using fallback", "role", role, "kind", kind, "retry", r.retry, "error", err)
	r.uc.Metrics.IncFallback(role, kind)
	r.uc.UserInteraction.ShowFallback(ctx, role, kind, r.retry)
}

func (r *run) record(ctx context.Context, role entity.Role, d entity.Decision) {
	r.history.AppendDecision(role, d)
	r.uc.UserInteraction.ShowDecision(ctx, role, d)
}

func (r *run) withinBounds() bool {
	return r.retry < r.uc.cfg.MaxRetries && r.history.Len() < r.uc.cfg.HistoryLimit
}

func (r *run) settle(ctx context.Context) error {
	if r.uc.cfg.SettleDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(r.uc.cfg.SettleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *run) limitOutcome() entity.TerminalOutcome {
	if r.retry >= r.uc.cfg.MaxRetries {
		r.log.Warn("Safety limit reached", "kind", entity.SafetyLimitReached, "limit", "retries", "retry", r.retry)
		return entity.Failed(fmt.Sprintf("gave up after %d consecutive unsuccessful attempts", r.retry))
	}
	r.log.Warn("Safety limit reached", "kind", entity.SafetyLimitReached, "limit", "history", "history_len", r.history.Len())
	return entity.SafetyStopped(fmt.Sprintf("history limit of %d entries reached", r.uc.cfg.HistoryLimit))
}

func (r *run) cancelled(err error) entity.TerminalOutcome {
	r.log.Warn("Run cancelled", "error", err)
	return entity.SafetyStopped("cancelled: " + err.Error())
}
