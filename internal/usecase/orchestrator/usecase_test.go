package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gui-agent/internal/adapter/primitive"
	"gui-agent/internal/application/port/input"
	"gui-agent/internal/application/service"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/infrastructure/logger"
	"gui-agent/internal/usecase/actionrunner"
	"gui-agent/internal/usecase/matcher"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	planner    *fakePlanner
	executor   *fakeExecutor
	verifier   *fakeVerifier
	runner     *fakeRunner
	perception *fakePerception
	ui         *recordingUI
	matcher    input.PatternMatcher
	actionRun  input.ActionRunner
	cfg        Config
}

func newHarness() *harness {
	cfg := DefaultConfig()
	cfg.SettleDelay = 0
	return &harness{
		planner:    &fakePlanner{},
		executor:   &fakeExecutor{},
		verifier:   &fakeVerifier{},
		runner:     &fakeRunner{},
		perception: &fakePerception{},
		ui:         &recordingUI{},
		matcher:    noMatch{},
		cfg:        cfg,
	}
}

func (h *harness) useCase() *UseCase {
	runner := h.actionRun
	if runner == nil {
		runner = h.runner
	}
	return New(Deps{
		Matcher:         h.matcher,
		Planner:         h.planner,
		Executor:        h.executor,
		Verifier:        h.verifier,
		Runner:          runner,
		Perception:      h.perception,
		Logger:          logger.NewNop(),
		UserInteraction: h.ui,
		Metrics:         nopMetrics{},
	}, h.cfg)
}

func (h *harness) modelCalls() int {
	return len(h.planner.calls) + len(h.executor.calls) + len(h.verifier.calls)
}

func (h *harness) run(t *testing.T, task string) *entity.RunReport {
	t.Helper()
	report, err := h.useCase().Run(context.Background(), entity.NewTaskRequest(task))
	require.NoError(t, err)
	return report
}

func action(script string) entity.ActionDescriptor {
	return entity.ActionDescriptor{Description: "act", Script: script, Confidence: entity.ConfidenceHigh}
}

type keyActuator struct{ hotkeys [][]string }

func (a *keyActuator) Hotkey(_ context.Context, keys ...string) error {
	a.hotkeys = append(a.hotkeys, keys)
	return nil
}
func (a *keyActuator) Write(context.Context, string) error { return nil }
func (a *keyActuator) Press(context.Context, string) error { return nil }

func TestOpenNewTabUsesFastPathOnly(t *testing.T) {
	h := newHarness()
	act := &keyActuator{}
	reg := service.NewPrimitiveRegistry()
	primitive.RegisterAll(reg, act, primitive.DefaultLimits(), logger.NewNop())
	h.matcher = matcher.New()
	h.actionRun = actionrunner.New(reg, actionrunner.DefaultConfig(), logger.NewNop())

	report := h.run(t, "open new tab")

	assert.Equal(t, entity.OutcomeCompleted, report.Outcome.Kind)
	assert.True(t, report.FastPath)
	assert.Equal(t, [][]string{{"ctrl", "t"}}, act.hotkeys)
	assert.Zero(t, h.modelCalls(), "planner and executor are never invoked")
	assert.Empty(t, h.perception.captured)
	require.Len(t, report.History, 2)
	assert.Equal(t, entity.RoleMatcher, report.History[0].Role)
	assert.Equal(t, entity.StatusSuccess, report.History[1].Result.Status)
	assert.Equal(t, 0, report.Outcome.ExitCode())
	assert.Same(t, report, h.ui.outcome)
}

func TestFastPathFailureFallsThroughOnce(t *testing.T) {
	h := newHarness()
	h.matcher = matcher.New()
	h.runner.statuses = []entity.ExecutionStatus{entity.StatusFailure, entity.StatusSuccess}
	h.planner.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("open a tab via menu", ""))}
	h.executor.q.replies = []reply[entity.ActionDescriptor]{ok(action("press('f10')"))}
	h.verifier.q.replies = []reply[entity.Decision]{ok(entity.NewComplete("tab open"))}

	report := h.run(t, "open new tab")

	assert.Equal(t, entity.OutcomeCompleted, report.Outcome.Kind)
	assert.Equal(t, "tab open", report.Outcome.Reason)
	assert.Equal(t, []string{`hotkey("ctrl", "t")`, "press('f10')"}, h.runner.scripts, "the fast path runs once")
	assert.Len(t, h.planner.calls, 1)
	assert.Equal(t, 0, report.Retries)
}

func TestThreeTransportFaultsFail(t *testing.T) {
	h := newHarness()
	h.planner.q.replies = []reply[entity.Decision]{fail[entity.Decision](transport(entity.RolePlanner))}
	h.executor.q.replies = []reply[entity.ActionDescriptor]{fail[entity.ActionDescriptor](transport(entity.RoleExecutor))}
	h.verifier.q.replies = []reply[entity.Decision]{fail[entity.Decision](transport(entity.RoleVerifier))}

	report := h.run(t, "rename the report to final")

	assert.Equal(t, entity.OutcomeFailed, report.Outcome.Kind)
	assert.Equal(t, 1, report.Outcome.ExitCode())
	assert.Equal(t, 3, report.Retries)
	assert.Equal(t, 3, h.modelCalls(), "exactly three faulted model calls")
	assert.Empty(t, h.runner.scripts)
}

func TestPlannerMalformedUsesFallbackDelegate(t *testing.T) {
	h := newHarness()
	h.planner.q.replies = []reply[entity.Decision]{fail[entity.Decision](malformed(entity.RolePlanner))}
	h.executor.q.replies = []reply[entity.ActionDescriptor]{ok(action("press('enter')"))}
	h.verifier.q.replies = []reply[entity.Decision]{ok(entity.NewComplete("done"))}

	report := h.run(t, "submit the form")

	require.Len(t, h.ui.fallbacks, 1)
	assert.Equal(t, fallbackEvent{entity.RolePlanner, entity.MalformedDecision, 1}, h.ui.fallbacks[0])

	first := report.History[0]
	require.NotNil(t, first.Decision)
	assert.Equal(t, entity.FallbackDelegate("submit the form"), *first.Decision)

	require.Len(t, h.executor.calls, 1)
	assert.Equal(t, "submit the form", h.executor.calls[0].Instruction)
	assert.Equal(t, entity.OutcomeCompleted, report.Outcome.Kind)
}

func TestVerifierMalformedIncrementsRetryByOne(t *testing.T) {
	h := newHarness()
	h.planner.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("click save", ""))}
	h.executor.q.replies = []reply[entity.ActionDescriptor]{ok(action("hotkey('ctrl','s')"))}
	h.verifier.q.replies = []reply[entity.Decision]{
		fail[entity.Decision](malformed(entity.RoleVerifier)),
		ok(entity.NewComplete("saved")),
	}

	report := h.run(t, "save")

	require.Len(t, h.ui.fallbacks, 1)
	assert.Equal(t, fallbackEvent{entity.RoleVerifier, entity.MalformedDecision, 1}, h.ui.fallbacks[0])
	assert.Equal(t, entity.OutcomeCompleted, report.Outcome.Kind)
	assert.Len(t, h.executor.calls, 2)
}

func TestExecutorMalformedRunsSafeNoOp(t *testing.T) {
	h := newHarness()
	h.planner.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("close the dialog", ""))}
	h.executor.q.replies = []reply[entity.ActionDescriptor]{fail[entity.ActionDescriptor](malformed(entity.RoleExecutor))}
	h.verifier.q.replies = []reply[entity.Decision]{ok(entity.NewComplete("dialog closed"))}

	report := h.run(t, "close the dialog")

	require.Len(t, h.ui.fallbacks, 1)
	assert.Equal(t, fallbackEvent{entity.RoleExecutor, entity.MalformedDecision, 1}, h.ui.fallbacks[0])
	assert.Equal(t, []string{entity.FallbackAction().Script}, h.runner.scripts)
	assert.True(t, report.History[1].Action.Fallback)
	assert.Equal(t, entity.OutcomeCompleted, report.Outcome.Kind)
}

func TestCompleteStopsModelCalls(t *testing.T) {
	h := newHarness()
	h.planner.q.replies = []reply[entity.Decision]{ok(entity.NewComplete("already done"))}

	report := h.run(t, "make sure the window is open")

	assert.Equal(t, entity.OutcomeCompleted, report.Outcome.Kind)
	assert.Equal(t, 1, h.modelCalls())
	assert.Len(t, report.History, 1)
}

func TestVerifierCompleteEndsLoop(t *testing.T) {
	h := newHarness()
	h.planner.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("a", ""))}
	h.executor.q.replies = []reply[entity.ActionDescriptor]{ok(action("press('a')"))}
	h.verifier.q.replies = []reply[entity.Decision]{
		ok(entity.NewDelegate("b", "")),
		ok(entity.NewComplete("ok")),
		ok(entity.NewDelegate("never", "")),
	}

	report := h.run(t, "type ab")

	assert.Equal(t, entity.OutcomeCompleted, report.Outcome.Kind)
	assert.Len(t, h.verifier.calls, 2)
	assert.Len(t, h.executor.calls, 2)
	assert.Equal(t, "b", h.executor.calls[1].Instruction)
}

func TestRetryResetsOnSuccess(t *testing.T) {
	h := newHarness()
	h.planner.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("try", ""))}
	h.executor.q.replies = []reply[entity.ActionDescriptor]{ok(action("press('a')"))}
	h.verifier.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("try again", ""))}
	h.runner.statuses = []entity.ExecutionStatus{
		entity.StatusFailure, entity.StatusValidationFailed, entity.StatusSuccess,
		entity.StatusFailure, entity.StatusFailure, entity.StatusFailure,
	}
	h.cfg.HistoryLimit = 100

	report := h.run(t, "keep trying")

	assert.Equal(t, entity.OutcomeFailed, report.Outcome.Kind)
	assert.Len(t, h.runner.scripts, 6, "two failures, a reset, then three more failures")
	assert.Equal(t, 3, report.Retries)
}

func TestHistoryBoundStopsRun(t *testing.T) {
	h := newHarness()
	h.planner.q.replies = []reply[entity.Decision]{ok(entity.NewPlan([]string{"step"}, "step"))}
	h.executor.q.replies = []reply[entity.ActionDescriptor]{ok(action("press('a')"))}
	h.verifier.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("step", ""))}

	report := h.run(t, "loop forever")

	assert.Equal(t, entity.OutcomeSafetyStopped, report.Outcome.Kind)
	assert.Equal(t, 2, report.Outcome.ExitCode())
	assert.LessOrEqual(t, len(h.ui.iterations), h.cfg.HistoryLimit)
	for i := 1; i < len(h.ui.iterations); i++ {
		assert.Greater(t, h.ui.iterations[i], h.ui.iterations[i-1], "history grows every iteration")
	}
	assert.GreaterOrEqual(t, len(report.History), h.cfg.HistoryLimit)
	assert.Equal(t, entity.DecisionDelegate, report.History[1].Decision.Type, "plan is flattened into a delegate")
}

func TestEverySnapshotFeedsOneCall(t *testing.T) {
	h := newHarness()
	h.planner.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("a", ""))}
	h.executor.q.replies = []reply[entity.ActionDescriptor]{ok(action("press('a')"))}
	h.verifier.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("b", "")), ok(entity.NewComplete("done"))}

	h.run(t, "two steps")

	assert.Len(t, h.perception.captured, h.modelCalls())
	for _, s := range h.perception.captured {
		assert.True(t, s.Claimed())
	}
}

func TestErrorDecisionReplansWithRecovery(t *testing.T) {
	h := newHarness()
	h.planner.q.replies = []reply[entity.Decision]{
		ok(entity.NewError("login wall", "dismiss the banner")),
		ok(entity.NewComplete("nothing left")),
	}

	report := h.run(t, "read the article")

	require.Len(t, h.planner.calls, 2)
	assert.Nil(t, h.planner.calls[0].Recovery)
	require.NotNil(t, h.planner.calls[1].Recovery)
	assert.Equal(t, "dismiss the banner", h.planner.calls[1].Recovery.Recovery)
	assert.Equal(t, 1, report.Retries)
	assert.Equal(t, entity.OutcomeCompleted, report.Outcome.Kind)
}

func TestContextWindows(t *testing.T) {
	h := newHarness()
	h.planner.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("a", ""))}
	h.executor.q.replies = []reply[entity.ActionDescriptor]{ok(action("press('a')"))}
	h.verifier.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("b", "")), ok(entity.NewComplete("done"))}

	h.run(t, "windows")

	require.Len(t, h.executor.calls, 2)
	assert.Len(t, h.executor.calls[1].Recent, 2)
	assert.Len(t, h.verifier.calls[1].Recent, 3)
	assert.Equal(t, entity.EntryResult, h.verifier.calls[0].Recent[2].Kind)
}

func TestCaptureFailureIsTransportFault(t *testing.T) {
	h := newHarness()
	h.perception.err = errors.New("display gone")

	report := h.run(t, "anything")

	assert.Equal(t, entity.OutcomeFailed, report.Outcome.Kind)
	assert.Zero(t, h.modelCalls())
	require.NotEmpty(t, h.ui.fallbacks)
	assert.Equal(t, entity.TransportFault, h.ui.fallbacks[0].kind)
}

func TestCancellationStopsRun(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.planner.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("a", ""))}
	h.executor.hook = cancel
	h.executor.q.replies = []reply[entity.ActionDescriptor]{fail[entity.ActionDescriptor](entity.NewFault(entity.TransportFault, entity.RoleExecutor, context.Canceled))}

	report, err := h.useCase().Run(ctx, entity.NewTaskRequest("slow task"))
	require.NoError(t, err)

	assert.Equal(t, entity.OutcomeSafetyStopped, report.Outcome.Kind)
	assert.Contains(t, report.Outcome.Reason, "cancelled")
	assert.Empty(t, h.runner.scripts)
}

func TestSettleDelayHonoursCancellation(t *testing.T) {
	h := newHarness()
	h.cfg.SettleDelay = time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	h.planner.q.replies = []reply[entity.Decision]{ok(entity.NewDelegate("a", ""))}
	h.executor.q.replies = []reply[entity.ActionDescriptor]{ok(action("press('a')"))}

	start := time.Now()
	report, err := h.useCase().Run(ctx, entity.NewTaskRequest("wait"))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, entity.OutcomeSafetyStopped, report.Outcome.Kind)
	assert.Empty(t, h.verifier.calls)
}

func TestEmptyTask(t *testing.T) {
	_, err := newHarness().useCase().Run(context.Background(), entity.NewTaskRequest("   "))
	assert.ErrorIs(t, err, ErrEmptyTask)
}
