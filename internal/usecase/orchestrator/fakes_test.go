package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"gui-agent/internal/application/port/input"
	"gui-agent/internal/domain/entity"
)

type reply[T any] struct {
	val T
	err error
}

// queue hands out replies in order and repeats the last one forever.
type queue[T any] struct {
	replies []reply[T]
	n       int
}

func (q *queue[T]) next() (T, error) {
	var zero T
	if len(q.replies) == 0 {
		return zero, errors.New("no reply configured")
	}
	i := q.n
	if i >= len(q.replies) {
		i = len(q.replies) - 1
	}
	q.n++
	return q.replies[i].val, q.replies[i].err
}

func ok[T any](v T) reply[T] {
	return reply[T]{val: v}
}

func fail[T any](err error) reply[T] {
	return reply[T]{err: err}
}

func transport(role entity.Role) error {
	return entity.NewFault(entity.TransportFault, role, errors.New("connection refused"))
}

func malformed(role entity.Role) error {
	return entity.NewFault(entity.MalformedDecision, role, entity.ErrNoStructuredObject)
}

type fakePlanner struct {
	q     queue[entity.Decision]
	calls []input.PlanRequest
	hook  func()
}

func (f *fakePlanner) Plan(_ context.Context, req input.PlanRequest) (entity.Decision, error) {
	if err := req.Snapshot.Claim(); err != nil {
		return entity.Decision{}, err
	}
	f.calls = append(f.calls, req)
	if f.hook != nil {
		f.hook()
	}
	return f.q.next()
}

type fakeExecutor struct {
	q     queue[entity.ActionDescriptor]
	calls []input.ActRequest
	hook  func()
}

func (f *fakeExecutor) Act(_ context.Context, req input.ActRequest) (entity.ActionDescriptor, error) {
	if err := req.Snapshot.Claim(); err != nil {
		return entity.ActionDescriptor{}, err
	}
	f.calls = append(f.calls, req)
	if f.hook != nil {
		f.hook()
	}
	return f.q.next()
}

type fakeVerifier struct {
	q     queue[entity.Decision]
	calls []input.VerifyRequest
}

func (f *fakeVerifier) Verify(_ context.Context, req input.VerifyRequest) (entity.Decision, error) {
	if err := req.Snapshot.Claim(); err != nil {
		return entity.Decision{}, err
	}
	f.calls = append(f.calls, req)
	return f.q.next()
}

type noMatch struct{}

func (noMatch) Match(entity.TaskRequest) (entity.ActionDescriptor, bool) {
	return entity.ActionDescriptor{}, false
}

type fakeRunner struct {
	statuses []entity.ExecutionStatus
	scripts  []string
}

func (f *fakeRunner) Run(_ context.Context, script string) entity.ExecutionResult {
	f.scripts = append(f.scripts, script)
	status := entity.StatusSuccess
	if i := len(f.scripts) - 1; i < len(f.statuses) {
		status = f.statuses[i]
	} else if len(f.statuses) > 0 {
		status = f.statuses[len(f.statuses)-1]
	}
	return entity.ExecutionResult{Status: status, Observation: string(status)}
}

type fakePerception struct {
	mu       sync.Mutex
	captured []*entity.Snapshot
	err      error
}

func (f *fakePerception) Capture(context.Context) (*entity.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s := entity.NewSnapshot("snap", []byte{0xff}, "image/jpeg", 1, 1)
	f.captured = append(f.captured, s)
	return s, nil
}

type fallbackEvent struct {
	role  entity.Role
	kind  entity.FaultKind
	retry int
}

type recordingUI struct {
	iterations []int
	fallbacks  []fallbackEvent
	decisions  []entity.Decision
	outcome    *entity.RunReport
}

func (u *recordingUI) ShowIteration(_ context.Context, _ int, historyLen, _ int) {
	u.iterations = append(u.iterations, historyLen)
}

func (u *recordingUI) ShowDecision(_ context.Context, _ entity.Role, d entity.Decision) {
	u.decisions = append(u.decisions, d)
}

func (u *recordingUI) ShowAction(context.Context, entity.Role, entity.ActionDescriptor) {}

func (u *recordingUI) ShowResult(context.Context, entity.ExecutionResult) {}

func (u *recordingUI) ShowFallback(_ context.Context, role entity.Role, kind entity.FaultKind, retry int) {
	u.fallbacks = append(u.fallbacks, fallbackEvent{role, kind, retry})
}

func (u *recordingUI) ShowOutcome(_ context.Context, report *entity.RunReport) {
	u.outcome = report
}

type nopMetrics struct{}

func (nopMetrics) ObserveModelCall(entity.Role, time.Duration, error) {}

func (nopMetrics) ObserveAction(entity.ExecutionStatus, time.Duration) {}

func (nopMetrics) IncFallback(entity.Role, entity.FaultKind) {}

func (nopMetrics) ObserveRun(*entity.RunReport) {}
