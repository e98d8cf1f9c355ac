package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendOnly(t *testing.T) {
	h := NewHistory()
	plan := NewPlan([]string{"open menu", "click save"}, "open menu")
	h.AppendDecision(RolePlanner, plan)
	h.AppendAction(RoleExecutor, FallbackAction())
	h.AppendResult(ExecutionResult{Status: StatusSuccess, Observation: "ok"})

	require.Equal(t, 3, h.Len())

	entries := h.Entries()
	entries[0].Decision.Steps[0] = "tampered"
	entries[1].Action.Script = "tampered"

	fresh := h.Entries()
	assert.Equal(t, "open menu", fresh[0].Decision.Steps[0])
	assert.Equal(t, `press("esc")`, fresh[1].Action.Script)
	assert.Equal(t, []int{1, 2, 3}, []int{fresh[0].Seq, fresh[1].Seq, fresh[2].Seq})

	// mutating the caller's decision after recording has no effect
	plan.Steps[1] = "changed"
	assert.Equal(t, "click save", h.Entries()[0].Decision.Steps[1])
}

func TestHistoryRecent(t *testing.T) {
	h := NewHistory()
	assert.Empty(t, h.Recent(3))
	for i := 0; i < 5; i++ {
		h.AppendResult(ExecutionResult{Status: StatusFailure})
	}
	recent := h.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, 3, recent[0].Seq)
	assert.Equal(t, 5, recent[2].Seq)
	assert.Len(t, h.Recent(10), 5)
	assert.Nil(t, h.Recent(0))
}

func TestSnapshotClaimOnce(t *testing.T) {
	s := NewSnapshot("s1", []byte{0xff, 0xd8}, "image/jpeg", 10, 10)
	require.NoError(t, s.Claim())
	assert.ErrorIs(t, s.Claim(), ErrStaleSnapshot)
	assert.True(t, s.Claimed())
	assert.Equal(t, "data:image/jpeg;base64,/9g=", s.DataURI())
}

func TestDecisionValidate(t *testing.T) {
	tests := []struct {
		name    string
		d       Decision
		wantErr bool
	}{
		{"plan", NewPlan(nil, "open settings"), false},
		{"plan without next", NewPlan([]string{"a"}, ""), true},
		{"delegate", NewDelegate("click ok", ""), false},
		{"delegate without instruction", NewDelegate(" ", "x"), true},
		{"complete", NewComplete(""), false},
		{"error", NewError("dialog blocked", ""), false},
		{"empty error", NewError("", ""), true},
		{"unknown", Decision{Type: "progress"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlanAsDelegate(t *testing.T) {
	d := NewPlan([]string{"a", "b"}, "a").AsDelegate()
	assert.Equal(t, DecisionDelegate, d.Type)
	assert.Equal(t, "a", d.Instruction)
}

func TestFallbacks(t *testing.T) {
	d := FallbackDelegate(NewTaskRequest("  rename the file  "))
	assert.Equal(t, "rename the file", d.Instruction)
	assert.Equal(t, "Complete the requested task", d.Expected)
	assert.True(t, d.Fallback)
	require.NoError(t, d.Validate())

	a := FallbackAction()
	assert.Equal(t, ConfidenceLow, a.Confidence)
	assert.Equal(t, `press("esc")`, a.Script)
}

func TestParseConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ParseConfidence("High - target visible"))
	assert.Equal(t, ConfidenceMedium, ParseConfidence("medium"))
	assert.Equal(t, ConfidenceMedium, ParseConfidence("Med"))
	assert.Equal(t, ConfidenceLow, ParseConfidence("unsure"))
}

func TestCallQuoting(t *testing.T) {
	assert.Equal(t, `hotkey("ctrl", "l")`, Call(PrimitiveHotkey, "ctrl", "l"))
	assert.Equal(t, `write("say \"hi\"\\n")`, Call(PrimitiveWrite, `say "hi"\n`))
	assert.Equal(t, `press("a"); press("b")`, Sequence(Call(PrimitivePress, "a"), Call(PrimitivePress, "b")))
}

func TestOutcomeExitCode(t *testing.T) {
	assert.Equal(t, 0, Completed("done").ExitCode())
	assert.Equal(t, 1, Failed("x").ExitCode())
	assert.Equal(t, 2, SafetyStopped("x").ExitCode())
}

func TestFaultKind(t *testing.T) {
	err := NewFault(TransportFault, RolePlanner, ErrNoStructuredObject)
	assert.Equal(t, TransportFault, KindOf(err))
	assert.ErrorIs(t, err, ErrNoStructuredObject)
	assert.Equal(t, FaultKind(""), KindOf(assert.AnError))
}
