package userinteraction

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

var _ output.UserInteractionPort = (*ConsoleUserInteraction)(nil)

// ConsoleUserInteraction prints run progress for a human watching the
// terminal. It never reads input: runs are unattended.
type ConsoleUserInteraction struct {
	out io.Writer
}

func NewConsoleUserInteraction() *ConsoleUserInteraction {
	return NewConsoleUserInteractionTo(os.Stdout)
}

func NewConsoleUserInteractionTo(w io.Writer) *ConsoleUserInteraction {
	return &ConsoleUserInteraction{out: w}
}

func (u *ConsoleUserInteraction) ShowIteration(ctx context.Context, iteration, historyLen, historyLimit int) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(u.out, "\n━━━ Iteration %d (history %d/%d) ━━━\n", iteration, historyLen, historyLimit)
}

func (u *ConsoleUserInteraction) ShowDecision(ctx context.Context, role entity.Role, d entity.Decision) {
	icon, c := decisionDisplay(d.Type)
	c.Fprintf(u.out, "%s %s: ", icon, role)
	fmt.Fprintln(u.out, truncate(d.String(), 200))

	if d.Type == entity.DecisionPlan && len(d.Steps) > 0 {
		dim := color.New(color.Faint)
		for i, step := range d.Steps {
			dim.Fprintf(u.out, "   %d. %s\n", i+1, truncate(step, 100))
		}
	}
	if d.Fallback {
		color.New(color.Faint).Fprintln(u.out, "   (fallback)")
	}
}

func (u *ConsoleUserInteraction) ShowAction(ctx context.Context, role entity.Role, a entity.ActionDescriptor) {
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(u.out, "⌨  %s [%s]\n", truncate(a.Description, 120), a.Confidence)

	dim := color.New(color.Faint)
	for _, line := range strings.Split(a.Script, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		dim.Fprintf(u.out, "   %s\n", truncate(line, 100))
	}
}

func (u *ConsoleUserInteraction) ShowResult(ctx context.Context, r entity.ExecutionResult) {
	if r.Succeeded() {
		color.New(color.FgGreen).Fprintf(u.out, "✓ %s\n", truncate(r.Observation, 150))
		return
	}
	color.New(color.FgRed).Fprintf(u.out, "❌ %s: ", r.Status)
	color.New(color.Faint).Fprintln(u.out, truncate(r.Observation, 300))
}

func (u *ConsoleUserInteraction) ShowFallback(ctx context.Context, role entity.Role, kind entity.FaultKind, retry int) {
	magenta := color.New(color.FgMagenta)
	magenta.Fprintf(u.out, "↺ %s fault (%s), fallback used, retry %d\n", role, kind, retry)
}

func (u *ConsoleUserInteraction) ShowOutcome(ctx context.Context, report *entity.RunReport) {
	if report == nil {
		return
	}
	var c *color.Color
	switch report.Outcome.Kind {
	case entity.OutcomeCompleted:
		c = color.New(color.FgGreen, color.Bold)
	case entity.OutcomeFailed:
		c = color.New(color.FgRed, color.Bold)
	default:
		c = color.New(color.FgYellow, color.Bold)
	}
	c.Fprintf(u.out, "\n%s\n", report.Summary())

	dim := color.New(color.Faint)
	dim.Fprintf(u.out, "run %s, %d history entries, %s\n", report.RunID, len(report.History), report.Duration.Round(time.Millisecond))
}

// ShowHistory prints every History entry, oldest first.
func (u *ConsoleUserInteraction) ShowHistory(report *entity.RunReport) {
	if report == nil {
		return
	}
	bold := color.New(color.Bold)
	bold.Fprintln(u.out, "\nHistory:")
	for _, e := range report.History {
		fmt.Fprintf(u.out, "%3d %-12s %s\n", e.Seq, e.Role, describeEntry(e))
	}
}

func describeEntry(e entity.HistoryEntry) string {
	switch {
	case e.Decision != nil:
		return e.Decision.String()
	case e.Action != nil:
		return fmt.Sprintf("action %q: %s", e.Action.Description, strings.ReplaceAll(e.Action.Script, "\n", "; "))
	case e.Result != nil:
		return fmt.Sprintf("%s: %s", e.Result.Status, e.Result.Observation)
	}
	return string(e.Kind)
}

func decisionDisplay(t entity.DecisionType) (string, *color.Color) {
	switch t {
	case entity.DecisionPlan:
		return "🗺 ", color.New(color.FgBlue, color.Bold)
	case entity.DecisionDelegate:
		return "➜", color.New(color.FgCyan)
	case entity.DecisionComplete:
		return "✔", color.New(color.FgGreen, color.Bold)
	case entity.DecisionError:
		return "⚠", color.New(color.FgRed)
	}
	return "•", color.New(color.Reset)
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen]) + "..."
}
