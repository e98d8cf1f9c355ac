package roles

import (
	"fmt"
	"strings"

	"gui-agent/internal/domain/entity"
)

// renderHistory writes recent entries as short numbered lines for the model.
func renderHistory(entries []entity.HistoryEntry) string {
	if len(entries) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "#%d %s ", e.Seq, e.Role)
		switch {
		case e.Decision != nil:
			fmt.Fprintf(&b, "decided %s", e.Decision)
		case e.Action != nil:
			fmt.Fprintf(&b, "action %q script=%s", e.Action.Description, e.Action.Script)
			if e.Action.ExpectedResult != "" {
				fmt.Fprintf(&b, " expected=%q", e.Action.ExpectedResult)
			}
		case e.Result != nil:
			fmt.Fprintf(&b, "result %s: %s", e.Result.Status, e.Result.Observation)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
