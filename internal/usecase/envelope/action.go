package envelope

import (
	"errors"
	"fmt"
	"strings"

	"gui-agent/internal/domain/entity"
)

type actionEnvelope struct {
	Role                 string `json:"role"`
	Action               string `json:"action"`
	Description          string `json:"description"`
	Program              string `json:"program"`
	Script               string `json:"script"`
	Confidence           string `json:"confidence"`
	ExpectedResult       string `json:"expected_result"`
	VerificationHint     string `json:"verification_hint"`
	VerificationRequired any    `json:"verification_required"`
}

// ParseAction extracts an ActionDescriptor from raw Executor text. The script
// is returned verbatim; validating it is the Action Runner's job.
func ParseAction(raw string) (entity.ActionDescriptor, error) {
	env, err := decodeFirst[actionEnvelope](raw)
	if err != nil {
		return entity.ActionDescriptor{}, err
	}

	script := firstNonEmpty(env.Script, env.Program)
	if script == "" {
		return entity.ActionDescriptor{}, errors.Join(ErrIncomplete, errors.New("action has no script"))
	}

	a := entity.ActionDescriptor{
		Description:      firstNonEmpty(env.Description, env.Action),
		Script:           script,
		Confidence:       entity.ParseConfidence(env.Confidence),
		ExpectedResult:   strings.TrimSpace(env.ExpectedResult),
		VerificationHint: verificationHint(env),
	}
	if a.Description == "" {
		a.Description = firstLine(script)
	}
	return a, nil
}

func verificationHint(env actionEnvelope) string {
	if env.VerificationHint != "" {
		return strings.TrimSpace(env.VerificationHint)
	}
	switch v := env.VerificationRequired.(type) {
	case bool:
		if v {
			return "verification required"
		}
	case string:
		return strings.TrimSpace(v)
	case nil:
	default:
		return fmt.Sprint(v)
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\n;"); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
