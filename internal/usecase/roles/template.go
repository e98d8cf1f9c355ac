package roles

import (
	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
	"gui-agent/internal/infrastructure/prompts"
)

// RoleTemplate is the fixed per-role model configuration. Sampling values are
// part of the role contract and are not user configurable.
type RoleTemplate struct {
	Role        entity.Role
	Prompt      string
	Temperature float32
	TopP        float32
	MaxTokens   int
}

const maxTokens = 1024

// Templates holds the rendered template of each role.
type Templates struct {
	Planner  RoleTemplate
	Executor RoleTemplate
	Verifier RoleTemplate
}

// DefaultTemplates renders the embedded prompts against the primitive
// allow-list so the model is told exactly what the Action Runner accepts.
func DefaultTemplates(registry output.PrimitiveRegistry) (Templates, error) {
	planner, err := prompts.GenerateRolePrompt("planner", prompts.PlannerPrompt, registry)
	if err != nil {
		return Templates{}, err
	}
	executor, err := prompts.GenerateRolePrompt("executor", prompts.ExecutorPrompt, registry)
	if err != nil {
		return Templates{}, err
	}
	verifier, err := prompts.GenerateRolePrompt("verifier", prompts.VerifierPrompt, registry)
	if err != nil {
		return Templates{}, err
	}
	return Templates{
		Planner:  RoleTemplate{Role: entity.RolePlanner, Prompt: planner, Temperature: 0.7, TopP: 0.9, MaxTokens: maxTokens},
		Executor: RoleTemplate{Role: entity.RoleExecutor, Prompt: executor, Temperature: 0.2, TopP: 0.9, MaxTokens: maxTokens},
		Verifier: RoleTemplate{Role: entity.RoleVerifier, Prompt: verifier, Temperature: 0.2, TopP: 0.9, MaxTokens: maxTokens},
	}, nil
}
