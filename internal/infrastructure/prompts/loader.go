package prompts

import (
	_ "embed"
)

//go:embed planner.txt
var PlannerPrompt string

//go:embed executor.txt
var ExecutorPrompt string

//go:embed verifier.txt
var VerifierPrompt string
