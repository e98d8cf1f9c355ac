package entity

// Role names the component that produced a history entry or a fault.
type Role string

const (
	RolePlanner      Role = "planner"
	RoleExecutor     Role = "executor"
	RoleVerifier     Role = "verifier"
	RoleMatcher      Role = "matcher"
	RoleRunner       Role = "runner"
	RoleOrchestrator Role = "orchestrator"
)

func (r Role) String() string {
	return string(r)
}
