// api/schemas/task.go
package schemas

// TaskStep is one step in an automation plan: a named action plus its
// human-readable intent.
type TaskStep struct {
	ID              string        `json:"id"`
	Action          BrowserAction `json:"action"`
	Description     string        `json:"description"`
	ExpectedOutcome *string       `json:"expected_outcome,omitempty"`
}

// TaskPlan is an ordered list of steps produced by the planner (or the
// fallback generator) for a free-form automation task. Plans are immutable
// once built.
type TaskPlan struct {
	Description string     `json:"description"`
	Steps       []TaskStep `json:"steps"`
}

// TaskResult records the outcome of a single executed step. Exactly one of
// Output and Error is set, matching Success.
type TaskResult struct {
	StepID  string  `json:"step_id"`
	Success bool    `json:"success"`
	Output  *string `json:"output,omitempty"`
	Error   *string `json:"error,omitempty"`
}
