package agent

import (
	"fmt"
	"strings"
)

// PlanGenerationError is returned by the Planner when the model's
// response cannot be turned into a valid Plan.
type PlanGenerationError struct {
	Reason string
	Err    error
}

func (e *PlanGenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plan generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("plan generation failed: %s", e.Reason)
}

func (e *PlanGenerationError) Unwrap() error { return e.Err }

// GridlockError is the only fatal, whole-plan failure: no step is
// runnable and none is in flight, so the remaining steps can never
// start. It covers both dependency cycles and references to ids that
// do not exist in the plan.
type GridlockError struct {
	Remaining []string
}

func (e *GridlockError) Error() string {
	return fmt.Sprintf("execution gridlocked: steps [%s] can never become runnable", strings.Join(e.Remaining, ", "))
}

// ToolNotFoundError marks a step whose tool name has no entry in the
// registry. It is recorded in that step's outcome, never raised.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found in registry", e.Tool)
}

// ToolExecutionError wraps a tool invocation failure. Like
// ToolNotFoundError it stays inside the step's outcome.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
