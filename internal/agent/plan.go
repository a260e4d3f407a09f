package agent

import (
	"fmt"

	"github.com/rohan/kriya/internal/diagnose"
)

// Plan is a goal plus the directed graph of steps that fulfills it.
// A Plan is built once by the Planner and is read-only afterwards.
type Plan struct {
	Goal  string     `json:"goal"`
	Steps []PlanStep `json:"steps"`
}

// PlanStep is a single unit of work within a Plan. Steps reference each
// other only by ID through Dependencies; no step output flows into
// another step's Args.
type PlanStep struct {
	ID           string         `json:"id"`
	Description  string         `json:"description"`
	Tool         string         `json:"tool,omitempty"`
	Args         map[string]any `json:"args,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
}

// Validate checks the structural shape of a plan: at least one step,
// and every step carrying a unique non-empty id. Dependency ids are
// deliberately not checked here; a dangling or cyclic reference only
// shows up as gridlock while executing.
func (p *Plan) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}
	seen := make(map[string]bool, len(p.Steps))
	for i, s := range p.Steps {
		if s.ID == "" {
			return fmt.Errorf("step %d has an empty id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate step id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// OutcomeStatus is the terminal state of an executed step.
type OutcomeStatus string

const (
	OutcomeCompleted OutcomeStatus = "completed"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeFailed    OutcomeStatus = "failed"
)

// SkipReasonNoTool marks a step that declared no tool and therefore
// ran as a no-op.
const SkipReasonNoTool = "no_tool_specified"

// StepOutcome records the terminal result of one step. Exactly one
// outcome exists per dispatched or skipped step and it is never
// mutated afterwards.
type StepOutcome struct {
	StepID string        `json:"step_id"`
	Status OutcomeStatus `json:"status"`

	// Output holds the tool's raw return value for completed steps.
	Output string `json:"output,omitempty"`

	// Reason explains a skipped step.
	Reason string `json:"reason,omitempty"`

	// Error is the raw failure message, Detail the remediation-enhanced
	// text, Analysis the classification from the error analyzer.
	Error    string              `json:"error,omitempty"`
	Detail   string              `json:"detail,omitempty"`
	Analysis *diagnose.Diagnosis `json:"analysis,omitempty"`
}

// Failed reports whether the step ended in failure.
func (o StepOutcome) Failed() bool {
	return o.Status == OutcomeFailed
}
