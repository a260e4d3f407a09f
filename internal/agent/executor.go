package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rohan/kriya/internal/diagnose"
	"github.com/rohan/kriya/internal/governance"
	"github.com/rohan/kriya/internal/observability"
	"github.com/rohan/kriya/internal/tools"
)

// Executor drives a Plan to completion. Steps with satisfied
// dependencies are dispatched concurrently in batches; a failed step
// still counts as completed so its dependents run (best-effort policy:
// the engine enforces completion ordering, not success propagation).
//
// The coordinator goroutine is the only writer of scheduler state.
// Dispatched steps hand their outcome back over a channel and never
// touch the pending/completed sets or the results map themselves.
type Executor struct {
	Registry *tools.Registry
	Analyzer diagnose.Analyzer
	Policy   governance.PolicyEngine // optional, nil allows everything
	Logger   *observability.Logger   // optional
	ChatID   string
	RunID    string
}

func NewExecutor(registry *tools.Registry, analyzer diagnose.Analyzer) *Executor {
	return &Executor{
		Registry: registry,
		Analyzer: analyzer,
	}
}

// Execute runs every step of the plan and returns one outcome per
// step, keyed by step id. The only fatal error is gridlock: no step is
// runnable and none is in flight, which happens when dependencies form
// a cycle or name ids missing from the plan. On gridlock the outcomes
// recorded so far are returned alongside the error.
//
// Execute does not retry steps and cannot cancel a step once it has
// been dispatched; ctx is only passed through to tool invocations.
func (e *Executor) Execute(ctx context.Context, plan *Plan) (map[string]StepOutcome, error) {
	pending := make(map[string]PlanStep, len(plan.Steps))
	for _, s := range plan.Steps {
		pending[s.ID] = s
	}
	completed := make(map[string]bool, len(plan.Steps))
	results := make(map[string]StepOutcome, len(plan.Steps))
	outcomes := make(chan StepOutcome)

	for len(pending) > 0 {
		// Runnable: pending steps whose every dependency is terminal.
		// Iterating plan.Steps keeps the dispatch order stable.
		var batch []PlanStep
		for _, s := range plan.Steps {
			if _, ok := pending[s.ID]; !ok {
				continue
			}
			if depsSatisfied(s, completed) {
				batch = append(batch, s)
			}
		}

		// Nothing runnable and nothing in flight: the remaining steps
		// can never start. Fail the whole plan instead of hanging.
		if len(batch) == 0 {
			remaining := make([]string, 0, len(pending))
			for id := range pending {
				remaining = append(remaining, id)
			}
			sort.Strings(remaining)
			if e.Logger != nil {
				e.Logger.LogGridlock(e.ChatID, e.RunID, remaining)
			}
			return results, &GridlockError{Remaining: remaining}
		}

		// Dispatch the whole batch; steps within it run concurrently
		// with no mutual ordering.
		for _, s := range batch {
			delete(pending, s.ID)
			go func(step PlanStep) {
				outcomes <- e.runStep(ctx, step)
			}(s)
		}

		// Join point: collect every outcome of this batch, then
		// re-evaluate readiness.
		for range batch {
			out := <-outcomes
			completed[out.StepID] = true
			results[out.StepID] = out
			if e.Logger != nil {
				e.Logger.LogStep(e.ChatID, e.RunID, out.StepID, string(out.Status))
			}
		}
	}

	return results, nil
}

func depsSatisfied(s PlanStep, completed map[string]bool) bool {
	for _, dep := range s.Dependencies {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// runStep executes a single step to its terminal outcome. Every
// failure is captured in the outcome; nothing escapes as an error.
func (e *Executor) runStep(ctx context.Context, step PlanStep) StepOutcome {
	if step.Tool == "" {
		return StepOutcome{
			StepID: step.ID,
			Status: OutcomeSkipped,
			Reason: SkipReasonNoTool,
		}
	}

	args, err := json.Marshal(step.Args)
	if err != nil {
		return e.failOutcome(ctx, step, &ToolExecutionError{Tool: step.Tool, Err: fmt.Errorf("encode args: %w", err)})
	}

	if e.Policy != nil {
		verdict, err := e.Policy.Evaluate(ctx, governance.Request{
			StepID:    step.ID,
			Tool:      step.Tool,
			Arguments: string(args),
		})
		if err == nil && verdict.Effect == governance.EffectDeny {
			return e.failOutcome(ctx, step, &ToolExecutionError{Tool: step.Tool, Err: fmt.Errorf("blocked by policy: %s", verdict.Reason)})
		}
	}

	tool := e.Registry.Get(step.Tool)
	if tool == nil {
		return e.failOutcome(ctx, step, &ToolNotFoundError{Tool: step.Tool})
	}

	if e.Logger != nil {
		e.Logger.LogToolCall(e.ChatID, e.RunID, step.Tool, string(args))
	}

	output, err := tool.Execute(ctx, string(args))
	if err != nil {
		return e.failOutcome(ctx, step, &ToolExecutionError{Tool: step.Tool, Err: err})
	}

	return StepOutcome{
		StepID: step.ID,
		Status: OutcomeCompleted,
		Output: output,
	}
}

// failOutcome records the raw error together with its diagnosis and
// remediation text. attempt is always 1: the engine never retries.
func (e *Executor) failOutcome(ctx context.Context, step PlanStep, cause error) StepOutcome {
	raw := cause.Error()

	out := StepOutcome{
		StepID: step.ID,
		Status: OutcomeFailed,
		Error:  raw,
	}

	if e.Analyzer != nil {
		d, err := e.Analyzer.Analyze(ctx, raw, step.Tool, 1)
		if err == nil {
			out.Analysis = &d
			out.Detail = diagnose.Format(raw, d)
			if e.Logger != nil {
				e.Logger.LogDiagnosis(e.ChatID, e.RunID, step.ID, d)
			}
		}
	}
	if out.Detail == "" {
		out.Detail = raw
	}

	return out
}
