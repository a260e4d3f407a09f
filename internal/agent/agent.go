package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rohan/kriya/internal/diagnose"
	"github.com/rohan/kriya/internal/governance"
	"github.com/rohan/kriya/internal/observability"
	"github.com/rohan/kriya/internal/tools"
)

// Runner is the goal-in, report-out surface the gateways talk to.
type Runner interface {
	Run(ctx context.Context, chatID string, goal string) (string, error)
}

// RunStore is the slice of the persistence layer the agent needs.
type RunStore interface {
	CreateRun(chatID string, goal string) (string, error)
	FinishRun(runID string, status string) error
	SaveStepResult(runID, stepID, status, output, errMsg, detail string) error
}

// Agent glues the Planner and Executor together: plan the goal, run
// the plan, persist the outcomes, render a report.
type Agent struct {
	Planner  *Planner
	Registry *tools.Registry
	Analyzer diagnose.Analyzer
	Policy   governance.PolicyEngine
	Store    RunStore
	Logger   *observability.Logger
}

func NewAgent(planner *Planner, registry *tools.Registry, analyzer diagnose.Analyzer, store RunStore, logger *observability.Logger) *Agent {
	return &Agent{
		Planner:  planner,
		Registry: registry,
		Analyzer: analyzer,
		Store:    store,
		Logger:   logger,
	}
}

func (a *Agent) Run(ctx context.Context, chatID string, goal string) (string, error) {
	observability.SetPhase(observability.PhasePlanning, goal)
	defer observability.SetPhase(observability.PhaseIdle, "")

	var runID string
	if a.Store != nil {
		id, err := a.Store.CreateRun(chatID, goal)
		if err == nil {
			runID = id
		}
	}

	plan, err := a.Planner.Plan(ctx, goal, "")
	if err != nil {
		a.finish(runID, "plan_failed")
		return "", err
	}

	if a.Logger != nil {
		a.Logger.LogPlan(chatID, runID, goal, len(plan.Steps))
	}

	observability.SetPhase(observability.PhaseExecuting, goal)

	// A fresh Executor per run: scheduler state is owned by this call,
	// nothing global.
	exec := &Executor{
		Registry: a.Registry,
		Analyzer: a.Analyzer,
		Policy:   a.Policy,
		Logger:   a.Logger,
		ChatID:   chatID,
		RunID:    runID,
	}

	outcomes, err := exec.Execute(ctx, plan)
	a.persistOutcomes(runID, outcomes)
	if err != nil {
		a.finish(runID, "gridlocked")
		return "", err
	}

	status := "completed"
	for _, o := range outcomes {
		if o.Failed() {
			status = "completed_with_failures"
			break
		}
	}
	a.finish(runID, status)

	return formatReport(plan, outcomes), nil
}

func (a *Agent) finish(runID, status string) {
	if a.Store != nil && runID != "" {
		_ = a.Store.FinishRun(runID, status)
	}
}

func (a *Agent) persistOutcomes(runID string, outcomes map[string]StepOutcome) {
	if a.Store == nil || runID == "" {
		return
	}
	for _, o := range outcomes {
		_ = a.Store.SaveStepResult(runID, o.StepID, string(o.Status), o.Output, o.Error, o.Detail)
	}
}

// formatReport renders the per-step results in plan order.
func formatReport(plan *Plan, outcomes map[string]StepOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n\n", plan.Goal)

	done, failed, skipped := 0, 0, 0
	for _, s := range plan.Steps {
		o, ok := outcomes[s.ID]
		if !ok {
			continue
		}
		switch o.Status {
		case OutcomeCompleted:
			done++
			fmt.Fprintf(&b, "[done] %s - %s\n", s.ID, s.Description)
			if out := truncate(o.Output, 200); out != "" {
				fmt.Fprintf(&b, "       %s\n", out)
			}
		case OutcomeSkipped:
			skipped++
			fmt.Fprintf(&b, "[skip] %s - %s (%s)\n", s.ID, s.Description, o.Reason)
		case OutcomeFailed:
			failed++
			fmt.Fprintf(&b, "[fail] %s - %s\n", s.ID, s.Description)
			fmt.Fprintf(&b, "       %s\n", truncate(o.Detail, 300))
		}
	}

	fmt.Fprintf(&b, "\n%d done, %d failed, %d skipped of %d steps", done, failed, skipped, len(plan.Steps))
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
