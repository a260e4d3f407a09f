package store

import "time"

// Run is one recorded planning + execution round for a goal.
type Run struct {
	ID        string
	ChatID    string
	Goal      string
	Status    string // running, completed, completed_with_failures, gridlocked, plan_failed
	CreatedAt time.Time
}

// StepResult is the persisted outcome of one plan step.
type StepResult struct {
	RunID  string
	StepID string
	Status string
	Output string
	Error  string
	Detail string
}

// Goal is a recurring or one-shot scheduled goal. Interval of zero
// means run once and delete.
type Goal struct {
	ID       int
	ChatID   string
	Text     string
	Interval int
}
