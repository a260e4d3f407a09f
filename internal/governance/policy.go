// Package governance screens planned tool invocations before they run.
package governance

import (
	"context"
	"fmt"
	"regexp"
)

// Effect is the verdict of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request describes one planned tool invocation.
type Request struct {
	StepID    string
	Tool      string
	Arguments string
}

// Result is the outcome of evaluating a Request.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine decides whether a step's tool invocation may proceed.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine denies by tool name or by argument pattern and
// allows everything else.
type DefaultPolicyEngine struct {
	deniedTools map[string]bool
	deniedArgs  []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		deniedTools: make(map[string]bool),
	}
}

// DenyTool blocks every invocation of the named tool.
func (e *DefaultPolicyEngine) DenyTool(name string) {
	e.deniedTools[name] = true
}

// DenyArguments blocks any invocation whose raw argument string
// matches pattern.
func (e *DefaultPolicyEngine) DenyArguments(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.deniedArgs = append(e.deniedArgs, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.deniedTools[req.Tool] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("tool %q is restricted by policy", req.Tool),
		}, nil
	}

	for _, re := range e.deniedArgs {
		if re.MatchString(req.Arguments) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("arguments match restricted pattern %q", re.String()),
			}, nil
		}
	}

	return Result{Effect: EffectAllow, Reason: "allowed by default policy"}, nil
}
