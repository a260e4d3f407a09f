package governance

import (
	"context"
	"testing"
)

func TestDefaultPolicy_AllowsByDefault(t *testing.T) {
	e := NewDefaultPolicyEngine()
	res, err := e.Evaluate(context.Background(), Request{StepID: "s1", Tool: "web_search", Arguments: `{"query":"weather"}`})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectAllow {
		t.Errorf("Expected allow, got %s (%s)", res.Effect, res.Reason)
	}
}

func TestDefaultPolicy_DenyTool(t *testing.T) {
	e := NewDefaultPolicyEngine()
	e.DenyTool("shell")

	res, _ := e.Evaluate(context.Background(), Request{Tool: "shell", Arguments: `{"command":"ls"}`})
	if res.Effect != EffectDeny {
		t.Error("Expected denied tool to be blocked")
	}
	if res.Reason == "" {
		t.Error("Denial must carry a reason")
	}

	res, _ = e.Evaluate(context.Background(), Request{Tool: "web_search"})
	if res.Effect != EffectAllow {
		t.Error("Other tools must stay allowed")
	}
}

func TestDefaultPolicy_DenyArguments(t *testing.T) {
	e := NewDefaultPolicyEngine()
	if err := e.DenyArguments(`rm\s+-rf`); err != nil {
		t.Fatal(err)
	}

	res, _ := e.Evaluate(context.Background(), Request{Tool: "shell", Arguments: `{"command":"rm -rf /"}`})
	if res.Effect != EffectDeny {
		t.Error("Expected matching arguments to be blocked")
	}

	res, _ = e.Evaluate(context.Background(), Request{Tool: "shell", Arguments: `{"command":"ls -la"}`})
	if res.Effect != EffectAllow {
		t.Error("Non-matching arguments must stay allowed")
	}
}

func TestDefaultPolicy_InvalidPattern(t *testing.T) {
	e := NewDefaultPolicyEngine()
	if err := e.DenyArguments(`([`); err == nil {
		t.Error("Expected an error for an invalid pattern")
	}
}
