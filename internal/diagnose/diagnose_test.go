package diagnose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

func TestRuleAnalyzer_Categories(t *testing.T) {
	cases := []struct {
		errMsg    string
		category  Category
		retryable bool
	}{
		{"context deadline exceeded", CategoryTimeout, true},
		{"HTTP 429 Too Many Requests", CategoryRateLimit, true},
		{"dial tcp: connection refused", CategoryNetwork, true},
		{"open /tmp/x: no such file or directory", CategoryNotFound, false},
		{"HTTP 403 Forbidden", CategoryPermission, false},
		{"json: cannot unmarshal string into int", CategoryInvalidInput, false},
		{"something completely unexpected", CategoryUnknown, false},
	}

	a := NewRuleAnalyzer()
	for _, tc := range cases {
		d, err := a.Analyze(context.Background(), tc.errMsg, "web_search", 1)
		if err != nil {
			t.Fatalf("%q: Analyze failed: %v", tc.errMsg, err)
		}
		if d.Category != tc.category {
			t.Errorf("%q: expected category %s, got %s", tc.errMsg, tc.category, d.Category)
		}
		if d.Retryable != tc.retryable {
			t.Errorf("%q: expected retryable=%v", tc.errMsg, tc.retryable)
		}
		if d.Attempt != 1 {
			t.Errorf("%q: expected attempt 1, got %d", tc.errMsg, d.Attempt)
		}
		if !strings.Contains(d.Summary, "web_search") {
			t.Errorf("%q: summary should name the tool, got %q", tc.errMsg, d.Summary)
		}
	}
}

func TestRuleAnalyzer_FirstMatchWins(t *testing.T) {
	// Mentions both a timeout and a 404; timeout patterns are checked first.
	a := NewRuleAnalyzer()
	d, _ := a.Analyze(context.Background(), "request timed out fetching a 404 page", "scraper", 1)
	if d.Category != CategoryTimeout {
		t.Errorf("Expected timeout to win, got %s", d.Category)
	}
}

func TestFormat_NeverEmpty(t *testing.T) {
	for _, c := range []Category{CategoryTimeout, CategoryNetwork, CategoryNotFound,
		CategoryRateLimit, CategoryPermission, CategoryInvalidInput, CategoryUnknown} {
		out := Format("raw error", Diagnosis{Category: c, Summary: "x"})
		if out == "" {
			t.Errorf("%s: Format returned empty text", c)
		}
		if !strings.Contains(out, "raw error") {
			t.Errorf("%s: Format dropped the raw error, got %q", c, out)
		}
		if !strings.Contains(out, "Suggestion:") {
			t.Errorf("%s: Format missing a suggestion, got %q", c, out)
		}
	}
}

type stubModel struct {
	response string
	err      error
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.response}}}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return m.response, m.err
}

func TestModelAnalyzer_UsesModelVerdict(t *testing.T) {
	a := NewModelAnalyzer(&stubModel{response: `{"category":"rate_limit","summary":"throttled by the API","retryable":true}`})

	d, err := a.Analyze(context.Background(), "weird provider error", "crypto_price", 2)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if d.Category != CategoryRateLimit {
		t.Errorf("Expected rate_limit from model, got %s", d.Category)
	}
	if d.Attempt != 2 {
		t.Errorf("Attempt must come from the caller, got %d", d.Attempt)
	}
}

func TestModelAnalyzer_FallsBackOnModelError(t *testing.T) {
	a := NewModelAnalyzer(&stubModel{err: errors.New("provider down")})

	d, err := a.Analyze(context.Background(), "connection refused", "scraper", 1)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if d.Category != CategoryNetwork {
		t.Errorf("Expected rule fallback network, got %s", d.Category)
	}
}

func TestModelAnalyzer_FallsBackOnJunkResponse(t *testing.T) {
	a := NewModelAnalyzer(&stubModel{response: `{"category":"made_up","summary":"?"}`})

	d, err := a.Analyze(context.Background(), "request timed out", "shell", 1)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if d.Category != CategoryTimeout {
		t.Errorf("Expected rule fallback timeout, got %s", d.Category)
	}
}

func TestModelAnalyzer_NilModelUsesRules(t *testing.T) {
	a := &ModelAnalyzer{Fallback: NewRuleAnalyzer()}
	d, err := a.Analyze(context.Background(), "permission denied", "filesystem", 1)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if d.Category != CategoryPermission {
		t.Errorf("Expected permission, got %s", d.Category)
	}
}
