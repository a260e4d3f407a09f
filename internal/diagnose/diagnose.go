// Package diagnose classifies tool failures and renders remediation
// text that is attached to failed step outcomes.
package diagnose

import (
	"context"
	"fmt"
	"regexp"
)

// Category is the failure class assigned to a tool error.
type Category string

const (
	CategoryTimeout      Category = "timeout"
	CategoryNetwork      Category = "network"
	CategoryNotFound     Category = "not_found"
	CategoryRateLimit    Category = "rate_limit"
	CategoryPermission   Category = "permission"
	CategoryInvalidInput Category = "invalid_input"
	CategoryUnknown      Category = "unknown"
)

// Diagnosis is the structured classification of a single failure.
type Diagnosis struct {
	Category  Category `json:"category"`
	Summary   string   `json:"summary"`
	Retryable bool     `json:"retryable"`
	Attempt   int      `json:"attempt"`
}

// Analyzer turns a raw error message into a Diagnosis.
type Analyzer interface {
	Analyze(ctx context.Context, errMsg string, tool string, attempt int) (Diagnosis, error)
}

type rule struct {
	re        *regexp.Regexp
	category  Category
	summary   string
	retryable bool
}

// RuleAnalyzer matches error text against an ordered set of patterns.
// The first match wins; anything unmatched is CategoryUnknown.
type RuleAnalyzer struct {
	rules []rule
}

func NewRuleAnalyzer() *RuleAnalyzer {
	return &RuleAnalyzer{
		rules: []rule{
			{regexp.MustCompile(`(?i)timeout|timed out|deadline exceeded`), CategoryTimeout, "the operation took too long and was aborted", true},
			{regexp.MustCompile(`(?i)rate limit|too many requests|429`), CategoryRateLimit, "the upstream service is throttling requests", true},
			{regexp.MustCompile(`(?i)connection refused|no such host|network is unreachable|EOF`), CategoryNetwork, "the upstream service could not be reached", true},
			{regexp.MustCompile(`(?i)not found|404|no such file|does not exist`), CategoryNotFound, "the requested resource does not exist", false},
			{regexp.MustCompile(`(?i)permission denied|forbidden|401|403|unauthorized`), CategoryPermission, "access was denied", false},
			{regexp.MustCompile(`(?i)invalid input|invalid argument|unmarshal|parse|malformed`), CategoryInvalidInput, "the tool received arguments it could not understand", false},
		},
	}
}

func (a *RuleAnalyzer) Analyze(ctx context.Context, errMsg string, tool string, attempt int) (Diagnosis, error) {
	for _, r := range a.rules {
		if r.re.MatchString(errMsg) {
			return Diagnosis{
				Category:  r.category,
				Summary:   fmt.Sprintf("%s: %s", tool, r.summary),
				Retryable: r.retryable,
				Attempt:   attempt,
			}, nil
		}
	}
	return Diagnosis{
		Category: CategoryUnknown,
		Summary:  fmt.Sprintf("%s failed for an unrecognized reason", tool),
		Attempt:  attempt,
	}, nil
}

var remedies = map[Category]string{
	CategoryTimeout:      "Try again later or narrow the request so it finishes faster.",
	CategoryNetwork:      "Check connectivity to the upstream service and retry.",
	CategoryNotFound:     "Verify the name or path; the target may have moved or never existed.",
	CategoryRateLimit:    "Wait before retrying; the service imposed a cooldown.",
	CategoryPermission:   "Check credentials or workspace restrictions for this tool.",
	CategoryInvalidInput: "Review the step's arguments against the tool's schema.",
	CategoryUnknown:      "Inspect the raw error; no known failure pattern matched.",
}

// Format renders the human-readable remediation text stored alongside
// a failed outcome. It is never empty.
func Format(raw string, d Diagnosis) string {
	return fmt.Sprintf("%s [%s] %s Suggestion: %s", raw, d.Category, d.Summary+".", remedies[d.Category])
}
