package diagnose

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const classifierPrompt = `You are an error classifier for an automation agent.
Given a tool failure, respond with ONLY a JSON object of the shape
{"category":"timeout|network|not_found|rate_limit|permission|invalid_input|unknown","summary":"one sentence","retryable":true|false}.
No markdown fences, no extra text.`

// ModelAnalyzer asks an LLM to classify a failure and falls back to
// rule matching when the model is unavailable or answers with junk.
type ModelAnalyzer struct {
	Model    llms.Model
	Fallback *RuleAnalyzer
}

func NewModelAnalyzer(model llms.Model) *ModelAnalyzer {
	return &ModelAnalyzer{Model: model, Fallback: NewRuleAnalyzer()}
}

func (a *ModelAnalyzer) Analyze(ctx context.Context, errMsg string, tool string, attempt int) (Diagnosis, error) {
	if a.Model == nil {
		return a.Fallback.Analyze(ctx, errMsg, tool, attempt)
	}

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextPart(classifierPrompt)}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{
			llms.TextPart(fmt.Sprintf("Tool: %s\nAttempt: %d\nError: %s", tool, attempt, errMsg)),
		}},
	}

	resp, err := a.Model.GenerateContent(ctx, messages)
	if err != nil || len(resp.Choices) == 0 {
		return a.Fallback.Analyze(ctx, errMsg, tool, attempt)
	}

	var d Diagnosis
	content := trimToObject(resp.Choices[0].Content)
	if err := json.Unmarshal([]byte(content), &d); err != nil || !validCategory(d.Category) {
		return a.Fallback.Analyze(ctx, errMsg, tool, attempt)
	}
	d.Attempt = attempt
	return d, nil
}

func validCategory(c Category) bool {
	switch c {
	case CategoryTimeout, CategoryNetwork, CategoryNotFound, CategoryRateLimit,
		CategoryPermission, CategoryInvalidInput, CategoryUnknown:
		return true
	}
	return false
}

// trimToObject cuts the response down to the outermost JSON object, which
// tolerates models that wrap their answer in prose anyway.
func trimToObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
