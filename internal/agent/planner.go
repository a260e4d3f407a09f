package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rohan/kriya/internal/observability"
	"github.com/rohan/kriya/internal/tools"
	"github.com/tmc/langchaingo/llms"
)

// Planner turns a natural-language goal into a validated Plan with a
// single call to the language model. It performs no retries; callers
// wanting retry policy wrap Plan themselves.
type Planner struct {
	Model    llms.Model
	Registry *tools.Registry
	Prompts  *PromptManager
	Logger   *observability.Logger // optional
}

func NewPlanner(model llms.Model, registry *tools.Registry, prompts *PromptManager) *Planner {
	return &Planner{
		Model:    model,
		Registry: registry,
		Prompts:  prompts,
	}
}

// Plan asks the model to decompose goal into steps. extra carries any
// additional caller context and may be empty. Failure modes — empty
// response, malformed JSON, invalid plan shape — all surface as
// *PlanGenerationError.
func (p *Planner) Plan(ctx context.Context, goal string, extra string) (*Plan, error) {
	system := p.systemPrompt()

	user := fmt.Sprintf("GOAL: %s", goal)
	if extra != "" {
		user += fmt.Sprintf("\n\nCONTEXT: %s", extra)
	}

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextPart(system)}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart(user)}},
	}

	resp, err := p.Model.GenerateContent(ctx, messages)
	if err != nil {
		return nil, &PlanGenerationError{Reason: "model call failed", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &PlanGenerationError{Reason: "model returned no choices"}
	}

	raw := resp.Choices[0].Content
	if p.Logger != nil {
		p.Logger.LogLLM("", "", user, raw)
	}

	content := stripFences(raw)
	if content == "" {
		return nil, &PlanGenerationError{Reason: "model returned empty content"}
	}

	var plan Plan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, &PlanGenerationError{Reason: "response is not valid JSON", Err: err}
	}
	if plan.Goal == "" {
		plan.Goal = goal
	}
	if err := plan.Validate(); err != nil {
		return nil, &PlanGenerationError{Reason: "invalid plan shape", Err: err}
	}

	return &plan, nil
}

func (p *Planner) systemPrompt() string {
	base := defaultPlannerPrompt
	if p.Prompts != nil {
		if loaded, err := p.Prompts.GetPlannerPrompt(); err == nil {
			base = loaded
		}
	}

	var toolsList string
	if p.Registry != nil {
		toolsList = strings.Join(p.Registry.Describe(), "\n")
	}

	return fmt.Sprintf("%s\n\n## Available Tools:\n%s", base, toolsList)
}

const defaultPlannerPrompt = `You are a task planner. Decompose the user's goal into discrete steps.
Respond with ONLY a JSON object of the shape:
{"goal":"...","steps":[{"id":"s1","description":"...","tool":"tool_name","args":{...},"dependencies":["s0"]}]}
Rules:
- Every step id must be unique within the plan.
- "dependencies" lists the ids of steps that must finish first; use [] for none.
- "tool" names one of the available tools; omit it for a step that is only a note.
- "args" must match the chosen tool's input schema.
- Steps never read each other's outputs; each step must be self-contained.
- No markdown fences, no extra text.`

// stripFences removes surrounding Markdown code-fence markup from a
// model response, then falls back to slicing out the outermost JSON
// object for models that wrap their answer in prose.
func stripFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		return strings.TrimSpace(s)
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		return strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}

	return s
}
