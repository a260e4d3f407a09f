package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// GoalStore is the slice of the persistence layer the schedule tool
// writes through.
type GoalStore interface {
	AddGoal(chatID string, goal string, intervalSeconds int) error
	ClearGoals(chatID string) error
}

// ScheduleTool lets a plan register recurring or one-shot goals that
// the heartbeat scheduler later picks up.
type ScheduleTool struct {
	Store GoalStore
}

func NewScheduleTool(store GoalStore) *ScheduleTool {
	return &ScheduleTool{Store: store}
}

func (s *ScheduleTool) Name() string {
	return "schedule_goal"
}

func (s *ScheduleTool) Description() string {
	return "Manage recurring goals: 'schedule' a new goal or 'clear' all current ones."
}

func (s *ScheduleTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"schedule", "clear"},
				"description": "Whether to 'schedule' a new goal or 'clear' all existing ones",
			},
			"goal": map[string]any{
				"type":        "string",
				"description": "What to do when the goal fires (only for 'schedule')",
			},
			"interval_seconds": map[string]any{
				"type":        "integer",
				"description": "Repeat interval in seconds, minimum 60; 0 means run once (only for 'schedule')",
			},
			"chat_id": map[string]any{
				"type":        "string",
				"description": "The chat to notify when the goal runs",
			},
		},
		"required": []string{"action", "chat_id"},
	}
}

func (s *ScheduleTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Action   string `json:"action"`
		Goal     string `json:"goal"`
		Interval int    `json:"interval_seconds"`
		ChatID   string `json:"chat_id"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}
	if args.ChatID == "" {
		return "", fmt.Errorf("invalid input: chat_id is required")
	}

	switch args.Action {
	case "clear":
		if err := s.Store.ClearGoals(args.ChatID); err != nil {
			return "", fmt.Errorf("failed to clear goals: %v", err)
		}
		return "Successfully cleared all scheduled goals.", nil

	case "schedule":
		if args.Goal == "" {
			return "", fmt.Errorf("invalid input: goal is required for 'schedule'")
		}
		if args.Interval != 0 && args.Interval < 60 {
			return "", fmt.Errorf("invalid input: minimum interval is 60 seconds")
		}
		if err := s.Store.AddGoal(args.ChatID, args.Goal, args.Interval); err != nil {
			return "", fmt.Errorf("failed to schedule goal: %v", err)
		}
		if args.Interval == 0 {
			return fmt.Sprintf("Scheduled one-shot goal: %q", args.Goal), nil
		}
		return fmt.Sprintf("Scheduled goal %q every %d seconds.", args.Goal, args.Interval), nil

	default:
		return "", fmt.Errorf("invalid input: unknown action %q", args.Action)
	}
}
