package tools

import (
	"context"
	"strings"
	"testing"
)

type fakeGoalStore struct {
	added   []string
	cleared []string
}

func (s *fakeGoalStore) AddGoal(chatID string, goal string, intervalSeconds int) error {
	s.added = append(s.added, goal)
	return nil
}

func (s *fakeGoalStore) ClearGoals(chatID string) error {
	s.cleared = append(s.cleared, chatID)
	return nil
}

func TestSchedule_AddRecurring(t *testing.T) {
	store := &fakeGoalStore{}
	tool := NewScheduleTool(store)

	out, err := tool.Execute(context.Background(), `{"action":"schedule","goal":"check the price","interval_seconds":300,"chat_id":"42"}`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "every 300 seconds") {
		t.Errorf("Unexpected confirmation: %q", out)
	}
	if len(store.added) != 1 || store.added[0] != "check the price" {
		t.Errorf("Goal not stored: %v", store.added)
	}
}

func TestSchedule_AddOneShot(t *testing.T) {
	store := &fakeGoalStore{}
	tool := NewScheduleTool(store)

	out, err := tool.Execute(context.Background(), `{"action":"schedule","goal":"remind me","interval_seconds":0,"chat_id":"42"}`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "one-shot") {
		t.Errorf("Unexpected confirmation: %q", out)
	}
}

func TestSchedule_Clear(t *testing.T) {
	store := &fakeGoalStore{}
	tool := NewScheduleTool(store)

	if _, err := tool.Execute(context.Background(), `{"action":"clear","chat_id":"42"}`); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(store.cleared) != 1 || store.cleared[0] != "42" {
		t.Errorf("Clear not forwarded: %v", store.cleared)
	}
}

func TestSchedule_Validation(t *testing.T) {
	tool := NewScheduleTool(&fakeGoalStore{})
	ctx := context.Background()

	cases := []string{
		`{"action":"schedule","goal":"x","interval_seconds":30,"chat_id":"42"}`, // below minimum interval
		`{"action":"schedule","interval_seconds":300,"chat_id":"42"}`,           // missing goal
		`{"action":"schedule","goal":"x","interval_seconds":300}`,               // missing chat_id
		`{"action":"explode","chat_id":"42"}`,                                   // unknown action
	}
	for _, input := range cases {
		if _, err := tool.Execute(ctx, input); err == nil {
			t.Errorf("Expected an error for %s", input)
		}
	}
}
