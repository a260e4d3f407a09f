package agent

import (
	"context"
	"log"
	"time"

	"github.com/rohan/kriya/internal/store"
)

// Messenger is the outbound half of a gateway, used to deliver
// scheduled-goal reports.
type Messenger interface {
	Send(chatID string, text string) error
}

// GoalStore is the slice of the persistence layer the scheduler polls.
type GoalStore interface {
	DueGoals() ([]store.Goal, error)
	UpdateGoalLastRun(id int) error
	DeleteGoal(chatID string, id int) error
}

// Scheduler periodically runs stored goals through the agent and
// pushes the reports out over the gateway.
type Scheduler struct {
	Runner   Runner
	Store    GoalStore
	Gateway  Messenger
	Interval time.Duration
}

func NewScheduler(runner Runner, store GoalStore, gateway Messenger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		Runner:   runner,
		Store:    store,
		Gateway:  gateway,
		Interval: interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Println("Goal scheduler started...")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollAndRun(ctx)
		}
	}
}

func (s *Scheduler) pollAndRun(ctx context.Context) {
	goals, err := s.Store.DueGoals()
	if err != nil {
		log.Printf("Error polling goals: %v", err)
		return
	}

	for _, g := range goals {
		log.Printf("Running scheduled goal %d for chat %s: %s", g.ID, g.ChatID, g.Text)

		report, err := s.Runner.Run(ctx, g.ChatID, g.Text)
		if err != nil {
			log.Printf("Error running scheduled goal %d: %v", g.ID, err)
			continue
		}

		if err := s.Store.UpdateGoalLastRun(g.ID); err != nil {
			log.Printf("Error updating last run for goal %d: %v", g.ID, err)
		}

		// One-shot goals are removed after a successful run.
		if g.Interval == 0 {
			if err := s.Store.DeleteGoal(g.ChatID, g.ID); err != nil {
				log.Printf("Error deleting one-shot goal %d: %v", g.ID, err)
			}
		}

		if s.Gateway != nil {
			s.Gateway.Send(g.ChatID, "Scheduled goal finished\n\n"+report)
		}
	}
}
