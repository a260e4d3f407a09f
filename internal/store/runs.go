package store

import (
	"database/sql"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
)

// RunStore persists runs, step results and scheduled goals in sqlite.
type RunStore struct {
	DB *sql.DB
}

func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			chat_id TEXT,
			goal TEXT,
			status TEXT DEFAULT 'running',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS step_results (
			run_id TEXT,
			step_id TEXT,
			status TEXT,
			output TEXT,
			error TEXT,
			detail TEXT,
			PRIMARY KEY (run_id, step_id)
		);`,
		`CREATE TABLE IF NOT EXISTS goals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id TEXT,
			goal TEXT,
			interval_seconds INTEGER,
			last_run DATETIME,
			status TEXT DEFAULT 'active'
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &RunStore{DB: db}, nil
}

// CreateRun inserts a new run record and returns its id.
func (s *RunStore) CreateRun(chatID string, goal string) (string, error) {
	id := uuid.NewString()
	query := `INSERT INTO runs (id, chat_id, goal) VALUES (?, ?, ?)`
	if _, err := s.DB.Exec(query, id, chatID, goal); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RunStore) FinishRun(runID string, status string) error {
	query := `UPDATE runs SET status = ? WHERE id = ?`
	_, err := s.DB.Exec(query, status, runID)
	return err
}

func (s *RunStore) SaveStepResult(runID, stepID, status, output, errMsg, detail string) error {
	query := `INSERT OR REPLACE INTO step_results (run_id, step_id, status, output, error, detail) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.DB.Exec(query, runID, stepID, status, output, errMsg, detail)
	return err
}

// StepResults returns the persisted outcomes of a run.
func (s *RunStore) StepResults(runID string) ([]StepResult, error) {
	query := `SELECT run_id, step_id, status, output, error, detail FROM step_results WHERE run_id = ?`
	rows, err := s.DB.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StepResult
	for rows.Next() {
		var r StepResult
		if err := rows.Scan(&r.RunID, &r.StepID, &r.Status, &r.Output, &r.Error, &r.Detail); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// AddGoal schedules a goal. intervalSeconds of zero means one-shot.
func (s *RunStore) AddGoal(chatID string, goal string, intervalSeconds int) error {
	query := `INSERT INTO goals (chat_id, goal, interval_seconds, last_run) VALUES (?, ?, ?, datetime('now', '-365 days'))`
	_, err := s.DB.Exec(query, chatID, goal, intervalSeconds)
	return err
}

// DueGoals returns every active goal whose interval has elapsed since
// its last run.
func (s *RunStore) DueGoals() ([]Goal, error) {
	query := `
		SELECT id, chat_id, goal, interval_seconds
		FROM goals
		WHERE status = 'active'
		AND (last_run IS NULL OR (julianday('now') - julianday(last_run)) * 86400 >= interval_seconds)`
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.ChatID, &g.Text, &g.Interval); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *RunStore) UpdateGoalLastRun(id int) error {
	query := `UPDATE goals SET last_run = datetime('now') WHERE id = ?`
	_, err := s.DB.Exec(query, id)
	return err
}

func (s *RunStore) DeleteGoal(chatID string, id int) error {
	query := `DELETE FROM goals WHERE chat_id = ? AND id = ?`
	_, err := s.DB.Exec(query, chatID, id)
	return err
}

func (s *RunStore) ClearGoals(chatID string) error {
	query := `DELETE FROM goals WHERE chat_id = ?`
	_, err := s.DB.Exec(query, chatID)
	return err
}
