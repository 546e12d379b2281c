package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListGoals returns the full goal catalog, ordered by name.
func (s *PostgresStore) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description FROM goals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("storage: list goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, fmt.Errorf("storage: scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: read goals: %w", err)
	}
	return goals, nil
}

// GetGoal retrieves one catalog goal by id.
func (s *PostgresStore) GetGoal(ctx context.Context, id uuid.UUID) (*Goal, error) {
	var g Goal
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description FROM goals WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: get goal: %w", err)
	}
	return &g, nil
}

// UpsertGoal inserts a catalog goal or refreshes its description. Used by
// the seed command.
func (s *PostgresStore) UpsertGoal(ctx context.Context, g Goal) error {
	id := g.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO goals (id, name, description) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description`,
		id, g.Name, g.Description,
	)
	if err != nil {
		return fmt.Errorf("storage: upsert goal: %w", err)
	}
	return nil
}

// ListGoalsWithProgress returns the catalog joined with one learner's
// progress; goals without a progress row report 0.
func (s *PostgresStore) ListGoalsWithProgress(ctx context.Context, userID uuid.UUID) ([]GoalWithProgress, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT g.id, g.name, g.description, COALESCE(p.progress, 0)
		 FROM goals g
		 LEFT JOIN user_goal_progress p ON p.goal_id = g.id AND p.user_id = $1
		 ORDER BY g.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("storage: list goals with progress: %w", err)
	}
	defer rows.Close()

	var goals []GoalWithProgress
	for rows.Next() {
		var g GoalWithProgress
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Progress); err != nil {
			return nil, fmt.Errorf("storage: scan goal progress: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: read goals with progress: %w", err)
	}
	return goals, nil
}
