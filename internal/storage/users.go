package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetUser retrieves a learner by id.
func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, focused_goal_id, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.FocusedGoalID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: get user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a learner row.
func (s *PostgresStore) CreateUser(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, focused_goal_id, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Name, u.FocusedGoalID, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("storage: create user: %w", err)
	}
	return nil
}

// UpdateUser patches the learner's name and/or focused goal, returning the
// updated row. Nil arguments leave the column unchanged.
func (s *PostgresStore) UpdateUser(ctx context.Context, id uuid.UUID, name *string, focusedGoalID *uuid.UUID) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`UPDATE users
		 SET name = COALESCE($2, name),
		     focused_goal_id = COALESCE($3, focused_goal_id)
		 WHERE id = $1
		 RETURNING id, name, focused_goal_id, created_at`,
		id, name, focusedGoalID,
	).Scan(&u.ID, &u.Name, &u.FocusedGoalID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: update user: %w", err)
	}
	return &u, nil
}
