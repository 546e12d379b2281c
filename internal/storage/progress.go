package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetProgress loads the progress row for a (user, goal) pair.
func (s *PostgresStore) GetProgress(ctx context.Context, userID, goalID uuid.UUID) (*GoalProgress, error) {
	var p GoalProgress
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, goal_id, dialogue_history, progress, revision, updated_at
		 FROM user_goal_progress WHERE user_id = $1 AND goal_id = $2`,
		userID, goalID,
	).Scan(&p.UserID, &p.GoalID, &p.DialogueHistory, &p.Progress, &p.Revision, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: get progress: %w", err)
	}
	return &p, nil
}

// UpsertProgress inserts or overwrites the progress row for (user, goal).
// The write is conditional on the stored revision still matching
// expectedRevision; a concurrent writer that got there first makes this
// call return ErrRevisionConflict with nothing written. expectedRevision 0
// means "no row yet" and performs a plain insert.
func (s *PostgresStore) UpsertProgress(ctx context.Context, p *GoalProgress, expectedRevision int) error {
	p.UpdatedAt = time.Now().UTC()

	if expectedRevision == 0 {
		p.Revision = 1
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO user_goal_progress (user_id, goal_id, dialogue_history, progress, revision, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (user_id, goal_id) DO NOTHING`,
			p.UserID, p.GoalID, p.DialogueHistory, p.Progress, p.Revision, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("storage: insert progress: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRevisionConflict
		}
		return nil
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE user_goal_progress
		 SET dialogue_history = $3, progress = $4, revision = revision + 1, updated_at = $5
		 WHERE user_id = $1 AND goal_id = $2 AND revision = $6`,
		p.UserID, p.GoalID, p.DialogueHistory, p.Progress, p.UpdatedAt, expectedRevision,
	)
	if err != nil {
		return fmt.Errorf("storage: update progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRevisionConflict
	}
	p.Revision = expectedRevision + 1
	return nil
}
