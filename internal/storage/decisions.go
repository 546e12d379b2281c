package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InsertDecision records one immutable audit row for a submitted decision.
func (s *PostgresStore) InsertDecision(ctx context.Context, d *DecisionRecord) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if d.MetricDeltas == nil {
		d.MetricDeltas = map[string]float64{}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_decisions (id, user_id, goal_id, decision_index, option_index, is_scaffold, metric_deltas, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.UserID, d.GoalID, d.DecisionIndex, d.OptionIndex, d.IsScaffold, d.MetricDeltas, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("storage: insert decision: %w", err)
	}
	return nil
}

// ListDecisions returns the learner's decision audit log, oldest first.
func (s *PostgresStore) ListDecisions(ctx context.Context, userID uuid.UUID) ([]DecisionRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, goal_id, decision_index, option_index, is_scaffold, metric_deltas, created_at
		 FROM user_decisions WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("storage: list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []DecisionRecord
	for rows.Next() {
		var d DecisionRecord
		if err := rows.Scan(&d.ID, &d.UserID, &d.GoalID, &d.DecisionIndex, &d.OptionIndex,
			&d.IsScaffold, &d.MetricDeltas, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: read decisions: %w", err)
	}
	return decisions, nil
}
