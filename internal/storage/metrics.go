package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// GetMetrics returns every catalog metric with the learner's current value.
// Metrics the learner has not touched yet report their default.
func (s *PostgresStore) GetMetrics(ctx context.Context, userID uuid.UUID) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.name, COALESCE(um.value, m.default_value)
		 FROM metrics m
		 LEFT JOIN user_metrics um ON um.metric_id = m.id AND um.user_id = $1
		 ORDER BY m.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("storage: get metrics: %w", err)
	}
	defer rows.Close()

	metrics := make(map[string]float64)
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("storage: scan metric: %w", err)
		}
		metrics[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: read metrics: %w", err)
	}
	return metrics, nil
}

// IncrementMetric adds delta to the learner's running total for the named
// metric, inserting the row at default+delta when absent. The result is
// clamped to the metric's floor when the catalog defines one. An unknown
// metric name returns ErrNotFound so callers can decide whether to drop the
// delta or fail.
func (s *PostgresStore) IncrementMetric(ctx context.Context, userID uuid.UUID, metric string, delta float64) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO user_metrics (user_id, metric_id, value)
		 SELECT $1, m.id, GREATEST(m.default_value + $3, COALESCE(m.floor_value, m.default_value + $3))
		 FROM metrics m WHERE m.name = $2
		 ON CONFLICT (user_id, metric_id) DO UPDATE
		 SET value = GREATEST(user_metrics.value + $3,
		         COALESCE((SELECT floor_value FROM metrics WHERE name = $2), user_metrics.value + $3)),
		     updated_at = now()`,
		userID, metric, delta,
	)
	if err != nil {
		return fmt.Errorf("storage: increment metric %s: %w", metric, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureMetric inserts a catalog metric if missing, refreshing its default
// and floor otherwise. Used by the seed command.
func (s *PostgresStore) EnsureMetric(ctx context.Context, name string, defaultValue float64, floor *float64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO metrics (name, default_value, floor_value) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE
		 SET default_value = EXCLUDED.default_value, floor_value = EXCLUDED.floor_value`,
		name, defaultValue, floor,
	)
	if err != nil {
		return fmt.Errorf("storage: ensure metric %s: %w", name, err)
	}
	return nil
}
