// Package storage provides the PostgreSQL persistence layer for learner
// data: users, the goal catalog, per-goal dialogue progress, metric totals,
// and the immutable decision audit log.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/EduardoTrevino/udyam/pkg/chat"
)

// User is a learner row. FocusedGoalID points at the currently active goal.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	FocusedGoalID *uuid.UUID `json:"focused_goal_id"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Goal is an immutable catalog entry for one learning objective.
type Goal struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// GoalWithProgress joins a catalog goal with one learner's progress on it.
type GoalWithProgress struct {
	Goal
	Progress int `json:"progress"`
}

// GoalProgress is the per-(learner, goal) scenario record: the full
// dialogue history, a 0-100 progress heuristic, and an optimistic revision
// counter guarding concurrent upserts.
type GoalProgress struct {
	UserID          uuid.UUID           `json:"user_id"`
	GoalID          uuid.UUID           `json:"goal_id"`
	DialogueHistory []chat.DialogueEntry `json:"dialogue_history"`
	Progress        int                 `json:"progress"`
	Revision        int                 `json:"revision"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// DecisionRecord is one immutable audit row for a submitted decision.
type DecisionRecord struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	GoalID        uuid.UUID          `json:"goal_id"`
	DecisionIndex int                `json:"decision_index"` // which of the 3 decision points
	OptionIndex   int                `json:"option_index"`   // which of the 4 options
	IsScaffold    bool               `json:"is_scaffold"`
	MetricDeltas  map[string]float64 `json:"metric_deltas"`
	CreatedAt     time.Time          `json:"created_at"`
}

// Store defines the persistence operations the engine and handlers need.
type Store interface {
	Ping(ctx context.Context) error
	Close()

	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	CreateUser(ctx context.Context, u *User) error
	UpdateUser(ctx context.Context, id uuid.UUID, name *string, focusedGoalID *uuid.UUID) (*User, error)

	ListGoals(ctx context.Context) ([]Goal, error)
	GetGoal(ctx context.Context, id uuid.UUID) (*Goal, error)
	UpsertGoal(ctx context.Context, g Goal) error
	ListGoalsWithProgress(ctx context.Context, userID uuid.UUID) ([]GoalWithProgress, error)

	// GetProgress returns ErrNotFound for a (user, goal) pair with no row;
	// rows are created lazily on first upsert.
	GetProgress(ctx context.Context, userID, goalID uuid.UUID) (*GoalProgress, error)

	// UpsertProgress inserts or overwrites the progress row, conditional on
	// the stored revision matching expectedRevision (0 for a fresh insert).
	// A mismatch returns ErrRevisionConflict and writes nothing.
	UpsertProgress(ctx context.Context, p *GoalProgress, expectedRevision int) error

	// GetMetrics returns every catalog metric with the learner's current
	// value, falling back to the metric's default where no row exists yet.
	GetMetrics(ctx context.Context, userID uuid.UUID) (map[string]float64, error)

	// IncrementMetric adds delta to the learner's running total, inserting
	// the metric at its default first if absent. Values never drop below the
	// metric's floor when one is defined. Unknown metric names return
	// ErrNotFound.
	IncrementMetric(ctx context.Context, userID uuid.UUID, metric string, delta float64) error
	EnsureMetric(ctx context.Context, name string, defaultValue float64, floor *float64) error

	InsertDecision(ctx context.Context, d *DecisionRecord) error
	ListDecisions(ctx context.Context, userID uuid.UUID) ([]DecisionRecord, error)
}
