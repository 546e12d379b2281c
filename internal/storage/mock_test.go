package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/EduardoTrevino/udyam/pkg/chat"
)

func TestMockStoreUserLifecycle(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	user := &User{Name: "Asha"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatal("CreateUser() did not assign an ID")
	}

	got, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Name != "Asha" {
		t.Errorf("Name = %q, want Asha", got.Name)
	}

	goal := Goal{Name: "Increase Revenue", Description: "Grow earnings."}
	if err := store.UpsertGoal(ctx, goal); err != nil {
		t.Fatalf("UpsertGoal() error = %v", err)
	}
	goals, err := store.ListGoals(ctx)
	if err != nil || len(goals) != 1 {
		t.Fatalf("ListGoals() = %v, %v, want one goal", goals, err)
	}

	name := "Asha Devi"
	goalID := goals[0].ID
	updated, err := store.UpdateUser(ctx, user.ID, &name, &goalID)
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Name != name || updated.FocusedGoalID == nil || *updated.FocusedGoalID != goalID {
		t.Errorf("UpdateUser() = %+v", updated)
	}

	if _, err := store.GetUser(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMockStoreProgressRevisions(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()
	userID, goalID := uuid.New(), uuid.New()

	if _, err := store.GetProgress(ctx, userID, goalID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetProgress(absent) error = %v, want ErrNotFound", err)
	}

	first := &GoalProgress{
		UserID: userID,
		GoalID: goalID,
		DialogueHistory: []chat.DialogueEntry{
			{Role: chat.RoleUser, Content: "Start the scenario."},
		},
		Progress: 25,
	}
	if err := store.UpsertProgress(ctx, first, 0); err != nil {
		t.Fatalf("initial UpsertProgress() error = %v", err)
	}

	got, err := store.GetProgress(ctx, userID, goalID)
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if got.Revision != 1 || got.Progress != 25 || len(got.DialogueHistory) != 1 {
		t.Errorf("GetProgress() = %+v", got)
	}

	// A second lazy insert loses to the existing row.
	dup := &GoalProgress{UserID: userID, GoalID: goalID, Progress: 25}
	if err := store.UpsertProgress(ctx, dup, 0); !errors.Is(err, ErrRevisionConflict) {
		t.Errorf("duplicate insert error = %v, want ErrRevisionConflict", err)
	}

	// A stale revision loses too.
	stale := &GoalProgress{UserID: userID, GoalID: goalID, Progress: 50}
	if err := store.UpsertProgress(ctx, stale, 5); !errors.Is(err, ErrRevisionConflict) {
		t.Errorf("stale update error = %v, want ErrRevisionConflict", err)
	}

	// The matching revision wins and bumps.
	next := &GoalProgress{UserID: userID, GoalID: goalID, Progress: 50}
	if err := store.UpsertProgress(ctx, next, 1); err != nil {
		t.Fatalf("conditional UpsertProgress() error = %v", err)
	}
	got, _ = store.GetProgress(ctx, userID, goalID)
	if got.Revision != 2 || got.Progress != 50 {
		t.Errorf("after update: %+v", got)
	}
}

func TestMockStoreMetricFloor(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()
	userID := uuid.New()

	floor := 0.0
	if err := store.EnsureMetric(ctx, "Revenue", 10, &floor); err != nil {
		t.Fatalf("EnsureMetric() error = %v", err)
	}

	if err := store.IncrementMetric(ctx, userID, "Revenue", -25); err != nil {
		t.Fatalf("IncrementMetric() error = %v", err)
	}
	metrics, err := store.GetMetrics(ctx, userID)
	if err != nil {
		t.Fatalf("GetMetrics() error = %v", err)
	}
	if metrics["Revenue"] != 0 {
		t.Errorf("Revenue = %v, want clamped to floor 0", metrics["Revenue"])
	}

	if err := store.IncrementMetric(ctx, userID, "Revenue", 15); err != nil {
		t.Fatalf("IncrementMetric() error = %v", err)
	}
	metrics, _ = store.GetMetrics(ctx, userID)
	if metrics["Revenue"] != 15 {
		t.Errorf("Revenue = %v, want 15", metrics["Revenue"])
	}

	if err := store.IncrementMetric(ctx, userID, "Karma", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("IncrementMetric(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMockStoreMetricDefaults(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()
	userID := uuid.New()

	if err := store.EnsureMetric(ctx, "Reputation", 50, nil); err != nil {
		t.Fatalf("EnsureMetric() error = %v", err)
	}

	// A learner with no rows still sees the catalog default.
	metrics, err := store.GetMetrics(ctx, userID)
	if err != nil {
		t.Fatalf("GetMetrics() error = %v", err)
	}
	if metrics["Reputation"] != 50 {
		t.Errorf("Reputation = %v, want default 50", metrics["Reputation"])
	}

	// The first increment starts from the default, not zero.
	if err := store.IncrementMetric(ctx, userID, "Reputation", 5); err != nil {
		t.Fatalf("IncrementMetric() error = %v", err)
	}
	metrics, _ = store.GetMetrics(ctx, userID)
	if metrics["Reputation"] != 55 {
		t.Errorf("Reputation = %v, want 55", metrics["Reputation"])
	}
}

func TestMockStoreDecisions(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()
	userID, goalID := uuid.New(), uuid.New()

	rec := &DecisionRecord{
		UserID:        userID,
		GoalID:        goalID,
		DecisionIndex: 1,
		OptionIndex:   2,
		IsScaffold:    true,
		MetricDeltas:  map[string]float64{"Revenue": 10},
	}
	if err := store.InsertDecision(ctx, rec); err != nil {
		t.Fatalf("InsertDecision() error = %v", err)
	}

	decisions, err := store.ListDecisions(ctx, userID)
	if err != nil {
		t.Fatalf("ListDecisions() error = %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("len(decisions) = %d, want 1", len(decisions))
	}
	d := decisions[0]
	if d.ID == uuid.Nil || !d.IsScaffold || d.MetricDeltas["Revenue"] != 10 {
		t.Errorf("decision = %+v", d)
	}

	other, err := store.ListDecisions(ctx, uuid.New())
	if err != nil || len(other) != 0 {
		t.Errorf("ListDecisions(other) = %v, %v, want empty", other, err)
	}
}

func TestMockStoreGoalsWithProgress(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()
	userID := uuid.New()

	g := Goal{ID: uuid.New(), Name: "Build Reputation"}
	if err := store.UpsertGoal(ctx, g); err != nil {
		t.Fatalf("UpsertGoal() error = %v", err)
	}
	if err := store.UpsertProgress(ctx, &GoalProgress{UserID: userID, GoalID: g.ID, Progress: 40}, 0); err != nil {
		t.Fatalf("UpsertProgress() error = %v", err)
	}

	goals, err := store.ListGoalsWithProgress(ctx, userID)
	if err != nil {
		t.Fatalf("ListGoalsWithProgress() error = %v", err)
	}
	if len(goals) != 1 || goals[0].Progress != 40 {
		t.Errorf("goals = %+v", goals)
	}

	// Another learner sees the catalog at zero progress.
	goals, _ = store.ListGoalsWithProgress(ctx, uuid.New())
	if len(goals) != 1 || goals[0].Progress != 0 {
		t.Errorf("other learner goals = %+v", goals)
	}
}
