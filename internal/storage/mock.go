package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/EduardoTrevino/udyam/pkg/chat"
)

type progressKey struct {
	userID uuid.UUID
	goalID uuid.UUID
}

type metricSpec struct {
	defaultValue float64
	floor        *float64
}

// MockStore is an in-memory Store implementation for testing. It mirrors
// the PostgresStore semantics, including revision checks and metric floors.
type MockStore struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]*User
	goals     map[uuid.UUID]Goal
	progress  map[progressKey]*GoalProgress
	metrics   map[string]metricSpec
	values    map[uuid.UUID]map[string]float64
	decisions []DecisionRecord

	pingErr     error
	upsertErr   error
	UpsertCalls int
}

// Ensure MockStore implements Store interface
var _ Store = (*MockStore)(nil)

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		users:    make(map[uuid.UUID]*User),
		goals:    make(map[uuid.UUID]Goal),
		progress: make(map[progressKey]*GoalProgress),
		metrics:  make(map[string]metricSpec),
		values:   make(map[uuid.UUID]map[string]float64),
	}
}

// SetPingError configures Ping to fail with the given error.
func (m *MockStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

// SetUpsertError configures UpsertProgress to fail with the given error.
func (m *MockStore) SetUpsertError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertErr = err
}

func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingErr
}

func (m *MockStore) Close() {}

func (m *MockStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MockStore) CreateUser(ctx context.Context, u *User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *MockStore) UpdateUser(ctx context.Context, id uuid.UUID, name *string, focusedGoalID *uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if focusedGoalID != nil {
		goalID := *focusedGoalID
		u.FocusedGoalID = &goalID
	}
	copied := *u
	return &copied, nil
}

func (m *MockStore) ListGoals(ctx context.Context) ([]Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	goals := make([]Goal, 0, len(m.goals))
	for _, g := range m.goals {
		goals = append(goals, g)
	}
	return goals, nil
}

func (m *MockStore) GetGoal(ctx context.Context, id uuid.UUID) (*Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.goals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (m *MockStore) UpsertGoal(ctx context.Context, g Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	m.goals[g.ID] = g
	return nil
}

func (m *MockStore) ListGoalsWithProgress(ctx context.Context, userID uuid.UUID) ([]GoalWithProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	goals := make([]GoalWithProgress, 0, len(m.goals))
	for _, g := range m.goals {
		gp := GoalWithProgress{Goal: g}
		if p, ok := m.progress[progressKey{userID, g.ID}]; ok {
			gp.Progress = p.Progress
		}
		goals = append(goals, gp)
	}
	return goals, nil
}

func (m *MockStore) GetProgress(ctx context.Context, userID, goalID uuid.UUID) (*GoalProgress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progress[progressKey{userID, goalID}]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	copied.DialogueHistory = append([]chat.DialogueEntry(nil), p.DialogueHistory...)
	return &copied, nil
}

func (m *MockStore) UpsertProgress(ctx context.Context, p *GoalProgress, expectedRevision int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}

	key := progressKey{p.UserID, p.GoalID}
	existing, exists := m.progress[key]
	if expectedRevision == 0 {
		if exists {
			return ErrRevisionConflict
		}
		p.Revision = 1
	} else {
		if !exists || existing.Revision != expectedRevision {
			return ErrRevisionConflict
		}
		p.Revision = expectedRevision + 1
	}
	p.UpdatedAt = time.Now().UTC()

	copied := *p
	copied.DialogueHistory = append([]chat.DialogueEntry(nil), p.DialogueHistory...)
	m.progress[key] = &copied
	return nil
}

func (m *MockStore) GetMetrics(ctx context.Context, userID uuid.UUID) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]float64, len(m.metrics))
	for name, spec := range m.metrics {
		out[name] = spec.defaultValue
	}
	for name, v := range m.values[userID] {
		out[name] = v
	}
	return out, nil
}

func (m *MockStore) IncrementMetric(ctx context.Context, userID uuid.UUID, metric string, delta float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	spec, ok := m.metrics[metric]
	if !ok {
		return ErrNotFound
	}
	if m.values[userID] == nil {
		m.values[userID] = make(map[string]float64)
	}
	current, ok := m.values[userID][metric]
	if !ok {
		current = spec.defaultValue
	}
	next := current + delta
	if spec.floor != nil && next < *spec.floor {
		next = *spec.floor
	}
	m.values[userID][metric] = next
	return nil
}

func (m *MockStore) EnsureMetric(ctx context.Context, name string, defaultValue float64, floor *float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics[name] = metricSpec{defaultValue: defaultValue, floor: floor}
	return nil
}

func (m *MockStore) InsertDecision(ctx context.Context, d *DecisionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	m.decisions = append(m.decisions, *d)
	return nil
}

func (m *MockStore) ListDecisions(ctx context.Context, userID uuid.UUID) ([]DecisionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []DecisionRecord
	for _, d := range m.decisions {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}
