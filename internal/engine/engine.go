// Package engine advances scenarios: it derives the current game state,
// calls the generative model, enforces the stage contract on the reply,
// persists dialogue history and progress, and applies metric deltas.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/EduardoTrevino/udyam/internal/services"
	"github.com/EduardoTrevino/udyam/internal/storage"
	"github.com/EduardoTrevino/udyam/pkg/chat"
	"github.com/EduardoTrevino/udyam/pkg/gamestate"
	"github.com/EduardoTrevino/udyam/pkg/prompts"
	"github.com/EduardoTrevino/udyam/pkg/scenario"
)

// Engine orchestrates one scenario advance per call. It is stateless;
// everything it needs per call is loaded fresh from storage.
type Engine struct {
	llm    services.LLMService
	store  storage.Store
	cache  services.Cache
	logger *slog.Logger
}

// AdvanceRequest is the input for one scenario advance. DecisionIndex is
// nil when the learner is not submitting a choice (scenario start or a
// plain continue).
type AdvanceRequest struct {
	UserID        uuid.UUID
	DecisionIndex *int
}

// New creates an engine with its collaborators injected, so tests can
// substitute fakes for each of them.
func New(llm services.LLMService, store storage.Store, cache services.Cache, logger *slog.Logger) *Engine {
	return &Engine{
		llm:    llm,
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Advance generates the next scenario step for the learner's focused goal.
//
// Generation and persistence are deliberately sequential and separable: a
// persistence failure is logged and the already-generated step is still
// returned, so a flaky database never costs the learner their turn.
func (e *Engine) Advance(ctx context.Context, req AdvanceRequest) (*scenario.Step, error) {
	if req.UserID == uuid.Nil {
		return nil, &ValidationError{Msg: "user_id is required"}
	}
	if req.DecisionIndex != nil && (*req.DecisionIndex < 0 || *req.DecisionIndex >= scenario.DecisionOptions) {
		return nil, &ValidationError{Msg: "decision_index out of range"}
	}

	user, err := e.store.GetUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: req.UserID.String()}
		}
		return nil, err
	}
	if user.FocusedGoalID == nil {
		return nil, &NotFoundError{Resource: "focused goal", ID: req.UserID.String()}
	}

	goal, err := e.store.GetGoal(ctx, *user.FocusedGoalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Resource: "goal", ID: user.FocusedGoalID.String()}
		}
		return nil, err
	}

	prog, err := e.store.GetProgress(ctx, user.ID, goal.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		// First interaction with this goal: the row is created lazily on
		// the upsert below.
		prog = &storage.GoalProgress{
			UserID:          user.ID,
			GoalID:          goal.ID,
			DialogueHistory: nil,
			Revision:        0,
		}
	}

	snap := gamestate.Extract(prog.DialogueHistory)
	if snap.ParseFailures > 0 {
		e.logger.Warn("dialogue history contains undecodable assistant entries",
			"user_id", user.ID, "goal_id", goal.ID, "parse_failures", snap.ParseFailures)
	}
	if snap.Complete {
		return nil, &ValidationError{Msg: "scenario already complete for this goal"}
	}

	metrics, err := e.store.GetMetrics(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	scaffoldUsed, err := e.scaffoldUsed(ctx, user.ID, goal.ID)
	if err != nil {
		e.logger.Warn("could not determine scaffold usage", "user_id", user.ID, "error", err)
	}

	messages, err := prompts.New().
		WithLearner(user.Name).
		WithGoal(goal.Name, goal.Description).
		WithMetrics(metrics).
		WithSnapshot(snap).
		WithHistory(prog.DialogueHistory).
		WithSubmission(req.DecisionIndex).
		WithScaffoldUsed(scaffoldUsed).
		Build()
	if err != nil {
		return nil, err
	}

	step, raw, err := e.generate(ctx, messages, snap.CountsAfterSubmission(req.DecisionIndex != nil))
	if err != nil {
		return nil, err
	}

	// Everything past this point is best-effort: the step is already
	// generated and will be returned regardless.
	e.persist(ctx, prog, snap, req.DecisionIndex, raw, step)
	e.applyDecision(ctx, user.ID, goal.ID, snap, req.DecisionIndex, step)
	e.cacheOptions(ctx, user.ID, goal.ID, snap, step)

	return step, nil
}

// generate calls the model and enforces the output contract. A step whose
// type contradicts the expected stage gets one regeneration; prompt text
// alone cannot be trusted to keep the model on script.
func (e *Engine) generate(ctx context.Context, messages []chat.DialogueEntry, counts scenario.Counts) (*scenario.Step, string, error) {
	var lastSeqErr error
	for attempt := 0; attempt < 2; attempt++ {
		raw, err := e.llm.GenerateStep(ctx, messages, scenario.ResponseSchema())
		if err != nil {
			return nil, "", err
		}

		step, err := scenario.DecodeStep(raw)
		if err != nil {
			return nil, "", &ContentError{Reason: err.Error(), Raw: raw}
		}
		if err := step.Validate(); err != nil {
			return nil, "", &ContentError{Reason: err.Error(), Raw: raw}
		}

		if err := scenario.CheckSequence(step, counts); err != nil {
			lastSeqErr = err
			e.logger.Warn("model violated stage contract, regenerating",
				"attempt", attempt+1, "error", err)
			continue
		}
		return step, raw, nil
	}
	return nil, "", &ContentError{Reason: lastSeqErr.Error()}
}

// scaffoldUsed reports whether the learner has already taken a scaffolded
// option in this goal's scenario, from the decision audit log.
func (e *Engine) scaffoldUsed(ctx context.Context, userID, goalID uuid.UUID) (bool, error) {
	decisions, err := e.store.ListDecisions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, d := range decisions {
		if d.GoalID == goalID && d.IsScaffold {
			return true, nil
		}
	}
	return false, nil
}
