package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/EduardoTrevino/udyam/internal/storage"
	"github.com/EduardoTrevino/udyam/pkg/gamestate"
	"github.com/EduardoTrevino/udyam/pkg/scenario"
)

// optionCatalogTTL bounds how long a presented decision point's options
// stay cached. A scenario turn normally completes within minutes; a day
// covers learners who sleep on a decision.
const optionCatalogTTL = 24 * time.Hour

func optionCatalogKey(userID, goalID uuid.UUID, ordinal int) string {
	return fmt.Sprintf("decision-options:%s:%s:%d", userID, goalID, ordinal)
}

// cacheOptions stores a freshly presented decision point's option catalog
// so the next turn can resolve the chosen option's metric deltas locally
// instead of trusting the model to echo them back.
func (e *Engine) cacheOptions(ctx context.Context, userID, goalID uuid.UUID, snap gamestate.Snapshot, step *scenario.Step) {
	if step.DecisionPoint == nil {
		return
	}

	data, err := json.Marshal(step.DecisionPoint.Options)
	if err != nil {
		e.logger.Warn("failed to marshal option catalog", "error", err)
		return
	}

	ordinal := snap.DecisionCount + 1 // the decision point this step presents
	key := optionCatalogKey(userID, goalID, ordinal)
	if err := e.cache.Set(ctx, key, string(data), optionCatalogTTL); err != nil {
		e.logger.Warn("failed to cache option catalog", "key", key, "error", err)
	}
}

// applyDecision runs the metric ledger for a decision submission: resolve
// the chosen option, increment the learner's metric totals, and record an
// immutable audit row. MCQ answers and plain continues are not decisions
// and leave the ledger untouched.
func (e *Engine) applyDecision(ctx context.Context, userID, goalID uuid.UUID, snap gamestate.Snapshot, decisionIndex *int, step *scenario.Step) {
	if decisionIndex == nil {
		return
	}
	// An index submitted while the quiz is open answers the quiz.
	if snap.MCQPresented && !snap.MCQAnswered {
		return
	}
	if snap.DecisionCount == 0 {
		return
	}

	option := e.resolveOption(ctx, userID, goalID, snap.DecisionCount, *decisionIndex, step)
	if option == nil {
		// Neither the cached catalog nor the provider echo is available;
		// skip the update rather than invent deltas.
		e.logger.Warn("no option catalog for submitted decision, skipping metric update",
			"user_id", userID, "goal_id", goalID, "decision", snap.DecisionCount, "option", *decisionIndex)
		return
	}

	deltas := option.DeltaMap()
	for metric, delta := range deltas {
		if err := e.store.IncrementMetric(ctx, userID, metric, delta); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				e.logger.Warn("model referenced unknown metric, delta dropped",
					"metric", metric, "user_id", userID)
				continue
			}
			e.logger.Warn("failed to apply metric delta",
				"metric", metric, "delta", delta, "user_id", userID, "error", err)
		}
	}

	record := &storage.DecisionRecord{
		UserID:        userID,
		GoalID:        goalID,
		DecisionIndex: snap.DecisionCount,
		OptionIndex:   *decisionIndex,
		IsScaffold:    option.IsScaffold,
		MetricDeltas:  deltas,
	}
	if err := e.store.InsertDecision(ctx, record); err != nil {
		e.logger.Warn("failed to record decision audit row",
			"user_id", userID, "goal_id", goalID, "error", err)
	}
}

// resolveOption finds the option the learner chose. The locally cached
// catalog from the turn that presented the decision point is authoritative;
// the model's previousDecision echo is the fallback.
func (e *Engine) resolveOption(ctx context.Context, userID, goalID uuid.UUID, ordinal, optionIndex int, step *scenario.Step) *scenario.DecisionOption {
	key := optionCatalogKey(userID, goalID, ordinal)
	cached, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("option catalog lookup failed", "key", key, "error", err)
	}
	if cached != "" {
		var options []scenario.DecisionOption
		if err := json.Unmarshal([]byte(cached), &options); err == nil {
			if optionIndex >= 0 && optionIndex < len(options) {
				return &options[optionIndex]
			}
		} else {
			e.logger.Warn("cached option catalog is corrupt", "key", key, "error", err)
		}
	}

	return step.PreviousDecision
}
