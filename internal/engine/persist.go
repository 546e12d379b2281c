package engine

import (
	"context"
	"errors"

	"github.com/EduardoTrevino/udyam/internal/storage"
	"github.com/EduardoTrevino/udyam/pkg/chat"
	"github.com/EduardoTrevino/udyam/pkg/gamestate"
	"github.com/EduardoTrevino/udyam/pkg/prompts"
	"github.com/EduardoTrevino/udyam/pkg/scenario"
)

// Progress heuristic weights. This is a presentation heuristic for the goal
// dashboard, not a precise measure of completion.
const (
	progressPerDecision = 25
	progressMCQBonus    = 15
	progressFeedback    = 5
	progressPreTerminal = 95
	progressComplete    = 100
)

// persist appends this turn's entries to the dialogue history and upserts
// the progress row. Failures are downgraded to warnings: the generated step
// is returned to the learner whether or not this write lands.
func (e *Engine) persist(ctx context.Context, prog *storage.GoalProgress, snap gamestate.Snapshot, decisionIndex *int, raw string, step *scenario.Step) {
	history := prog.DialogueHistory

	// Synthesized user-action entry, skipped when identical to the current
	// last entry so client retries and refreshes don't duplicate log lines.
	action := prompts.UserAction(snap, decisionIndex)
	if n := len(history); n == 0 || history[n-1].Role != chat.RoleUser || history[n-1].Content != action {
		history = append(history, chat.DialogueEntry{Role: chat.RoleUser, Content: action})
	}
	history = append(history, chat.DialogueEntry{Role: chat.RoleAssistant, Content: raw})

	updated := &storage.GoalProgress{
		UserID:          prog.UserID,
		GoalID:          prog.GoalID,
		DialogueHistory: history,
		Progress:        nextProgress(prog.Progress, snap, step),
	}

	if err := e.store.UpsertProgress(ctx, updated, prog.Revision); err != nil {
		if errors.Is(err, storage.ErrRevisionConflict) {
			e.logger.Warn("progress row changed under us, turn not saved",
				"user_id", prog.UserID, "goal_id", prog.GoalID, "revision", prog.Revision)
			return
		}
		e.logger.Warn("failed to save progress, turn not saved",
			"user_id", prog.UserID, "goal_id", prog.GoalID, "error", err)
	}
}

// nextProgress computes the 0-100 heuristic after this step. It never goes
// backwards for the same (learner, goal) pair; a terminal step pins the
// value to exactly 100.
func nextProgress(prior int, snap gamestate.Snapshot, step *scenario.Step) int {
	if step.ScenarioComplete {
		return progressComplete
	}

	decisions := snap.DecisionCount
	if step.DecisionPoint != nil {
		decisions++
	}
	p := decisions * progressPerDecision
	if snap.MCQPresented || step.MCQ != nil {
		p += progressMCQBonus
	}
	if snap.FeedbackGiven || step.Feedback != nil {
		p += progressFeedback
	}
	if p > progressPreTerminal {
		p = progressPreTerminal
	}
	if p < prior {
		p = prior
	}
	return p
}
