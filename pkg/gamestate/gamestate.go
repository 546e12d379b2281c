// Package gamestate derives the current point in a scenario from the
// persisted dialogue history.
package gamestate

import (
	"github.com/EduardoTrevino/udyam/pkg/chat"
	"github.com/EduardoTrevino/udyam/pkg/scenario"
)

// Snapshot is the extracted scenario position for a (learner, goal) pair.
type Snapshot struct {
	DecisionCount      int
	MCQPresented       bool
	MCQAnswered        bool
	FeedbackGiven      bool
	LastDecisionIndex  int // -1 when no decision has been submitted
	LastMCQAnswerIndex int // -1 when the quiz is unanswered
	Complete           bool

	// ParseFailures counts assistant entries that could not be decoded as
	// scenario steps. Corrupt entries are skipped for state purposes, but the
	// count is surfaced so callers can treat a non-zero value as an
	// inconsistency instead of guessing silently.
	ParseFailures int
}

// Extract scans the dialogue history in order and produces a Snapshot.
// An empty history yields the zero state of a fresh scenario.
//
// The extractor keeps two independent tallies of decisions made: steps the
// assistant produced with a decision point, and user entries recognized as
// decision submissions. The model's output is not perfectly reliable, so
// the larger of the two counts wins.
func Extract(history []chat.DialogueEntry) Snapshot {
	snap := Snapshot{
		LastDecisionIndex:  -1,
		LastMCQAnswerIndex: -1,
	}

	userDecisions := 0
	for _, entry := range history {
		switch entry.Role {
		case chat.RoleAssistant:
			step, err := scenario.DecodeStep(entry.Content)
			if err != nil {
				snap.ParseFailures++
				continue
			}
			if step.DecisionPoint != nil {
				snap.DecisionCount++
			}
			if step.MCQ != nil {
				snap.MCQPresented = true
			}
			if step.Feedback != nil {
				snap.FeedbackGiven = true
			}
			if step.ScenarioComplete {
				snap.Complete = true
			}
		case chat.RoleUser:
			if idx, ok := chat.ParseDecision(entry.Content); ok {
				userDecisions++
				snap.LastDecisionIndex = idx
			} else if idx, ok := chat.ParseAnswer(entry.Content); ok {
				snap.MCQAnswered = true
				snap.LastMCQAnswerIndex = idx
			}
		}
	}

	// The user-side tally must never be understated relative to the
	// assistant-side tally.
	if userDecisions > snap.DecisionCount {
		snap.DecisionCount = userDecisions
	}

	return snap
}

// Counts returns the subset of the snapshot the sequencing rules consume.
func (s Snapshot) Counts() scenario.Counts {
	return scenario.Counts{
		DecisionCount: s.DecisionCount,
		MCQPresented:  s.MCQPresented,
		MCQAnswered:   s.MCQAnswered,
	}
}

// CountsAfterSubmission returns the counts as they stand once the learner's
// just-submitted option (not yet appended to history) is accounted for. A
// decision submission answers the decision point already counted, so it
// leaves DecisionCount unchanged; an answer to a presented, unanswered MCQ
// flips MCQAnswered.
func (s Snapshot) CountsAfterSubmission(submitted bool) scenario.Counts {
	c := s.Counts()
	if submitted && c.MCQPresented && !c.MCQAnswered {
		c.MCQAnswered = true
	}
	return c
}
