package scenario

import "fmt"

// Progress counters extracted from a dialogue history. Defined here rather
// than in the gamestate package to avoid an import cycle: sequencing rules
// belong to the scenario contract, extraction belongs to gamestate.
type Counts struct {
	DecisionCount int
	MCQPresented  bool
	MCQAnswered   bool
}

// ExpectedStepType returns the step type the stage contract requires next,
// given where the learner currently is.
func ExpectedStepType(c Counts) string {
	switch {
	case c.DecisionCount < MaxDecisions:
		return StepDecision
	case !c.MCQPresented:
		return StepMCQ
	case !c.MCQAnswered:
		// Quiz shown but unanswered: the only legal production is to hold at
		// the quiz. A regeneration lands here when a client refreshes.
		return StepMCQ
	default:
		return StepFeedback
	}
}

// CheckSequence verifies that a freshly generated step is consistent with
// the current counters. The generative model receives the same rules as
// prompt text, but prompt text is advisory; this check is the enforcement.
func CheckSequence(s *Step, c Counts) error {
	expected := ExpectedStepType(c)

	// After the MCQ is answered, feedback and summary are both legal:
	// feedback first, then the terminal summary.
	if expected == StepFeedback && s.StepType == StepSummary {
		return nil
	}

	if s.StepType != expected {
		return fmt.Errorf("step type %q inconsistent with scenario state (want %q after %d decisions, mcqPresented=%t, mcqAnswered=%t)",
			s.StepType, expected, c.DecisionCount, c.MCQPresented, c.MCQAnswered)
	}
	return nil
}
