package scenario

import "testing"

func TestExpectedStepType(t *testing.T) {
	tests := []struct {
		name   string
		counts Counts
		want   string
	}{
		{"fresh scenario", Counts{}, StepDecision},
		{"one decision", Counts{DecisionCount: 1}, StepDecision},
		{"two decisions", Counts{DecisionCount: 2}, StepDecision},
		{"three decisions", Counts{DecisionCount: 3}, StepMCQ},
		{"quiz shown unanswered", Counts{DecisionCount: 3, MCQPresented: true}, StepMCQ},
		{"quiz answered", Counts{DecisionCount: 3, MCQPresented: true, MCQAnswered: true}, StepFeedback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpectedStepType(tt.counts); got != tt.want {
				t.Errorf("ExpectedStepType(%+v) = %q, want %q", tt.counts, got, tt.want)
			}
		})
	}
}

func TestCheckSequence(t *testing.T) {
	decision := &Step{StepType: StepDecision}
	mcq := &Step{StepType: StepMCQ}
	feedback := &Step{StepType: StepFeedback}
	summary := &Step{StepType: StepSummary}

	answered := Counts{DecisionCount: 3, MCQPresented: true, MCQAnswered: true}

	tests := []struct {
		name    string
		step    *Step
		counts  Counts
		wantErr bool
	}{
		{"decision while decisions remain", decision, Counts{DecisionCount: 1}, false},
		{"mcq before third decision", mcq, Counts{DecisionCount: 2}, true},
		{"mcq after third decision", mcq, Counts{DecisionCount: 3}, false},
		{"fourth decision point", decision, Counts{DecisionCount: 3}, true},
		{"feedback before quiz answered", feedback, Counts{DecisionCount: 3, MCQPresented: true}, true},
		{"feedback after quiz answered", feedback, answered, false},
		{"summary after quiz answered", summary, answered, false},
		{"summary mid-scenario", summary, Counts{DecisionCount: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSequence(tt.step, tt.counts)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckSequence(%q, %+v) = %v, wantErr %t", tt.step.StepType, tt.counts, err, tt.wantErr)
			}
		})
	}
}
