// Package scenario defines the structured output contract for scenario steps
// and the stage sequencing rules of a scenario playthrough.
package scenario

import (
	"encoding/json"
	"fmt"
)

// Step types returned by the narrative engine.
const (
	StepDecision = "decision"
	StepMCQ      = "mcq"
	StepFeedback = "feedback"
	StepSummary  = "summary"
)

// Stage counts for a single scenario playthrough.
const (
	MaxDecisions      = 3
	DecisionOptions   = 4
	MCQMinOptions     = 3
	MCQMaxOptions     = 4
	MaxScaffoldsPerDP = 1
)

// MetricDelta is a single signed adjustment to a named learner metric.
// Strict structured-output schemas cannot express open-ended objects, so
// deltas travel as an array of pairs rather than a map.
type MetricDelta struct {
	Metric string  `json:"metric"` // e.g. "Revenue"
	Delta  float64 `json:"delta"`
}

// DecisionOption is one of the four choices offered at a decision point.
// Exactly one option per decision point carries IsScaffold, marking the
// guided choice for struggling learners.
type DecisionOption struct {
	Text         string        `json:"text"`
	MetricDeltas []MetricDelta `json:"metricDeltas"`
	IsScaffold   bool          `json:"isScaffold"`
}

// DeltaMap collapses the delta pairs into a metric-name keyed map. Repeated
// metrics accumulate.
func (o *DecisionOption) DeltaMap() map[string]float64 {
	m := make(map[string]float64, len(o.MetricDeltas))
	for _, d := range o.MetricDeltas {
		m[d.Metric] += d.Delta
	}
	return m
}

// DecisionPoint poses a business decision with exactly four options.
type DecisionPoint struct {
	Question string           `json:"question"`
	Options  []DecisionOption `json:"options"`
}

// MCQ is the single knowledge-check quiz, presented after the third decision.
type MCQ struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
}

// Feedback carries both outcomes of the MCQ; the client shows the one
// matching the learner's answer.
type Feedback struct {
	CorrectFeedback   string `json:"correctFeedback"`
	IncorrectFeedback string `json:"incorrectFeedback"`
}

// Message is one dialogue line, attributed to a character from the roster.
type Message struct {
	Character string `json:"character"`
	Text      string `json:"text"`
}

// Step is one step of narrative production, the validated output contract
// for the generative model. Exactly one of DecisionPoint, MCQ, Feedback, or
// Summary is populated, matching StepType.
type Step struct {
	StepType           string         `json:"stepType"`
	Messages           []Message      `json:"messages"`
	MainCharacterImage string         `json:"mainCharacterImage"` // empty means no change
	DecisionPoint      *DecisionPoint `json:"decisionPoint"`
	MCQ                *MCQ           `json:"mcq"`
	Feedback           *Feedback      `json:"feedback"`
	ScenarioComplete   bool           `json:"scenarioComplete"`
	Summary            string         `json:"summary"`

	// PreviousDecision is the model's echo of the option the learner just
	// chose. It is a fallback only; the engine prefers the locally cached
	// option catalog when applying metric deltas.
	PreviousDecision *DecisionOption `json:"previousDecision"`
}

// DecodeStep parses serialized step JSON. Callers decide whether a failure
// is skipped (history scanning) or fatal (fresh model output).
func DecodeStep(content string) (*Step, error) {
	var s Step
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		return nil, fmt.Errorf("decode scenario step: %w", err)
	}
	return &s, nil
}

// Validate enforces the structural contract on a step: the payload matching
// StepType must be present and well formed, and payloads for other step
// types must be absent.
func (s *Step) Validate() error {
	switch s.StepType {
	case StepDecision, StepMCQ, StepFeedback, StepSummary:
	default:
		return fmt.Errorf("unknown stepType %q", s.StepType)
	}

	if len(s.Messages) == 0 {
		return fmt.Errorf("step has no messages")
	}
	for i, m := range s.Messages {
		if m.Text == "" {
			return fmt.Errorf("message %d has empty text", i)
		}
	}

	switch s.StepType {
	case StepDecision:
		if s.DecisionPoint == nil {
			return fmt.Errorf("decision step missing decisionPoint")
		}
		if s.MCQ != nil || s.Feedback != nil {
			return fmt.Errorf("decision step carries extra payloads")
		}
		return s.DecisionPoint.validate()
	case StepMCQ:
		if s.MCQ == nil {
			return fmt.Errorf("mcq step missing mcq")
		}
		if s.DecisionPoint != nil || s.Feedback != nil {
			return fmt.Errorf("mcq step carries extra payloads")
		}
		return s.MCQ.validate()
	case StepFeedback:
		if s.Feedback == nil {
			return fmt.Errorf("feedback step missing feedback")
		}
		if s.DecisionPoint != nil || s.MCQ != nil {
			return fmt.Errorf("feedback step carries extra payloads")
		}
		if s.Feedback.CorrectFeedback == "" || s.Feedback.IncorrectFeedback == "" {
			return fmt.Errorf("feedback step missing feedback text")
		}
	case StepSummary:
		if !s.ScenarioComplete {
			return fmt.Errorf("summary step must set scenarioComplete")
		}
		if s.Summary == "" {
			return fmt.Errorf("summary step missing summary text")
		}
		if s.DecisionPoint != nil || s.MCQ != nil {
			return fmt.Errorf("summary step carries extra payloads")
		}
	}
	return nil
}

func (dp *DecisionPoint) validate() error {
	if dp.Question == "" {
		return fmt.Errorf("decision point missing question")
	}
	if len(dp.Options) != DecisionOptions {
		return fmt.Errorf("decision point has %d options, want %d", len(dp.Options), DecisionOptions)
	}
	scaffolds := 0
	for i, opt := range dp.Options {
		if opt.Text == "" {
			return fmt.Errorf("decision option %d has empty text", i)
		}
		if opt.IsScaffold {
			scaffolds++
		}
	}
	if scaffolds > MaxScaffoldsPerDP {
		return fmt.Errorf("decision point has %d scaffold options, want at most %d", scaffolds, MaxScaffoldsPerDP)
	}
	return nil
}

func (m *MCQ) validate() error {
	if m.Question == "" {
		return fmt.Errorf("mcq missing question")
	}
	if len(m.Options) < MCQMinOptions || len(m.Options) > MCQMaxOptions {
		return fmt.Errorf("mcq has %d options, want %d-%d", len(m.Options), MCQMinOptions, MCQMaxOptions)
	}
	if m.CorrectOptionIndex < 0 || m.CorrectOptionIndex >= len(m.Options) {
		return fmt.Errorf("mcq correctOptionIndex %d out of range", m.CorrectOptionIndex)
	}
	return nil
}
