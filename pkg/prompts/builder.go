// Package prompts builds the message array sent to the generative model.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/EduardoTrevino/udyam/pkg/chat"
	"github.com/EduardoTrevino/udyam/pkg/gamestate"
	"github.com/EduardoTrevino/udyam/pkg/scenario"
)

// Builder constructs the chat messages for one scenario advance using a
// fluent interface. Only the most recent turn of history is included, to
// bound request cost; the system prompt carries the extracted state instead.
type Builder struct {
	learnerName   string
	goalName      string
	goalDesc      string
	metrics       map[string]float64
	snapshot      gamestate.Snapshot
	history       []chat.DialogueEntry
	decisionIndex *int
	scaffoldUsed  bool
}

// New creates a prompt builder.
func New() *Builder {
	return &Builder{}
}

// WithLearner sets the learner's display name.
func (b *Builder) WithLearner(name string) *Builder {
	b.learnerName = name
	return b
}

// WithGoal sets the active learning goal.
func (b *Builder) WithGoal(name, description string) *Builder {
	b.goalName = name
	b.goalDesc = description
	return b
}

// WithMetrics sets the learner's current metric snapshot.
func (b *Builder) WithMetrics(m map[string]float64) *Builder {
	b.metrics = m
	return b
}

// WithSnapshot sets the extracted scenario state.
func (b *Builder) WithSnapshot(s gamestate.Snapshot) *Builder {
	b.snapshot = s
	return b
}

// WithHistory sets the dialogue history; only the last assistant turn is
// forwarded to the model.
func (b *Builder) WithHistory(h []chat.DialogueEntry) *Builder {
	b.history = h
	return b
}

// WithSubmission records the option index the learner just selected, for a
// decision or the MCQ depending on the current state.
func (b *Builder) WithSubmission(optionIndex *int) *Builder {
	b.decisionIndex = optionIndex
	return b
}

// WithScaffoldUsed marks that the learner already spent the scaffolded
// option this scenario.
func (b *Builder) WithScaffoldUsed(used bool) *Builder {
	b.scaffoldUsed = used
	return b
}

// Build assembles the final message array: one system message, the most
// recent assistant turn (if any), and the synthesized user action.
func (b *Builder) Build() ([]chat.DialogueEntry, error) {
	if b.learnerName == "" {
		return nil, fmt.Errorf("learner name is required")
	}
	if b.goalName == "" {
		return nil, fmt.Errorf("goal is required")
	}

	messages := []chat.DialogueEntry{{
		Role:    chat.RoleSystem,
		Content: b.systemPrompt(),
	}}

	// Most recent assistant turn only. The model gets full state through
	// the system prompt, so older turns add cost without adding signal.
	for i := len(b.history) - 1; i >= 0; i-- {
		if b.history[i].Role == chat.RoleAssistant {
			messages = append(messages, b.history[i])
			break
		}
	}

	messages = append(messages, chat.DialogueEntry{
		Role:    chat.RoleUser,
		Content: b.userAction(),
	})

	return messages, nil
}

func (b *Builder) systemPrompt() string {
	var sb strings.Builder
	sb.WriteString(SystemPromptHeader)

	sb.WriteString("\n\n### Cast\n")
	for _, c := range scenario.Roster {
		sb.WriteString(fmt.Sprintf("- %s (portrait %s, full body %s): %s\n",
			c.Name, c.Portrait, c.FullBody, c.Biography))
	}

	sb.WriteString("\n### Learner\n")
	sb.WriteString("Name: " + b.learnerName + "\n")
	sb.WriteString("Goal: " + b.goalName)
	if b.goalDesc != "" {
		sb.WriteString(" - " + b.goalDesc)
	}
	sb.WriteString("\n")
	if len(b.metrics) > 0 {
		data, err := json.Marshal(b.metrics)
		if err == nil {
			sb.WriteString("Current metrics: " + string(data) + "\n")
		}
	}
	sb.WriteString(fmt.Sprintf("Scaffold already used in this scenario: %t\n", b.scaffoldUsed))

	sb.WriteString("\n### Scenario state\n")
	sb.WriteString(fmt.Sprintf("Decisions made: %d of %d\n", b.snapshot.DecisionCount, scenario.MaxDecisions))
	sb.WriteString(fmt.Sprintf("MCQ presented: %t\n", b.snapshot.MCQPresented))
	sb.WriteString(fmt.Sprintf("MCQ answered: %t\n", b.snapshot.MCQAnswered))
	if b.decisionIndex != nil {
		sb.WriteString(fmt.Sprintf("The learner just selected option %d.\n", *b.decisionIndex))
	}

	sb.WriteString("\n" + b.stageDirective())
	return sb.String()
}

// stageDirective spells out the single legal next step for the current
// counts. The server enforces the same rule after generation; stating it
// here just raises the odds of a first-try conforming reply.
func (b *Builder) stageDirective() string {
	c := b.snapshot.CountsAfterSubmission(b.decisionIndex != nil)
	switch scenario.ExpectedStepType(c) {
	case scenario.StepDecision:
		return fmt.Sprintf(directiveDecision, c.DecisionCount+1)
	case scenario.StepMCQ:
		return directiveMCQ
	case scenario.StepFeedback:
		return directiveFeedback
	default:
		return directiveSummary
	}
}

func (b *Builder) userAction() string {
	return UserAction(b.snapshot, b.decisionIndex)
}

// UserAction synthesizes the canonical user message for a turn. The same
// text is appended to the persisted history, so it lives here rather than
// in each caller.
func UserAction(snap gamestate.Snapshot, decisionIndex *int) string {
	if decisionIndex == nil {
		if snap.DecisionCount == 0 && !snap.MCQPresented {
			return "Start the scenario."
		}
		return "Continue."
	}
	if snap.MCQPresented && !snap.MCQAnswered {
		return chat.AnswerMessage(*decisionIndex)
	}
	return chat.DecisionMessage(*decisionIndex)
}
