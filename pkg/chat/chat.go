package chat

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Action prefixes for synthesized user entries. The game-state extractor
// recognizes these when scanning dialogue history, so they must stay stable
// across releases.
const (
	decisionPrefix = "I choose: "
	answerPrefix   = "My answer: "
)

// DialogueEntry is a single line of the persisted conversation for a
// (learner, goal) pair. For assistant entries, Content is the serialized
// JSON of a scenario step.
type DialogueEntry struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// DecisionMessage synthesizes the canonical user entry for a decision
// submission. optionIndex is zero-based.
func DecisionMessage(optionIndex int) string {
	return fmt.Sprintf("%soption %d", decisionPrefix, optionIndex)
}

// AnswerMessage synthesizes the canonical user entry for an MCQ answer.
func AnswerMessage(optionIndex int) string {
	return fmt.Sprintf("%soption %d", answerPrefix, optionIndex)
}

// ParseDecision extracts the option index from a synthesized decision entry.
// The second return is false when the content is not a decision entry.
func ParseDecision(content string) (int, bool) {
	return parseAction(content, decisionPrefix)
}

// ParseAnswer extracts the option index from a synthesized MCQ answer entry.
func ParseAnswer(content string) (int, bool) {
	return parseAction(content, answerPrefix)
}

func parseAction(content, prefix string) (int, bool) {
	if !strings.HasPrefix(content, prefix) {
		return 0, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(content, prefix))
	rest = strings.TrimPrefix(rest, "option")
	idx, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
