package services

import (
	"context"
	"sync"

	"github.com/EduardoTrevino/udyam/pkg/chat"
)

// MockLLM is a mock implementation of LLMService for testing
type MockLLM struct {
	GenerateStepFunc func(ctx context.Context, messages []chat.DialogueEntry, schema map[string]interface{}) (string, error)
	PingFunc         func(ctx context.Context) error

	// Track calls for testing
	GenerateStepCalls []GenerateStepCall
	PingCalls         int

	mu sync.Mutex // protects all fields above
}

type GenerateStepCall struct {
	Messages []chat.DialogueEntry
	Schema   map[string]interface{}
}

// Ensure MockLLM implements LLMService interface
var _ LLMService = (*MockLLM)(nil)

// NewMockLLM creates a new mock LLM service
func NewMockLLM() *MockLLM {
	return &MockLLM{
		GenerateStepCalls: make([]GenerateStepCall, 0),
	}
}

// GenerateStep mocks structured step generation
func (m *MockLLM) GenerateStep(ctx context.Context, messages []chat.DialogueEntry, schema map[string]interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateStepCalls = append(m.GenerateStepCalls, GenerateStepCall{
		Messages: messages,
		Schema:   schema,
	})

	if m.GenerateStepFunc != nil {
		return m.GenerateStepFunc(ctx, messages, schema)
	}

	// Default behavior - a minimal first decision step
	return `{"stepType":"decision","messages":[{"character":"Rani","text":"Chalo, let's start!"}],"mainCharacterImage":null,"decisionPoint":{"question":"What first?","options":[{"text":"A","metricDeltas":[],"isScaffold":false},{"text":"B","metricDeltas":[],"isScaffold":false},{"text":"C","metricDeltas":[],"isScaffold":false},{"text":"D","metricDeltas":[],"isScaffold":true}]},"mcq":null,"feedback":null,"scenarioComplete":false,"summary":null,"previousDecision":null}`, nil
}

// Ping mocks the connectivity check
func (m *MockLLM) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PingCalls++

	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
