package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/EduardoTrevino/udyam/pkg/chat"
)

// ErrMissingAPIKey is returned before any network call when the provider
// credential is not configured.
var ErrMissingAPIKey = errors.New("llm api key is not configured")

// UpstreamError reports a failed provider call at the HTTP layer. It is a
// different failure class from bad content: the provider itself failed, and
// its status should be surfaced to the caller.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm request failed with status %d: %s", e.StatusCode, e.Body)
}

// LLMService defines the interface for structured scenario generation.
type LLMService interface {
	// GenerateStep sends the message array with a strict JSON schema and
	// returns the raw structured content. Parsing and validation belong to
	// the caller; a transport failure is returned as *UpstreamError.
	GenerateStep(ctx context.Context, messages []chat.DialogueEntry, schema map[string]interface{}) (string, error)

	// Ping verifies the provider is reachable and the credential accepted.
	Ping(ctx context.Context) error
}
