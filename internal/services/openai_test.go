package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EduardoTrevino/udyam/pkg/chat"
	"github.com/EduardoTrevino/udyam/pkg/scenario"
)

func testMessages() []chat.DialogueEntry {
	return []chat.DialogueEntry{
		{Role: chat.RoleSystem, Content: "You are the narrative engine."},
		{Role: chat.RoleUser, Content: "Start the scenario."},
	}
}

func newTestService(serverURL string) *OpenAIService {
	svc := NewOpenAIService("test-key", "gpt-4o-2024-08-06")
	svc.baseURL = serverURL
	return svc
}

func TestGenerateStepSuccess(t *testing.T) {
	const content = `{"stepType":"decision"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req OpenAIChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Errorf("response_format = %+v, want json_schema", req.ResponseFormat)
		}
		if req.ResponseFormat != nil && !req.ResponseFormat.JSONSchema.Strict {
			t.Error("json_schema.strict = false, want true")
		}
		if req.ResponseFormat != nil && req.ResponseFormat.JSONSchema.Name != scenario.SchemaName {
			t.Errorf("schema name = %q, want %q", req.ResponseFormat.JSONSchema.Name, scenario.SchemaName)
		}
		if req.Stream {
			t.Error("stream = true, want false")
		}

		resp := OpenAIChatResponse{}
		resp.Choices = []OpenAIChatChoice{{}}
		resp.Choices[0].Message.Role = chat.RoleAssistant
		resp.Choices[0].Message.Content = content
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	got, err := svc.GenerateStep(context.Background(), testMessages(), scenario.ResponseSchema())
	if err != nil {
		t.Fatalf("GenerateStep() error = %v", err)
	}
	if got != content {
		t.Errorf("GenerateStep() = %q, want %q", got, content)
	}
}

func TestGenerateStepUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	_, err := svc.GenerateStep(context.Background(), testMessages(), scenario.ResponseSchema())

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want *UpstreamError", err)
	}
	if upstream.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", upstream.StatusCode)
	}
}

func TestGenerateStepRefusal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := OpenAIChatResponse{}
		resp.Choices = []OpenAIChatChoice{{}}
		resp.Choices[0].Message.Refusal = "I can't help with that."
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	_, err := svc.GenerateStep(context.Background(), testMessages(), scenario.ResponseSchema())
	if err == nil {
		t.Fatal("GenerateStep() succeeded on a refusal")
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		t.Errorf("refusal classified as upstream error: %v", err)
	}
}

func TestGenerateStepEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(OpenAIChatResponse{})
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	if _, err := svc.GenerateStep(context.Background(), testMessages(), scenario.ResponseSchema()); err == nil {
		t.Error("GenerateStep() succeeded with no choices")
	}
}

func TestGenerateStepMissingAPIKey(t *testing.T) {
	svc := NewOpenAIService("", "gpt-4o-2024-08-06")
	_, err := svc.GenerateStep(context.Background(), testMessages(), scenario.ResponseSchema())
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-2024-08-06"}]}`))
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	if err := svc.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestPingUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	var upstream *UpstreamError
	if err := svc.Ping(context.Background()); !errors.As(err, &upstream) {
		t.Errorf("Ping() error = %v, want *UpstreamError", err)
	}
}
