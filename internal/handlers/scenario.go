package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/EduardoTrevino/udyam/internal/engine"
	"github.com/EduardoTrevino/udyam/internal/services"
	"github.com/EduardoTrevino/udyam/pkg/scenario"
)

// ErrorResponse is the uniform error envelope for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AdvanceRequest is the request body for POST /v1/scenario.
type AdvanceRequest struct {
	UserID        string `json:"user_id"`
	DecisionIndex *int   `json:"decision_index"`
}

// AdvanceResponse wraps the generated step.
type AdvanceResponse struct {
	ScenarioStep *scenario.Step `json:"scenario_step"`
}

// ScenarioHandler handles scenario-advance requests.
type ScenarioHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewScenarioHandler creates a new scenario handler.
func NewScenarioHandler(engine *engine.Engine, logger *slog.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		engine: engine,
		logger: logger,
	}
}

// ServeHTTP handles POST /v1/scenario.
func (h *ScenarioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'user_id' field.")
		return
	}
	if req.UserID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "user_id is required")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "user_id is not a valid UUID")
		return
	}

	// A hanging provider call should not block the request forever.
	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	step, err := h.engine.Advance(ctx, engine.AdvanceRequest{
		UserID:        userID,
		DecisionIndex: req.DecisionIndex,
	})
	if err != nil {
		status, msg := mapEngineError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Scenario advance failed", "user_id", userID, "error", err)
		} else {
			h.logger.Warn("Scenario advance rejected", "user_id", userID, "status", status, "error", err)
		}
		writeError(w, h.logger, status, msg)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(AdvanceResponse{ScenarioStep: step}); err != nil {
		h.logger.Error("Error encoding scenario response", "error", err)
	}
}

// mapEngineError translates the engine's error taxonomy to the {error,
// status} envelope contract.
func mapEngineError(err error) (int, string) {
	var validationErr *engine.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Msg
	}

	var notFoundErr *engine.NotFoundError
	if errors.As(err, &notFoundErr) {
		return http.StatusNotFound, notFoundErr.Error()
	}

	var upstreamErr *services.UpstreamError
	if errors.As(err, &upstreamErr) {
		// Surface the provider's own status; the caller decides on retries.
		return upstreamErr.StatusCode, "Scenario generation failed upstream. Please try again."
	}

	var contentErr *engine.ContentError
	if errors.As(err, &contentErr) {
		return http.StatusInternalServerError, "Scenario generation returned invalid content. Please try again."
	}

	if errors.Is(err, services.ErrMissingAPIKey) {
		return http.StatusInternalServerError, "Scenario generation is not configured."
	}

	return http.StatusInternalServerError, "Internal error. Please try again."
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
