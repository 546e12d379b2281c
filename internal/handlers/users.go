package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/EduardoTrevino/udyam/internal/storage"
)

// UserResponse is the GET /v1/users/{id} response body.
type UserResponse struct {
	User    *storage.User      `json:"user"`
	Metrics map[string]float64 `json:"metrics"`
}

// CreateUserRequest is the POST /v1/users request body.
type CreateUserRequest struct {
	Name string `json:"name"`
}

// UpdateUserRequest is the PATCH /v1/users/{id} request body. Absent
// fields are left unchanged.
type UpdateUserRequest struct {
	Name          *string `json:"name"`
	FocusedGoalID *string `json:"focused_goal_id"`
}

// GoalsResponse is the GET /v1/users/{id}/goals response body.
type GoalsResponse struct {
	Goals []storage.GoalWithProgress `json:"goals"`
}

// DecisionsResponse is the GET /v1/users/{id}/decisions response body.
type DecisionsResponse struct {
	Decisions []storage.DecisionRecord `json:"decisions"`
}

// UsersHandler serves user lookup, user updates, and the per-user goal,
// progress, and decision subresources.
type UsersHandler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(store storage.Store, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{
		store:  store,
		logger: logger,
	}
}

// ServeHTTP routes /v1/users/{id} and its subresources.
func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/users"), "/")
	if rest == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusBadRequest, "User ID is required in the URL path.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	userID, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "User ID is not a valid UUID.")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, userID)
		case http.MethodPatch:
			h.handleUpdate(w, r, userID)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET and PATCH are supported.")
		}
	case len(parts) == 2 && parts[1] == "goals":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		h.handleGoals(w, r, userID)
	case len(parts) == 2 && parts[1] == "decisions":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		h.handleDecisions(w, r, userID)
	case (len(parts) == 2 || len(parts) == 3) && parts[1] == "progress":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		rawGoalID := ""
		if len(parts) == 3 {
			rawGoalID = parts[2]
		}
		h.handleProgress(w, r, userID, rawGoalID)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Resource not found.")
	}
}

func (h *UsersHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'name' field.")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "name is required")
		return
	}

	user := &storage.User{
		ID:   uuid.New(),
		Name: strings.TrimSpace(req.Name),
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		h.logger.Error("Error creating user", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	metrics, err := h.store.GetMetrics(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("Error loading user metrics", "user_id", user.ID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load user metrics.")
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, UserResponse{User: user, Metrics: metrics})
}

func (h *UsersHandler) handleGet(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "User not found.")
			return
		}
		h.logger.Error("Error loading user", "user_id", userID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load user.")
		return
	}

	metrics, err := h.store.GetMetrics(r.Context(), userID)
	if err != nil {
		h.logger.Error("Error loading user metrics", "user_id", userID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load user metrics.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, UserResponse{User: user, Metrics: metrics})
}

func (h *UsersHandler) handleUpdate(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Name == nil && req.FocusedGoalID == nil {
		writeError(w, h.logger, http.StatusBadRequest, "At least one of 'name' or 'focused_goal_id' is required.")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "name must not be empty")
		return
	}

	var focusedGoalID *uuid.UUID
	if req.FocusedGoalID != nil {
		goalID, err := uuid.Parse(*req.FocusedGoalID)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "focused_goal_id is not a valid UUID")
			return
		}
		if _, err := h.store.GetGoal(r.Context(), goalID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, h.logger, http.StatusNotFound, "Goal not found.")
				return
			}
			h.logger.Error("Error loading goal", "goal_id", goalID, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load goal.")
			return
		}
		focusedGoalID = &goalID
	}

	user, err := h.store.UpdateUser(r.Context(), userID, req.Name, focusedGoalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "User not found.")
			return
		}
		h.logger.Error("Error updating user", "user_id", userID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to update user.")
		return
	}

	metrics, err := h.store.GetMetrics(r.Context(), userID)
	if err != nil {
		h.logger.Error("Error loading user metrics", "user_id", userID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load user metrics.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, UserResponse{User: user, Metrics: metrics})
}

func (h *UsersHandler) handleGoals(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	if _, err := h.store.GetUser(r.Context(), userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "User not found.")
			return
		}
		h.logger.Error("Error loading user", "user_id", userID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load user.")
		return
	}

	goals, err := h.store.ListGoalsWithProgress(r.Context(), userID)
	if err != nil {
		h.logger.Error("Error listing goals", "user_id", userID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list goals.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, GoalsResponse{Goals: goals})
}

func (h *UsersHandler) handleProgress(w http.ResponseWriter, r *http.Request, userID uuid.UUID, rawGoalID string) {
	var goalID uuid.UUID
	if rawGoalID == "" {
		// No goal in the path means the learner's focused goal.
		user, err := h.store.GetUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, h.logger, http.StatusNotFound, "User not found.")
				return
			}
			h.logger.Error("Error loading user", "user_id", userID, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load user.")
			return
		}
		if user.FocusedGoalID == nil {
			writeError(w, h.logger, http.StatusBadRequest, "User has no focused goal.")
			return
		}
		goalID = *user.FocusedGoalID
	} else {
		parsed, err := uuid.Parse(rawGoalID)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Goal ID is not a valid UUID.")
			return
		}
		goalID = parsed
	}

	prog, err := h.store.GetProgress(r.Context(), userID, goalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Progress not found for this user and goal.")
			return
		}
		h.logger.Error("Error loading progress", "user_id", userID, "goal_id", goalID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load progress.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, prog)
}

func (h *UsersHandler) handleDecisions(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	decisions, err := h.store.ListDecisions(r.Context(), userID)
	if err != nil {
		h.logger.Error("Error listing decisions", "user_id", userID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list decisions.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, DecisionsResponse{Decisions: decisions})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
