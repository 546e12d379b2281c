package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EduardoTrevino/udyam/internal/storage"
	"github.com/EduardoTrevino/udyam/pkg/chat"
)

func doRequest(handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestUsersHandler_Create(t *testing.T) {
	store := storage.NewMockStore()
	handler := NewUsersHandler(store, testLogger())

	rec := doRequest(handler, http.MethodPost, "/v1/users", CreateUserRequest{Name: "Ravi"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, "Ravi", resp.User.Name)
	assert.NotEqual(t, uuid.Nil, resp.User.ID)
}

func TestUsersHandler_CreateRequiresName(t *testing.T) {
	handler := NewUsersHandler(storage.NewMockStore(), testLogger())

	rec := doRequest(handler, http.MethodPost, "/v1/users", CreateUserRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersHandler_Get(t *testing.T) {
	store := storage.NewMockStore()
	userID, _ := seedLearner(t, store)
	handler := NewUsersHandler(store, testLogger())

	rec := doRequest(handler, http.MethodGet, "/v1/users/"+userID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Asha", resp.User.Name)
	assert.Equal(t, 50.0, resp.Metrics["Revenue"])
}

func TestUsersHandler_GetUnknown(t *testing.T) {
	handler := NewUsersHandler(storage.NewMockStore(), testLogger())

	rec := doRequest(handler, http.MethodGet, "/v1/users/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersHandler_BadID(t *testing.T) {
	handler := NewUsersHandler(storage.NewMockStore(), testLogger())

	rec := doRequest(handler, http.MethodGet, "/v1/users/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersHandler_Patch(t *testing.T) {
	store := storage.NewMockStore()
	userID, goalID := seedLearner(t, store)
	handler := NewUsersHandler(store, testLogger())

	name := "Asha Devi"
	goal := goalID.String()
	rec := doRequest(handler, http.MethodPatch, "/v1/users/"+userID.String(),
		UpdateUserRequest{Name: &name, FocusedGoalID: &goal})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Asha Devi", resp.User.Name)
	require.NotNil(t, resp.User.FocusedGoalID)
	assert.Equal(t, goalID, *resp.User.FocusedGoalID)
}

func TestUsersHandler_PatchRejectsUnknownGoal(t *testing.T) {
	store := storage.NewMockStore()
	userID, _ := seedLearner(t, store)
	handler := NewUsersHandler(store, testLogger())

	goal := uuid.New().String()
	rec := doRequest(handler, http.MethodPatch, "/v1/users/"+userID.String(),
		UpdateUserRequest{FocusedGoalID: &goal})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersHandler_PatchRequiresAField(t *testing.T) {
	store := storage.NewMockStore()
	userID, _ := seedLearner(t, store)
	handler := NewUsersHandler(store, testLogger())

	rec := doRequest(handler, http.MethodPatch, "/v1/users/"+userID.String(), UpdateUserRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersHandler_Goals(t *testing.T) {
	store := storage.NewMockStore()
	userID, goalID := seedLearner(t, store)
	require.NoError(t, store.UpsertProgress(context.Background(), &storage.GoalProgress{
		UserID:   userID,
		GoalID:   goalID,
		Progress: 40,
	}, 0))
	handler := NewUsersHandler(store, testLogger())

	rec := doRequest(handler, http.MethodGet, "/v1/users/"+userID.String()+"/goals", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp GoalsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Goals, 1)
	assert.Equal(t, "Increase Revenue", resp.Goals[0].Name)
	assert.Equal(t, 40, resp.Goals[0].Progress)
}

func TestUsersHandler_ProgressForFocusedGoal(t *testing.T) {
	store := storage.NewMockStore()
	userID, goalID := seedLearner(t, store)
	require.NoError(t, store.UpsertProgress(context.Background(), &storage.GoalProgress{
		UserID: userID,
		GoalID: goalID,
		DialogueHistory: []chat.DialogueEntry{
			{Role: chat.RoleUser, Content: "Start the scenario."},
		},
		Progress: 25,
	}, 0))
	handler := NewUsersHandler(store, testLogger())

	rec := doRequest(handler, http.MethodGet, "/v1/users/"+userID.String()+"/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp storage.GoalProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 25, resp.Progress)
	assert.Len(t, resp.DialogueHistory, 1)
}

func TestUsersHandler_ProgressExplicitGoal(t *testing.T) {
	store := storage.NewMockStore()
	userID, goalID := seedLearner(t, store)
	require.NoError(t, store.UpsertProgress(context.Background(), &storage.GoalProgress{
		UserID:   userID,
		GoalID:   goalID,
		Progress: 75,
	}, 0))
	handler := NewUsersHandler(store, testLogger())

	rec := doRequest(handler, http.MethodGet, "/v1/users/"+userID.String()+"/progress/"+goalID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp storage.GoalProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 75, resp.Progress)
}

func TestUsersHandler_ProgressAbsentIs404(t *testing.T) {
	store := storage.NewMockStore()
	userID, _ := seedLearner(t, store)
	handler := NewUsersHandler(store, testLogger())

	rec := doRequest(handler, http.MethodGet, "/v1/users/"+userID.String()+"/progress", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersHandler_Decisions(t *testing.T) {
	store := storage.NewMockStore()
	userID, goalID := seedLearner(t, store)
	require.NoError(t, store.InsertDecision(context.Background(), &storage.DecisionRecord{
		UserID:        userID,
		GoalID:        goalID,
		DecisionIndex: 1,
		OptionIndex:   2,
		MetricDeltas:  map[string]float64{"Revenue": 5},
	}))
	handler := NewUsersHandler(store, testLogger())

	rec := doRequest(handler, http.MethodGet, "/v1/users/"+userID.String()+"/decisions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DecisionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Decisions, 1)
	assert.Equal(t, 2, resp.Decisions[0].OptionIndex)
}

func TestUsersHandler_UnknownSubresource(t *testing.T) {
	store := storage.NewMockStore()
	userID, _ := seedLearner(t, store)
	handler := NewUsersHandler(store, testLogger())

	rec := doRequest(handler, http.MethodGet, "/v1/users/"+userID.String()+"/badges", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
