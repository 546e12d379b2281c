package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EduardoTrevino/udyam/internal/services"
	"github.com/EduardoTrevino/udyam/internal/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		storeErr       error
		cacheErr       error
		llmErr         error
		expectedStatus int
		expectedHealth string
		expectedDB     string
		expectedCache  string
		expectedLLM    string
	}{
		{
			name:           "all healthy",
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedDB:     "healthy",
			expectedCache:  "healthy",
			expectedLLM:    "healthy",
		},
		{
			name:           "unhealthy database",
			storeErr:       errors.New("connection refused"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedDB:     "unhealthy",
			expectedCache:  "healthy",
			expectedLLM:    "healthy",
		},
		{
			name:           "unhealthy cache",
			cacheErr:       errors.New("connection refused"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedDB:     "healthy",
			expectedCache:  "unhealthy",
			expectedLLM:    "healthy",
		},
		{
			name:           "unhealthy llm",
			llmErr:         errors.New("401 unauthorized"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedDB:     "healthy",
			expectedCache:  "healthy",
			expectedLLM:    "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockStore()
			store.SetPingError(tt.storeErr)

			cache := services.NewMockCache()
			cache.SetPingError(tt.cacheErr)

			llm := services.NewMockLLM()
			if tt.llmErr != nil {
				llmErr := tt.llmErr
				llm.PingFunc = func(ctx context.Context) error { return llmErr }
			}

			handler := NewHealthHandler(store, cache, llm, testLogger())
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}

			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}
			if resp.Status != tt.expectedHealth {
				t.Errorf("Status = %q, want %q", resp.Status, tt.expectedHealth)
			}
			if resp.Components["database"] != tt.expectedDB {
				t.Errorf("database = %v, want %q", resp.Components["database"], tt.expectedDB)
			}
			if resp.Components["cache"] != tt.expectedCache {
				t.Errorf("cache = %v, want %q", resp.Components["cache"], tt.expectedCache)
			}
			if resp.Components["llm"] != tt.expectedLLM {
				t.Errorf("llm = %v, want %q", resp.Components["llm"], tt.expectedLLM)
			}
		})
	}
}
