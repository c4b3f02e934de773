package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lexiqai/interpreter-gateway/internal/observability"
)

func TestRouter_Health(t *testing.T) {
	router := NewRouter(RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestRouter_ReadyReportsFailingDependency(t *testing.T) {
	router := NewRouter(RouterOptions{
		ReadyChecks: []observability.DependencyCheck{
			{Name: "translator", Check: func(context.Context) (bool, error) { return true, nil }},
			{Name: "synthesizer", Check: func(context.Context) (bool, error) { return false, errors.New("circuit open") }},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestRouter_Languages(t *testing.T) {
	router := NewRouter(RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/languages", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var langs []languageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &langs); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(langs) != 20 {
		t.Errorf("Expected 20 languages, got %d", len(langs))
	}
	if langs[0].Tag != "ar" || langs[0].Locale != "ar-SA" {
		t.Errorf("Expected languages sorted by tag, first was %+v", langs[0])
	}
}

func TestRouter_MetricsToggle(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		expected int
	}{
		{"enabled", true, http.StatusOK},
		{"disabled", false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(RouterOptions{MetricsEnabled: tt.enabled})

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, w.Code)
			}
		})
	}
}
