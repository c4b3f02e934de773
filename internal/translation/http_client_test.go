package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lexiqai/interpreter-gateway/internal/resilience"
)

func TestNewHTTPClient_RequiresURL(t *testing.T) {
	if _, err := NewHTTPClient("", nil); err == nil {
		t.Error("Expected error for empty translator url")
	}
}

func TestHTTPClient_Translate(t *testing.T) {
	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"translated_text": "hola"})
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL+"/", nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	translated, err := client.Translate(context.Background(), Request{Text: "hello", SourceLang: "en", TargetLang: "es"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if translated != "hola" {
		t.Errorf("Expected 'hola', got '%s'", translated)
	}
	if got.Text != "hello" || got.SourceLang != "en" || got.TargetLang != "es" {
		t.Errorf("Unexpected request body: %+v", got)
	}
}

func TestHTTPClient_TranslateFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"error field", http.StatusBadRequest, `{"error":"No text provided"}`, "No text provided"},
		{"server error without body", http.StatusInternalServerError, `oops`, "translator returned status 500"},
		{"status without error field", http.StatusBadGateway, `{}`, "translator returned status 502"},
		{"malformed body", http.StatusOK, `not json`, "malformed translator response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := NewHTTPClient(server.URL, nil)
			_, err := client.Translate(context.Background(), Request{Text: "hello", SourceLang: "en", TargetLang: "es"})

			var tErr *Error
			if !errors.As(err, &tErr) {
				t.Fatalf("Expected *Error, got %v", err)
			}
			if tErr.Detail != tt.wantDetail {
				t.Errorf("Expected detail '%s', got '%s'", tt.wantDetail, tErr.Detail)
			}
			if tErr.Network {
				t.Error("Expected non-network error")
			}
		})
	}
}

func TestHTTPClient_BlankTranslation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translated_text":"  "}`))
	}))
	defer server.Close()

	client, _ := NewHTTPClient(server.URL, nil)
	translated, err := client.Translate(context.Background(), Request{Text: "hello", SourceLang: "en", TargetLang: "es"})
	if err != nil {
		t.Fatalf("Expected no error for a blank translation, got %v", err)
	}
	if translated != "" {
		t.Errorf("Expected empty result, got '%s'", translated)
	}
}

func TestHTTPClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, _ := NewHTTPClient(url, nil)
	_, err := client.Translate(context.Background(), Request{Text: "hello", SourceLang: "en", TargetLang: "es"})

	var tErr *Error
	if !errors.As(err, &tErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if !tErr.Network {
		t.Errorf("Expected network error, got %+v", tErr)
	}
	if tErr.Message() != "Network error. Please check your connection." {
		t.Errorf("Unexpected message: %s", tErr.Message())
	}
}

func TestHTTPClient_CircuitBreakerFailsFast(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	breaker := resilience.NewCircuitBreaker("translator-test", 2, time.Minute)
	client, _ := NewHTTPClient(server.URL, breaker)
	req := Request{Text: "hello", SourceLang: "en", TargetLang: "es"}

	for i := 0; i < 2; i++ {
		if _, err := client.Translate(context.Background(), req); err == nil {
			t.Fatal("Expected upstream failure")
		}
	}

	_, err := client.Translate(context.Background(), req)
	var tErr *Error
	if !errors.As(err, &tErr) || tErr.Detail != "translation service temporarily unavailable" {
		t.Errorf("Expected fail-fast translation error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 upstream calls, got %d", calls)
	}

	if ok, _ := client.Check(context.Background()); ok {
		t.Error("Expected Check to fail while the circuit is open")
	}
}

func TestHTTPClient_RejectedRequestsKeepCircuitClosed(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Text {
		case "bad":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"No text provided"}`))
		case "blank":
			_, _ = w.Write([]byte(`{"translated_text":""}`))
		default:
			_ = json.NewEncoder(w).Encode(map[string]string{"translated_text": "hola"})
		}
	}))
	defer server.Close()

	breaker := resilience.NewCircuitBreaker("translator-test", 2, time.Minute)
	client, _ := NewHTTPClient(server.URL, breaker)

	for i := 0; i < 5; i++ {
		_, err := client.Translate(context.Background(), Request{Text: "bad", SourceLang: "en", TargetLang: "es"})
		var tErr *Error
		if !errors.As(err, &tErr) || tErr.Detail != "No text provided" {
			t.Fatalf("Expected rejection detail, got %v", err)
		}
		if _, err := client.Translate(context.Background(), Request{Text: "blank", SourceLang: "en", TargetLang: "es"}); err != nil {
			t.Fatalf("Expected blank translation to succeed, got %v", err)
		}
	}

	if breaker.GetState() != resilience.StateClosed {
		t.Errorf("Expected circuit to stay closed, got %s", breaker.GetState())
	}

	translated, err := client.Translate(context.Background(), Request{Text: "hello", SourceLang: "en", TargetLang: "es"})
	if err != nil || translated != "hola" {
		t.Errorf("Expected 'hola', got '%s' (%v)", translated, err)
	}
	if calls != 11 {
		t.Errorf("Expected 11 upstream calls, got %d", calls)
	}
}
