package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexiqai/interpreter-gateway/internal/language"
	"github.com/lexiqai/interpreter-gateway/internal/observability"
)

// RouterOptions selects the routes served next to the session endpoint
type RouterOptions struct {
	Sessions       http.Handler
	ReadyChecks    []observability.DependencyCheck
	MetricsEnabled bool
}

type languageResponse struct {
	Tag    string `json:"tag"`
	Locale string `json:"locale"`
	Name   string `json:"name"`
}

// NewRouter constructs the HTTP router for the service
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", observability.HealthCheckHandler())
	r.Get("/ready", observability.ReadinessHandler(opts.ReadyChecks...))
	if opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/languages", func(w http.ResponseWriter, _ *http.Request) {
		supported := language.Supported()
		resp := make([]languageResponse, 0, len(supported))
		for _, lang := range supported {
			resp = append(resp, languageResponse{Tag: lang.Tag, Locale: lang.Locale, Name: lang.Name})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	if opts.Sessions != nil {
		r.Handle("/ws/session", opts.Sessions)
	}

	return r
}
