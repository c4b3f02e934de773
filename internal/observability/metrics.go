package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "interpreter_gateway_active_sessions",
		Help: "Number of open interpreter sessions",
	})

	totalSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interpreter_gateway_sessions_total",
		Help: "Total number of interpreter sessions opened",
	})

	sessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "interpreter_gateway_session_duration_seconds",
		Help:    "Duration of interpreter sessions in seconds",
		Buckets: []float64{10, 30, 60, 300, 600, 1800, 3600},
	})

	// Recognition metrics
	recognizerStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interpreter_gateway_recognizer_starts_total",
		Help: "Total number of recognizer start requests",
	}, []string{"engine"})

	recognizerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interpreter_gateway_recognizer_errors_total",
		Help: "Total number of recognizer errors by kind",
	}, []string{"engine", "kind"})

	finalSegments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interpreter_gateway_final_segments_total",
		Help: "Total number of final speech segments accumulated",
	})

	// Translation metrics
	translationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interpreter_gateway_translation_requests_total",
		Help: "Total number of translation requests by outcome",
	}, []string{"status"})

	translationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "interpreter_gateway_translation_latency_seconds",
		Help:    "Translation round-trip latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	})

	staleTranslations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interpreter_gateway_translations_discarded_total",
		Help: "Translation results discarded because a newer one was already shown",
	})

	// Synthesis metrics
	synthesisRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interpreter_gateway_synthesis_requests_total",
		Help: "Total number of speech synthesis requests by outcome",
	}, []string{"status"})

	synthesisLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "interpreter_gateway_synthesis_latency_seconds",
		Help:    "Speech synthesis latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "interpreter_gateway_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interpreter_gateway_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})

	// Event publishing metrics
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interpreter_gateway_events_published_total",
		Help: "Total number of conversation events published",
	}, []string{"topic", "status"})

	// Audio metrics
	audioBytesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interpreter_gateway_audio_bytes_total",
		Help: "Total audio bytes received from clients",
	})
)

// SessionMetrics tracks metrics for a single interpreter session
type SessionMetrics struct {
	sessionID string
	engine    string
	startTime time.Time
	ended     bool
	mu        sync.Mutex
}

// NewSessionMetrics creates a metrics tracker for a session
func NewSessionMetrics(sessionID, engine string) *SessionMetrics {
	return &SessionMetrics{
		sessionID: sessionID,
		engine:    engine,
		startTime: time.Now(),
	}
}

// RecordSessionStart records the start of a session
func (m *SessionMetrics) RecordSessionStart() {
	activeSessions.Inc()
	totalSessions.Inc()
}

// RecordSessionEnd records the end of a session. Later calls are ignored.
func (m *SessionMetrics) RecordSessionEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ended {
		return
	}
	m.ended = true
	activeSessions.Dec()
	sessionDuration.Observe(time.Since(m.startTime).Seconds())
}

// RecordRecognizerStart records a recognizer start request
func (m *SessionMetrics) RecordRecognizerStart() {
	recognizerStarts.WithLabelValues(m.engine).Inc()
}

// RecordRecognizerError records a recognizer error of the given kind
func (m *SessionMetrics) RecordRecognizerError(kind string) {
	recognizerErrors.WithLabelValues(m.engine, kind).Inc()
}

// RecordFinalSegments records n newly finalized segments
func (m *SessionMetrics) RecordFinalSegments(n int) {
	finalSegments.Add(float64(n))
}

// RecordAudioBytes records audio bytes received from the client
func (m *SessionMetrics) RecordAudioBytes(n int) {
	audioBytesReceived.Add(float64(n))
}

// RecordTranslation records one finished translation request
func RecordTranslation(success bool, latency time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	translationRequests.WithLabelValues(status).Inc()
	translationLatency.Observe(latency.Seconds())
}

// RecordStaleTranslation records a discarded translation result
func RecordStaleTranslation() {
	staleTranslations.Inc()
}

// RecordSynthesis records one finished synthesis request
func RecordSynthesis(success bool, latency time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	synthesisRequests.WithLabelValues(status).Inc()
	synthesisLatency.Observe(latency.Seconds())
}

// RecordEventPublished records a conversation event publish attempt
func RecordEventPublished(topic string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	eventsPublished.WithLabelValues(topic, status).Inc()
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}
