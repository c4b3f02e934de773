package gateway

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lexiqai/interpreter-gateway/internal/audio"
	"github.com/lexiqai/interpreter-gateway/internal/events"
	"github.com/lexiqai/interpreter-gateway/internal/observability"
	"github.com/lexiqai/interpreter-gateway/internal/stt"
	"github.com/lexiqai/interpreter-gateway/internal/translation"
	"github.com/lexiqai/interpreter-gateway/internal/tts"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The interpreter page may be served from any origin
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// RecognizerFactory creates the recognizer for one session. send delivers
// recognizer commands to the client and is only used by the browser engine.
type RecognizerFactory func(ctx context.Context, send stt.CommandFunc, logger zerolog.Logger) (stt.Recognizer, error)

// BrowserRecognizers runs recognition in the client and relays its callbacks
func BrowserRecognizers(_ context.Context, send stt.CommandFunc, logger zerolog.Logger) (stt.Recognizer, error) {
	return stt.NewRemoteRecognizer(send, logger), nil
}

// EventPublisher receives finalized transcripts and shown translations
type EventPublisher interface {
	PublishTranscript(ctx context.Context, event events.TranscriptEvent) error
	PublishTranslation(ctx context.Context, event events.TranslationEvent) error
}

// Options wires the shared collaborators into every session
type Options struct {
	Translator  translation.Translator
	Synthesizer tts.Synthesizer
	Publisher   EventPublisher // optional
	Recognizers RecognizerFactory

	// Engine labels session metrics
	Engine        string
	AudioEncoding audio.Encoding
	VAD           *audio.VADConfig

	DefaultSourceLang string
	DefaultTargetLang string
}

// Handler upgrades /ws/session requests into interpreter sessions
type Handler struct {
	opts   Options
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewHandler validates opts and creates a Handler
func NewHandler(opts Options) (*Handler, error) {
	if opts.Translator == nil {
		return nil, errors.New("translator is required")
	}
	if opts.Synthesizer == nil {
		return nil, errors.New("synthesizer is required")
	}
	if opts.Recognizers == nil {
		opts.Recognizers = BrowserRecognizers
	}
	if opts.Engine == "" {
		opts.Engine = "browser"
	}
	if opts.AudioEncoding == "" {
		opts.AudioEncoding = audio.EncodingLinear16
	}
	if opts.DefaultSourceLang == "" {
		opts.DefaultSourceLang = "en"
	}
	if opts.DefaultTargetLang == "" {
		opts.DefaultTargetLang = "es"
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		opts:     opts,
		logger:   observability.WithComponent("gateway"),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}, nil
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		h.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	session, err := newSession(h.ctx, conn, &h.opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create interpreter session")
		_ = conn.WriteJSON(ServerMessage{Type: MsgError, Message: "speech recognition is unavailable"})
		conn.Close()
		return
	}

	h.track(session)
	defer h.untrack(session)

	h.logger.Info().
		Str("session_id", session.ID()).
		Str("remote_addr", r.RemoteAddr).
		Msg("New interpreter WebSocket connection established")

	session.run()
}

func (h *Handler) track(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID()] = s
}

func (h *Handler) untrack(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s.ID())
}

// ActiveSessions returns the number of open sessions
func (h *Handler) ActiveSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown refuses new sessions and closes the open ones
func (h *Handler) Shutdown() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	h.cancel()
	for _, s := range sessions {
		s.close()
	}
}
