package translation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/interpreter-gateway/internal/observability"
)

// UpdateKind tells the display layer what changed
type UpdateKind int

const (
	UpdateLoading    UpdateKind = iota // Loading indicator toggled
	UpdateTranslated                   // A newer translation is shown
	UpdateFailed                       // An error is shown in place of the translation
)

// Update is one display change produced by a Session
type Update struct {
	Kind    UpdateKind
	Seq     uint64
	Text    string
	Loading bool
	Err     *Error

	// Request is the request seq was dispatched for
	Request Request
}

// Listener receives display updates. Callbacks run with the session lock
// held, in the order the display must apply them, and must not call back
// into the Session.
type Listener interface {
	OnTranslationUpdate(Update)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(Update)

// OnTranslationUpdate calls f(u)
func (f ListenerFunc) OnTranslationUpdate(u Update) { f(u) }

// Session dispatches translation requests and applies only the newest
// completed response. Requests run concurrently and are never cancelled
// when superseded; late results are discarded on arrival.
type Session struct {
	translator Translator
	listener   Listener
	logger     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	lastSeq  uint64             // Highest sequence id dispatched
	shownSeq uint64             // Highest sequence id whose result was shown
	fenceSeq uint64             // Results at or below this id were cleared
	pending  map[uint64]Request // Dispatched but unresolved
	current  string
	closed   bool
}

// NewSession creates a translation session. listener may be nil.
func NewSession(translator Translator, listener Listener, logger zerolog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	if listener == nil {
		listener = ListenerFunc(func(Update) {})
	}
	return &Session{
		translator: translator,
		listener:   listener,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		pending:    make(map[uint64]Request),
	}
}

// Request dispatches text for translation and returns its sequence id.
// Blank text is ignored and returns ok=false without consuming an id.
func (s *Session) Request(text, sourceLang, targetLang string) (seq uint64, ok bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, false
	}
	req := Request{Text: text, SourceLang: sourceLang, TargetLang: targetLang}
	s.lastSeq++
	seq = s.lastSeq
	s.pending[seq] = req
	if len(s.pending) == 1 {
		s.listener.OnTranslationUpdate(Update{Kind: UpdateLoading, Seq: seq, Loading: true, Request: req})
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Debug().
		Uint64("seq", seq).
		Str("source_lang", sourceLang).
		Str("target_lang", targetLang).
		Int("chars", len(text)).
		Msg("Dispatching translation")

	go func() {
		defer s.wg.Done()

		start := time.Now()
		translated, err := s.translator.Translate(s.ctx, req)
		observability.RecordTranslation(err == nil, time.Since(start))

		s.Resolve(seq, translated, err)
	}()

	return seq, true
}

// Resolve delivers the outcome of request seq. Results older than one
// already shown are discarded; a failure is shown only when seq is the
// newest dispatched request. A blank translation supersedes older results
// without changing the display. Unknown or already resolved ids are ignored.
func (s *Session) Resolve(seq uint64, translated string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.pending[seq]
	if !ok || s.closed {
		return
	}
	delete(s.pending, seq)

	switch {
	case seq < s.shownSeq || seq <= s.fenceSeq:
		observability.RecordStaleTranslation()
		s.logger.Debug().
			Uint64("seq", seq).
			Uint64("shown_seq", s.shownSeq).
			Msg("Discarding stale translation result")

	case err == nil && strings.TrimSpace(translated) == "":
		// Nothing to show; the display keeps the previous translation
		s.shownSeq = seq
		s.logger.Debug().Uint64("seq", seq).Msg("Ignoring blank translation")

	case err == nil:
		s.shownSeq = seq
		s.current = translated
		s.listener.OnTranslationUpdate(Update{Kind: UpdateTranslated, Seq: seq, Text: translated, Request: req})

	case seq == s.lastSeq:
		tErr := asError(err)
		s.shownSeq = seq
		s.logger.Warn().Err(err).Uint64("seq", seq).Msg("Translation failed")
		s.listener.OnTranslationUpdate(Update{Kind: UpdateFailed, Seq: seq, Err: tErr, Request: req})

	default:
		observability.RecordStaleTranslation()
		s.logger.Debug().
			Err(err).
			Uint64("seq", seq).
			Uint64("latest_seq", s.lastSeq).
			Msg("Discarding failure of superseded translation")
	}

	if len(s.pending) == 0 {
		s.listener.OnTranslationUpdate(Update{Kind: UpdateLoading, Seq: seq, Loading: false, Request: req})
	}
}

// Current returns the translation on display, or "" if none
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Loading reports whether any request is outstanding
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) > 0
}

// LastSeq returns the newest dispatched sequence id, 0 if none
func (s *Session) LastSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq
}

// Clear empties the displayed translation. Requests still in flight are
// fenced off so their results cannot reappear after the clear.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = ""
	s.fenceSeq = s.lastSeq
}

// Close cancels in-flight requests and waits for their goroutines
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
