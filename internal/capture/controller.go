package capture

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lexiqai/interpreter-gateway/internal/language"
	"github.com/lexiqai/interpreter-gateway/internal/observability"
	"github.com/lexiqai/interpreter-gateway/internal/stt"
	"github.com/lexiqai/interpreter-gateway/internal/transcript"
)

// Translations is the part of translation.Session the controller drives
type Translations interface {
	Request(text, sourceLang, targetLang string) (uint64, bool)
	Clear()
}

// Listener receives display changes. Callbacks run with the controller
// lock held and must not call back into the Controller.
type Listener interface {
	OnStatus(status Status)
	OnTranscript(snapshot transcript.Snapshot)
	OnRecognizerError(err *stt.RecognizerError)
}

// Controller is the speech capture state machine of one session. Status
// changes are driven by recognizer events; Start and Stop only ask the
// recognizer to act.
type Controller struct {
	recognizer   stt.Recognizer
	accumulator  *transcript.Accumulator
	translations Translations
	listener     Listener
	metrics      *observability.SessionMetrics
	logger       zerolog.Logger

	mu         sync.Mutex
	status     Status
	starting   bool // start requested, started signal not yet seen
	stopping   bool // stop requested, ended signal not yet seen
	sourceLang string
	targetLang string
	disabled   *UnavailableError
}

// Options configures a Controller
type Options struct {
	Recognizer   stt.Recognizer
	Accumulator  *transcript.Accumulator
	Translations Translations
	Listener     Listener
	Metrics      *observability.SessionMetrics
	Logger       zerolog.Logger
	SourceLang   string
	TargetLang   string
}

// NewController creates an idle controller
func NewController(opts Options) *Controller {
	acc := opts.Accumulator
	if acc == nil {
		acc = transcript.NewAccumulator()
	}
	return &Controller{
		recognizer:   opts.Recognizer,
		accumulator:  acc,
		translations: opts.Translations,
		listener:     opts.Listener,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		status:       StatusIdle,
		sourceLang:   opts.SourceLang,
		targetLang:   opts.TargetLang,
	}
}

// Start asks the recognizer to start in the current source language.
// Listening begins when the recognizer reports it has started.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.disabled != nil {
		c.mu.Unlock()
		return c.disabled
	}
	if c.status == StatusListening || c.starting {
		c.mu.Unlock()
		return ErrAlreadyListening
	}

	locale := language.Resolve(c.sourceLang)
	c.recognizer.SetLocale(locale)
	if c.accumulator.IsEmpty() {
		c.accumulator.Clear()
	}
	c.starting = true
	c.mu.Unlock()

	c.logger.Info().Str("source_lang", c.sourceLang).Str("locale", locale).Msg("Starting speech capture")

	if err := c.recognizer.Start(ctx); err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.starting = false

		var rErr *stt.RecognizerError
		if errors.As(err, &rErr) {
			c.failLocked(rErr)
		}
		return err
	}
	return nil
}

// Stop asks the recognizer to stop. The controller returns to idle when
// the recognizer confirms the end.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.status != StatusListening {
		c.mu.Unlock()
		return ErrNotListening
	}
	if c.stopping {
		c.mu.Unlock()
		return nil
	}
	c.stopping = true
	c.mu.Unlock()

	c.logger.Info().Msg("Stopping speech capture")
	if err := c.recognizer.Stop(); err != nil {
		c.mu.Lock()
		c.stopping = false
		c.mu.Unlock()
		return err
	}
	return nil
}

// HandleEvent applies one recognizer event
func (c *Controller) HandleEvent(ev stt.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case stt.EventStarted:
		if c.status == StatusListening {
			return
		}
		c.starting = false
		c.stopping = false
		c.setStatusLocked(StatusListening)
		if c.metrics != nil {
			c.metrics.RecordRecognizerStart()
		}

	case stt.EventResult:
		if c.status != StatusListening {
			c.logger.Debug().Str("status", c.status.String()).Msg("Ignoring recognition result outside listening state")
			return
		}
		c.applyResultLocked(ev)

	case stt.EventError:
		rErr := ev.Err
		if rErr == nil {
			rErr = &stt.RecognizerError{Kind: stt.UnknownRecognizerError, Code: "unknown"}
		}
		c.starting = false
		c.stopping = false
		c.failLocked(rErr)

	case stt.EventEnded:
		c.starting = false
		c.stopping = false
		if c.status == StatusListening {
			c.setStatusLocked(StatusIdle)
		}
	}
}

func (c *Controller) applyResultLocked(ev stt.Event) {
	if len(ev.Finals) == 0 && ev.Interim == "" {
		return
	}

	snap := c.accumulator.ApplyRecognitionEvent(ev.Finals, ev.Interim)
	c.listener.OnTranscript(snap)

	if !snap.HasNewFinal {
		return
	}
	if c.metrics != nil {
		c.metrics.RecordFinalSegments(len(ev.Finals))
	}
	c.translations.Request(snap.NewFinal, c.sourceLang, c.targetLang)
}

// failLocked surfaces a recognizer error and returns to idle
func (c *Controller) failLocked(rErr *stt.RecognizerError) {
	c.logger.Warn().
		Str("kind", rErr.Kind.String()).
		Str("code", rErr.Code).
		Bool("blocking", rErr.Blocking()).
		Msg("Speech recognition error")
	if c.metrics != nil {
		c.metrics.RecordRecognizerError(rErr.Kind.String())
	}

	c.setStatusLocked(StatusError)
	c.listener.OnRecognizerError(rErr)
	c.setStatusLocked(StatusIdle)
}

func (c *Controller) setStatusLocked(status Status) {
	if c.status == status {
		return
	}
	c.status = status
	c.listener.OnStatus(status)
}

// ChangeSourceLanguage selects the spoken language. It is only allowed
// while idle and takes effect on the next Start.
func (c *Controller) ChangeSourceLanguage(lang string) error {
	if !language.IsSupported(lang) {
		return ErrUnsupportedLanguage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusIdle || c.starting {
		return ErrNotIdle
	}
	c.sourceLang = lang
	return nil
}

// ChangeTargetLanguage selects the translation language in any state and
// retranslates the whole finalized transcript.
func (c *Controller) ChangeTargetLanguage(lang string) error {
	if !language.IsSupported(lang) {
		return ErrUnsupportedLanguage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.targetLang = lang
	c.retranslateLocked()
	return nil
}

// Swap exchanges source and target languages. A running recognizer keeps
// its locale until the next Start.
func (c *Controller) Swap() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sourceLang, c.targetLang = c.targetLang, c.sourceLang
	c.retranslateLocked()
}

func (c *Controller) retranslateLocked() {
	if c.accumulator.IsEmpty() {
		return
	}
	text := strings.TrimSpace(c.accumulator.Finalized())
	c.translations.Request(text, c.sourceLang, c.targetLang)
}

// Clear empties the transcript and the translation
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accumulator.Clear()
	c.translations.Clear()
	c.listener.OnTranscript(transcript.Snapshot{})
}

// Disable makes every later Start fail with the given explanation
func (c *Controller) Disable(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.disabled = &UnavailableError{Reason: reason}
	c.logger.Warn().Str("reason", reason).Msg("Speech capture disabled")
}

// Status returns the current status
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Languages returns the selected source and target languages
func (c *Controller) Languages() (source, target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sourceLang, c.targetLang
}

// Transcript returns the finalized transcript
func (c *Controller) Transcript() string {
	return c.accumulator.Finalized()
}
