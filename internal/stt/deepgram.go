package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	websocketv1api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket"
	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/rs/zerolog"

	"github.com/lexiqai/interpreter-gateway/internal/resilience"
)

// DeepgramConfig configures the Deepgram live streaming engine
type DeepgramConfig struct {
	APIKey     string
	Model      string
	SampleRate int
}

// messageCallbackHandler implements the LiveMessageCallback interface.
// It embeds the default handler and overrides only the methods we need.
type messageCallbackHandler struct {
	*websocketv1api.DefaultCallbackHandler
	recognizer *DeepgramRecognizer
}

// Open reports the engine as started
func (m *messageCallbackHandler) Open(*msginterfaces.OpenResponse) error {
	m.recognizer.stream.emit(Event{Kind: EventStarted})
	return nil
}

// Message forwards transcription results
func (m *messageCallbackHandler) Message(message *msginterfaces.MessageResponse) error {
	m.recognizer.handleMessage(message)
	return nil
}

// Error reports engine errors
func (m *messageCallbackHandler) Error(errorResponse *msginterfaces.ErrorResponse) error {
	m.recognizer.handleError(errorResponse)
	return nil
}

// Close reports the end of the run
func (m *messageCallbackHandler) Close(*msginterfaces.CloseResponse) error {
	m.recognizer.finishRun(false)
	return nil
}

// DeepgramRecognizer implements Recognizer using Deepgram's streaming API
type DeepgramRecognizer struct {
	config         DeepgramConfig
	stream         *eventStream
	circuitBreaker *resilience.CircuitBreaker
	logger         zerolog.Logger

	mu       sync.Mutex
	locale   string
	client   *listenClient.WSCallback
	isActive bool
	closed   bool
}

// ensure this satisfies the interface
var _ Recognizer = (*DeepgramRecognizer)(nil)

// NewDeepgramRecognizer creates a Deepgram engine. breaker may be nil.
func NewDeepgramRecognizer(cfg DeepgramConfig, breaker *resilience.CircuitBreaker, logger zerolog.Logger) (*DeepgramRecognizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("deepgram api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}

	return &DeepgramRecognizer{
		config:         cfg,
		stream:         newEventStream(),
		circuitBreaker: breaker,
		logger:         logger,
	}, nil
}

// SetLocale sets the language of the next run
func (d *DeepgramRecognizer) SetLocale(locale string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locale = locale
}

// Start opens a new Deepgram streaming session
func (d *DeepgramRecognizer) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrRecognizerClosed
	}
	if d.isActive {
		return fmt.Errorf("deepgram recognizer is already active")
	}

	// mu-law input is converted to linear16 before it reaches the engine
	tOptions := &interfaces.LiveTranscriptionOptions{
		Model:          d.config.Model,
		Language:       d.locale,
		Punctuate:      true,
		InterimResults: true,
		UtteranceEndMs: "1000",
		VadEvents:      true,
		Encoding:       "linear16",
		Channels:       1,
		SampleRate:     d.config.SampleRate,
	}

	callback := &messageCallbackHandler{
		DefaultCallbackHandler: websocketv1api.NewDefaultCallbackHandler(),
		recognizer:             d,
	}

	connect := func() error {
		client, err := listenClient.NewWSUsingCallback(ctx, d.config.APIKey, nil, tOptions, callback)
		if err != nil {
			return fmt.Errorf("failed to create Deepgram client: %w", err)
		}
		if !client.Connect() {
			return errors.New("failed to connect to Deepgram")
		}
		d.client = client
		return nil
	}

	var err error
	if d.circuitBreaker != nil {
		err = d.circuitBreaker.Call(connect)
	} else {
		err = connect()
	}
	if err != nil {
		return &RecognizerError{Kind: NetworkError, Code: err.Error()}
	}

	d.isActive = true
	d.logger.Info().
		Str("model", d.config.Model).
		Str("locale", d.locale).
		Msg("Deepgram streaming session started")
	return nil
}

// handleMessage converts Deepgram messages into recognizer events
func (d *DeepgramRecognizer) handleMessage(msg *msginterfaces.MessageResponse) {
	if msg == nil || len(msg.Channel.Alternatives) == 0 {
		return
	}

	alt := msg.Channel.Alternatives[0]
	ev, ok := resultEvent(alt.Transcript, alt.Confidence, msg.IsFinal)
	if !ok {
		return
	}

	if msg.IsFinal {
		d.logger.Debug().Str("transcript", alt.Transcript).Float64("confidence", alt.Confidence).Msg("Deepgram final transcription")
	} else {
		d.logger.Debug().Str("transcript", alt.Transcript).Msg("Deepgram interim transcription")
	}
	d.stream.emit(ev)
}

// resultEvent builds a result event from one Deepgram alternative
func resultEvent(transcript string, confidence float64, isFinal bool) (Event, bool) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return Event{}, false
	}
	if isFinal {
		return Event{Kind: EventResult, Finals: []string{transcript}, Confidence: []float64{confidence}}, true
	}
	return Event{Kind: EventResult, Interim: transcript}, true
}

func (d *DeepgramRecognizer) handleError(errorResponse *msginterfaces.ErrorResponse) {
	d.logger.Error().Str("error", fmt.Sprintf("%+v", errorResponse)).Msg("Deepgram error")
	if d.circuitBreaker != nil {
		d.circuitBreaker.RecordResult(false)
	}

	d.mu.Lock()
	active := d.isActive
	d.mu.Unlock()
	if !active {
		return
	}

	d.stream.emit(Event{
		Kind: EventError,
		Err:  &RecognizerError{Kind: NetworkError, Code: fmt.Sprintf("%+v", errorResponse)},
	})
	d.finishRun(true)
}

// finishRun marks the run inactive and emits EventEnded once. finish closes
// the connection when the run ended on the engine side.
func (d *DeepgramRecognizer) finishRun(finish bool) {
	d.mu.Lock()
	if !d.isActive {
		d.mu.Unlock()
		return
	}
	d.isActive = false
	client := d.client
	d.client = nil
	d.mu.Unlock()

	if client != nil && finish {
		go client.Finish()
	}
	d.stream.emit(Event{Kind: EventEnded})
}

// SendAudio sends linear16 audio to Deepgram
func (d *DeepgramRecognizer) SendAudio(audio []byte) error {
	d.mu.Lock()
	active := d.isActive
	client := d.client
	d.mu.Unlock()

	if !active || client == nil {
		return fmt.Errorf("deepgram recognizer is not active")
	}

	if _, err := client.Write(audio); err != nil {
		return fmt.Errorf("failed to send audio to Deepgram: %w", err)
	}
	return nil
}

// Stop finishes the streaming session. EventEnded follows.
func (d *DeepgramRecognizer) Stop() error {
	d.mu.Lock()
	client := d.client
	active := d.isActive
	d.mu.Unlock()

	if !active || client == nil {
		return nil
	}

	client.Finish()
	d.finishRun(false)
	d.logger.Info().Msg("Deepgram streaming session stopped")
	return nil
}

// Events returns the event channel
func (d *DeepgramRecognizer) Events() <-chan Event {
	return d.stream.events()
}

// Close stops any run and closes the event channel
func (d *DeepgramRecognizer) Close() error {
	err := d.Stop()

	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.stream.close()
	return err
}
