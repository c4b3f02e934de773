package stt

import (
	"context"
	"fmt"
	"strings"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/rs/zerolog"

	"github.com/lexiqai/interpreter-gateway/internal/resilience"
)

// GoogleConfig configures the Google Cloud Speech-to-Text engine
type GoogleConfig struct {
	Model        string
	SampleRateHz int32
}

// GoogleRecognizer implements Recognizer using Google Cloud Speech-to-Text
// streaming recognition. Credentials come from GOOGLE_APPLICATION_CREDENTIALS.
type GoogleRecognizer struct {
	config         GoogleConfig
	client         *speech.Client
	stream         *eventStream
	circuitBreaker *resilience.CircuitBreaker
	logger         zerolog.Logger

	mu       sync.Mutex
	locale   string
	run      speechpb.Speech_StreamingRecognizeClient
	cancel   context.CancelFunc
	stopping bool
	closed   bool
	wg       sync.WaitGroup
}

// ensure this satisfies the interface
var _ Recognizer = (*GoogleRecognizer)(nil)

// NewGoogleRecognizer creates a Google engine. breaker may be nil.
func NewGoogleRecognizer(ctx context.Context, cfg GoogleConfig, breaker *resilience.CircuitBreaker, logger zerolog.Logger) (*GoogleRecognizer, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	if cfg.SampleRateHz == 0 {
		cfg.SampleRateHz = 16000
	}

	return &GoogleRecognizer{
		config:         cfg,
		client:         client,
		stream:         newEventStream(),
		circuitBreaker: breaker,
		logger:         logger,
	}, nil
}

// SetLocale sets the language code of the next run
func (g *GoogleRecognizer) SetLocale(locale string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locale = locale
}

// Start opens a streaming recognition call and sends the initial config
func (g *GoogleRecognizer) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrRecognizerClosed
	}
	if g.run != nil {
		return fmt.Errorf("google recognizer is already active")
	}

	runCtx, cancel := context.WithCancel(ctx)
	var run speechpb.Speech_StreamingRecognizeClient

	open := func() error {
		var err error
		run, err = g.client.StreamingRecognize(runCtx)
		if err != nil {
			return err
		}
		return run.Send(&speechpb.StreamingRecognizeRequest{
			StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
				StreamingConfig: streamingConfig(g.config, g.locale),
			},
		})
	}

	var err error
	if g.circuitBreaker != nil {
		err = g.circuitBreaker.Call(open)
	} else {
		err = open()
	}
	if err != nil {
		cancel()
		if rErr, ok := classifyGRPCError(err); ok {
			return rErr
		}
		return fmt.Errorf("failed to start streaming recognition: %w", err)
	}

	g.run = run
	g.cancel = cancel
	g.stopping = false

	g.wg.Add(1)
	go g.listen(run)

	g.logger.Info().Str("locale", g.locale).Str("model", g.config.Model).Msg("Google streaming recognition started")
	g.stream.emit(Event{Kind: EventStarted})
	return nil
}

// streamingConfig builds the first request of a streaming call
func streamingConfig(cfg GoogleConfig, locale string) *speechpb.StreamingRecognitionConfig {
	return &speechpb.StreamingRecognitionConfig{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            cfg.SampleRateHz,
			LanguageCode:               locale,
			Model:                      cfg.Model,
			EnableAutomaticPunctuation: true,
			MaxAlternatives:            1,
		},
		InterimResults: true,
	}
}

// listen receives responses until the call ends and emits events for them
func (g *GoogleRecognizer) listen(run speechpb.Speech_StreamingRecognizeClient) {
	defer g.wg.Done()

	for {
		resp, err := run.Recv()
		if err != nil {
			g.endRun(run, err)
			return
		}

		if ev, ok := eventFromResults(resp.GetResults()); ok {
			g.stream.emit(ev)
		}
	}
}

// eventFromResults folds one streaming response into a result event
func eventFromResults(results []*speechpb.StreamingRecognitionResult) (Event, bool) {
	var ev Event
	var interim strings.Builder

	for _, r := range results {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		transcript := strings.TrimSpace(alts[0].GetTranscript())
		if transcript == "" {
			continue
		}
		if r.GetIsFinal() {
			ev.Finals = append(ev.Finals, transcript)
			ev.Confidence = append(ev.Confidence, float64(alts[0].GetConfidence()))
		} else {
			interim.WriteString(transcript)
		}
	}

	ev.Interim = interim.String()
	if len(ev.Finals) == 0 && ev.Interim == "" {
		return Event{}, false
	}
	ev.Kind = EventResult
	return ev, true
}

func (g *GoogleRecognizer) endRun(run speechpb.Speech_StreamingRecognizeClient, err error) {
	g.mu.Lock()
	if g.run != run {
		g.mu.Unlock()
		return
	}
	stopping := g.stopping
	g.run = nil
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.mu.Unlock()

	if rErr, ok := classifyGRPCError(err); ok && !stopping {
		g.logger.Warn().Err(err).Str("kind", rErr.Kind.String()).Msg("Google streaming recognition failed")
		if g.circuitBreaker != nil && rErr.Kind == NetworkError {
			g.circuitBreaker.RecordResult(false)
		}
		g.stream.emit(Event{Kind: EventError, Err: rErr})
	}
	g.stream.emit(Event{Kind: EventEnded})
}

// SendAudio sends linear16 audio to the active call
func (g *GoogleRecognizer) SendAudio(audio []byte) error {
	g.mu.Lock()
	run := g.run
	stopping := g.stopping
	g.mu.Unlock()

	if run == nil || stopping {
		return fmt.Errorf("google recognizer is not active")
	}

	return run.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: audio,
		},
	})
}

// Stop half-closes the call; EventEnded follows once the final results arrive
func (g *GoogleRecognizer) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.run == nil || g.stopping {
		return nil
	}
	g.stopping = true
	return g.run.CloseSend()
}

// Events returns the event channel
func (g *GoogleRecognizer) Events() <-chan Event {
	return g.stream.events()
}

// Close cancels any run, closes the event channel and the client
func (g *GoogleRecognizer) Close() error {
	g.mu.Lock()
	g.closed = true
	g.stopping = true
	if g.cancel != nil {
		g.cancel()
	}
	g.mu.Unlock()

	g.stream.close()
	g.wg.Wait()
	return g.client.Close()
}
