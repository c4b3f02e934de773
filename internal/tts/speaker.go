package tts

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/interpreter-gateway/internal/observability"
)

// Speaker is the speak control of one session. It allows a single
// synthesis at a time and is ready again as soon as a call returns.
type Speaker struct {
	synthesizer Synthesizer
	logger      zerolog.Logger

	mu       sync.Mutex
	isActive bool
}

// NewSpeaker creates a speaker backed by synthesizer
func NewSpeaker(synthesizer Synthesizer, logger zerolog.Logger) *Speaker {
	return &Speaker{
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Speak synthesizes text in lang and returns the playable audio URL.
// Failures are returned as *SynthesisError.
func (s *Speaker) Speak(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNothingToSpeak
	}

	s.mu.Lock()
	if s.isActive {
		s.mu.Unlock()
		return "", ErrSpeakerBusy
	}
	s.isActive = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isActive = false
		s.mu.Unlock()
	}()

	start := time.Now()
	audioURL, err := s.synthesizer.Synthesize(ctx, text, lang)
	observability.RecordSynthesis(err == nil, time.Since(start))
	if err != nil {
		sErr := asSynthesisError(err)
		s.logger.Warn().Err(err).Str("lang", lang).Msg("Speech synthesis failed")
		return "", sErr
	}

	s.logger.Info().Str("lang", lang).Str("audio_url", audioURL).Msg("Speech synthesized")
	return audioURL, nil
}

// IsActive returns whether a synthesis is in progress
func (s *Speaker) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isActive
}
