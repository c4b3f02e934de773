package tts

import (
	"context"
	"errors"
)

var (
	// ErrNothingToSpeak is returned when there is no translation to speak
	ErrNothingToSpeak = errors.New("nothing to speak")

	// ErrSpeakerBusy is returned while a previous Speak call is in progress
	ErrSpeakerBusy = errors.New("speaker is busy")
)

// Synthesizer defines the interface for the external speech synthesis endpoint
type Synthesizer interface {
	// Synthesize converts text in lang to audio and returns a playable URL
	Synthesize(ctx context.Context, text, lang string) (string, error)
}

// SynthesisError is a failed synthesis surfaced to the user
type SynthesisError struct {
	Detail  string
	Network bool

	// outage marks failures of the service itself (transport, 5xx)
	outage bool
}

func (e *SynthesisError) Error() string {
	return "synthesis failed: " + e.Detail
}

// Message returns the user-facing alert text
func (e *SynthesisError) Message() string {
	if e.Network {
		return "Network error. Please check your connection."
	}
	return "Audio generation failed: " + e.Detail
}

func asSynthesisError(err error) *SynthesisError {
	var sErr *SynthesisError
	if errors.As(err, &sErr) {
		return sErr
	}
	return &SynthesisError{Detail: err.Error()}
}
