package capture

import (
	"errors"
	"fmt"
)

// Status is the capture state shown to the user
type Status int

const (
	StatusIdle Status = iota
	StatusListening
	StatusError
)

// String returns a human-readable representation of the status
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusListening:
		return "listening"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Text returns the status line shown next to the controls
func (s Status) Text() string {
	switch s {
	case StatusListening:
		return "Listening... Speak now!"
	default:
		return "Ready"
	}
}

var (
	// ErrAlreadyListening is returned by Start while listening or starting
	ErrAlreadyListening = errors.New("already listening")

	// ErrNotListening is returned by Stop while not listening
	ErrNotListening = errors.New("not listening")

	// ErrNotIdle is returned by ChangeSourceLanguage outside the idle state
	ErrNotIdle = errors.New("source language can only change while idle")

	// ErrUnsupportedLanguage is returned for unknown language tags
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrCaptureUnavailable is returned by Start after capture was disabled
	ErrCaptureUnavailable = errors.New("speech capture unavailable")
)

// UnavailableError carries the explanation shown when capture cannot be used
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCaptureUnavailable, e.Reason)
}

// Is reports a match with ErrCaptureUnavailable
func (e *UnavailableError) Is(target error) bool {
	return target == ErrCaptureUnavailable
}

// Explanations for a failed capability probe
const (
	ReasonRecognizerUnsupported = "Voice recognition is not supported in your browser. Please use Chrome, Edge, or Safari."
	ReasonMicrophoneDenied      = "Microphone access denied. Please enable microphone permissions in your browser settings."
)
