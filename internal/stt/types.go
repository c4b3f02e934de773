package stt

import "context"

// EventKind identifies a recognizer lifecycle or result event
type EventKind int

const (
	EventStarted EventKind = iota // Engine is capturing audio
	EventResult                   // Final and/or interim segments
	EventError                    // Engine failed; Err is set
	EventEnded                    // Engine stopped, on request or on its own
)

// String returns the event kind name
func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventResult:
		return "result"
	case EventError:
		return "error"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is one signal emitted by a Recognizer
type Event struct {
	Kind EventKind

	// Finals are segments the engine will not revise, in arrival order
	Finals []string

	// Interim is the engine's current guess for speech in progress
	Interim string

	// Confidence holds one score per final segment when the engine reports it
	Confidence []float64

	Err *RecognizerError
}

// Recognizer is a speech recognition engine driven by one session.
// Only one run may be active at a time; Start after EventEnded begins a new run.
type Recognizer interface {
	// SetLocale sets the working locale (e.g. "es-ES") used by the next Start
	SetLocale(locale string)

	// Start begins recognition. EventStarted follows once the engine is capturing.
	Start(ctx context.Context) error

	// Stop asks the engine to finish. EventEnded follows once it has.
	Stop() error

	// SendAudio forwards captured audio to engines that need it
	SendAudio(audio []byte) error

	// Events returns the channel on which the engine reports events.
	// It is closed by Close.
	Events() <-chan Event

	// Close releases the engine
	Close() error
}
