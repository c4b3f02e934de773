package stt

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrRecognizerClosed is returned by calls made after Close
var ErrRecognizerClosed = errors.New("recognizer is closed")

// Command actions sent to a client-side engine
const (
	CommandStart = "start"
	CommandStop  = "stop"
)

// CommandFunc delivers a start/stop command to the client that runs the engine
type CommandFunc func(action, locale string) error

// RemoteRecognizer drives an engine that runs in the client (the browser's
// Web Speech API). Start and Stop become commands sent to the client, and
// the client's engine callbacks come back through Deliver.
type RemoteRecognizer struct {
	send   CommandFunc
	stream *eventStream
	logger zerolog.Logger

	mu     sync.Mutex
	locale string
	closed bool
}

// ensure this satisfies the interface
var _ Recognizer = (*RemoteRecognizer)(nil)

// NewRemoteRecognizer creates a recognizer that sends commands through send
func NewRemoteRecognizer(send CommandFunc, logger zerolog.Logger) *RemoteRecognizer {
	return &RemoteRecognizer{
		send:   send,
		stream: newEventStream(),
		logger: logger,
	}
}

// SetLocale sets the locale passed with the next start command
func (r *RemoteRecognizer) SetLocale(locale string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locale = locale
}

// Locale returns the working locale
func (r *RemoteRecognizer) Locale() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locale
}

// Start asks the client engine to start
func (r *RemoteRecognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRecognizerClosed
	}
	locale := r.locale
	r.mu.Unlock()

	return r.send(CommandStart, locale)
}

// Stop asks the client engine to stop
func (r *RemoteRecognizer) Stop() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRecognizerClosed
	}
	locale := r.locale
	r.mu.Unlock()

	return r.send(CommandStop, locale)
}

// SendAudio is a no-op; the client engine captures its own audio
func (r *RemoteRecognizer) SendAudio(audio []byte) error {
	return nil
}

// Deliver reports an event raised by the client engine
func (r *RemoteRecognizer) Deliver(e Event) {
	if e.Kind == EventResult {
		for i, final := range e.Finals {
			ev := r.logger.Debug().Int("segment", i).Str("transcript", final)
			if i < len(e.Confidence) {
				ev = ev.Float64("confidence", e.Confidence[i])
			}
			ev.Msg("Final segment received")
		}
		if e.Interim != "" {
			r.logger.Debug().Str("transcript", e.Interim).Msg("Interim segment received")
		}
	}
	r.stream.emit(e)
}

// Events returns the event channel
func (r *RemoteRecognizer) Events() <-chan Event {
	return r.stream.events()
}

// Close stops event delivery and closes the event channel
func (r *RemoteRecognizer) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.stream.close()
	return nil
}
