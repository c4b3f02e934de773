package stt

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type sentCommand struct {
	action string
	locale string
}

func TestRemoteRecognizer_Commands(t *testing.T) {
	var sent []sentCommand
	r := NewRemoteRecognizer(func(action, locale string) error {
		sent = append(sent, sentCommand{action, locale})
		return nil
	}, zerolog.Nop())
	defer r.Close()

	r.SetLocale("es-ES")
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []sentCommand{{CommandStart, "es-ES"}, {CommandStop, "es-ES"}}
	if len(sent) != len(want) {
		t.Fatalf("Expected %d commands, got %d", len(want), len(sent))
	}
	for i := range want {
		if sent[i] != want[i] {
			t.Errorf("Command %d: expected %+v, got %+v", i, want[i], sent[i])
		}
	}
}

func TestRemoteRecognizer_CommandError(t *testing.T) {
	sendErr := errors.New("connection closed")
	r := NewRemoteRecognizer(func(action, locale string) error { return sendErr }, zerolog.Nop())
	defer r.Close()

	if err := r.Start(context.Background()); !errors.Is(err, sendErr) {
		t.Errorf("Expected send error, got %v", err)
	}
}

func TestRemoteRecognizer_DeliverEvents(t *testing.T) {
	r := NewRemoteRecognizer(func(action, locale string) error { return nil }, zerolog.Nop())

	r.Deliver(Event{Kind: EventStarted})
	r.Deliver(Event{Kind: EventResult, Finals: []string{"hello"}, Confidence: []float64{0.9}})
	r.Deliver(Event{Kind: EventEnded})
	r.Close()

	var kinds []EventKind
	for ev := range r.Events() {
		kinds = append(kinds, ev.Kind)
	}

	want := []EventKind{EventStarted, EventResult, EventEnded}
	if len(kinds) != len(want) {
		t.Fatalf("Expected %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("Event %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}

func TestRemoteRecognizer_Closed(t *testing.T) {
	r := NewRemoteRecognizer(func(action, locale string) error { return nil }, zerolog.Nop())
	r.Close()

	if err := r.Start(context.Background()); !errors.Is(err, ErrRecognizerClosed) {
		t.Errorf("Expected ErrRecognizerClosed, got %v", err)
	}

	// Delivery after close is dropped
	r.Deliver(Event{Kind: EventStarted})
	if err := r.Close(); err != nil {
		t.Errorf("Expected second Close to succeed, got %v", err)
	}
}
