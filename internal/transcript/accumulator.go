package transcript

import (
	"strings"
	"sync"
)

// Snapshot is the displayable transcript after one recognition event
type Snapshot struct {
	// Display is the finalized transcript followed by the current interim guess
	Display string `json:"display"`

	// Interim is true when Display ends with unconfirmed text
	Interim bool `json:"interim"`

	// HasNewFinal is true when the event carried at least one final segment
	HasNewFinal bool `json:"-"`

	// NewFinal is the event's final segments joined and trimmed
	NewFinal string `json:"-"`
}

// Accumulator holds the confirmed transcript and the latest interim fragment.
// Only final segments are durable; interim text is replaced on every event.
type Accumulator struct {
	mu        sync.RWMutex
	finalized strings.Builder
	interim   string
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// ApplyRecognitionEvent merges one recognition event and returns the new display state
func (a *Accumulator) ApplyRecognitionEvent(finals []string, interim string) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	var delta strings.Builder
	for _, segment := range finals {
		a.finalized.WriteString(segment)
		a.finalized.WriteString(" ")
		delta.WriteString(segment)
		delta.WriteString(" ")
	}

	// Interim is a typing indicator, never accumulated
	a.interim = interim

	return Snapshot{
		Display:     a.finalized.String() + a.interim,
		Interim:     a.interim != "",
		HasNewFinal: len(finals) > 0,
		NewFinal:    strings.TrimSpace(delta.String()),
	}
}

// Clear drops both the finalized transcript and the interim fragment
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.finalized.Reset()
	a.interim = ""
}

// Finalized returns the confirmed transcript
func (a *Accumulator) Finalized() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.finalized.String()
}

// Interim returns the current unconfirmed fragment
func (a *Accumulator) Interim() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.interim
}

// IsEmpty reports whether no speech has been confirmed yet
func (a *Accumulator) IsEmpty() bool {
	return strings.TrimSpace(a.Finalized()) == ""
}
