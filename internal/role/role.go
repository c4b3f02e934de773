package role

import (
	"fmt"
	"strings"
	"sync"
)

// Role is the conversational side the local speaker takes
type Role int

const (
	None Role = iota
	Patient
	Provider
)

// String returns the wire name of the role
func (r Role) String() string {
	switch r {
	case Patient:
		return "patient"
	case Provider:
		return "provider"
	default:
		return "none"
	}
}

// ParseRole parses a wire role name
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "patient":
		return Patient, nil
	case "provider":
		return Provider, nil
	default:
		return None, fmt.Errorf("unknown role %q", s)
	}
}

// Labels is the text shown next to the two language slots
type Labels struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Banner string `json:"banner"`
}

// Profile holds the role selected for one session.
// Selecting a role only changes labels, never the language selections.
type Profile struct {
	mu   sync.RWMutex
	role Role
}

// NewProfile creates a profile with no role selected
func NewProfile() *Profile {
	return &Profile{role: None}
}

// Select switches the profile to r and returns its label pair
func (p *Profile) Select(r Role) (Labels, error) {
	if r != Patient && r != Provider {
		return Labels{}, fmt.Errorf("cannot select role %s", r)
	}

	p.mu.Lock()
	p.role = r
	p.mu.Unlock()

	return LabelsFor(r), nil
}

// Current returns the selected role
func (p *Profile) Current() Role {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.role
}

// LabelsFor returns the label pair for r
func LabelsFor(r Role) Labels {
	switch r {
	case Patient:
		return Labels{
			Input:  "Your Language (What you speak)",
			Output: "Provider's Language (Translation for doctor)",
			Banner: "Patient Mode: You speak in your language, doctor hears in theirs",
		}
	case Provider:
		return Labels{
			Input:  "Your Language (What you speak)",
			Output: "Patient's Language (Translation for patient)",
			Banner: "Provider Mode: You speak in your language, patient hears in theirs",
		}
	default:
		return Labels{}
	}
}
