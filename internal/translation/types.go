package translation

import (
	"context"
	"errors"
)

// Request is one text to translate between two application languages
type Request struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// Translator is the external translation collaborator
type Translator interface {
	// Translate returns the translated text or an error describing why not
	Translate(ctx context.Context, req Request) (string, error)
}

// Error is a failed translation surfaced to the display layer
type Error struct {
	// Detail is the upstream error text
	Detail string

	// Network is true when the upstream could not be reached at all
	Network bool

	// outage marks failures of the service itself (transport, 5xx) as
	// opposed to a rejection of this one request
	outage bool
}

func (e *Error) Error() string {
	return "translation failed: " + e.Detail
}

// Message returns the user-facing text shown in place of the translation
func (e *Error) Message() string {
	if e.Network {
		return "Network error. Please check your connection."
	}
	return "Translation error: " + e.Detail
}

// asError converts any translator failure into an *Error
func asError(err error) *Error {
	var tErr *Error
	if errors.As(err, &tErr) {
		return tErr
	}
	return &Error{Detail: err.Error()}
}
