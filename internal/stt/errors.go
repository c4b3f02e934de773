package stt

import (
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind classifies recognizer failures
type ErrorKind int

const (
	UnknownRecognizerError ErrorKind = iota
	NoSpeechDetected
	AudioCaptureUnavailable
	PermissionDenied
	NetworkError
	Aborted
)

// ClassifyErrorCode maps a Web Speech API error code to an ErrorKind
func ClassifyErrorCode(code string) ErrorKind {
	switch code {
	case "no-speech":
		return NoSpeechDetected
	case "audio-capture":
		return AudioCaptureUnavailable
	case "not-allowed", "service-not-allowed":
		return PermissionDenied
	case "network":
		return NetworkError
	case "aborted":
		return Aborted
	default:
		return UnknownRecognizerError
	}
}

// String returns a stable label used in logs and metrics
func (k ErrorKind) String() string {
	switch k {
	case NoSpeechDetected:
		return "no_speech"
	case AudioCaptureUnavailable:
		return "audio_capture"
	case PermissionDenied:
		return "permission_denied"
	case NetworkError:
		return "network"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Blocking reports whether the user must fix something before capture can work
func (k ErrorKind) Blocking() bool {
	return k == PermissionDenied || k == AudioCaptureUnavailable
}

// RecognizerError is a classified recognizer failure
type RecognizerError struct {
	Kind ErrorKind

	// Code is the engine's raw error code or text
	Code string
}

// NewRecognizerError classifies a Web Speech error code
func NewRecognizerError(code string) *RecognizerError {
	return &RecognizerError{Kind: ClassifyErrorCode(code), Code: code}
}

func (e *RecognizerError) Error() string {
	return fmt.Sprintf("recognizer error (%s): %s", e.Kind, e.Code)
}

// Message returns the fixed user-facing text for the error
func (e *RecognizerError) Message() string {
	switch e.Kind {
	case NoSpeechDetected:
		return "Error: No speech detected. Please speak louder or check your microphone."
	case AudioCaptureUnavailable:
		return "Error: Microphone not found. Please check your device settings."
	case PermissionDenied:
		return "Error: Microphone permission denied. Please enable it in browser settings."
	case NetworkError:
		return "Error: Network error. Please check your internet connection."
	case Aborted:
		return "Error: Speech recognition aborted."
	default:
		return "Error: " + e.Code
	}
}

// Blocking reports whether the error needs explicit user remediation
func (e *RecognizerError) Blocking() bool {
	return e.Kind.Blocking()
}

// classifyGRPCError maps a streaming engine error to a RecognizerError.
// ok is false for a clean end of stream.
func classifyGRPCError(err error) (rErr *RecognizerError, ok bool) {
	if err == nil || errors.Is(err, io.EOF) {
		return nil, false
	}

	st, isStatus := status.FromError(err)
	if !isStatus {
		return &RecognizerError{Kind: NetworkError, Code: err.Error()}, true
	}

	switch st.Code() {
	case codes.Canceled:
		return &RecognizerError{Kind: Aborted, Code: st.Message()}, true
	case codes.Unavailable, codes.DeadlineExceeded:
		return &RecognizerError{Kind: NetworkError, Code: st.Message()}, true
	case codes.PermissionDenied, codes.Unauthenticated:
		return &RecognizerError{Kind: PermissionDenied, Code: st.Message()}, true
	case codes.OutOfRange:
		// Stream duration limit reached without a final result
		return &RecognizerError{Kind: NoSpeechDetected, Code: st.Message()}, true
	default:
		return &RecognizerError{Kind: UnknownRecognizerError, Code: st.Message()}, true
	}
}
