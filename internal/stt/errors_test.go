package stt

import (
	"errors"
	"io"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassifyErrorCode(t *testing.T) {
	tests := []struct {
		code     string
		kind     ErrorKind
		blocking bool
		message  string
	}{
		{"no-speech", NoSpeechDetected, false, "Error: No speech detected. Please speak louder or check your microphone."},
		{"audio-capture", AudioCaptureUnavailable, true, "Error: Microphone not found. Please check your device settings."},
		{"not-allowed", PermissionDenied, true, "Error: Microphone permission denied. Please enable it in browser settings."},
		{"network", NetworkError, false, "Error: Network error. Please check your internet connection."},
		{"aborted", Aborted, false, "Error: Speech recognition aborted."},
		{"language-not-supported", UnknownRecognizerError, false, "Error: language-not-supported"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := NewRecognizerError(tt.code)
			if err.Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, err.Kind)
			}
			if err.Blocking() != tt.blocking {
				t.Errorf("Expected blocking %v, got %v", tt.blocking, err.Blocking())
			}
			if err.Message() != tt.message {
				t.Errorf("Expected message '%s', got '%s'", tt.message, err.Message())
			}
		})
	}
}

func TestClassifyGRPCError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		ok   bool
		kind ErrorKind
	}{
		{"eof", io.EOF, false, 0},
		{"nil", nil, false, 0},
		{"cancelled", status.Error(codes.Canceled, "context canceled"), true, Aborted},
		{"unavailable", status.Error(codes.Unavailable, "connection refused"), true, NetworkError},
		{"deadline", status.Error(codes.DeadlineExceeded, "deadline"), true, NetworkError},
		{"permission", status.Error(codes.PermissionDenied, "denied"), true, PermissionDenied},
		{"unauthenticated", status.Error(codes.Unauthenticated, "no creds"), true, PermissionDenied},
		{"out of range", status.Error(codes.OutOfRange, "exceeded maximum allowed stream duration"), true, NoSpeechDetected},
		{"invalid argument", status.Error(codes.InvalidArgument, "bad config"), true, UnknownRecognizerError},
		{"plain error", errors.New("broken pipe"), true, NetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rErr, ok := classifyGRPCError(tt.err)
			if ok != tt.ok {
				t.Fatalf("Expected ok %v, got %v", tt.ok, ok)
			}
			if ok && rErr.Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, rErr.Kind)
			}
		})
	}
}
