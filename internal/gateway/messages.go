package gateway

import (
	"github.com/lexiqai/interpreter-gateway/internal/role"
	"github.com/lexiqai/interpreter-gateway/internal/stt"
)

// Client -> server message types
const (
	MsgCapabilities      = "capabilities"
	MsgStart             = "start"
	MsgStop              = "stop"
	MsgSetSourceLang     = "set_source_lang"
	MsgSetTargetLang     = "set_target_lang"
	MsgSwap              = "swap"
	MsgClear             = "clear"
	MsgSelectRole        = "select_role"
	MsgSpeak             = "speak"
	MsgRecognizerStarted = "recognizer_started"
	MsgRecognizerEnded   = "recognizer_ended"
	MsgRecognizerResult  = "recognizer_result"
	MsgRecognizerError   = "recognizer_error"
)

// Server -> client message types
const (
	MsgStatus             = "status"
	MsgLanguages          = "languages"
	MsgTranscript         = "transcript"
	MsgTranslationLoading = "translation_loading"
	MsgTranslation        = "translation"
	MsgTranslationError   = "translation_error"
	MsgRecognizerCommand  = "recognizer_command"
	MsgRole               = "role"
	MsgSpeech             = "speech"
	MsgSynthesisError     = "synthesis_error"
	MsgMic                = "mic"
	MsgError              = "error"
)

// ClientMessage is a JSON text frame sent by the client
type ClientMessage struct {
	Type string `json:"type"`

	// capabilities
	RecognizerSupported *bool `json:"recognizer_supported,omitempty"`
	MicrophoneGranted   *bool `json:"microphone_granted,omitempty"`

	// set_source_lang, set_target_lang
	Lang string `json:"lang,omitempty"`

	// select_role
	Role string `json:"role,omitempty"`

	// recognizer_result
	Finals     []string  `json:"finals,omitempty"`
	Interim    string    `json:"interim,omitempty"`
	Confidence []float64 `json:"confidence,omitempty"`

	// recognizer_error: Web Speech API error code
	Error string `json:"error,omitempty"`
}

// recognizerEvent converts a client-side engine callback into an stt.Event
func (m ClientMessage) recognizerEvent() (stt.Event, bool) {
	switch m.Type {
	case MsgRecognizerStarted:
		return stt.Event{Kind: stt.EventStarted}, true
	case MsgRecognizerEnded:
		return stt.Event{Kind: stt.EventEnded}, true
	case MsgRecognizerResult:
		return stt.Event{
			Kind:       stt.EventResult,
			Finals:     m.Finals,
			Interim:    m.Interim,
			Confidence: m.Confidence,
		}, true
	case MsgRecognizerError:
		return stt.Event{Kind: stt.EventError, Err: stt.NewRecognizerError(m.Error)}, true
	default:
		return stt.Event{}, false
	}
}

// ServerMessage is a JSON text frame sent to the client
type ServerMessage struct {
	Type string `json:"type"`

	SessionID string `json:"session_id,omitempty"`

	// status
	Status     string `json:"status,omitempty"`
	StatusText string `json:"status_text,omitempty"`

	// languages, recognizer_command
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
	Action     string `json:"action,omitempty"`
	Locale     string `json:"locale,omitempty"`

	// transcript, translation
	Text    string `json:"text,omitempty"`
	Interim bool   `json:"interim,omitempty"`
	Seq     uint64 `json:"seq,omitempty"`

	// translation_loading, mic
	Loading  *bool `json:"loading,omitempty"`
	Speaking *bool `json:"speaking,omitempty"`

	// errors
	Kind     string `json:"kind,omitempty"`
	Message  string `json:"message,omitempty"`
	Blocking bool   `json:"blocking,omitempty"`
	Command  string `json:"command,omitempty"`

	// role
	Role   string       `json:"role,omitempty"`
	Labels *role.Labels `json:"labels,omitempty"`

	// speech
	AudioURL string `json:"audio_url,omitempty"`
}

func boolPtr(b bool) *bool {
	return &b
}
