package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lexiqai/interpreter-gateway/internal/audio"
	"github.com/lexiqai/interpreter-gateway/internal/capture"
	"github.com/lexiqai/interpreter-gateway/internal/events"
	"github.com/lexiqai/interpreter-gateway/internal/observability"
	"github.com/lexiqai/interpreter-gateway/internal/role"
	"github.com/lexiqai/interpreter-gateway/internal/stt"
	"github.com/lexiqai/interpreter-gateway/internal/transcript"
	"github.com/lexiqai/interpreter-gateway/internal/translation"
	"github.com/lexiqai/interpreter-gateway/internal/tts"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	outboundBuffer = 256
)

// Session holds the state of one interpreter connection
type Session struct {
	conn *websocket.Conn

	id            string
	correlationID string
	logger        zerolog.Logger
	metrics       *observability.SessionMetrics

	recognizer   stt.Recognizer
	remote       *stt.RemoteRecognizer // nil for server-side engines
	controller   *capture.Controller
	translations *translation.Session
	roles        *role.Profile
	speaker      *tts.Speaker
	publisher    EventPublisher

	encoding audio.Encoding
	vadMu    sync.Mutex
	vad      *audio.ActivityDetector

	// sourceLang mirrors the controller for listener callbacks,
	// which run under the controller lock
	langMu     sync.Mutex
	sourceLang string

	ctx      context.Context
	cancel   context.CancelFunc
	outbound chan ServerMessage
	done     chan struct{}
	once     sync.Once

	// wg tracks goroutines started by spawn; closing stops new ones
	spawnMu sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

func newSession(ctx context.Context, conn *websocket.Conn, opts *Options) (*Session, error) {
	id := observability.NewSessionID()
	correlationID := observability.NewCorrelationID()
	logger := observability.WithSession(id, correlationID)

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		conn:          conn,
		id:            id,
		correlationID: correlationID,
		logger:        logger,
		metrics:       observability.NewSessionMetrics(id, opts.Engine),
		roles:         role.NewProfile(),
		speaker:       tts.NewSpeaker(opts.Synthesizer, logger.With().Str("component", "speaker").Logger()),
		publisher:     opts.Publisher,
		encoding:      opts.AudioEncoding,
		sourceLang:    opts.DefaultSourceLang,
		ctx:           ctx,
		cancel:        cancel,
		outbound:      make(chan ServerMessage, outboundBuffer),
		done:          make(chan struct{}),
	}

	recognizer, err := opts.Recognizers(ctx, s.sendRecognizerCommand, logger.With().Str("component", "recognizer").Logger())
	if err != nil {
		cancel()
		return nil, err
	}
	s.recognizer = recognizer
	if remote, ok := recognizer.(*stt.RemoteRecognizer); ok {
		s.remote = remote
	} else {
		var vadConfig *audio.VADConfig
		if opts.VAD != nil {
			cfg := *opts.VAD
			vadConfig = &cfg
		}
		s.vad = audio.NewActivityDetector(vadConfig)
	}

	s.translations = translation.NewSession(opts.Translator, s, logger.With().Str("component", "translation").Logger())
	s.controller = capture.NewController(capture.Options{
		Recognizer:   recognizer,
		Accumulator:  transcript.NewAccumulator(),
		Translations: s.translations,
		Listener:     s,
		Metrics:      s.metrics,
		Logger:       logger.With().Str("component", "capture").Logger(),
		SourceLang:   opts.DefaultSourceLang,
		TargetLang:   opts.DefaultTargetLang,
	})

	return s, nil
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// run serves the connection until the client goes away
func (s *Session) run() {
	s.metrics.RecordSessionStart()
	s.logger.Info().Msg("Interpreter session started")

	s.spawn(s.writeLoop)
	s.spawn(s.pumpRecognizerEvents)

	source, target := s.controller.Languages()
	s.send(ServerMessage{
		Type:       MsgStatus,
		SessionID:  s.id,
		Status:     capture.StatusIdle.String(),
		StatusText: capture.StatusIdle.Text(),
		SourceLang: source,
		TargetLang: target,
	})

	s.readLoop()
	s.close()
}

// close tears the session down. Safe to call more than once.
func (s *Session) close() {
	s.once.Do(func() {
		s.spawnMu.Lock()
		s.closing = true
		s.spawnMu.Unlock()

		s.cancel()
		if err := s.recognizer.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing recognizer")
		}
		s.translations.Close()
		close(s.done)
		s.wg.Wait()
		s.conn.Close()
		s.metrics.RecordSessionEnd()
		s.logger.Info().Msg("Interpreter session ended")
	})
}

// spawn runs fn on a tracked goroutine. It returns false once the
// session is closing.
func (s *Session) spawn(fn func()) bool {
	s.spawnMu.Lock()
	defer s.spawnMu.Unlock()

	if s.closing {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}

func (s *Session) readLoop() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		switch msgType {
		case websocket.BinaryMessage:
			s.handleAudio(data)
		case websocket.TextMessage:
			var msg ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to parse client message")
				s.sendError("", "malformed message")
				continue
			}
			s.handleMessage(msg)
		}
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-s.outbound:
			if err := s.write(msg); err != nil {
				s.logger.Warn().Err(err).Str("type", msg.Type).Msg("Failed to write message")
				s.abort()
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.abort()
				return
			}

		case <-s.done:
			// Flush what is already queued, then say goodbye
			for {
				select {
				case msg := <-s.outbound:
					if err := s.write(msg); err != nil {
						return
					}
				default:
					_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = s.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

// abort unblocks the read loop after the connection broke
func (s *Session) abort() {
	s.cancel()
	s.conn.Close()
}

func (s *Session) write(msg ServerMessage) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

// send queues msg for the write loop. Messages queued after close are dropped.
func (s *Session) send(msg ServerMessage) {
	select {
	case s.outbound <- msg:
	case <-s.done:
	case <-s.ctx.Done():
	}
}

func (s *Session) sendError(command, message string) {
	s.send(ServerMessage{Type: MsgError, Command: command, Message: message})
}

// sendRecognizerCommand is the stt.CommandFunc of the browser engine
func (s *Session) sendRecognizerCommand(action, locale string) error {
	select {
	case <-s.ctx.Done():
		return errors.New("session closed")
	default:
	}
	s.send(ServerMessage{Type: MsgRecognizerCommand, Action: action, Locale: locale})
	return nil
}

// pumpRecognizerEvents feeds recognizer events into the controller in order
func (s *Session) pumpRecognizerEvents() {
	for ev := range s.recognizer.Events() {
		s.controller.HandleEvent(ev)

		if ev.Kind == stt.EventEnded {
			s.resetActivity()
		}
	}
}

func (s *Session) handleAudio(data []byte) {
	if s.remote != nil {
		s.logger.Debug().Int("bytes", len(data)).Msg("Ignoring audio frame for client-side engine")
		return
	}
	if s.controller.Status() != capture.StatusListening {
		return
	}

	pcm, err := audio.ToLinear16(data, s.encoding)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Dropping invalid audio frame")
		return
	}
	s.metrics.RecordAudioBytes(len(data))

	if err := s.recognizer.SendAudio(pcm); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to forward audio")
	}

	if samples, err := audio.DecodePCM16(pcm); err == nil {
		s.vadMu.Lock()
		changed, speaking := s.vad.Process(samples)
		s.vadMu.Unlock()
		if changed {
			s.send(ServerMessage{Type: MsgMic, Speaking: boolPtr(speaking)})
		}
	}
}

// resetActivity turns the microphone indicator off once recognition ends
func (s *Session) resetActivity() {
	if s.vad == nil {
		return
	}
	s.vadMu.Lock()
	wasSpeaking := s.vad.IsSpeaking()
	s.vad.Reset()
	s.vadMu.Unlock()
	if wasSpeaking {
		s.send(ServerMessage{Type: MsgMic, Speaking: boolPtr(false)})
	}
}

func (s *Session) handleMessage(msg ClientMessage) {
	if ev, ok := msg.recognizerEvent(); ok {
		if s.remote == nil {
			s.sendError(msg.Type, "recognizer events are only accepted for the browser engine")
			return
		}
		s.remote.Deliver(ev)
		return
	}

	switch msg.Type {
	case MsgCapabilities:
		s.handleCapabilities(msg)

	case MsgStart:
		if err := s.controller.Start(s.ctx); err != nil {
			s.reportCommandError(msg.Type, err)
		}

	case MsgStop:
		if err := s.controller.Stop(); err != nil {
			s.reportCommandError(msg.Type, err)
		}

	case MsgSetSourceLang:
		if err := s.controller.ChangeSourceLanguage(msg.Lang); err != nil {
			s.reportCommandError(msg.Type, err)
		}
		s.sendLanguages()

	case MsgSetTargetLang:
		if err := s.controller.ChangeTargetLanguage(msg.Lang); err != nil {
			s.reportCommandError(msg.Type, err)
		}
		s.sendLanguages()

	case MsgSwap:
		s.controller.Swap()
		s.sendLanguages()

	case MsgClear:
		s.controller.Clear()

	case MsgSelectRole:
		s.handleSelectRole(msg)

	case MsgSpeak:
		s.handleSpeak()

	default:
		s.logger.Warn().Str("type", msg.Type).Msg("Unknown client message")
		s.sendError(msg.Type, "unknown message type")
	}
}

func (s *Session) handleCapabilities(msg ClientMessage) {
	var reason string
	switch {
	case msg.RecognizerSupported != nil && !*msg.RecognizerSupported:
		reason = capture.ReasonRecognizerUnsupported
	case msg.MicrophoneGranted != nil && !*msg.MicrophoneGranted:
		reason = capture.ReasonMicrophoneDenied
	default:
		return
	}

	s.controller.Disable(reason)
	s.send(ServerMessage{Type: MsgError, Command: MsgCapabilities, Message: reason, Blocking: true})
}

// reportCommandError tells the client why a command was rejected.
// Recognizer errors were already surfaced by the controller.
func (s *Session) reportCommandError(command string, err error) {
	var rErr *stt.RecognizerError
	if errors.As(err, &rErr) {
		return
	}

	var unavailable *capture.UnavailableError
	if errors.As(err, &unavailable) {
		s.send(ServerMessage{Type: MsgError, Command: command, Message: unavailable.Reason, Blocking: true})
		return
	}

	s.logger.Debug().Err(err).Str("command", command).Msg("Command rejected")
	s.sendError(command, err.Error())
}

func (s *Session) sendLanguages() {
	source, target := s.controller.Languages()
	s.langMu.Lock()
	s.sourceLang = source
	s.langMu.Unlock()
	s.send(ServerMessage{Type: MsgLanguages, SourceLang: source, TargetLang: target})
}

func (s *Session) handleSelectRole(msg ClientMessage) {
	r, err := role.ParseRole(msg.Role)
	if err != nil {
		s.sendError(msg.Type, err.Error())
		return
	}

	labels, err := s.roles.Select(r)
	if err != nil {
		s.sendError(msg.Type, err.Error())
		return
	}
	s.send(ServerMessage{Type: MsgRole, Role: r.String(), Labels: &labels})
}

// handleSpeak synthesizes the current translation without blocking the read loop
func (s *Session) handleSpeak() {
	text := s.translations.Current()
	_, target := s.controller.Languages()

	s.spawn(func() {
		audioURL, err := s.speaker.Speak(s.ctx, text, target)
		switch {
		case err == nil:
			s.send(ServerMessage{Type: MsgSpeech, AudioURL: audioURL, TargetLang: target})
		case errors.Is(err, tts.ErrNothingToSpeak), errors.Is(err, tts.ErrSpeakerBusy):
			s.sendError(MsgSpeak, err.Error())
		default:
			var sErr *tts.SynthesisError
			if errors.As(err, &sErr) {
				s.send(ServerMessage{Type: MsgSynthesisError, Message: sErr.Message(), Blocking: true})
				return
			}
			s.sendError(MsgSpeak, err.Error())
		}
	})
}

// OnStatus implements capture.Listener
func (s *Session) OnStatus(status capture.Status) {
	s.send(ServerMessage{Type: MsgStatus, Status: status.String(), StatusText: status.Text()})
}

// OnTranscript implements capture.Listener
func (s *Session) OnTranscript(snap transcript.Snapshot) {
	s.send(ServerMessage{Type: MsgTranscript, Text: snap.Display, Interim: snap.Interim})

	if snap.HasNewFinal && s.publisher != nil {
		s.langMu.Lock()
		source := s.sourceLang
		s.langMu.Unlock()
		_ = s.publisher.PublishTranscript(s.ctx, events.TranscriptEvent{
			SessionID:     s.id,
			CorrelationID: s.correlationID,
			Text:          snap.NewFinal,
			SourceLang:    source,
			Timestamp:     time.Now().UTC(),
		})
	}
}

// OnRecognizerError implements capture.Listener
func (s *Session) OnRecognizerError(err *stt.RecognizerError) {
	s.send(ServerMessage{
		Type:     MsgRecognizerError,
		Kind:     err.Kind.String(),
		Message:  err.Message(),
		Blocking: err.Blocking(),
	})
}

// OnTranslationUpdate implements translation.Listener
func (s *Session) OnTranslationUpdate(u translation.Update) {
	switch u.Kind {
	case translation.UpdateLoading:
		s.send(ServerMessage{Type: MsgTranslationLoading, Loading: boolPtr(u.Loading)})

	case translation.UpdateTranslated:
		s.send(ServerMessage{Type: MsgTranslation, Text: u.Text, Seq: u.Seq, TargetLang: u.Request.TargetLang})
		if s.publisher != nil {
			_ = s.publisher.PublishTranslation(s.ctx, events.TranslationEvent{
				SessionID:      s.id,
				CorrelationID:  s.correlationID,
				Seq:            u.Seq,
				TranslatedText: u.Text,
				SourceLang:     u.Request.SourceLang,
				TargetLang:     u.Request.TargetLang,
				Timestamp:      time.Now().UTC(),
			})
		}

	case translation.UpdateFailed:
		s.send(ServerMessage{Type: MsgTranslationError, Message: u.Err.Message(), Seq: u.Seq})
	}
}
