// Package events publishes conversation events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/lexiqai/interpreter-gateway/internal/observability"
)

// TranscriptEvent is published for every newly finalized transcript segment
type TranscriptEvent struct {
	SessionID     string    `json:"sessionId"`
	CorrelationID string    `json:"correlationId"`
	Text          string    `json:"text"`
	SourceLang    string    `json:"sourceLang"`
	Timestamp     time.Time `json:"timestamp"`
}

// TranslationEvent is published for every translation shown to the user
type TranslationEvent struct {
	SessionID      string    `json:"sessionId"`
	CorrelationID  string    `json:"correlationId"`
	Seq            uint64    `json:"seq"`
	TranslatedText string    `json:"translatedText"`
	SourceLang     string    `json:"sourceLang"`
	TargetLang     string    `json:"targetLang"`
	Timestamp      time.Time `json:"timestamp"`
}

// Config holds Kafka publisher configuration
type Config struct {
	Brokers           []string
	TopicTranscripts  string
	TopicTranslations string
	Principal         string
	Enabled           bool
}

// Publisher writes events to one topic per event type. Writes are
// asynchronous and never block the session.
type Publisher struct {
	writerTranscripts  *kafka.Writer
	writerTranslations *kafka.Writer
	brokers            []string
	principal          string
	topicTranscripts   string
	topicTranslations  string
	enabled            bool
	logger             zerolog.Logger
}

// New creates a publisher. With a nil config, Enabled false, or no brokers
// it runs in log-only mode.
func New(cfg *Config) *Publisher {
	logger := observability.WithComponent("events")

	if cfg == nil {
		logger.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{logger: logger}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:         cfg.Principal,
			topicTranscripts:  cfg.TopicTranscripts,
			topicTranslations: cfg.TopicTranslations,
			logger:            logger,
		}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	p := &Publisher{
		brokers:           cfg.Brokers,
		principal:         cfg.Principal,
		topicTranscripts:  cfg.TopicTranscripts,
		topicTranslations: cfg.TopicTranslations,
		enabled:           true,
		logger:            logger,
	}
	p.writerTranscripts = p.newWriter(cfg.Brokers, cfg.TopicTranscripts, transport)
	p.writerTranslations = p.newWriter(cfg.Brokers, cfg.TopicTranslations, transport)

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicTranscripts", cfg.TopicTranscripts).
		Str("topicTranslations", cfg.TopicTranslations).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return p
}

func (p *Publisher) newWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Transport:    transport,
		Completion: func(messages []kafka.Message, err error) {
			for range messages {
				observability.RecordEventPublished(topic, err)
			}
			if err != nil {
				p.logger.Error().Err(err).Str("topic", topic).Int("messages", len(messages)).Msg("Failed to write to Kafka")
			}
		},
	}
}

// PublishTranscript publishes a finalized transcript segment keyed by session
func (p *Publisher) PublishTranscript(ctx context.Context, event TranscriptEvent) error {
	return p.publish(ctx, p.writerTranscripts, p.topicTranscripts, event.SessionID, event)
}

// PublishTranslation publishes an applied translation keyed by session
func (p *Publisher) PublishTranslation(ctx context.Context, event TranslationEvent) error {
	return p.publish(ctx, p.writerTranslations, p.topicTranslations, event.SessionID, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	p.logger.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		observability.RecordEventPublished(topic, nil)
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(topic)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	// Async writer: delivery errors are reported through Completion
	if err := writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Str("key", key).Msg("Failed to queue Kafka message")
		return err
	}
	return nil
}

// Enabled reports whether events go to Kafka
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// Check is a readiness check. Log-only mode is always ready; otherwise the
// first broker must accept a connection.
func (p *Publisher) Check(ctx context.Context) (bool, error) {
	if !p.enabled {
		return true, nil
	}

	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return false, fmt.Errorf("kafka broker unreachable: %w", err)
	}
	_ = conn.Close()
	return true, nil
}

// Close flushes and closes both writers
func (p *Publisher) Close() error {
	var err error
	if p.writerTranscripts != nil {
		if e := p.writerTranscripts.Close(); e != nil {
			p.logger.Error().Err(e).Msg("Error closing transcripts writer")
			err = e
		}
	}
	if p.writerTranslations != nil {
		if e := p.writerTranslations.Close(); e != nil {
			p.logger.Error().Err(e).Msg("Error closing translations writer")
			err = e
		}
	}
	return err
}
