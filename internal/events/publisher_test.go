package events

import (
	"context"
	"testing"
	"time"
)

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"empty brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.Enabled() {
				t.Error("expected publisher to be disabled")
			}
			if p.writerTranscripts != nil || p.writerTranslations != nil {
				t.Error("expected nil writers when disabled")
			}
			if err := p.Close(); err != nil {
				t.Errorf("expected clean close, got %v", err)
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	p := New(&Config{
		Enabled:           false,
		Brokers:           []string{"localhost:9092"},
		TopicTranscripts:  "test.transcripts",
		TopicTranslations: "test.translations",
		Principal:         "test-principal",
	})

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topicTranscripts != "test.transcripts" {
		t.Errorf("expected transcripts topic 'test.transcripts', got %s", p.topicTranscripts)
	}
	if p.topicTranslations != "test.translations" {
		t.Errorf("expected translations topic 'test.translations', got %s", p.topicTranslations)
	}
}

func TestNew_EnabledBuildsAsyncWriters(t *testing.T) {
	p := New(&Config{
		Enabled:           true,
		Brokers:           []string{"localhost:9092"},
		TopicTranscripts:  "test.transcripts",
		TopicTranslations: "test.translations",
	})
	defer p.Close()

	if !p.Enabled() {
		t.Fatal("expected publisher to be enabled")
	}
	if p.writerTranscripts.Topic != "test.transcripts" || p.writerTranslations.Topic != "test.translations" {
		t.Error("expected one writer per topic")
	}
	if !p.writerTranscripts.Async || !p.writerTranslations.Async {
		t.Error("expected async writers")
	}
}

func TestPublisher_PublishDisabled(t *testing.T) {
	p := New(&Config{Enabled: false})
	ctx := context.Background()

	err := p.PublishTranscript(ctx, TranscriptEvent{
		SessionID:  "sess-1",
		Text:       "hello",
		SourceLang: "en",
		Timestamp:  time.Now(),
	})
	if err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}

	err = p.PublishTranslation(ctx, TranslationEvent{
		SessionID:      "sess-1",
		Seq:            1,
		TranslatedText: "hola",
		SourceLang:     "en",
		TargetLang:     "es",
		Timestamp:      time.Now(),
	})
	if err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_CheckDisabled(t *testing.T) {
	p := New(nil)
	ok, err := p.Check(context.Background())
	if !ok || err != nil {
		t.Errorf("expected log-only mode to be ready, got %v %v", ok, err)
	}
}
