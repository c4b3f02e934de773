package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/lexiqai/interpreter-gateway/internal/audio"
	"github.com/lexiqai/interpreter-gateway/internal/language"
)

// Recognizer engines
const (
	EngineBrowser  = "browser"  // Web Speech API in the client
	EngineDeepgram = "deepgram" // Deepgram live streaming
	EngineGoogle   = "google"   // Google Cloud Speech-to-Text
)

// Config holds all configuration for the interpreter gateway service
type Config struct {
	// Server configuration
	Port              string `envconfig:"PORT" default:"8080"`
	GRPCPort          string `envconfig:"GRPC_PORT" default:"50051"`
	GRPCHealthEnabled bool   `envconfig:"GRPC_HEALTH_ENABLED" default:"true"`

	// External translation and speech endpoints (POST /translate, POST /speak)
	TranslatorURL  string `envconfig:"TRANSLATOR_URL" default:"http://localhost:5000"`
	SynthesizerURL string `envconfig:"SYNTHESIZER_URL" default:"http://localhost:5000"`

	// Speech recognition
	RecognizerEngine  string `envconfig:"RECOGNIZER_ENGINE" default:"browser"` // browser, deepgram, google
	DeepgramAPIKey    string `envconfig:"DEEPGRAM_API_KEY"`                    // Required for the deepgram engine
	DeepgramModel     string `envconfig:"DEEPGRAM_MODEL" default:"nova-2"`
	GoogleSpeechModel string `envconfig:"GOOGLE_SPEECH_MODEL" default:"latest_long"`

	// Audio from clients of server-side engines
	AudioEncoding      string  `envconfig:"AUDIO_ENCODING" default:"linear16"` // linear16, mulaw
	AudioSampleRate    int     `envconfig:"AUDIO_SAMPLE_RATE" default:"16000"`
	VADEnergyThreshold float64 `envconfig:"VAD_ENERGY_THRESHOLD" default:"500.0"` // RMS energy threshold for the mic indicator
	VADSilenceFrames   int     `envconfig:"VAD_SILENCE_FRAMES" default:"10"`      // Frames of silence to mark speech end

	// Initial language selection of new sessions
	DefaultSourceLang string `envconfig:"DEFAULT_SOURCE_LANG" default:"en"`
	DefaultTargetLang string `envconfig:"DEFAULT_TARGET_LANG" default:"es"`

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery

	// Conversation events
	KafkaEnabled           bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers           []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopicTranscripts  string   `envconfig:"KAFKA_TOPIC_TRANSCRIPTS" default:"interpreter.transcript.final"`
	KafkaTopicTranslations string   `envconfig:"KAFKA_TOPIC_TRANSLATIONS" default:"interpreter.translation"`
	KafkaPrincipal         string   `envconfig:"KAFKA_PRINCIPAL" default:"svc-interpreter-gateway"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot check on its own
func (c *Config) Validate() error {
	switch c.RecognizerEngine {
	case EngineBrowser, EngineGoogle:
	case EngineDeepgram:
		if c.DeepgramAPIKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is required when RECOGNIZER_ENGINE is deepgram")
		}
	default:
		return fmt.Errorf("unknown RECOGNIZER_ENGINE %q", c.RecognizerEngine)
	}

	if _, err := audio.ParseEncoding(c.AudioEncoding); err != nil {
		return fmt.Errorf("invalid AUDIO_ENCODING: %w", err)
	}
	if c.AudioSampleRate <= 0 {
		return fmt.Errorf("AUDIO_SAMPLE_RATE must be positive, got %d", c.AudioSampleRate)
	}

	if !language.IsSupported(c.DefaultSourceLang) {
		return fmt.Errorf("unsupported DEFAULT_SOURCE_LANG %q", c.DefaultSourceLang)
	}
	if !language.IsSupported(c.DefaultTargetLang) {
		return fmt.Errorf("unsupported DEFAULT_TARGET_LANG %q", c.DefaultTargetLang)
	}

	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	return nil
}

// ResetTimeout returns the circuit breaker reset timeout as a duration
func (c *Config) ResetTimeout() time.Duration {
	return time.Duration(c.CircuitBreakerResetTimeout) * time.Second
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
