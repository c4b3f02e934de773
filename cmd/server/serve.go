package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lexiqai/interpreter-gateway/internal/audio"
	"github.com/lexiqai/interpreter-gateway/internal/config"
	"github.com/lexiqai/interpreter-gateway/internal/events"
	"github.com/lexiqai/interpreter-gateway/internal/gateway"
	"github.com/lexiqai/interpreter-gateway/internal/observability"
	"github.com/lexiqai/interpreter-gateway/internal/resilience"
	"github.com/lexiqai/interpreter-gateway/internal/stt"
	"github.com/lexiqai/interpreter-gateway/internal/translation"
	"github.com/lexiqai/interpreter-gateway/internal/tts"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interpreter gateway (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	if envFile == "" {
		return config.Load()
	}
	if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return config.LoadFromEnv()
}

func runServe() error {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("recognizer_engine", cfg.RecognizerEngine).
		Str("translator_url", cfg.TranslatorURL).
		Str("synthesizer_url", cfg.SynthesizerURL).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Bool("kafka_enabled", cfg.KafkaEnabled).
		Msg("Interpreter Gateway Service starting")

	translatorBreaker := resilience.NewCircuitBreaker("translator", cfg.CircuitBreakerMaxFailures, cfg.ResetTimeout())
	translator, err := translation.NewHTTPClient(cfg.TranslatorURL, translatorBreaker)
	if err != nil {
		return err
	}

	synthesizerBreaker := resilience.NewCircuitBreaker("synthesizer", cfg.CircuitBreakerMaxFailures, cfg.ResetTimeout())
	synthesizer, err := tts.NewHTTPClient(cfg.SynthesizerURL, synthesizerBreaker)
	if err != nil {
		return err
	}

	publisher := events.New(&events.Config{
		Enabled:           cfg.KafkaEnabled,
		Brokers:           cfg.KafkaBrokers,
		TopicTranscripts:  cfg.KafkaTopicTranscripts,
		TopicTranslations: cfg.KafkaTopicTranslations,
		Principal:         cfg.KafkaPrincipal,
	})
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close event publisher")
		}
	}()

	encoding, err := audio.ParseEncoding(cfg.AudioEncoding)
	if err != nil {
		return err
	}
	vad := audio.DefaultVADConfig(cfg.AudioSampleRate)
	vad.EnergyThreshold = cfg.VADEnergyThreshold
	vad.SilenceFrames = cfg.VADSilenceFrames

	sessions, err := gateway.NewHandler(gateway.Options{
		Translator:        translator,
		Synthesizer:       synthesizer,
		Publisher:         publisher,
		Recognizers:       recognizerFactory(cfg),
		Engine:            cfg.RecognizerEngine,
		AudioEncoding:     encoding,
		VAD:               vad,
		DefaultSourceLang: cfg.DefaultSourceLang,
		DefaultTargetLang: cfg.DefaultTargetLang,
	})
	if err != nil {
		return err
	}

	checks := []observability.DependencyCheck{
		{Name: "translator", Check: translator.Check},
		{Name: "synthesizer", Check: synthesizer.Check},
	}
	if publisher.Enabled() {
		checks = append(checks, observability.DependencyCheck{Name: "kafka", Check: publisher.Check})
	}

	router := gateway.NewRouter(gateway.RouterOptions{
		Sessions:       sessions,
		ReadyChecks:    checks,
		MetricsEnabled: cfg.MetricsEnabled,
	})
	if cfg.MetricsEnabled {
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	var grpcHealth *observability.GRPCHealthServer
	if cfg.GRPCHealthEnabled {
		grpcHealth = observability.NewGRPCHealthServer(fmt.Sprintf(":%s", cfg.GRPCPort), checks...)
		if err := grpcHealth.Start(15 * time.Second); err != nil {
			return err
		}
		logger.Info().Str("port", cfg.GRPCPort).Msg("gRPC health server listening")
	}

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", fmt.Sprintf("ws://localhost:%s/ws/session", cfg.Port)).
			Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		logger.Error().Err(err).Msg("Server failed to start")
		return err
	}

	logger.Info().Int("active_sessions", sessions.ActiveSessions()).Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions.Shutdown()
	if grpcHealth != nil {
		grpcHealth.Shutdown()
	}
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	logger.Info().Msg("Server exited gracefully")
	return nil
}

// recognizerFactory creates one recognizer per session for the configured engine.
// Server-side engines share a circuit breaker so a failing provider fails fast.
func recognizerFactory(cfg *config.Config) gateway.RecognizerFactory {
	breaker := resilience.NewCircuitBreaker("recognizer", cfg.CircuitBreakerMaxFailures, cfg.ResetTimeout())

	switch cfg.RecognizerEngine {
	case config.EngineDeepgram:
		dgConfig := stt.DeepgramConfig{
			APIKey:     cfg.DeepgramAPIKey,
			Model:      cfg.DeepgramModel,
			SampleRate: cfg.AudioSampleRate,
		}
		return func(_ context.Context, _ stt.CommandFunc, logger zerolog.Logger) (stt.Recognizer, error) {
			recognizer, err := stt.NewDeepgramRecognizer(dgConfig, breaker, logger)
			if err != nil {
				return nil, err
			}
			return recognizer, nil
		}

	case config.EngineGoogle:
		gConfig := stt.GoogleConfig{
			Model:        cfg.GoogleSpeechModel,
			SampleRateHz: int32(cfg.AudioSampleRate),
		}
		return func(ctx context.Context, _ stt.CommandFunc, logger zerolog.Logger) (stt.Recognizer, error) {
			recognizer, err := stt.NewGoogleRecognizer(ctx, gConfig, breaker, logger)
			if err != nil {
				return nil, err
			}
			return recognizer, nil
		}

	default:
		return gateway.BrowserRecognizers
	}
}
