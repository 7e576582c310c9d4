package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/config"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/evaluator"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/logger"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
	telem "github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/otel"
)

var (
	// Global flags. They override the config file and environment.
	flagProvider  string
	flagModel     string
	flagBaseURL   string
	flagAPIKey    string
	flagMaxTokens int64
	flagMode      string
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "photo-mentor",
	Short: "AI photo critique with selectable strictness",
	Long: `photo-mentor critiques a photo with a hosted multimodal model.

The model returns an overall score, a title, five category evaluations
(composition, lighting, color, pose, costume), strengths, improvements and
technical advice. The evaluation mode sets the tone: SWEET encourages,
MEDIUM reviews like a professional, SPICY is a demanding judge.

All judgment is made by the model. Go code builds the instruction,
validates the input and strictly validates the structured response.

Configuration is loaded from .photo-mentor.yaml,
~/.config/photo-mentor/config.yaml and PHOTO_MENTOR_* environment
variables. Flags override both.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "LLM provider: gemini, openai, anthropic (default: gemini)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model name (default: gemini-2.5-flash, gpt-4o-mini or claude-sonnet-4-5 per provider)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "override LLM API base URL")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "override LLM API key")
	rootCmd.PersistentFlags().Int64Var(&flagMaxTokens, "max-tokens", 0, "max output tokens (default: 8192)")
	rootCmd.PersistentFlags().StringVar(&flagMode, "mode", "", "evaluation mode: sweet, medium, spicy (default: medium)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text, json")
}

// loadConfig loads the configuration and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		// Switching provider without naming a model selects that provider's default.
		if !flags.Changed("model") && cfg.Model == config.DefaultModel(cfg.Provider) {
			cfg.Model = ""
		}
		cfg.Provider = flagProvider
	}
	if flags.Changed("model") {
		cfg.Model = flagModel
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = flagBaseURL
	}
	if flags.Changed("api-key") {
		cfg.APIKey = flagAPIKey
	}
	if flags.Changed("max-tokens") {
		cfg.MaxTokens = flagMaxTokens
	}
	if flags.Changed("mode") {
		cfg.Mode = flagMode
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// configuredMode parses the configured default mode.
func configuredMode(cfg *config.Config) (model.EvaluationMode, error) {
	mode, err := model.ParseMode(cfg.Mode)
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return mode, nil
}

// logSink builds a command's logger once the configuration is known.
// The returned closer, if any, is closed when the command ends.
type logSink func(cfg *config.Config) (*logrus.Logger, io.Closer, error)

// writerSink logs to w.
func writerSink(w io.Writer) logSink {
	return func(cfg *config.Config) (*logrus.Logger, io.Closer, error) {
		l, err := logger.New(cfg.LogLevel, cfg.LogFormat, w)
		return l, nil, err
	}
}

// fileSink logs to the file at path, or nowhere when path is empty.
func fileSink(path string) logSink {
	return func(cfg *config.Config) (*logrus.Logger, io.Closer, error) {
		if path == "" {
			return logger.Discard(), nil, nil
		}
		l, f, err := logger.ToFile(path, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return nil, nil, err
		}
		return l, f, nil
	}
}

// app bundles what every analysis command needs.
type app struct {
	cfg     *config.Config
	mode    model.EvaluationMode
	log     *logrus.Logger
	logFile io.Closer
	tel     *telem.Telemetry
	client  *evaluator.Client
}

// newApp loads the configuration, starts telemetry and builds the
// analysis client.
func newApp(ctx context.Context, cmd *cobra.Command, sink logSink) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	mode, err := configuredMode(cfg)
	if err != nil {
		return nil, err
	}

	log, logFile, err := sink(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	a := &app{cfg: cfg, mode: mode, log: log, logFile: logFile}
	if cfg.ConfigFile != "" {
		log.WithField("path", cfg.ConfigFile).Debug("Loaded config file")
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
	a.tel, err = telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		log.WithError(err).Warn("OTEL init failed, continuing without telemetry")
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	a.client = evaluator.NewClient(backend,
		evaluator.WithMetrics(a.metrics()),
		evaluator.WithLogger(log),
	)
	log.WithFields(logrus.Fields{
		"provider": backend.Provider(),
		"model":    backend.Model(),
		"mode":     mode,
	}).Debug("Analysis client ready")
	return a, nil
}

func (a *app) metrics() *telem.Metrics {
	if a.tel == nil {
		return nil
	}
	return a.tel.Metrics
}

// close flushes telemetry and closes the log file.
func (a *app) close(ctx context.Context) {
	if a.tel != nil {
		if err := a.tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			a.log.WithError(err).Warn("OTEL shutdown failed")
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// newBackend returns the configured provider backend. Credentials are
// passed explicitly; no client reads the environment on its own.
func newBackend(ctx context.Context, cfg *config.Config) (evaluator.Backend, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return newGeminiBackend(ctx, cfg)
	case config.ProviderOpenAI:
		return newOpenAIBackend(cfg)
	case config.ProviderAnthropic:
		return newAnthropicBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: gemini, openai, anthropic)", cfg.Provider)
	}
}

// newGeminiBackend creates a Gemini API or Vertex AI backend.
func newGeminiBackend(ctx context.Context, cfg *config.Config) (evaluator.Backend, error) {
	if cfg.Project == "" && cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set PHOTO_MENTOR_API_KEY, GEMINI_API_KEY or GOOGLE_API_KEY, or set a Vertex AI project")
	}
	return evaluator.NewGeminiBackend(ctx, evaluator.GeminiConfig{
		APIKey:    cfg.APIKey,
		Project:   cfg.Project,
		Location:  cfg.Location,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	})
}

// newOpenAIBackend creates an OpenAI-compatible backend.
func newOpenAIBackend(cfg *config.Config) (evaluator.Backend, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if resourceName := os.Getenv("AZURE_RESOURCE_NAME"); resourceName != "" {
			baseURL = fmt.Sprintf("https://%s.openai.azure.com/openai/v1", resourceName)
		}
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set PHOTO_MENTOR_API_KEY, AZURE_OPENAI_API_KEY or OPENAI_API_KEY")
	}

	return evaluator.NewOpenAIBackend(evaluator.OpenAIConfig{
		BaseURL:      baseURL,
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		MaxTokens:    cfg.MaxTokens,
		ExtraHeaders: azureHeaders(baseURL, cfg.APIKey),
	}), nil
}

// newAnthropicBackend creates an Anthropic backend.
func newAnthropicBackend(cfg *config.Config) (evaluator.Backend, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if resourceName := os.Getenv("AZURE_RESOURCE_NAME"); resourceName != "" {
			// The SDK appends v1/messages to the base URL.
			baseURL = fmt.Sprintf("https://%s.services.ai.azure.com/anthropic/", resourceName)
		}
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set PHOTO_MENTOR_API_KEY or ANTHROPIC_API_KEY")
	}

	return evaluator.NewAnthropicBackend(evaluator.AnthropicConfig{
		BaseURL:      baseURL,
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		MaxTokens:    cfg.MaxTokens,
		ExtraHeaders: azureHeaders(baseURL, cfg.APIKey),
	}), nil
}

// azureHeaders returns the "api-key" header Azure endpoints expect in
// addition to the SDK's own authentication header.
func azureHeaders(baseURL, apiKey string) map[string]string {
	if config.IsAzureEndpoint(baseURL) {
		return map[string]string{"api-key": apiKey}
	}
	return nil
}
