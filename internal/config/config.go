// Package config loads photo-mentor configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Command-line flags (applied by cmd)
//  2. Environment variables (PHOTO_MENTOR_*)
//  3. Config file
//  4. Built-in defaults
//
// Config file search order:
//  1. .photo-mentor.yaml in current directory
//  2. ~/.config/photo-mentor/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all photo-mentor configuration.
type Config struct {
	// LLM settings
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	MaxTokens int64  `yaml:"max_tokens"`

	// Vertex AI (gemini provider only). Setting Project selects Vertex.
	Project  string `yaml:"project"`
	Location string `yaml:"location"`

	// Default evaluation mode for new sessions: SWEET, MEDIUM or SPICY.
	Mode string `yaml:"mode"`

	// Web server
	Listen         string `yaml:"listen"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	RequestTimeout string `yaml:"request_timeout"` // Go duration string, e.g. "90s"
	SessionTTL     string `yaml:"session_ttl"`     // Go duration string, e.g. "30m"

	// Logging
	LogLevel  string `yaml:"log_level"`  // logrus level name
	LogFormat string `yaml:"log_format"` // "text" or "json"

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Parsed durations (not from YAML, set after loading)
	RequestTimeoutDuration time.Duration `yaml:"-"`
	SessionTTLDuration     time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Provider:       ProviderGemini,
		Model:          DefaultModel(ProviderGemini),
		MaxTokens:      8192,
		Location:       "us-central1",
		Mode:           "MEDIUM",
		Listen:         ":8080",
		MaxUploadBytes: 10 << 20,
		RequestTimeout: "90s",
		SessionTTL:     "30m",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-sonnet-4-5"
	default:
		return "gemini-2.5-flash"
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()
	modelSet := false

	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		modelSet = fileCfg.Model != ""
		mergeFile(cfg, &fileCfg)
	}

	if mergeEnv(cfg) {
		modelSet = true
	}

	// A provider switch without an explicit model gets that provider's default.
	if !modelSet {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates cfg, resolves provider-specific API key fallbacks and
// parses durations. cmd calls it again after applying flags.
func (c *Config) Finalize() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown provider %q (supported: gemini, openai, anthropic)", c.Provider)
	}
	if c.Model == "" {
		c.Model = DefaultModel(c.Provider)
	}
	if c.APIKey == "" {
		c.APIKey = providerAPIKey(c.Provider)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}

	var err error
	c.RequestTimeoutDuration, err = parseDurationOrDisable(c.RequestTimeout, 90*time.Second)
	if err != nil {
		return fmt.Errorf("invalid request timeout %q: %w", c.RequestTimeout, err)
	}
	c.SessionTTLDuration, err = parseDurationOrDisable(c.SessionTTL, 30*time.Minute)
	if err != nil {
		return fmt.Errorf("invalid session TTL %q: %w", c.SessionTTL, err)
	}
	return nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	if data, err := os.ReadFile(".photo-mentor.yaml"); err == nil {
		return ".photo-mentor.yaml", data, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "photo-mentor", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	setString(&cfg.Provider, file.Provider)
	setString(&cfg.Model, file.Model)
	setString(&cfg.BaseURL, file.BaseURL)
	setString(&cfg.APIKey, file.APIKey)
	setString(&cfg.Project, file.Project)
	setString(&cfg.Location, file.Location)
	setString(&cfg.Mode, file.Mode)
	setString(&cfg.Listen, file.Listen)
	setString(&cfg.RequestTimeout, file.RequestTimeout)
	setString(&cfg.SessionTTL, file.SessionTTL)
	setString(&cfg.LogLevel, file.LogLevel)
	setString(&cfg.LogFormat, file.LogFormat)
	setString(&cfg.OTELEndpoint, file.OTELEndpoint)
	setString(&cfg.OTELHeaders, file.OTELHeaders)
	if file.MaxTokens > 0 {
		cfg.MaxTokens = file.MaxTokens
	}
	if file.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = file.MaxUploadBytes
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
// Reports whether the model was set from the environment.
func mergeEnv(cfg *Config) bool {
	env := func(name string, dst *string) {
		setString(dst, os.Getenv("PHOTO_MENTOR_"+name))
	}
	env("PROVIDER", &cfg.Provider)
	env("BASE_URL", &cfg.BaseURL)
	env("API_KEY", &cfg.APIKey)
	env("PROJECT", &cfg.Project)
	env("LOCATION", &cfg.Location)
	env("MODE", &cfg.Mode)
	env("LISTEN", &cfg.Listen)
	env("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	env("SESSION_TTL", &cfg.SessionTTL)
	env("LOG_LEVEL", &cfg.LogLevel)
	env("LOG_FORMAT", &cfg.LogFormat)
	env("OTEL_ENDPOINT", &cfg.OTELEndpoint)
	env("OTEL_HEADERS", &cfg.OTELHeaders)

	if n, err := strconv.ParseInt(os.Getenv("PHOTO_MENTOR_MAX_TOKENS"), 10, 64); err == nil && n > 0 {
		cfg.MaxTokens = n
	}
	if n, err := strconv.ParseInt(os.Getenv("PHOTO_MENTOR_MAX_UPLOAD_BYTES"), 10, 64); err == nil && n > 0 {
		cfg.MaxUploadBytes = n
	}

	// Standard OTEL variables are honored when nothing more specific is set.
	if cfg.OTELEndpoint == "" {
		cfg.OTELEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if cfg.OTELHeaders == "" {
		cfg.OTELHeaders = os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")
	}

	if v := os.Getenv("PHOTO_MENTOR_MODEL"); v != "" {
		cfg.Model = v
		return true
	}
	return false
}

// providerAPIKey returns the first provider-specific API key found in the
// environment.
func providerAPIKey(provider string) string {
	var names []string
	switch provider {
	case ProviderGemini:
		names = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case ProviderOpenAI:
		names = []string{"AZURE_OPENAI_API_KEY", "OPENAI_API_KEY"}
	case ProviderAnthropic:
		names = []string{"ANTHROPIC_API_KEY"}
	}
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	switch s {
	case "":
		return fallback, nil
	case "0", "off", "disable":
		return 0, nil
	}
	return time.ParseDuration(s)
}

// IsAzureEndpoint returns true if the URL is an Azure endpoint.
func IsAzureEndpoint(url string) bool {
	return strings.Contains(url, ".azure.com") || strings.Contains(url, ".azure.us")
}
