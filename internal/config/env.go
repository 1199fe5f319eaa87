// Package config provides application configuration.
package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., QLOO_API_KEY, GEMINI_MODEL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.playtaste
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/playtaste.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// SkipProviderValidation skips provider requirement validation at startup.
	// Env: SKIP_PROVIDER_VALIDATION (default: false)
	// WARNING: For testing only. Recommendations require a taste graph provider.
	SkipProviderValidation bool `envconfig:"SKIP_PROVIDER_VALIDATION" default:"false"`

	// APIKeys is a comma-separated list of valid API keys for write access.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// FrontendURL is the allowed CORS origin for the web frontend.
	// Env: FRONTEND_URL
	FrontendURL string `envconfig:"FRONTEND_URL"`

	// Qloo configures the taste graph provider.
	Qloo QlooEnv `envconfig:"QLOO"`

	// Gemini configures the Gemini text provider.
	Gemini EndpointEnv `envconfig:"GEMINI"`

	// OpenAI configures the OpenAI text provider.
	OpenAI EndpointEnv `envconfig:"OPENAI"`

	// Anthropic configures the Anthropic text provider.
	Anthropic EndpointEnv `envconfig:"ANTHROPIC"`

	// WorkerPollPeriodSeconds is how often the background worker polls for
	// queued tasks, in seconds.
	// Env: WORKER_POLL_PERIOD_SECONDS (default: 5)
	WorkerPollPeriodSeconds float64 `envconfig:"WORKER_POLL_PERIOD_SECONDS" default:"5"`
}

// EndpointEnv holds environment configuration for a text provider endpoint.
type EndpointEnv struct {
	// BaseURL is the base URL for the endpoint.
	// Env: *_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the model identifier (e.g., gemini-2.0-flash).
	// Env: *_MODEL
	Model string `envconfig:"MODEL"`

	// APIKey is the API key for authentication.
	// Env: *_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the request timeout in seconds.
	// Env: *_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries. Zero means each call
	// is attempted once.
	// Env: *_MAX_RETRIES (default: 0)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"0"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: *_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: *_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`

	// MaxTokens is the maximum token limit for generated text.
	// Env: *_MAX_TOKENS (default: 1024)
	MaxTokens int `envconfig:"MAX_TOKENS" default:"1024"`
}

// QlooEnv holds environment configuration for the taste graph provider.
type QlooEnv struct {
	// APIKey is the Qloo API key.
	// Env: QLOO_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// BaseURL overrides the default Qloo API base URL.
	// Env: QLOO_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Timeout is the request timeout in seconds.
	// Env: QLOO_TIMEOUT (default: 30)
	Timeout float64 `envconfig:"TIMEOUT" default:"30"`

	// MaxRetries is the maximum number of retries. Zero means each call
	// is attempted once.
	// Env: QLOO_MAX_RETRIES (default: 0)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"0"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: QLOO_INITIAL_DELAY (default: 1.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"1.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: QLOO_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`

	// CacheTTLSeconds is the lifetime of cached insights responses in seconds.
	// Env: QLOO_CACHE_TTL_SECONDS (default: 86400)
	CacheTTLSeconds float64 `envconfig:"CACHE_TTL_SECONDS" default:"86400"`
}

// LoadFromEnv loads configuration from environment variables.
// It uses no prefix, so variables are read as HOST, PORT, QLOO_API_KEY, etc.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "PLAYTASTE" would require PLAYTASTE_DATA_DIR
// instead of DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Normalize trims surrounding whitespace from string values. Env files edited
// by hand often carry trailing spaces that would otherwise end up in URLs and
// keys.
func (e EnvConfig) Normalize() EnvConfig {
	e.Host = strings.TrimSpace(e.Host)
	e.DataDir = strings.TrimSpace(e.DataDir)
	e.DBURL = strings.TrimSpace(e.DBURL)
	e.LogLevel = strings.TrimSpace(e.LogLevel)
	e.LogFormat = strings.TrimSpace(e.LogFormat)
	e.APIKeys = strings.TrimSpace(e.APIKeys)
	e.FrontendURL = strings.TrimSpace(e.FrontendURL)
	e.Qloo.APIKey = strings.TrimSpace(e.Qloo.APIKey)
	e.Qloo.BaseURL = strings.TrimSpace(e.Qloo.BaseURL)
	e.Gemini = e.Gemini.normalize()
	e.OpenAI = e.OpenAI.normalize()
	e.Anthropic = e.Anthropic.normalize()
	return e
}

func (e EndpointEnv) normalize() EndpointEnv {
	e.BaseURL = strings.TrimSpace(e.BaseURL)
	e.Model = strings.TrimSpace(e.Model)
	e.APIKey = strings.TrimSpace(e.APIKey)
	return e
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	// Apply overrides from environment
	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	cfg = applyOption(cfg, WithSkipProviderValidation(e.SkipProviderValidation))

	if e.APIKeys != "" {
		cfg = applyOption(cfg, WithAPIKeys(ParseAPIKeys(e.APIKeys)))
	}
	if e.FrontendURL != "" {
		cfg = applyOption(cfg, WithFrontendURL(e.FrontendURL))
	}

	// Taste graph provider
	if e.Qloo.IsConfigured() {
		cfg = applyOption(cfg, WithQlooEndpoint(e.Qloo.ToEndpoint()))
		cfg = applyOption(cfg, WithQlooCacheTTL(secondsToDuration(e.Qloo.CacheTTLSeconds)))
	}

	// Text providers
	if e.Gemini.IsConfigured() {
		cfg = applyOption(cfg, WithGeminiEndpoint(e.Gemini.ToEndpoint()))
	}
	if e.OpenAI.IsConfigured() {
		cfg = applyOption(cfg, WithOpenAIEndpoint(e.OpenAI.ToEndpoint()))
	}
	if e.Anthropic.IsConfigured() {
		cfg = applyOption(cfg, WithAnthropicEndpoint(e.Anthropic.ToEndpoint()))
	}

	if e.WorkerPollPeriodSeconds > 0 {
		cfg = applyOption(cfg, WithWorkerPollPeriod(secondsToDuration(e.WorkerPollPeriodSeconds)))
	}

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// IsConfigured returns true if the endpoint has an API key configured.
func (e EndpointEnv) IsConfigured() bool {
	return e.APIKey != ""
}

// ToEndpoint converts EndpointEnv to Endpoint.
func (e EndpointEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithAPIKey(e.APIKey),
		WithTimeout(secondsToDuration(e.Timeout)),
		WithMaxRetries(e.MaxRetries),
		WithInitialDelay(secondsToDuration(e.InitialDelay)),
		WithBackoffFactor(e.BackoffFactor),
		WithMaxTokens(e.MaxTokens),
	}

	if e.BaseURL != "" {
		opts = append(opts, WithBaseURL(e.BaseURL))
	}
	if e.Model != "" {
		opts = append(opts, WithModel(e.Model))
	}

	return NewEndpointWithOptions(opts...)
}

// IsConfigured returns true if the taste graph API key is configured.
func (q QlooEnv) IsConfigured() bool {
	return q.APIKey != ""
}

// ToEndpoint converts QlooEnv to Endpoint.
func (q QlooEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithAPIKey(q.APIKey),
		WithTimeout(secondsToDuration(q.Timeout)),
		WithMaxRetries(q.MaxRetries),
		WithInitialDelay(secondsToDuration(q.InitialDelay)),
		WithBackoffFactor(q.BackoffFactor),
	}

	if q.BaseURL != "" {
		opts = append(opts, WithBaseURL(q.BaseURL))
	}

	return NewEndpointWithOptions(opts...)
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
