package playtaste

import (
	"errors"
	"log/slog"
	"time"

	"github.com/playtaste/playtaste/application/service"
	"github.com/playtaste/playtaste/infrastructure/provider"
	"github.com/playtaste/playtaste/internal/config"
)

var (
	// ErrNoDatabase is returned by New when no database is configured.
	ErrNoDatabase = errors.New("playtaste: no database configured")
	// ErrNoTasteGraph is returned by New when no taste-graph client is configured.
	ErrNoTasteGraph = errors.New("playtaste: no taste-graph provider configured")
	// ErrNoTextProvider is returned by New when no text generator is configured.
	ErrNoTextProvider = errors.New("playtaste: no text provider configured")
)

// databaseType identifies the database.
type databaseType int

const (
	databaseUnset databaseType = iota
	databaseSQLite
	databasePostgres
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	database               databaseType
	dbPath                 string
	dbDSN                  string
	dataDir                string
	qlooAPIKey             string
	graph                  service.TasteGraph
	textProvider           provider.TextGenerator
	logger                 *slog.Logger
	apiKeys                []string
	workerPollPeriod       time.Duration
	skipProviderValidation bool
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir: config.DefaultDataDir(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseSQLite
		c.dbPath = path
	}
}

// WithPostgres configures PostgreSQL as the database. The DSN is a
// postgres:// connection URL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databasePostgres
		c.dbDSN = dsn
	}
}

// WithQloo sets the taste-graph provider used for insights and entity search.
// Responses are cached on disk under the data directory.
func WithQloo(apiKey string) Option {
	return func(c *clientConfig) {
		c.qlooAPIKey = apiKey
	}
}

// WithQlooConfig sets the taste-graph provider with custom configuration.
func WithQlooConfig(cfg provider.QlooConfig) Option {
	return func(c *clientConfig) {
		c.graph = provider.NewQlooClientFromConfig(cfg)
	}
}

// WithTasteGraph sets a custom taste-graph implementation.
func WithTasteGraph(g service.TasteGraph) Option {
	return func(c *clientConfig) {
		c.graph = g
	}
}

// WithGemini sets Google Gemini as the explanation text provider.
func WithGemini(apiKey string) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewGeminiProvider(apiKey)
	}
}

// WithGeminiConfig sets Gemini with custom configuration.
func WithGeminiConfig(cfg provider.GeminiConfig) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewGeminiProviderFromConfig(cfg)
	}
}

// WithOpenAI sets OpenAI as the explanation text provider.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewOpenAIProvider(apiKey)
	}
}

// WithOpenAIConfig sets OpenAI with custom configuration.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewOpenAIProviderFromConfig(cfg)
	}
}

// WithAnthropic sets Anthropic Claude as the explanation text provider.
func WithAnthropic(apiKey string) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewAnthropicProvider(apiKey)
	}
}

// WithTextProvider sets a custom text generation provider.
func WithTextProvider(p provider.TextGenerator) Option {
	return func(c *clientConfig) {
		c.textProvider = p
	}
}

// WithDataDir sets the data directory for the insights cache and database storage.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithAPIKeys sets the API keys for HTTP API authentication.
func WithAPIKeys(keys ...string) Option {
	return func(c *clientConfig) {
		c.apiKeys = keys
	}
}

// WithWorkerPollPeriod sets how often the background worker checks for new tasks.
// Defaults to 1 second. Lower values speed up task processing at the cost of
// more frequent polling, useful in tests.
func WithWorkerPollPeriod(d time.Duration) Option {
	return func(c *clientConfig) {
		c.workerPollPeriod = d
	}
}

// WithSkipProviderValidation skips the provider configuration validation.
// This is intended for testing only.
func WithSkipProviderValidation() Option {
	return func(c *clientConfig) {
		c.skipProviderValidation = true
	}
}
