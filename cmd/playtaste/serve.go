package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/playtaste/playtaste"
	"github.com/playtaste/playtaste/infrastructure/api"
	apimiddleware "github.com/playtaste/playtaste/infrastructure/api/middleware"
	"github.com/playtaste/playtaste/infrastructure/provider"
	"github.com/playtaste/playtaste/internal/config"
	"github.com/playtaste/playtaste/internal/log"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  DATA_DIR                     Data directory (default: ~/.playtaste)
  DB_URL                       Database URL (default: sqlite:///{data_dir}/playtaste.db)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  API_KEYS                     Comma-separated list of valid API keys for writes
  FRONTEND_URL                 Allowed CORS origin for the web frontend

  QLOO_*                       Taste graph provider configuration
    API_KEY                    Qloo API key (required for recommendations)
    BASE_URL                   Override the default API base URL
    TIMEOUT                    Request timeout in seconds (default: 30)
    MAX_RETRIES                Retry attempts (default: 0, single attempt)
    CACHE_TTL_SECONDS          Insights cache lifetime (default: 86400)

  GEMINI_*                     Gemini text provider configuration
    API_KEY                    API key for authentication
    MODEL                      Model identifier (default: gemini-2.0-flash)
    TIMEOUT                    Request timeout in seconds (default: 60)
    MAX_RETRIES                Retry attempts (default: 0, single attempt)

  OPENAI_*                     OpenAI text provider configuration
    (same fields as GEMINI)

  ANTHROPIC_*                  Anthropic text provider configuration
    (same fields as GEMINI)

  WORKER_POLL_PERIOD_SECONDS   Background worker poll period (default: 5)

The first configured text provider wins, in order: Gemini, OpenAI, Anthropic.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	// Load configuration
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Apply command line overrides (flags take precedence over env vars)
	cfg = applyServeOverrides(cfg, host, port)

	addr := cfg.Addr()

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	// Setup logger
	logger := log.NewLogger(cfg)
	slogger := logger.Slog()

	opts := clientOptions(cfg, slogger)

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting playtaste", attrs...)

	client, err := playtaste.New(opts...)
	if err != nil {
		return fmt.Errorf("create playtaste client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close playtaste client", slog.Any("error", err))
		}
	}()

	// Create API server with the client's services
	apiServer := api.NewAPIServer(client, cfg.APIKeys())
	if cfg.FrontendURL() != "" {
		apiServer = apiServer.WithAllowedOrigins([]string{cfg.FrontendURL()})
	}
	router := apiServer.Router()

	// Apply custom middleware (MUST be done before MountRoutes)
	router.Use(apimiddleware.Logging(slogger))
	router.Use(apimiddleware.CorrelationID)

	// Mount API routes after middleware is configured
	apiServer.MountRoutes()

	// Health check endpoints
	router.Get("/health", healthHandler)
	router.Get("/healthz", healthHandler)

	// Root endpoint with API info
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"name":"playtaste","version":"%s"}`, version)
	})

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create standalone server for custom router
	server := api.NewServer(addr, slogger)
	server.Router().Mount("/", router)

	go func() {
		<-sigChan
		slogger.Info("shutting down server")
		cancel()
		if err := server.Shutdown(ctx); err != nil {
			slogger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	slogger.Info("starting server", slog.String("addr", addr))
	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// clientOptions translates the application config into client options.
func clientOptions(cfg config.AppConfig, slogger *slog.Logger) []playtaste.Option {
	opts := []playtaste.Option{
		playtaste.WithDataDir(cfg.DataDir()),
		playtaste.WithLogger(slogger),
	}

	// Configure storage based on database URL
	dbURLStr := cfg.DBURL()
	if dbURLStr != "" && !isSQLite(dbURLStr) {
		opts = append(opts, playtaste.WithPostgres(dbURLStr))
	} else {
		// Default to SQLite
		dbPath := cfg.DataDir() + "/playtaste.db"
		if dbURLStr != "" && isSQLite(dbURLStr) {
			// Extract path from sqlite URL
			dbPath = dbURLStr[10:] // Remove "sqlite:///" prefix
		}
		opts = append(opts, playtaste.WithSQLite(dbPath))
	}

	// Configure the taste graph provider
	if qloo := cfg.Qloo(); qloo != nil && qloo.IsConfigured() {
		opts = append(opts, playtaste.WithQlooConfig(provider.QlooConfig{
			APIKey:        qloo.APIKey(),
			BaseURL:       qloo.BaseURL(),
			Timeout:       qloo.Timeout(),
			MaxRetries:    qloo.MaxRetries(),
			InitialDelay:  qloo.InitialDelay(),
			BackoffFactor: qloo.BackoffFactor(),
			CacheDir:      playtaste.InsightsCacheDir(cfg.DataDir()),
			CacheTTL:      cfg.QlooCacheTTL(),
		}))
	}

	// Configure the text provider for explanations
	switch name, e := cfg.TextProvider(); name {
	case "gemini":
		opts = append(opts, playtaste.WithGeminiConfig(provider.GeminiConfig{
			APIKey:        e.APIKey(),
			BaseURL:       e.BaseURL(),
			Model:         e.Model(),
			Timeout:       e.Timeout(),
			MaxRetries:    e.MaxRetries(),
			InitialDelay:  e.InitialDelay(),
			BackoffFactor: e.BackoffFactor(),
		}))
	case "openai":
		opts = append(opts, playtaste.WithOpenAIConfig(provider.OpenAIConfig{
			APIKey:        e.APIKey(),
			BaseURL:       e.BaseURL(),
			ChatModel:     e.Model(),
			Timeout:       e.Timeout(),
			MaxRetries:    e.MaxRetries(),
			InitialDelay:  e.InitialDelay(),
			BackoffFactor: e.BackoffFactor(),
		}))
	case "anthropic":
		opts = append(opts, playtaste.WithTextProvider(provider.NewAnthropicProviderFromConfig(provider.AnthropicConfig{
			APIKey:        e.APIKey(),
			BaseURL:       e.BaseURL(),
			Model:         e.Model(),
			Timeout:       e.Timeout(),
			MaxRetries:    e.MaxRetries(),
			InitialDelay:  e.InitialDelay(),
			BackoffFactor: e.BackoffFactor(),
		})))
	}

	// Configure API keys
	if keys := cfg.APIKeys(); len(keys) > 0 {
		opts = append(opts, playtaste.WithAPIKeys(keys...))
	}

	opts = append(opts, playtaste.WithWorkerPollPeriod(cfg.WorkerPollPeriod()))

	// Skip provider validation if explicitly disabled (for testing)
	if cfg.SkipProviderValidation() {
		opts = append(opts, playtaste.WithSkipProviderValidation())
	}

	return opts
}

// isSQLite checks if the database URL is for SQLite.
func isSQLite(url string) bool {
	return len(url) >= 7 && url[:7] == "sqlite:"
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
