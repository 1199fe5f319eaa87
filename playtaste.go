// Package playtaste provides a library for taste-graph game recommendations.
//
// Playtaste keeps a per-user set of seed games, resolves them against a
// taste-graph catalog, and turns them into ranked, explainable
// recommendations with LLM-generated explanations.
//
// Basic usage:
//
//	client, err := playtaste.New(
//	    playtaste.WithSQLite(".playtaste/data.db"),
//	    playtaste.WithQloo(os.Getenv("QLOO_API_KEY")),
//	    playtaste.WithGemini(os.Getenv("GEMINI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Seed the user's taste profile
//	_, err = client.Seeds.Add(ctx, userID, 440)
//
//	// Create a recommendation request
//	result, err := client.Requests.Create(ctx, userID, service.RequestCreateParams{
//	    Filters: map[string]any{"take": 10},
//	})
package playtaste

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/playtaste/playtaste/application/handler/explanation"
	"github.com/playtaste/playtaste/application/service"
	"github.com/playtaste/playtaste/domain/task"
	"github.com/playtaste/playtaste/infrastructure/persistence"
	"github.com/playtaste/playtaste/infrastructure/provider"
	"github.com/playtaste/playtaste/internal/config"
	"github.com/playtaste/playtaste/internal/database"
)

// Client is the main entry point for the playtaste library.
// The background worker starts automatically on creation.
//
// Access resources via struct fields:
//
//	client.Seeds.List(ctx, userID)
//	client.Requests.Create(ctx, userID, params)
//	client.Explanations.GetOrGenerate(ctx, recID, "fr")
type Client struct {
	// Public resource fields (direct service access)
	Requests     *service.Requests
	Seeds        *service.Seeds
	Explanations *service.Explanations
	Catalog      *service.Catalog
	Tasks        *service.Queue

	db database.Database

	queue    *service.Queue
	worker   *service.Worker
	registry *service.Registry

	logger  *slog.Logger
	dataDir string
	apiKeys []string
	closed  atomic.Bool
}

// New creates a new Client with the given options.
// The background worker is started automatically.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.database == databaseUnset {
		return nil, ErrNoDatabase
	}

	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	dataDir, err := config.PrepareDataDir(cfg.dataDir)
	if err != nil {
		return nil, err
	}

	// The cache directory depends on the resolved data directory, so the
	// key-only Qloo option is materialized here rather than at option time.
	if cfg.graph == nil && cfg.qlooAPIKey != "" {
		cfg.graph = provider.NewQlooClientFromConfig(provider.QlooConfig{
			APIKey:   cfg.qlooAPIKey,
			CacheDir: InsightsCacheDir(dataDir),
		})
	}

	ctx := context.Background()
	dbURL, err := buildDatabaseURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("build database url: %w", err)
	}

	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	if err := persistence.ValidateSchema(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("validate schema: %w", err), errClose)
	}

	if !cfg.skipProviderValidation {
		if cfg.graph == nil {
			errClose := db.Close()
			return nil, errors.Join(ErrNoTasteGraph, errClose)
		}
		if cfg.textProvider == nil {
			errClose := db.Close()
			return nil, errors.Join(ErrNoTextProvider, errClose)
		}
	}

	gameStore := persistence.NewGameStore(db)
	seedStore := persistence.NewSeedStore(db)
	requestStore := persistence.NewRequestStore(db)
	recommendationStore := persistence.NewRecommendationStore(db)
	explanationStore := persistence.NewExplanationStore(db)
	taskStore := persistence.NewTaskStore(db)

	registry := service.NewRegistry()
	queue := service.NewQueue(taskStore, logger)

	catalogSvc := service.NewCatalog(gameStore, cfg.graph, logger)
	seedsSvc := service.NewSeeds(seedStore, catalogSvc, logger)
	explanationsSvc := service.NewExplanations(explanationStore, recommendationStore, catalogSvc, cfg.textProvider, queue, logger)
	requestsSvc := service.NewRequests(requestStore, recommendationStore, seedStore, catalogSvc, cfg.graph, queue, logger)

	worker := service.NewWorker(taskStore, registry, logger)
	if cfg.workerPollPeriod > 0 {
		worker.WithPollPeriod(cfg.workerPollPeriod)
	}

	client := &Client{
		Requests:     requestsSvc,
		Seeds:        seedsSvc,
		Explanations: explanationsSvc,
		Catalog:      catalogSvc,
		Tasks:        queue,
		db:           db,
		queue:        queue,
		worker:       worker,
		registry:     registry,
		logger:       logger,
		dataDir:      dataDir,
		apiKeys:      cfg.apiKeys,
	}

	client.registerHandlers()

	worker.Start(ctx)

	return client, nil
}

// registerHandlers wires background task handlers into the worker registry.
func (c *Client) registerHandlers() {
	prefetch := explanation.NewPrefetch(c.Explanations, c.logger)
	c.registry.Register(task.OperationExplanation, prefetch)
	c.registry.Register(task.OperationPrefetchExplanation, prefetch)
}

// Close releases all resources and stops the background worker.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return service.ErrClientClosed
	}

	c.worker.Stop()

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("playtaste client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// APIKeys returns the configured HTTP API keys.
func (c *Client) APIKeys() []string {
	return c.apiKeys
}

// DataDir returns the prepared data directory.
func (c *Client) DataDir() string {
	return c.dataDir
}

// InsightsCacheDir returns the on-disk cache directory for taste-graph
// responses under the given data directory.
func InsightsCacheDir(dataDir string) string {
	return filepath.Join(dataDir, "insights-cache")
}

// buildDatabaseURL converts the configured database into a connection URL.
func buildDatabaseURL(cfg *clientConfig) (string, error) {
	switch cfg.database {
	case databaseSQLite:
		if cfg.dbPath == "" {
			return "", fmt.Errorf("sqlite path is empty")
		}
		return "sqlite:///" + cfg.dbPath, nil
	case databasePostgres:
		if cfg.dbDSN == "" {
			return "", fmt.Errorf("postgres dsn is empty")
		}
		return cfg.dbDSN, nil
	default:
		return "", ErrNoDatabase
	}
}
