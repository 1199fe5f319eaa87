package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/domain/repository"
	"github.com/playtaste/playtaste/infrastructure/provider"
	"github.com/playtaste/playtaste/internal/database"
)

// MaxCatalogPageSize bounds catalog search result pages.
const MaxCatalogPageSize = 50

// TasteGraph is the slice of the taste-graph client the services use.
type TasteGraph interface {
	// Insights fetches ranked candidates for a set of seed entities.
	Insights(ctx context.Context, q provider.InsightsQuery) ([]provider.Candidate, error)

	// Search looks up taste-graph entities by free-text query.
	Search(ctx context.Context, query string) ([]provider.Candidate, error)
}

// CatalogSearchParams configures a catalog search.
type CatalogSearchParams struct {
	Query    string
	Limit    int
	Offset   int
	Platform string // "windows", "mac" or "linux"; empty matches all
	MaxAge   *int   // inclusive required_age ceiling
	Released *bool  // filter on the coming_soon flag
}

// Catalog provides read access to the game catalog and resolves
// taste-graph mappings for games that lack one.
type Catalog struct {
	games  catalog.GameStore
	graph  TasteGraph
	logger *slog.Logger
}

// NewCatalog creates a new Catalog service.
func NewCatalog(games catalog.GameStore, graph TasteGraph, logger *slog.Logger) *Catalog {
	return &Catalog{
		games:  games,
		graph:  graph,
		logger: logger,
	}
}

// Get retrieves a game by its store app ID.
func (s *Catalog) Get(ctx context.Context, appID int64) (catalog.Game, error) {
	game, err := s.games.Get(ctx, appID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return catalog.Game{}, fmt.Errorf("%w: game %d", ErrNotFound, appID)
		}
		return catalog.Game{}, err
	}
	return game, nil
}

// FindByAppIDs retrieves the games whose app IDs appear in the set.
// Missing IDs are silently absent from the result.
func (s *Catalog) FindByAppIDs(ctx context.Context, appIDs []int64) ([]catalog.Game, error) {
	return s.games.FindByAppIDs(ctx, appIDs)
}

// NamesByEntityIDs maps taste-graph entity IDs to game names. Keys of
// the returned map are lowercased entity IDs; unknown IDs are absent.
func (s *Catalog) NamesByEntityIDs(ctx context.Context, entityIDs []string) (map[string]string, error) {
	games, err := s.games.FindByEntityIDs(ctx, entityIDs)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(games))
	for _, g := range games {
		names[strings.ToLower(g.EntityID())] = g.Name()
	}
	return names, nil
}

// Search retrieves games matching the params plus the total match
// count. The page size is clamped to MaxCatalogPageSize.
func (s *Catalog) Search(ctx context.Context, params CatalogSearchParams) ([]catalog.Game, int64, error) {
	limit := params.Limit
	if limit <= 0 || limit > MaxCatalogPageSize {
		limit = MaxCatalogPageSize
	}

	conditions := searchConditions(params)

	options := make([]repository.Option, 0, len(conditions)+3)
	options = append(options, conditions...)
	options = append(options,
		repository.WithOrderAsc("name"),
		repository.WithLimit(limit),
	)
	if params.Offset > 0 {
		options = append(options, repository.WithOffset(params.Offset))
	}

	games, err := s.games.Search(ctx, params.Query, options...)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.games.CountSearch(ctx, params.Query, conditions...)
	if err != nil {
		return nil, 0, err
	}

	return games, total, nil
}

func searchConditions(params CatalogSearchParams) []repository.Option {
	var conditions []repository.Option
	switch params.Platform {
	case "windows":
		conditions = append(conditions, repository.WithCondition("platform_windows", true))
	case "mac":
		conditions = append(conditions, repository.WithCondition("platform_mac", true))
	case "linux":
		conditions = append(conditions, repository.WithCondition("platform_linux", true))
	}
	if params.MaxAge != nil {
		conditions = append(conditions, catalog.WithMaxAge(*params.MaxAge))
	}
	if params.Released != nil {
		conditions = append(conditions, repository.WithCondition("coming_soon", !*params.Released))
	}
	return conditions
}

// EnsureEntity returns the game with a taste-graph entity ID attached,
// resolving and persisting the mapping when absent. Games the taste
// graph does not know return ErrUnsupportedByCatalog.
func (s *Catalog) EnsureEntity(ctx context.Context, appID int64) (catalog.Game, error) {
	game, err := s.Get(ctx, appID)
	if err != nil {
		return catalog.Game{}, err
	}
	if game.HasEntity() {
		return game, nil
	}

	candidates, err := s.graph.Search(ctx, game.Name())
	if err != nil {
		return catalog.Game{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	match, ok := pickEntity(game, candidates)
	if !ok {
		return catalog.Game{}, fmt.Errorf("%w: game %d", ErrUnsupportedByCatalog, appID)
	}

	saved, err := s.games.Save(ctx, game.WithEntityID(match.EntityID))
	if err != nil {
		return catalog.Game{}, fmt.Errorf("save entity mapping: %w", err)
	}

	s.logger.Debug("taste-graph entity resolved",
		slog.Int64("app_id", appID),
		slog.String("entity_id", match.EntityID),
	)
	return saved, nil
}

// pickEntity selects the best candidate for a game: exact store ID
// match, then normalized title match, then a description mentioning the
// title, then the first candidate.
func pickEntity(game catalog.Game, candidates []provider.Candidate) (provider.Candidate, bool) {
	var usable []provider.Candidate
	for _, c := range candidates {
		if c.EntityID != "" {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return provider.Candidate{}, false
	}

	for _, c := range usable {
		if c.SteamAppID == game.AppID() {
			return c, true
		}
	}

	title := game.NormalizedName()
	for _, c := range usable {
		if catalog.NormalizeName(c.Name) == title {
			return c, true
		}
	}

	mention := strings.ToLower(strings.TrimSpace(game.Name()))
	for _, c := range usable {
		if strings.Contains(strings.ToLower(c.Description), mention) {
			return c, true
		}
	}

	return usable[0], true
}
