package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/playtaste/playtaste/domain/seed"
	"github.com/playtaste/playtaste/internal/database"
)

// Seeds manages the games a user has picked as taste signals.
type Seeds struct {
	seeds   seed.Store
	catalog *Catalog
	logger  *slog.Logger
}

// NewSeeds creates a new Seeds service.
func NewSeeds(seeds seed.Store, catalog *Catalog, logger *slog.Logger) *Seeds {
	return &Seeds{
		seeds:   seeds,
		catalog: catalog,
		logger:  logger,
	}
}

// Add records a game as one of the user's seeds. Re-adding an existing
// seed touches it instead of counting against the limit. The game must
// resolve to a taste-graph entity.
func (s *Seeds) Add(ctx context.Context, userID string, appID int64) (seed.Seed, error) {
	existing, err := s.seeds.Get(ctx, userID, appID)
	if err == nil {
		return s.seeds.Save(ctx, existing.Touched())
	}
	if !errors.Is(err, database.ErrNotFound) {
		return seed.Seed{}, fmt.Errorf("get seed: %w", err)
	}

	count, err := s.seeds.CountByUser(ctx, userID)
	if err != nil {
		return seed.Seed{}, fmt.Errorf("count seeds: %w", err)
	}
	if count >= seed.MaxPerUser {
		return seed.Seed{}, fmt.Errorf("%w: max %d", ErrSeedLimit, seed.MaxPerUser)
	}

	if _, err := s.catalog.EnsureEntity(ctx, appID); err != nil {
		return seed.Seed{}, err
	}

	saved, err := s.seeds.Save(ctx, seed.NewSeed(userID, appID))
	if err != nil {
		return seed.Seed{}, fmt.Errorf("save seed: %w", err)
	}

	s.logger.Debug("seed added",
		slog.String("user_id", userID),
		slog.Int64("app_id", appID),
	)
	return saved, nil
}

// Touch bumps the hit counter and last_seen of an existing seed.
func (s *Seeds) Touch(ctx context.Context, userID string, appID int64) (seed.Seed, error) {
	existing, err := s.seeds.Get(ctx, userID, appID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return seed.Seed{}, fmt.Errorf("%w: seed %d", ErrNotFound, appID)
		}
		return seed.Seed{}, err
	}
	return s.seeds.Save(ctx, existing.Touched())
}

// Remove deletes a user's seed. Removing an absent seed is not an error.
func (s *Seeds) Remove(ctx context.Context, userID string, appID int64) error {
	return s.seeds.Delete(ctx, userID, appID)
}

// List returns a user's seeds, most recently used first.
func (s *Seeds) List(ctx context.Context, userID string) ([]seed.Seed, error) {
	return s.seeds.FindByUser(ctx, userID)
}
