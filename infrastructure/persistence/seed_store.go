package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/playtaste/playtaste/domain/seed"
	"github.com/playtaste/playtaste/internal/database"
	"gorm.io/gorm"
)

// SeedStore implements seed.Store using GORM.
type SeedStore struct {
	db     database.Database
	mapper SeedMapper
}

// NewSeedStore creates a new SeedStore.
func NewSeedStore(db database.Database) SeedStore {
	return SeedStore{
		db:     db,
		mapper: SeedMapper{},
	}
}

// Get retrieves a seed by its composite key.
func (s SeedStore) Get(ctx context.Context, userID string, appID int64) (seed.Seed, error) {
	var model SeedModel
	result := s.db.Session(ctx).
		Where("user_id = ? AND app_id = ?", userID, appID).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return seed.Seed{}, fmt.Errorf("%w: seed %s/%d", database.ErrNotFound, userID, appID)
		}
		return seed.Seed{}, fmt.Errorf("get seed: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// FindByUser retrieves a user's seeds ordered by last_seen descending.
func (s SeedStore) FindByUser(ctx context.Context, userID string) ([]seed.Seed, error) {
	var models []SeedModel
	result := s.db.Session(ctx).
		Where("user_id = ?", userID).
		Order("last_seen DESC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("find seeds: %w", result.Error)
	}

	seeds := make([]seed.Seed, len(models))
	for i, model := range models {
		seeds[i] = s.mapper.ToDomain(model)
	}
	return seeds, nil
}

// CountByUser returns the number of seeds a user holds.
func (s SeedStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	result := s.db.Session(ctx).Model(&SeedModel{}).
		Where("user_id = ?", userID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count seeds: %w", result.Error)
	}
	return count, nil
}

// Save creates a seed or updates an existing one in place. The composite
// primary key makes Save an upsert.
func (s SeedStore) Save(ctx context.Context, sd seed.Seed) (seed.Seed, error) {
	model := s.mapper.ToModel(sd)
	if err := s.db.Session(ctx).Save(&model).Error; err != nil {
		return seed.Seed{}, fmt.Errorf("save seed: %w", err)
	}
	return s.mapper.ToDomain(model), nil
}

// Delete removes a seed.
func (s SeedStore) Delete(ctx context.Context, userID string, appID int64) error {
	result := s.db.Session(ctx).
		Where("user_id = ? AND app_id = ?", userID, appID).
		Delete(&SeedModel{})
	if result.Error != nil {
		return fmt.Errorf("delete seed: %w", result.Error)
	}
	return nil
}
