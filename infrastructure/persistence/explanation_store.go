package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playtaste/playtaste/domain/recommendation"
	"github.com/playtaste/playtaste/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExplanationStore implements recommendation.ExplanationStore using GORM.
type ExplanationStore struct {
	db     database.Database
	mapper ExplanationMapper
}

// NewExplanationStore creates a new ExplanationStore.
func NewExplanationStore(db database.Database) ExplanationStore {
	return ExplanationStore{
		db:     db,
		mapper: ExplanationMapper{},
	}
}

// GetByLocale retrieves the stored explanation for one (recommendation,
// locale) pair.
func (s ExplanationStore) GetByLocale(ctx context.Context, recommendationID int64, locale string) (recommendation.Explanation, error) {
	var model ExplanationModel
	result := s.db.Session(ctx).
		Where("recommendation_id = ? AND locale = ?", recommendationID, locale).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return recommendation.Explanation{}, fmt.Errorf(
				"%w: explanation for recommendation %d locale %s",
				database.ErrNotFound, recommendationID, locale,
			)
		}
		return recommendation.Explanation{}, fmt.Errorf("get explanation: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// Save inserts an explanation. Concurrent writers racing on the same
// (recommendation, locale) pair resolve to one row: the insert is a
// conflict no-op and the stored row is re-read and returned, so a race
// loser always observes the winner's text.
func (s ExplanationStore) Save(ctx context.Context, exp recommendation.Explanation) (recommendation.Explanation, error) {
	model := s.mapper.ToModel(exp)
	now := time.Now()
	model.CreatedAt = now
	model.UpdatedAt = now

	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recommendation_id"}, {Name: "locale"}},
		DoNothing: true,
	}).Create(&model)
	if result.Error != nil {
		return recommendation.Explanation{}, fmt.Errorf("save explanation: %w", result.Error)
	}

	return s.GetByLocale(ctx, exp.RecommendationID(), exp.Locale())
}
