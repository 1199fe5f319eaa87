package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playtaste/playtaste/domain/recommendation"
	"github.com/playtaste/playtaste/internal/database"
	"gorm.io/gorm"
)

// RecommendationStore implements recommendation.Store using GORM.
type RecommendationStore struct {
	db     database.Database
	mapper RecommendationMapper
}

// NewRecommendationStore creates a new RecommendationStore.
func NewRecommendationStore(db database.Database) RecommendationStore {
	return RecommendationStore{
		db:     db,
		mapper: RecommendationMapper{},
	}
}

// Get retrieves a recommendation by ID.
func (s RecommendationStore) Get(ctx context.Context, id int64) (recommendation.Recommendation, error) {
	var model RecommendationModel
	result := s.db.Session(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return recommendation.Recommendation{}, fmt.Errorf("%w: recommendation id %d", database.ErrNotFound, id)
		}
		return recommendation.Recommendation{}, fmt.Errorf("get recommendation: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// FindByRequest retrieves a request's recommendations ordered by rank.
func (s RecommendationStore) FindByRequest(ctx context.Context, searchRequestID int64) ([]recommendation.Recommendation, error) {
	var models []RecommendationModel
	result := s.db.Session(ctx).
		Where("search_request_id = ?", searchRequestID).
		Order("rank ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("find recommendations: %w", result.Error)
	}

	recs := make([]recommendation.Recommendation, len(models))
	for i, model := range models {
		recs[i] = s.mapper.ToDomain(model)
	}
	return recs, nil
}

// SaveBulk inserts a batch of recommendations in one statement.
func (s RecommendationStore) SaveBulk(ctx context.Context, recs []recommendation.Recommendation) ([]recommendation.Recommendation, error) {
	if len(recs) == 0 {
		return []recommendation.Recommendation{}, nil
	}

	now := time.Now()
	models := make([]RecommendationModel, len(recs))
	for i, rec := range recs {
		models[i] = s.mapper.ToModel(rec)
		models[i].CreatedAt = now
		models[i].UpdatedAt = now
	}

	if err := s.db.Session(ctx).Create(&models).Error; err != nil {
		return nil, fmt.Errorf("save recommendations bulk: %w", err)
	}

	saved := make([]recommendation.Recommendation, len(models))
	for i, model := range models {
		saved[i] = s.mapper.ToDomain(model)
	}
	return saved, nil
}
