package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/playtaste/playtaste/domain/repository"
	"github.com/playtaste/playtaste/domain/request"
	"github.com/playtaste/playtaste/internal/database"
)

// RequestStore implements request.Store using GORM.
type RequestStore struct {
	database.Repository[request.SearchRequest, SearchRequestModel]
	db database.Database
}

// NewRequestStore creates a new RequestStore.
func NewRequestStore(db database.Database) RequestStore {
	return RequestStore{
		Repository: database.NewRepository[request.SearchRequest, SearchRequestModel](
			db, SearchRequestMapper{}, "search request",
		),
		db: db,
	}
}

// Get retrieves a request by ID.
func (s RequestStore) Get(ctx context.Context, id int64) (request.SearchRequest, error) {
	return s.FindOne(ctx, repository.WithID(id))
}

// GetByPublicToken retrieves a request by its share token.
func (s RequestStore) GetByPublicToken(ctx context.Context, token string) (request.SearchRequest, error) {
	return s.FindOne(ctx, repository.WithCondition("public_token", token))
}

// GetByFingerprint retrieves a user's request with the given fingerprint.
func (s RequestStore) GetByFingerprint(ctx context.Context, userID, fingerprint string) (request.SearchRequest, error) {
	return s.FindOne(ctx,
		repository.WithUserID(userID),
		repository.WithCondition("fingerprint", fingerprint),
	)
}

// FindByUser retrieves a user's requests newest-first.
func (s RequestStore) FindByUser(ctx context.Context, userID string, options ...repository.Option) ([]request.SearchRequest, error) {
	opts := append([]repository.Option{
		repository.WithUserID(userID),
		repository.WithOrderDesc("created_at"),
	}, options...)
	return s.Find(ctx, opts...)
}

// CountByUser returns the total number of requests a user owns.
func (s RequestStore) CountByUser(ctx context.Context, userID string) (int64, error) {
	return s.Count(ctx, repository.WithUserID(userID))
}

// Save creates a new request or updates an existing one.
func (s RequestStore) Save(ctx context.Context, req request.SearchRequest) (request.SearchRequest, error) {
	model := s.Mapper().ToModel(req)
	now := time.Now()

	if model.ID == 0 {
		model.CreatedAt = now
		model.UpdatedAt = now
		if err := s.db.Session(ctx).Create(&model).Error; err != nil {
			return request.SearchRequest{}, fmt.Errorf("create search request: %w", err)
		}
	} else {
		model.UpdatedAt = now
		if err := s.db.Session(ctx).Save(&model).Error; err != nil {
			return request.SearchRequest{}, fmt.Errorf("save search request: %w", err)
		}
	}

	return s.Mapper().ToDomain(model), nil
}
