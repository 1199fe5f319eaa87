package request

import (
	"context"

	"github.com/playtaste/playtaste/domain/repository"
)

// Store defines the interface for SearchRequest persistence operations.
type Store interface {
	// Get retrieves a request by ID.
	Get(ctx context.Context, id int64) (SearchRequest, error)

	// GetByPublicToken retrieves a request by its share token,
	// regardless of owner.
	GetByPublicToken(ctx context.Context, token string) (SearchRequest, error)

	// GetByFingerprint retrieves a user's request with the given
	// fingerprint, if any.
	GetByFingerprint(ctx context.Context, userID, fingerprint string) (SearchRequest, error)

	// FindByUser retrieves a user's requests newest-first, with
	// pagination via options.
	FindByUser(ctx context.Context, userID string, options ...repository.Option) ([]SearchRequest, error)

	// CountByUser returns the total number of requests a user owns.
	CountByUser(ctx context.Context, userID string) (int64, error)

	// Save creates a new request or updates an existing one.
	Save(ctx context.Context, req SearchRequest) (SearchRequest, error)
}
