package recommendation

import "context"

// Store defines the interface for Recommendation persistence
// operations.
type Store interface {
	// Get retrieves a recommendation by ID.
	Get(ctx context.Context, id int64) (Recommendation, error)

	// FindByRequest retrieves a request's recommendations ordered by
	// rank ascending.
	FindByRequest(ctx context.Context, searchRequestID int64) ([]Recommendation, error)

	// SaveBulk inserts a batch of recommendations in one statement.
	SaveBulk(ctx context.Context, recs []Recommendation) ([]Recommendation, error)
}

// ExplanationStore defines the interface for Explanation persistence
// operations.
type ExplanationStore interface {
	// GetByLocale retrieves the stored explanation for one
	// (recommendation, locale) pair.
	GetByLocale(ctx context.Context, recommendationID int64, locale string) (Explanation, error)

	// Save inserts an explanation. When a row already exists for the
	// same (recommendation, locale), the existing row wins and is
	// returned unchanged.
	Save(ctx context.Context, exp Explanation) (Explanation, error)
}
