package seed

import "context"

// Store defines the interface for Seed persistence operations.
type Store interface {
	// Get retrieves a seed by its composite key.
	Get(ctx context.Context, userID string, appID int64) (Seed, error)

	// FindByUser retrieves a user's seeds ordered by last_seen descending.
	FindByUser(ctx context.Context, userID string) ([]Seed, error)

	// CountByUser returns the number of seeds a user holds.
	CountByUser(ctx context.Context, userID string) (int64, error)

	// Save creates a seed or updates an existing one in place.
	Save(ctx context.Context, seed Seed) (Seed, error)

	// Delete removes a seed.
	Delete(ctx context.Context, userID string, appID int64) error
}
