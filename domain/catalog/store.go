package catalog

import (
	"context"

	"github.com/playtaste/playtaste/domain/repository"
)

// GameStore defines the interface for Game persistence operations.
type GameStore interface {
	// Get retrieves a game by its store app ID.
	Get(ctx context.Context, appID int64) (Game, error)

	// FindByAppIDs retrieves the games whose app IDs appear in the
	// given set. Missing IDs are silently absent from the result.
	FindByAppIDs(ctx context.Context, appIDs []int64) ([]Game, error)

	// FindByEntityIDs retrieves the games mapped to the given
	// taste-graph entity IDs. Matching is case-insensitive.
	FindByEntityIDs(ctx context.Context, entityIDs []string) ([]Game, error)

	// Search retrieves games matching a name substring plus optional
	// filter conditions, with ordering and pagination via options.
	Search(ctx context.Context, name string, options ...repository.Option) ([]Game, error)

	// CountSearch returns the total number of games a Search with the
	// same arguments would match, ignoring pagination.
	CountSearch(ctx context.Context, name string, options ...repository.Option) (int64, error)

	// Save creates a new game or updates an existing one.
	Save(ctx context.Context, game Game) (Game, error)
}
