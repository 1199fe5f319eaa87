package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/domain/repository"
	"github.com/playtaste/playtaste/internal/database"
)

// GameStore implements catalog.GameStore using GORM.
type GameStore struct {
	database.Repository[catalog.Game, GameModel]
	db database.Database
}

// NewGameStore creates a new GameStore.
func NewGameStore(db database.Database) GameStore {
	return GameStore{
		Repository: database.NewRepository[catalog.Game, GameModel](db, GameMapper{}, "game"),
		db:         db,
	}
}

// Get retrieves a game by its store app ID.
func (s GameStore) Get(ctx context.Context, appID int64) (catalog.Game, error) {
	return s.FindOne(ctx, repository.WithCondition("app_id", appID))
}

// FindByAppIDs retrieves the games whose app IDs appear in the set.
func (s GameStore) FindByAppIDs(ctx context.Context, appIDs []int64) ([]catalog.Game, error) {
	if len(appIDs) == 0 {
		return []catalog.Game{}, nil
	}
	return s.Find(ctx, repository.WithConditionIn("app_id", appIDs))
}

// FindByEntityIDs retrieves the games mapped to the given taste-graph
// entity IDs, matched case-insensitively.
func (s GameStore) FindByEntityIDs(ctx context.Context, entityIDs []string) ([]catalog.Game, error) {
	if len(entityIDs) == 0 {
		return []catalog.Game{}, nil
	}

	lowered := make([]string, len(entityIDs))
	for i, id := range entityIDs {
		lowered[i] = strings.ToLower(id)
	}

	var models []GameModel
	result := s.db.Session(ctx).
		Where("LOWER(qloo_entity) IN ?", lowered).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("find games by entity: %w", result.Error)
	}

	games := make([]catalog.Game, len(models))
	for i, model := range models {
		games[i] = s.Mapper().ToDomain(model)
	}
	return games, nil
}

// Search retrieves games matching a name substring plus optional filter
// conditions applied via options.
func (s GameStore) Search(ctx context.Context, name string, options ...repository.Option) ([]catalog.Game, error) {
	var models []GameModel
	db := gameSearchQuery(name, options...).Apply(s.db.Session(ctx).Model(&GameModel{}))
	db = database.ApplyOptions(db, options...)

	if result := db.Find(&models); result.Error != nil {
		return nil, fmt.Errorf("search games: %w", result.Error)
	}

	games := make([]catalog.Game, len(models))
	for i, model := range models {
		games[i] = s.Mapper().ToDomain(model)
	}
	return games, nil
}

// CountSearch returns how many games a Search with the same arguments
// would match, ignoring pagination.
func (s GameStore) CountSearch(ctx context.Context, name string, options ...repository.Option) (int64, error) {
	db := gameSearchQuery(name, options...).Apply(s.db.Session(ctx).Model(&GameModel{}))
	db = database.ApplyConditions(db, options...)

	var count int64
	if result := db.Count(&count); result.Error != nil {
		return 0, fmt.Errorf("count games: %w", result.Error)
	}
	return count, nil
}

// gameSearchQuery translates the name substring and catalog-specific
// query params into filter conditions.
func gameSearchQuery(name string, options ...repository.Option) database.Query {
	q := database.NewQuery()
	if name != "" {
		q = q.Like("LOWER(name)", "%"+strings.ToLower(name)+"%")
	}
	if v, ok := repository.Build(options...).Param("max_age"); ok {
		q = q.LessThanOrEqual("required_age", v)
	}
	return q
}

// Save creates a new game or updates an existing one.
func (s GameStore) Save(ctx context.Context, game catalog.Game) (catalog.Game, error) {
	model := s.Mapper().ToModel(game)
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now

	if err := s.db.Session(ctx).Save(&model).Error; err != nil {
		return catalog.Game{}, fmt.Errorf("save game: %w", err)
	}
	return s.Mapper().ToDomain(model), nil
}
