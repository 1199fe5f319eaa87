package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/playtaste/playtaste"
	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/domain/seed"
	"github.com/playtaste/playtaste/infrastructure/api/jsonapi"
	"github.com/playtaste/playtaste/infrastructure/api/middleware"
	"github.com/playtaste/playtaste/infrastructure/api/v1/dto"
)

// SeedsRouter handles seed game API endpoints.
type SeedsRouter struct {
	client     *playtaste.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewSeedsRouter creates a new SeedsRouter.
func NewSeedsRouter(client *playtaste.Client) *SeedsRouter {
	return &SeedsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for seed endpoints.
func (r *SeedsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Add)
	router.Put("/{app_id}", r.Touch)
	router.Delete("/{app_id}", r.Remove)

	return router
}

// List handles GET /api/v1/seeds, most recently seen first.
func (r *SeedsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	userID, ok := middleware.UserID(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("missing user identity"), r.logger)
		return
	}

	seeds, err := r.client.Seeds.List(ctx, userID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	games, err := r.seedGames(req, seeds)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.SeedResources(seeds, games)))
}

// Add handles POST /api/v1/seeds.
func (r *SeedsRouter) Add(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	userID, ok := middleware.UserID(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("missing user identity"), r.logger)
		return
	}

	var body dto.SeedCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}
	if body.Data.Attributes.AppID <= 0 {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "app_id is required", nil), r.logger)
		return
	}

	added, err := r.client.Seeds.Add(ctx, userID, body.Data.Attributes.AppID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	games, err := r.seedGames(req, []seed.Seed{added})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var game *catalog.Game
	if g, ok := games[added.AppID()]; ok {
		game = &g
	}
	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.SeedResource(added, game)))
}

// Touch handles PUT /api/v1/seeds/{app_id}. It bumps the hit counter
// and refreshes last_seen.
func (r *SeedsRouter) Touch(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	userID, ok := middleware.UserID(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("missing user identity"), r.logger)
		return
	}

	appID, err := pathID(req, "app_id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	touched, err := r.client.Seeds.Touch(ctx, userID, appID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.SeedResource(touched, nil)))
}

// Remove handles DELETE /api/v1/seeds/{app_id}.
func (r *SeedsRouter) Remove(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	userID, ok := middleware.UserID(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("missing user identity"), r.logger)
		return
	}

	appID, err := pathID(req, "app_id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Seeds.Remove(ctx, userID, appID); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (r *SeedsRouter) seedGames(req *http.Request, seeds []seed.Seed) (map[int64]catalog.Game, error) {
	if len(seeds) == 0 {
		return map[int64]catalog.Game{}, nil
	}
	appIDs := make([]int64, 0, len(seeds))
	for _, sd := range seeds {
		appIDs = append(appIDs, sd.AppID())
	}
	games, err := r.client.Catalog.FindByAppIDs(req.Context(), appIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]catalog.Game, len(games))
	for _, g := range games {
		byID[g.AppID()] = g
	}
	return byID, nil
}
