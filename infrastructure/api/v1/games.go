package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/playtaste/playtaste"
	"github.com/playtaste/playtaste/application/service"
	"github.com/playtaste/playtaste/infrastructure/api/jsonapi"
	"github.com/playtaste/playtaste/infrastructure/api/middleware"
)

// GamesRouter handles catalog search API endpoints.
type GamesRouter struct {
	client     *playtaste.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewGamesRouter creates a new GamesRouter.
func NewGamesRouter(client *playtaste.Client) *GamesRouter {
	return &GamesRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for catalog endpoints.
func (r *GamesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.Search)
	router.Get("/{app_id}", r.Get)

	return router
}

// Search handles GET /api/v1/games.
// Supported query parameters: q, platform, max_age, released, page, page_size.
func (r *GamesRouter) Search(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pagination := ParsePagination(req)
	// The catalog caps page sizes below the API-wide maximum.
	if pagination.PageSize() > service.MaxCatalogPageSize {
		pagination = pagination.WithPageSize(service.MaxCatalogPageSize)
	}
	query := req.URL.Query()

	params := service.CatalogSearchParams{
		Query:    query.Get("q"),
		Limit:    pagination.Limit(),
		Offset:   pagination.Offset(),
		Platform: query.Get("platform"),
	}
	if raw := query.Get("max_age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid max_age", err), r.logger)
			return
		}
		params.MaxAge = &age
	}
	if raw := query.Get("released"); raw != "" {
		released, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid released flag", err), r.logger)
			return
		}
		params.Released = &released
	}

	games, total, err := r.client.Catalog.Search(ctx, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.GameResources(games))
	doc.Meta = PaginationMeta(pagination, total)
	doc.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// Get handles GET /api/v1/games/{app_id}.
func (r *GamesRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	appID, err := pathID(req, "app_id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	game, err := r.client.Catalog.Get(ctx, appID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.GameResource(game)))
}
