// Package v1 provides the v1 API routes.
package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/playtaste/playtaste"
	"github.com/playtaste/playtaste/application/service"
	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/domain/recommendation"
	"github.com/playtaste/playtaste/infrastructure/api/jsonapi"
	"github.com/playtaste/playtaste/infrastructure/api/middleware"
	"github.com/playtaste/playtaste/infrastructure/api/v1/dto"
)

// RequestsRouter handles search request API endpoints, including the
// nested recommendation and explanation routes.
type RequestsRouter struct {
	client     *playtaste.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewRequestsRouter creates a new RequestsRouter.
func NewRequestsRouter(client *playtaste.Client) *RequestsRouter {
	return &RequestsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for search request endpoints.
func (r *RequestsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Patch("/{id}", r.Rename)
	router.Get("/{id}/recommendations", r.ListRecommendations)
	router.Get("/{id}/recommendations/{rec_id}", r.GetRecommendation)
	router.Get("/{id}/recommendations/{rec_id}/explanation", r.GetExplanation)

	return router
}

// List handles GET /api/v1/requests.
func (r *RequestsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	userID, ok := middleware.UserID(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("missing user identity"), r.logger)
		return
	}
	pagination := ParsePagination(req)

	requests, total, err := r.client.Requests.List(ctx, userID, service.RequestListParams{
		Limit:  pagination.Limit(),
		Offset: pagination.Offset(),
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.SearchRequestResources(requests))
	doc.Meta = PaginationMeta(pagination, total)
	doc.Links = PaginationLinks(req, pagination, total)
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// Create handles POST /api/v1/requests.
func (r *RequestsRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	userID, ok := middleware.UserID(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("missing user identity"), r.logger)
		return
	}

	var body dto.SearchRequestCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}

	result, err := r.client.Requests.Create(ctx, userID, service.RequestCreateParams{
		Name:    body.Data.Attributes.Name,
		Filters: body.Data.Attributes.Filters,
		Locale:  body.Data.Attributes.Locale,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc, err := r.requestDocument(ctx, result.Request.ID(), result.Recommendations)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	doc.Data = r.serializer.SearchRequestResource(result.Request)
	middleware.WriteJSON(w, http.StatusCreated, doc)
}

// Get handles GET /api/v1/requests/{id}.
func (r *RequestsRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	userID, ok := middleware.UserID(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("missing user identity"), r.logger)
		return
	}

	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	result, err := r.client.Requests.Get(ctx, userID, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc, err := r.requestDocument(ctx, id, result.Recommendations)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	doc.Data = r.serializer.SearchRequestResource(result.Request)
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// Rename handles PATCH /api/v1/requests/{id}.
func (r *RequestsRouter) Rename(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	userID, ok := middleware.UserID(ctx)
	if !ok {
		middleware.WriteError(w, req, middleware.NewAuthenticationError("missing user identity"), r.logger)
		return
	}

	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.SearchRequestRenameRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}
	if body.Data.Attributes.Name == "" {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "name is required", nil), r.logger)
		return
	}

	renamed, err := r.client.Requests.Rename(ctx, userID, id, body.Data.Attributes.Name)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.SearchRequestResource(renamed)))
}

// ListRecommendations handles GET /api/v1/requests/{id}/recommendations.
func (r *RequestsRouter) ListRecommendations(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	result, err := r.ownedRequest(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	games, err := gamesByAppID(ctx, r.client.Catalog, result.Recommendations)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.RecommendationResources(result.Recommendations, games))
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// GetRecommendation handles GET /api/v1/requests/{id}/recommendations/{rec_id}.
func (r *RequestsRouter) GetRecommendation(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	result, err := r.ownedRequest(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	rec, err := findRecommendation(req, result.Recommendations)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	games, err := gamesByAppID(ctx, r.client.Catalog, []recommendation.Recommendation{rec})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var game *catalog.Game
	if g, ok := games[rec.AppID()]; ok {
		game = &g
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.RecommendationResource(rec, game)))
}

// GetExplanation handles GET /api/v1/requests/{id}/recommendations/{rec_id}/explanation.
func (r *RequestsRouter) GetExplanation(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	result, err := r.ownedRequest(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	rec, err := findRecommendation(req, result.Recommendations)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	explanation, err := r.client.Explanations.GetOrGenerate(ctx, rec.ID(), localeParam(req))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.ExplanationResource(explanation)))
}

// ownedRequest loads the request named by the path, scoped to the caller.
func (r *RequestsRouter) ownedRequest(req *http.Request) (service.RequestWithRecommendations, error) {
	userID, ok := middleware.UserID(req.Context())
	if !ok {
		return service.RequestWithRecommendations{}, middleware.NewAuthenticationError("missing user identity")
	}
	id, err := pathID(req, "id")
	if err != nil {
		return service.RequestWithRecommendations{}, err
	}
	return r.client.Requests.Get(req.Context(), userID, id)
}

// requestDocument builds the recommendations list with embedded catalog
// rows as the document's included section.
func (r *RequestsRouter) requestDocument(ctx context.Context, requestID int64, recs []recommendation.Recommendation) (*jsonapi.Document, error) {
	games, err := gamesByAppID(ctx, r.client.Catalog, recs)
	if err != nil {
		return nil, err
	}

	doc := &jsonapi.Document{}
	for _, res := range r.serializer.RecommendationResources(recs, games) {
		doc.Included = append(doc.Included, res)
	}
	return doc, nil
}

// pathID parses an int64 path parameter.
func pathID(req *http.Request, name string) (int64, error) {
	raw := chi.URLParam(req, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, middleware.NewAPIError(http.StatusBadRequest, "invalid id", err)
	}
	return id, nil
}

// localeParam returns the locale query parameter, defaulting to English.
func localeParam(req *http.Request) string {
	if locale := req.URL.Query().Get("locale"); locale != "" {
		return locale
	}
	return "en"
}

// findRecommendation picks the recommendation named by the rec_id path
// parameter out of a request's recommendation set.
func findRecommendation(req *http.Request, recs []recommendation.Recommendation) (recommendation.Recommendation, error) {
	id, err := pathID(req, "rec_id")
	if err != nil {
		return recommendation.Recommendation{}, err
	}
	for _, rec := range recs {
		if rec.ID() == id {
			return rec, nil
		}
	}
	return recommendation.Recommendation{}, service.ErrNotFound
}

// gamesByAppID loads the catalog rows referenced by a recommendation set.
func gamesByAppID(ctx context.Context, cat *service.Catalog, recs []recommendation.Recommendation) (map[int64]catalog.Game, error) {
	if len(recs) == 0 {
		return map[int64]catalog.Game{}, nil
	}
	appIDs := make([]int64, 0, len(recs))
	for _, rec := range recs {
		appIDs = append(appIDs, rec.AppID())
	}
	games, err := cat.FindByAppIDs(ctx, appIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]catalog.Game, len(games))
	for _, g := range games {
		byID[g.AppID()] = g
	}
	return byID, nil
}
