package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/playtaste/playtaste"
	"github.com/playtaste/playtaste/application/service"
	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/domain/recommendation"
	"github.com/playtaste/playtaste/infrastructure/api/jsonapi"
	"github.com/playtaste/playtaste/infrastructure/api/middleware"
)

// ShareRouter serves the unauthenticated share-token view of a request.
type ShareRouter struct {
	client     *playtaste.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewShareRouter creates a new ShareRouter.
func NewShareRouter(client *playtaste.Client) *ShareRouter {
	return &ShareRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for share endpoints.
func (r *ShareRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{token}", r.Get)
	router.Get("/{token}/recommendations", r.ListRecommendations)
	router.Get("/{token}/recommendations/{rec_id}", r.GetRecommendation)
	router.Get("/{token}/recommendations/{rec_id}/explanation", r.GetExplanation)

	return router
}

// Get handles GET /api/v1/share/{token}.
// The seed games ride along so the viewer can see what the picks were
// based on.
func (r *ShareRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	shared, err := r.client.Requests.GetShared(ctx, chi.URLParam(req, "token"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	games, err := gamesByAppID(ctx, r.client.Catalog, shared.Recommendations)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewSingleResponse(r.serializer.SearchRequestResource(shared.Request))
	for _, res := range r.serializer.RecommendationResources(shared.Recommendations, games) {
		doc.Included = append(doc.Included, res)
	}
	for _, res := range r.serializer.GameResources(shared.SeedGames) {
		doc.Included = append(doc.Included, res)
	}
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// ListRecommendations handles GET /api/v1/share/{token}/recommendations.
func (r *ShareRouter) ListRecommendations(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	shared, err := r.sharedRequest(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	games, err := gamesByAppID(ctx, r.client.Catalog, shared.Recommendations)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.RecommendationResources(shared.Recommendations, games))
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// GetRecommendation handles GET /api/v1/share/{token}/recommendations/{rec_id}.
func (r *ShareRouter) GetRecommendation(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	shared, err := r.sharedRequest(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	rec, err := findRecommendation(req, shared.Recommendations)
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

// GetExplanation handles GET /api/v1/share/{token}/recommendations/{rec_id}/explanation.
func (r *ShareRouter) GetExplanation(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	shared, err := r.sharedRequest(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	rec, err := findRecommendation(req, shared.Recommendations)
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

func (r *ShareRouter) sharedRequest(req *http.Request) (service.SharedRequest, error) {
	return r.client.Requests.GetShared(req.Context(), chi.URLParam(req, "token"))
}
