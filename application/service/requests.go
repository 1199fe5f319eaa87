package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/domain/recommendation"
	"github.com/playtaste/playtaste/domain/repository"
	"github.com/playtaste/playtaste/domain/request"
	"github.com/playtaste/playtaste/domain/seed"
	"github.com/playtaste/playtaste/domain/task"
	"github.com/playtaste/playtaste/infrastructure/provider"
	"github.com/playtaste/playtaste/internal/database"
)

// Insights paging: defaults when the caller omits the values, and a
// hard ceiling on page size.
const (
	defaultInsightsTake = 10
	defaultInsightsPage = 1
	maxInsightsTake     = 50
)

// RequestCreateParams configures a recommendation request.
type RequestCreateParams struct {
	// Name labels the request; a name is derived from the seeds when
	// empty.
	Name string

	// Filters are forwarded to the taste graph after normalization:
	// tag_ids, exclude_tag_ids, take, page.
	Filters map[string]any

	// Locale selects the language for prefetched explanations.
	// Unsupported or empty values skip prefetching.
	Locale string
}

// RequestWithRecommendations pairs a request with its ranked results.
type RequestWithRecommendations struct {
	Request         request.SearchRequest
	Recommendations []recommendation.Recommendation
}

// SharedRequest is the unauthenticated share-token view of a request.
// It carries the seed games so the viewer can see what the picks were
// based on.
type SharedRequest struct {
	Request         request.SearchRequest
	Recommendations []recommendation.Recommendation
	SeedGames       []catalog.Game
}

// RequestListParams configures request listing.
type RequestListParams struct {
	Limit  int
	Offset int
}

// Requests runs the recommendation pipeline and serves stored requests.
type Requests struct {
	requests request.Store
	recs     recommendation.Store
	seeds    seed.Store
	catalog  *Catalog
	graph    TasteGraph
	queue    *Queue
	logger   *slog.Logger
}

// NewRequests creates a new Requests service.
func NewRequests(
	requests request.Store,
	recs recommendation.Store,
	seeds seed.Store,
	catalog *Catalog,
	graph TasteGraph,
	queue *Queue,
	logger *slog.Logger,
) *Requests {
	return &Requests{
		requests: requests,
		recs:     recs,
		seeds:    seeds,
		catalog:  catalog,
		graph:    graph,
		queue:    queue,
		logger:   logger,
	}
}

// Create runs the full pipeline for a user: resolve seeds, dedup by
// fingerprint, fetch candidates, filter and rank them, and persist the
// request with its recommendations. An identical earlier request is
// returned as-is without calling the taste graph.
func (s *Requests) Create(ctx context.Context, userID string, params RequestCreateParams) (RequestWithRecommendations, error) {
	rawFilters := params.Filters
	if rawFilters == nil {
		rawFilters = map[string]any{}
	}

	seedGames, entityIDs, err := s.resolveSeeds(ctx, userID)
	if err != nil {
		return RequestWithRecommendations{}, err
	}

	// The fingerprint covers the filters exactly as the caller sent
	// them; normalization must not change a request's identity.
	fingerprint := request.Fingerprint(entityIDs, rawFilters)
	if existing, err := s.requests.GetByFingerprint(ctx, userID, fingerprint); err == nil {
		return s.withRecommendations(ctx, existing)
	} else if !errors.Is(err, database.ErrNotFound) {
		return RequestWithRecommendations{}, fmt.Errorf("dedup lookup: %w", err)
	}

	query := normalizeFilters(rawFilters)
	query.EntityIDs = entityIDs

	candidates, err := s.graph.Insights(ctx, query)
	if err != nil {
		return RequestWithRecommendations{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	kept, err := s.filterCandidates(ctx, seedGames, candidates)
	if err != nil {
		return RequestWithRecommendations{}, err
	}

	name := params.Name
	if name == "" {
		name = request.AutoName(seedNames(seedGames))
	}

	req := request.NewSearchRequest(userID, entityIDs, rawFilters, name)
	saved, err := s.requests.Save(ctx, req)
	if err != nil {
		// A concurrent identical request may have won the unique
		// (user, fingerprint) index; the loser serves the winner's row.
		if existing, ferr := s.requests.GetByFingerprint(ctx, userID, fingerprint); ferr == nil {
			return s.withRecommendations(ctx, existing)
		}
		return RequestWithRecommendations{}, fmt.Errorf("save request: %w", err)
	}

	recs := make([]recommendation.Recommendation, len(kept))
	for i, c := range kept {
		recs[i] = recommendation.NewRecommendation(
			saved.ID(), c.appID, i+1, c.affinity, c.raw, c.weights,
		)
	}

	savedRecs, err := s.recs.SaveBulk(ctx, recs)
	if err != nil {
		return RequestWithRecommendations{}, fmt.Errorf("save recommendations: %w", err)
	}

	s.logger.Info("request created",
		slog.String("user_id", userID),
		slog.Int64("request_id", saved.ID()),
		slog.Int("recommendations", len(savedRecs)),
	)

	s.prefetchExplanations(ctx, savedRecs, params.Locale)

	return RequestWithRecommendations{Request: saved, Recommendations: savedRecs}, nil
}

// List returns a user's requests, newest first, plus the total count.
func (s *Requests) List(ctx context.Context, userID string, params RequestListParams) ([]request.SearchRequest, int64, error) {
	var options []repository.Option
	if params.Limit > 0 {
		options = repository.WithPagination(params.Limit, params.Offset)
	}

	requests, err := s.requests.FindByUser(ctx, userID, options...)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.requests.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Get retrieves one of the user's requests with its recommendations.
func (s *Requests) Get(ctx context.Context, userID string, id int64) (RequestWithRecommendations, error) {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return RequestWithRecommendations{}, fmt.Errorf("%w: request %d", ErrNotFound, id)
		}
		return RequestWithRecommendations{}, err
	}
	// A foreign request is indistinguishable from a missing one.
	if req.UserID() != userID {
		return RequestWithRecommendations{}, fmt.Errorf("%w: request %d", ErrNotFound, id)
	}
	return s.withRecommendations(ctx, req)
}

// GetShared retrieves a request by its public share token. No identity
// is required; the token itself is the capability.
func (s *Requests) GetShared(ctx context.Context, token string) (SharedRequest, error) {
	req, err := s.requests.GetByPublicToken(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return SharedRequest{}, fmt.Errorf("%w: share token", ErrNotFound)
		}
		return SharedRequest{}, err
	}

	recs, err := s.recs.FindByRequest(ctx, req.ID())
	if err != nil {
		return SharedRequest{}, err
	}

	seedGames, err := s.catalog.games.FindByEntityIDs(ctx, req.SeedEntityIDs())
	if err != nil {
		return SharedRequest{}, err
	}

	return SharedRequest{Request: req, Recommendations: recs, SeedGames: seedGames}, nil
}

// Rename updates the label of one of the user's requests.
func (s *Requests) Rename(ctx context.Context, userID string, id int64, name string) (request.SearchRequest, error) {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return request.SearchRequest{}, fmt.Errorf("%w: request %d", ErrNotFound, id)
		}
		return request.SearchRequest{}, err
	}
	if req.UserID() != userID {
		return request.SearchRequest{}, fmt.Errorf("%w: request %d", ErrNotFound, id)
	}

	return s.requests.Save(ctx, req.WithName(name))
}

// --- pipeline stages ---

// resolveSeeds loads the user's seeds and the catalog rows behind
// them, keeping only games with a taste-graph mapping.
func (s *Requests) resolveSeeds(ctx context.Context, userID string) ([]catalog.Game, []string, error) {
	seeds, err := s.seeds.FindByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("find seeds: %w", err)
	}

	appIDs := make([]int64, len(seeds))
	for i, sd := range seeds {
		appIDs[i] = sd.AppID()
	}

	games, err := s.catalog.FindByAppIDs(ctx, appIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("find seed games: %w", err)
	}

	byApp := make(map[int64]catalog.Game, len(games))
	for _, g := range games {
		byApp[g.AppID()] = g
	}

	// Preserve seed order (most recently used first).
	var ordered []catalog.Game
	var entityIDs []string
	for _, sd := range seeds {
		g, ok := byApp[sd.AppID()]
		if !ok || !g.HasEntity() {
			continue
		}
		ordered = append(ordered, g)
		entityIDs = append(entityIDs, g.EntityID())
	}

	if len(entityIDs) == 0 {
		return nil, nil, ErrInsufficientSeeds
	}
	return ordered, entityIDs, nil
}

// rankedCandidate is a pipeline-internal candidate that survived
// filtering, with its explainability keys translated to game names.
type rankedCandidate struct {
	appID    int64
	affinity float64
	weights  map[string]float64
	raw      []byte
}

// filterCandidates applies self-exclusion, catalog sanity checks and
// explainability translation, keeping at most MaxPerRequest candidates.
func (s *Requests) filterCandidates(
	ctx context.Context,
	seedGames []catalog.Game,
	candidates []provider.Candidate,
) ([]rankedCandidate, error) {
	seedApps := make(map[int64]struct{}, len(seedGames))
	for _, g := range seedGames {
		seedApps[g.AppID()] = struct{}{}
	}

	var appIDs []int64
	var entityKeys []string
	for _, c := range candidates {
		if c.SteamAppID != 0 {
			appIDs = append(appIDs, c.SteamAppID)
		}
		for k := range c.Explainability {
			entityKeys = append(entityKeys, k)
		}
	}

	catalogued, err := s.catalog.FindByAppIDs(ctx, appIDs)
	if err != nil {
		return nil, fmt.Errorf("catalog check: %w", err)
	}
	known := make(map[int64]struct{}, len(catalogued))
	for _, g := range catalogued {
		known[g.AppID()] = struct{}{}
	}

	names, err := s.catalog.NamesByEntityIDs(ctx, entityKeys)
	if err != nil {
		return nil, fmt.Errorf("translate explainability: %w", err)
	}

	var kept []rankedCandidate
	for _, c := range candidates {
		if c.SteamAppID == 0 {
			continue
		}
		if _, isSeed := seedApps[c.SteamAppID]; isSeed {
			continue
		}
		if _, ok := known[c.SteamAppID]; !ok {
			continue
		}

		weights := translateWeights(c.Explainability, names)
		if len(weights) == 0 {
			continue
		}

		kept = append(kept, rankedCandidate{
			appID:    c.SteamAppID,
			affinity: c.Affinity,
			weights:  weights,
			raw:      c.Raw,
		})
		if len(kept) == recommendation.MaxPerRequest {
			break
		}
	}
	return kept, nil
}

// translateWeights rewrites entity-ID keys to game names, dropping
// keys the catalog cannot resolve.
func translateWeights(weights map[string]float64, names map[string]string) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for entityID, w := range weights {
		name, ok := names[strings.ToLower(entityID)]
		if !ok {
			continue
		}
		out[name] = w
	}
	return out
}

// normalizeFilters applies defaults, caps the page size, and
// intersects tag filters with the fixed taxonomy whitelist. The
// caller's map is left untouched.
func normalizeFilters(filters map[string]any) provider.InsightsQuery {
	take := positiveInt(filters["take"], defaultInsightsTake)
	if take > maxInsightsTake {
		take = maxInsightsTake
	}
	return provider.InsightsQuery{
		TagIDs:        provider.FilterTags(stringList(filters["tag_ids"])),
		ExcludeTagIDs: provider.FilterTags(stringList(filters["exclude_tag_ids"])),
		Take:          take,
		Page:          positiveInt(filters["page"], defaultInsightsPage),
	}
}

// stringList coerces a filter value into a string slice. JSON decoding
// yields []any; typed slices are accepted for direct library callers.
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// positiveInt coerces a filter value into a positive int, falling back
// to the default.
func positiveInt(v any, fallback int) int {
	var n int
	switch num := v.(type) {
	case int:
		n = num
	case int64:
		n = int(num)
	case float64:
		n = int(num)
	default:
		return fallback
	}
	if n <= 0 {
		return fallback
	}
	return n
}

func seedNames(games []catalog.Game) []string {
	names := make([]string, len(games))
	for i, g := range games {
		names[i] = g.Name()
	}
	return names
}

func (s *Requests) withRecommendations(ctx context.Context, req request.SearchRequest) (RequestWithRecommendations, error) {
	recs, err := s.recs.FindByRequest(ctx, req.ID())
	if err != nil {
		return RequestWithRecommendations{}, fmt.Errorf("find recommendations: %w", err)
	}
	return RequestWithRecommendations{Request: req, Recommendations: recs}, nil
}

// prefetchExplanations queues background explanation generation for
// fresh recommendations. Best effort; failures only log.
func (s *Requests) prefetchExplanations(ctx context.Context, recs []recommendation.Recommendation, locale string) {
	if !recommendation.IsSupportedLocale(locale) {
		return
	}
	for _, rec := range recs {
		t := task.NewTask(task.OperationPrefetchExplanation, int(task.PriorityBackground), map[string]any{
			"recommendation_id": rec.ID(),
			"locale":            locale,
		})
		if err := s.queue.Enqueue(ctx, t); err != nil {
			s.logger.Warn("failed to enqueue explanation prefetch",
				slog.Int64("recommendation_id", rec.ID()),
				slog.String("error", err.Error()),
			)
		}
	}
}
