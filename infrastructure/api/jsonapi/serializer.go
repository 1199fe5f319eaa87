package jsonapi

import (
	"fmt"
	"time"

	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/domain/recommendation"
	"github.com/playtaste/playtaste/domain/request"
	"github.com/playtaste/playtaste/domain/seed"
	"github.com/playtaste/playtaste/domain/task"
)

// SearchRequestAttributes represents search request attributes in JSON:API format.
type SearchRequestAttributes struct {
	Name        string         `json:"name"`
	Filters     map[string]any `json:"filters"`
	PublicToken string         `json:"public_token"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

// GameSummary carries the catalog fields embedded in recommendation payloads.
type GameSummary struct {
	AppID       int64  `json:"app_id"`
	Name        string `json:"name"`
	HeaderImage string `json:"header_image"`
}

// RecommendationAttributes represents recommendation attributes in JSON:API format.
type RecommendationAttributes struct {
	AppID          int64              `json:"app_id"`
	Rank           int                `json:"rank"`
	Score          float64            `json:"score"`
	Explainability map[string]float64 `json:"explainability"`
	Game           *GameSummary       `json:"game,omitempty"`
	CreatedAt      *time.Time         `json:"created_at,omitempty"`
}

// ExplanationAttributes represents explanation attributes in JSON:API format.
type ExplanationAttributes struct {
	RecommendationID int64      `json:"recommendation_id"`
	Locale           string     `json:"locale"`
	Text             string     `json:"text"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// GameAttributes represents catalog game attributes in JSON:API format.
type GameAttributes struct {
	AppID           int64  `json:"app_id"`
	Name            string `json:"name"`
	HeaderImage     string `json:"header_image"`
	IsFree          bool   `json:"is_free"`
	RequiredAge     int    `json:"required_age"`
	ComingSoon      bool   `json:"coming_soon"`
	ReleaseDate     string `json:"release_date"`
	PlatformWindows bool   `json:"platform_windows"`
	PlatformMac     bool   `json:"platform_mac"`
	PlatformLinux   bool   `json:"platform_linux"`
}

// SeedAttributes represents seed attributes in JSON:API format.
type SeedAttributes struct {
	AppID    int64        `json:"app_id"`
	Hits     int          `json:"hits"`
	AddedAt  *time.Time   `json:"added_at,omitempty"`
	LastSeen *time.Time   `json:"last_seen,omitempty"`
	Game     *GameSummary `json:"game,omitempty"`
}

// TaskAttributes represents task attributes in JSON:API format.
type TaskAttributes struct {
	Operation string     `json:"operation"`
	Priority  int        `json:"priority"`
	Payload   any        `json:"payload"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Serializer converts domain objects to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// SearchRequestResource converts a search request to a JSON:API resource.
func (s *Serializer) SearchRequestResource(req request.SearchRequest) *Resource {
	createdAt := req.CreatedAt()
	updatedAt := req.UpdatedAt()

	attrs := &SearchRequestAttributes{
		Name:        req.Name(),
		Filters:     req.Filters(),
		PublicToken: req.PublicToken(),
		CreatedAt:   &createdAt,
		UpdatedAt:   &updatedAt,
	}
	return NewResource("search_request", fmt.Sprintf("%d", req.ID()), attrs)
}

// SearchRequestResources converts multiple search requests to JSON:API resources.
func (s *Serializer) SearchRequestResources(reqs []request.SearchRequest) []*Resource {
	resources := make([]*Resource, len(reqs))
	for i, req := range reqs {
		resources[i] = s.SearchRequestResource(req)
	}
	return resources
}

// RecommendationResource converts a recommendation to a JSON:API resource.
// game may be nil when the catalog row is unavailable.
func (s *Serializer) RecommendationResource(rec recommendation.Recommendation, game *catalog.Game) *Resource {
	createdAt := rec.CreatedAt()

	attrs := &RecommendationAttributes{
		AppID:          rec.AppID(),
		Rank:           rec.Rank(),
		Score:          rec.Score(),
		Explainability: rec.Explainability(),
		Game:           gameSummary(game),
		CreatedAt:      &createdAt,
	}
	return NewResource("recommendation", fmt.Sprintf("%d", rec.ID()), attrs)
}

// RecommendationResources converts recommendations to JSON:API resources,
// embedding catalog rows looked up by app id.
func (s *Serializer) RecommendationResources(recs []recommendation.Recommendation, games map[int64]catalog.Game) []*Resource {
	resources := make([]*Resource, len(recs))
	for i, rec := range recs {
		var g *catalog.Game
		if game, ok := games[rec.AppID()]; ok {
			g = &game
		}
		resources[i] = s.RecommendationResource(rec, g)
	}
	return resources
}

// ExplanationResource converts an explanation to a JSON:API resource.
func (s *Serializer) ExplanationResource(e recommendation.Explanation) *Resource {
	createdAt := e.CreatedAt()

	attrs := &ExplanationAttributes{
		RecommendationID: e.RecommendationID(),
		Locale:           e.Locale(),
		Text:             e.Text(),
		CreatedAt:        &createdAt,
	}
	return NewResource("explanation", fmt.Sprintf("%d", e.ID()), attrs)
}

// GameResource converts a catalog game to a JSON:API resource.
func (s *Serializer) GameResource(g catalog.Game) *Resource {
	attrs := &GameAttributes{
		AppID:           g.AppID(),
		Name:            g.Name(),
		HeaderImage:     g.HeaderImage(),
		IsFree:          g.IsFree(),
		RequiredAge:     g.RequiredAge(),
		ComingSoon:      g.ComingSoon(),
		ReleaseDate:     g.ReleaseDate(),
		PlatformWindows: g.PlatformWindows(),
		PlatformMac:     g.PlatformMac(),
		PlatformLinux:   g.PlatformLinux(),
	}
	return NewResource("game", fmt.Sprintf("%d", g.AppID()), attrs)
}

// GameResources converts multiple games to JSON:API resources.
func (s *Serializer) GameResources(games []catalog.Game) []*Resource {
	resources := make([]*Resource, len(games))
	for i, g := range games {
		resources[i] = s.GameResource(g)
	}
	return resources
}

// SeedResource converts a seed to a JSON:API resource.
// game may be nil when the catalog row is unavailable.
func (s *Serializer) SeedResource(sd seed.Seed, game *catalog.Game) *Resource {
	addedAt := sd.AddedAt()
	lastSeen := sd.LastSeen()

	attrs := &SeedAttributes{
		AppID:    sd.AppID(),
		Hits:     sd.Hits(),
		AddedAt:  &addedAt,
		LastSeen: &lastSeen,
		Game:     gameSummary(game),
	}
	return NewResource("seed", fmt.Sprintf("%d", sd.AppID()), attrs)
}

// SeedResources converts seeds to JSON:API resources, embedding catalog rows
// looked up by app id.
func (s *Serializer) SeedResources(seeds []seed.Seed, games map[int64]catalog.Game) []*Resource {
	resources := make([]*Resource, len(seeds))
	for i, sd := range seeds {
		var g *catalog.Game
		if game, ok := games[sd.AppID()]; ok {
			g = &game
		}
		resources[i] = s.SeedResource(sd, g)
	}
	return resources
}

// TaskResource converts a task to a JSON:API resource.
func (s *Serializer) TaskResource(t task.Task) *Resource {
	createdAt := t.CreatedAt()
	updatedAt := t.UpdatedAt()

	attrs := &TaskAttributes{
		Operation: string(t.Operation()),
		Priority:  t.Priority(),
		Payload:   t.Payload(),
		CreatedAt: &createdAt,
		UpdatedAt: &updatedAt,
	}
	return NewResource("task", fmt.Sprintf("%d", t.ID()), attrs)
}

// TaskResources converts multiple tasks to JSON:API resources.
func (s *Serializer) TaskResources(tasks []task.Task) []*Resource {
	resources := make([]*Resource, len(tasks))
	for i, t := range tasks {
		resources[i] = s.TaskResource(t)
	}
	return resources
}

func gameSummary(g *catalog.Game) *GameSummary {
	if g == nil {
		return nil
	}
	return &GameSummary{
		AppID:       g.AppID(),
		Name:        g.Name(),
		HeaderImage: g.HeaderImage(),
	}
}
