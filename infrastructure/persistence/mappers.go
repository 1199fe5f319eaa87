package persistence

import (
	"encoding/json"

	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/domain/recommendation"
	"github.com/playtaste/playtaste/domain/request"
	"github.com/playtaste/playtaste/domain/seed"
	"github.com/playtaste/playtaste/domain/task"
)

// SearchRequestMapper maps between domain SearchRequest and SearchRequestModel.
type SearchRequestMapper struct{}

// ToDomain converts a SearchRequestModel to a domain SearchRequest.
func (m SearchRequestMapper) ToDomain(e SearchRequestModel) request.SearchRequest {
	var seedIDs []string
	_ = json.Unmarshal(e.SeedEntityIDs, &seedIDs)

	var filters map[string]any
	_ = json.Unmarshal(e.Filters, &filters)

	return request.ReconstructSearchRequest(
		e.ID,
		e.UserID,
		seedIDs,
		filters,
		e.PublicToken,
		e.Fingerprint,
		e.Name,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain SearchRequest to a SearchRequestModel.
func (m SearchRequestMapper) ToModel(r request.SearchRequest) SearchRequestModel {
	seedIDs, _ := json.Marshal(r.SeedEntityIDs())
	filters, _ := json.Marshal(r.Filters())

	return SearchRequestModel{
		ID:            r.ID(),
		UserID:        r.UserID(),
		SeedEntityIDs: seedIDs,
		Filters:       filters,
		PublicToken:   r.PublicToken(),
		Fingerprint:   r.Fingerprint(),
		Name:          r.Name(),
		CreatedAt:     r.CreatedAt(),
		UpdatedAt:     r.UpdatedAt(),
	}
}

// RecommendationMapper maps between domain Recommendation and RecommendationModel.
type RecommendationMapper struct{}

// ToDomain converts a RecommendationModel to a domain Recommendation.
func (m RecommendationMapper) ToDomain(e RecommendationModel) recommendation.Recommendation {
	var weights map[string]float64
	_ = json.Unmarshal(e.Explainability, &weights)

	return recommendation.ReconstructRecommendation(
		e.ID,
		e.SearchRequestID,
		e.AppID,
		e.Rank,
		e.Score,
		json.RawMessage(e.Raw),
		weights,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Recommendation to a RecommendationModel.
func (m RecommendationMapper) ToModel(r recommendation.Recommendation) RecommendationModel {
	weights, _ := json.Marshal(r.Explainability())

	return RecommendationModel{
		ID:              r.ID(),
		SearchRequestID: r.SearchRequestID(),
		AppID:           r.AppID(),
		Rank:            r.Rank(),
		Score:           r.Score(),
		Raw:             r.Raw(),
		Explainability:  weights,
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}
}

// ExplanationMapper maps between domain Explanation and ExplanationModel.
type ExplanationMapper struct{}

// ToDomain converts an ExplanationModel to a domain Explanation.
func (m ExplanationMapper) ToDomain(e ExplanationModel) recommendation.Explanation {
	return recommendation.ReconstructExplanation(
		e.ID,
		e.RecommendationID,
		e.Locale,
		e.Prompt,
		e.Text,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Explanation to an ExplanationModel.
func (m ExplanationMapper) ToModel(e recommendation.Explanation) ExplanationModel {
	return ExplanationModel{
		ID:               e.ID(),
		RecommendationID: e.RecommendationID(),
		Locale:           e.Locale(),
		Prompt:           e.Prompt(),
		Text:             e.Text(),
		CreatedAt:        e.CreatedAt(),
		UpdatedAt:        e.UpdatedAt(),
	}
}

// GameMapper maps between domain Game and GameModel.
type GameMapper struct{}

// ToDomain converts a GameModel to a domain Game.
func (m GameMapper) ToDomain(e GameModel) catalog.Game {
	return catalog.ReconstructGame(
		e.AppID,
		e.Name,
		e.QlooEntity,
		e.HeaderImage,
		e.IsFree,
		e.RequiredAge,
		e.ComingSoon,
		e.ReleaseDate,
		e.PlatformWindows,
		e.PlatformMac,
		e.PlatformLinux,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Game to a GameModel.
func (m GameMapper) ToModel(g catalog.Game) GameModel {
	return GameModel{
		AppID:           g.AppID(),
		Name:            g.Name(),
		QlooEntity:      g.EntityID(),
		HeaderImage:     g.HeaderImage(),
		IsFree:          g.IsFree(),
		RequiredAge:     g.RequiredAge(),
		ComingSoon:      g.ComingSoon(),
		ReleaseDate:     g.ReleaseDate(),
		PlatformWindows: g.PlatformWindows(),
		PlatformMac:     g.PlatformMac(),
		PlatformLinux:   g.PlatformLinux(),
		CreatedAt:       g.CreatedAt(),
		UpdatedAt:       g.UpdatedAt(),
	}
}

// SeedMapper maps between domain Seed and SeedModel.
type SeedMapper struct{}

// ToDomain converts a SeedModel to a domain Seed.
func (m SeedMapper) ToDomain(e SeedModel) seed.Seed {
	return seed.ReconstructSeed(e.UserID, e.AppID, e.AddedAt, e.Hits, e.LastSeen)
}

// ToModel converts a domain Seed to a SeedModel.
func (m SeedMapper) ToModel(s seed.Seed) SeedModel {
	return SeedModel{
		UserID:   s.UserID(),
		AppID:    s.AppID(),
		AddedAt:  s.AddedAt(),
		Hits:     s.Hits(),
		LastSeen: s.LastSeen(),
	}
}

// TaskMapper maps between domain Task and TaskModel.
type TaskMapper struct{}

// ToDomain converts a TaskModel to a domain Task.
func (m TaskMapper) ToDomain(e TaskModel) task.Task {
	var payload map[string]any
	_ = json.Unmarshal(e.Payload, &payload)

	return task.NewTaskWithID(
		e.ID,
		e.DedupKey,
		task.Operation(e.Type),
		e.Priority,
		payload,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Task to a TaskModel.
func (m TaskMapper) ToModel(t task.Task) TaskModel {
	payload, _ := t.PayloadJSON()

	return TaskModel{
		ID:        t.ID(),
		DedupKey:  t.DedupKey(),
		Type:      t.Operation().String(),
		Priority:  t.Priority(),
		Payload:   payload,
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}
