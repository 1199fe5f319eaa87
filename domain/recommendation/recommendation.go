// Package recommendation provides domain types for ranked game
// recommendations and their generated explanations.
package recommendation

import (
	"encoding/json"
	"time"
)

// MaxPerRequest is the number of ranked rows kept per search request.
const MaxPerRequest = 5

// Recommendation represents one ranked game suggested for a search
// request. This is an immutable value object identified by its ID once
// persisted.
type Recommendation struct {
	id              int64
	searchRequestID int64
	appID           int64
	rank            int
	score           float64
	raw             json.RawMessage
	explainability  map[string]float64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewRecommendation creates a recommendation for new instances (not yet
// persisted).
func NewRecommendation(
	searchRequestID, appID int64,
	rank int,
	score float64,
	raw json.RawMessage,
	explainability map[string]float64,
) Recommendation {
	now := time.Now()
	return Recommendation{
		searchRequestID: searchRequestID,
		appID:           appID,
		rank:            rank,
		score:           score,
		raw:             copyRaw(raw),
		explainability:  copyWeights(explainability),
		createdAt:       now,
		updatedAt:       now,
	}
}

// ReconstructRecommendation recreates a recommendation from persistence
// (for store use).
func ReconstructRecommendation(
	id, searchRequestID, appID int64,
	rank int,
	score float64,
	raw json.RawMessage,
	explainability map[string]float64,
	createdAt, updatedAt time.Time,
) Recommendation {
	return Recommendation{
		id:              id,
		searchRequestID: searchRequestID,
		appID:           appID,
		rank:            rank,
		score:           score,
		raw:             copyRaw(raw),
		explainability:  copyWeights(explainability),
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ID returns the recommendation ID.
func (r Recommendation) ID() int64 { return r.id }

// SearchRequestID returns the owning request's ID.
func (r Recommendation) SearchRequestID() int64 { return r.searchRequestID }

// AppID returns the suggested game's store app ID.
func (r Recommendation) AppID() int64 { return r.appID }

// Rank returns the 1-based position within the request.
func (r Recommendation) Rank() int { return r.rank }

// Score returns the taste-graph affinity score.
func (r Recommendation) Score() float64 { return r.score }

// Raw returns a copy of the upstream candidate payload.
func (r Recommendation) Raw() json.RawMessage { return copyRaw(r.raw) }

// Explainability returns a copy of the per-seed weight map, keyed by
// seed game name.
func (r Recommendation) Explainability() map[string]float64 {
	return copyWeights(r.explainability)
}

// CreatedAt returns when the recommendation was created.
func (r Recommendation) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns when the recommendation was last updated.
func (r Recommendation) UpdatedAt() time.Time { return r.updatedAt }

func copyRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

func copyWeights(weights map[string]float64) map[string]float64 {
	if weights == nil {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(weights))
	for k, v := range weights {
		out[k] = v
	}
	return out
}
