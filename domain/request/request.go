// Package request provides domain types for recommendation search requests.
package request

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength is the longest name a search request may carry, in
// characters.
const MaxNameLength = 120

// SearchRequest represents one resolved recommendation query for a user.
// This is an immutable value object identified by its ID once persisted.
type SearchRequest struct {
	id            int64
	userID        string
	seedEntityIDs []string
	filters       map[string]any
	publicToken   string
	fingerprint   string
	name          string
	createdAt     time.Time
	updatedAt     time.Time
}

// NewSearchRequest creates a search request for new instances (not yet
// persisted). The fingerprint is computed from the seed entity IDs and
// the caller's filters exactly as given, and a fresh public share token
// is minted.
func NewSearchRequest(userID string, seedEntityIDs []string, filters map[string]any, name string) SearchRequest {
	now := time.Now()
	return SearchRequest{
		userID:        userID,
		seedEntityIDs: copyStrings(seedEntityIDs),
		filters:       copyFilters(filters),
		publicToken:   uuid.NewString(),
		fingerprint:   Fingerprint(seedEntityIDs, filters),
		name:          Truncate(name),
		createdAt:     now,
		updatedAt:     now,
	}
}

// ReconstructSearchRequest recreates a search request from persistence
// (for store use).
func ReconstructSearchRequest(
	id int64,
	userID string,
	seedEntityIDs []string,
	filters map[string]any,
	publicToken, fingerprint, name string,
	createdAt, updatedAt time.Time,
) SearchRequest {
	return SearchRequest{
		id:            id,
		userID:        userID,
		seedEntityIDs: copyStrings(seedEntityIDs),
		filters:       copyFilters(filters),
		publicToken:   publicToken,
		fingerprint:   fingerprint,
		name:          name,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the request ID.
func (r SearchRequest) ID() int64 { return r.id }

// UserID returns the owning user's ID.
func (r SearchRequest) UserID() string { return r.userID }

// SeedEntityIDs returns a copy of the resolved seed entity IDs.
func (r SearchRequest) SeedEntityIDs() []string {
	return copyStrings(r.seedEntityIDs)
}

// Filters returns a copy of the filters the caller supplied.
func (r SearchRequest) Filters() map[string]any {
	return copyFilters(r.filters)
}

// PublicToken returns the opaque share token.
func (r SearchRequest) PublicToken() string { return r.publicToken }

// Fingerprint returns the dedup fingerprint.
func (r SearchRequest) Fingerprint() string { return r.fingerprint }

// Name returns the request's display name.
func (r SearchRequest) Name() string { return r.name }

// CreatedAt returns when the request was created.
func (r SearchRequest) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns when the request was last updated.
func (r SearchRequest) UpdatedAt() time.Time { return r.updatedAt }

// WithName returns a copy of the request with the given display name,
// truncated to MaxNameLength.
func (r SearchRequest) WithName(name string) SearchRequest {
	r.name = Truncate(name)
	return r
}

// WithID returns a copy of the request with the given ID.
func (r SearchRequest) WithID(id int64) SearchRequest {
	r.id = id
	return r
}

// AutoName derives a display name from the request's seed game titles:
// the first title plus a count of the rest, or a generic fallback when
// no titles are known.
func AutoName(seedNames []string) string {
	switch len(seedNames) {
	case 0:
		return "Game recommendations"
	case 1:
		return Truncate(fmt.Sprintf("%s recommendations", seedNames[0]))
	default:
		return Truncate(fmt.Sprintf("%s and %d other game recommendations", seedNames[0], len(seedNames)-1))
	}
}

// Truncate clips a name to MaxNameLength characters, never splitting
// a rune.
func Truncate(name string) string {
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	return string([]rune(name)[:MaxNameLength])
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyFilters(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
