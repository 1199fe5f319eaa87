// Package seed provides domain types for a user's selected games.
package seed

import "time"

// MaxPerUser is the maximum number of seed games a user may hold at once.
const MaxPerUser = 5

// Seed represents one game a user has picked as a taste signal.
// This is an immutable value object keyed by (user ID, app ID).
type Seed struct {
	userID   string
	appID    int64
	addedAt  time.Time
	hits     int
	lastSeen time.Time
}

// NewSeed creates a seed for a freshly picked game.
func NewSeed(userID string, appID int64) Seed {
	now := time.Now()
	return Seed{
		userID:   userID,
		appID:    appID,
		addedAt:  now,
		hits:     1,
		lastSeen: now,
	}
}

// ReconstructSeed recreates a seed from persistence (for store use).
func ReconstructSeed(userID string, appID int64, addedAt time.Time, hits int, lastSeen time.Time) Seed {
	return Seed{
		userID:   userID,
		appID:    appID,
		addedAt:  addedAt,
		hits:     hits,
		lastSeen: lastSeen,
	}
}

// UserID returns the owning user's ID.
func (s Seed) UserID() string { return s.userID }

// AppID returns the seeded game's store app ID.
func (s Seed) AppID() int64 { return s.appID }

// AddedAt returns when the seed was first picked.
func (s Seed) AddedAt() time.Time { return s.addedAt }

// Hits returns how many times the seed has been re-picked.
func (s Seed) Hits() int { return s.hits }

// LastSeen returns when the seed was last picked or touched.
func (s Seed) LastSeen() time.Time { return s.lastSeen }

// Touched returns a copy with the hit counter incremented and
// last_seen moved to now.
func (s Seed) Touched() Seed {
	s.hits++
	s.lastSeen = time.Now()
	return s
}
