// Package catalog provides domain types for the local game catalog.
package catalog

import (
	"strings"
	"time"
)

// Game represents a catalog entry for a single store title.
// This is an immutable value object identified by its store app ID.
type Game struct {
	appID           int64
	name            string
	entityID        string
	headerImage     string
	isFree          bool
	requiredAge     int
	comingSoon      bool
	releaseDate     string
	platformWindows bool
	platformMac     bool
	platformLinux   bool
	createdAt       time.Time
	updatedAt       time.Time
}

// NewGame creates a game for new catalog entries.
func NewGame(appID int64, name string) Game {
	now := time.Now()
	return Game{
		appID:     appID,
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstructGame recreates a game from persistence (for store use).
func ReconstructGame(
	appID int64,
	name, entityID, headerImage string,
	isFree bool,
	requiredAge int,
	comingSoon bool,
	releaseDate string,
	platformWindows, platformMac, platformLinux bool,
	createdAt, updatedAt time.Time,
) Game {
	return Game{
		appID:           appID,
		name:            name,
		entityID:        entityID,
		headerImage:     headerImage,
		isFree:          isFree,
		requiredAge:     requiredAge,
		comingSoon:      comingSoon,
		releaseDate:     releaseDate,
		platformWindows: platformWindows,
		platformMac:     platformMac,
		platformLinux:   platformLinux,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// AppID returns the store app ID.
func (g Game) AppID() int64 { return g.appID }

// Name returns the game title.
func (g Game) Name() string { return g.name }

// EntityID returns the taste-graph entity ID, empty when unmapped.
func (g Game) EntityID() string { return g.entityID }

// HasEntity reports whether the game has a taste-graph mapping.
func (g Game) HasEntity() bool { return g.entityID != "" }

// HeaderImage returns the header image URL.
func (g Game) HeaderImage() string { return g.headerImage }

// IsFree reports whether the game is free to play.
func (g Game) IsFree() bool { return g.isFree }

// RequiredAge returns the minimum required age.
func (g Game) RequiredAge() int { return g.requiredAge }

// ComingSoon reports whether the game is unreleased.
func (g Game) ComingSoon() bool { return g.comingSoon }

// ReleaseDate returns the store release date string.
func (g Game) ReleaseDate() string { return g.releaseDate }

// PlatformWindows reports Windows support.
func (g Game) PlatformWindows() bool { return g.platformWindows }

// PlatformMac reports macOS support.
func (g Game) PlatformMac() bool { return g.platformMac }

// PlatformLinux reports Linux support.
func (g Game) PlatformLinux() bool { return g.platformLinux }

// CreatedAt returns when the catalog entry was created.
func (g Game) CreatedAt() time.Time { return g.createdAt }

// UpdatedAt returns when the catalog entry was last updated.
func (g Game) UpdatedAt() time.Time { return g.updatedAt }

// WithEntityID returns a copy of the game with a taste-graph mapping.
func (g Game) WithEntityID(entityID string) Game {
	g.entityID = entityID
	return g
}

// NormalizeName lowercases a title and strips every character outside
// [a-z0-9], so "Half-Life 2" and "Half Life 2" normalize identically.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizedName returns the title normalized for fuzzy entity
// resolution.
func (g Game) NormalizedName() string {
	return NormalizeName(g.name)
}
