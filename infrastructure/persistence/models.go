// Package persistence implements the domain store interfaces with GORM.
package persistence

import (
	"encoding/json"
	"time"
)

// SearchRequestModel is the GORM model for search requests.
type SearchRequestModel struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	UserID        string          `gorm:"column:user_id;size:64;index;uniqueIndex:idx_search_requests_user_fingerprint"`
	SeedEntityIDs json.RawMessage `gorm:"column:seed_entity_ids;type:jsonb"`
	Filters       json.RawMessage `gorm:"column:filters;type:jsonb"`
	PublicToken   string          `gorm:"column:public_token;size:36;uniqueIndex"`
	Fingerprint   string          `gorm:"column:fingerprint;size:32;uniqueIndex:idx_search_requests_user_fingerprint"`
	Name          string          `gorm:"column:name;size:120"`
	CreatedAt     time.Time       `gorm:"column:created_at;index"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

// TableName returns the database table name.
func (SearchRequestModel) TableName() string { return "search_requests" }

// RecommendationModel is the GORM model for ranked recommendations.
type RecommendationModel struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	SearchRequestID int64           `gorm:"column:search_request_id;index;uniqueIndex:idx_recommendations_request_app"`
	AppID           int64           `gorm:"column:app_id;uniqueIndex:idx_recommendations_request_app"`
	Rank            int             `gorm:"column:rank"`
	Score           float64         `gorm:"column:score"`
	Raw             json.RawMessage `gorm:"column:raw;type:jsonb"`
	Explainability  json.RawMessage `gorm:"column:explainability;type:jsonb"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

// TableName returns the database table name.
func (RecommendationModel) TableName() string { return "recommendations" }

// ExplanationModel is the GORM model for generated explanations.
type ExplanationModel struct {
	ID               int64     `gorm:"primaryKey;autoIncrement"`
	RecommendationID int64     `gorm:"column:recommendation_id;index;uniqueIndex:idx_explanations_rec_locale"`
	Locale           string    `gorm:"column:locale;size:8;uniqueIndex:idx_explanations_rec_locale"`
	Prompt           string    `gorm:"column:prompt;type:text"`
	Text             string    `gorm:"column:text;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

// TableName returns the database table name.
func (ExplanationModel) TableName() string { return "recommendation_explanations" }

// GameModel is the GORM model for the local game catalog.
type GameModel struct {
	AppID           int64     `gorm:"column:app_id;primaryKey"`
	Name            string    `gorm:"column:name;size:255;index"`
	QlooEntity      string    `gorm:"column:qloo_entity;size:255;index"`
	HeaderImage     string    `gorm:"column:header_image;size:512"`
	IsFree          bool      `gorm:"column:is_free"`
	RequiredAge     int       `gorm:"column:required_age"`
	ComingSoon      bool      `gorm:"column:coming_soon"`
	ReleaseDate     string    `gorm:"column:release_date;size:32"`
	PlatformWindows bool      `gorm:"column:platform_windows"`
	PlatformMac     bool      `gorm:"column:platform_mac"`
	PlatformLinux   bool      `gorm:"column:platform_linux"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

// TableName returns the database table name.
func (GameModel) TableName() string { return "steam_apps" }

// SeedModel is the GORM model for user seed games.
type SeedModel struct {
	UserID   string    `gorm:"column:user_id;size:64;primaryKey"`
	AppID    int64     `gorm:"column:app_id;primaryKey"`
	AddedAt  time.Time `gorm:"column:added_at"`
	Hits     int       `gorm:"column:hits"`
	LastSeen time.Time `gorm:"column:last_seen;index"`
}

// TableName returns the database table name.
func (SeedModel) TableName() string { return "user_seeds" }

// TaskModel is the GORM model for queued background tasks.
type TaskModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	DedupKey  string          `gorm:"column:dedup_key;size:255;uniqueIndex"`
	Type      string          `gorm:"column:type;size:64;index"`
	Priority  int             `gorm:"column:priority;index"`
	Payload   json.RawMessage `gorm:"column:payload;type:jsonb"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

// TableName returns the database table name.
func (TaskModel) TableName() string { return "tasks" }
