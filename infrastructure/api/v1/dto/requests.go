// Package dto holds request body shapes for the v1 API.
package dto

// SearchRequestCreateAttributes holds attributes for creating a search request.
type SearchRequestCreateAttributes struct {
	Name    string         `json:"name,omitempty"`
	Filters map[string]any `json:"filters,omitempty"`
	Locale  string         `json:"locale,omitempty"`
}

// SearchRequestCreateData wraps create attributes in a JSON:API data object.
type SearchRequestCreateData struct {
	Type       string                        `json:"type"`
	Attributes SearchRequestCreateAttributes `json:"attributes"`
}

// SearchRequestCreateRequest is the body for POST /requests.
type SearchRequestCreateRequest struct {
	Data SearchRequestCreateData `json:"data"`
}

// SearchRequestRenameAttributes holds attributes for renaming a search request.
type SearchRequestRenameAttributes struct {
	Name string `json:"name"`
}

// SearchRequestRenameData wraps rename attributes in a JSON:API data object.
type SearchRequestRenameData struct {
	Type       string                        `json:"type"`
	Attributes SearchRequestRenameAttributes `json:"attributes"`
}

// SearchRequestRenameRequest is the body for PATCH /requests/{id}.
type SearchRequestRenameRequest struct {
	Data SearchRequestRenameData `json:"data"`
}

// SeedCreateAttributes holds attributes for adding a seed.
type SeedCreateAttributes struct {
	AppID int64 `json:"app_id"`
}

// SeedCreateData wraps seed attributes in a JSON:API data object.
type SeedCreateData struct {
	Type       string               `json:"type"`
	Attributes SeedCreateAttributes `json:"attributes"`
}

// SeedCreateRequest is the body for POST /seeds.
type SeedCreateRequest struct {
	Data SeedCreateData `json:"data"`
}
