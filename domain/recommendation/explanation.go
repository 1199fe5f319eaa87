package recommendation

import "time"

// Explanation represents generated prose telling the user why a game
// was recommended, in one locale. This is an immutable value object
// identified by its ID once persisted; at most one row exists per
// (recommendation, locale).
type Explanation struct {
	id               int64
	recommendationID int64
	locale           string
	prompt           string
	text             string
	createdAt        time.Time
	updatedAt        time.Time
}

// NewExplanation creates an explanation for new instances (not yet
// persisted).
func NewExplanation(recommendationID int64, locale, prompt, text string) Explanation {
	now := time.Now()
	return Explanation{
		recommendationID: recommendationID,
		locale:           locale,
		prompt:           prompt,
		text:             text,
		createdAt:        now,
		updatedAt:        now,
	}
}

// ReconstructExplanation recreates an explanation from persistence (for
// store use).
func ReconstructExplanation(
	id, recommendationID int64,
	locale, prompt, text string,
	createdAt, updatedAt time.Time,
) Explanation {
	return Explanation{
		id:               id,
		recommendationID: recommendationID,
		locale:           locale,
		prompt:           prompt,
		text:             text,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// ID returns the explanation ID.
func (e Explanation) ID() int64 { return e.id }

// RecommendationID returns the owning recommendation's ID.
func (e Explanation) RecommendationID() int64 { return e.recommendationID }

// Locale returns the language the text was generated in.
func (e Explanation) Locale() string { return e.locale }

// Prompt returns the prompt sent to the text generator.
func (e Explanation) Prompt() string { return e.prompt }

// Text returns the generated prose.
func (e Explanation) Text() string { return e.text }

// CreatedAt returns when the explanation was created.
func (e Explanation) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt returns when the explanation was last updated.
func (e Explanation) UpdatedAt() time.Time { return e.updatedAt }
