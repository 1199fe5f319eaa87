package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/playtaste/playtaste/domain/recommendation"
	"github.com/playtaste/playtaste/domain/task"
	"github.com/playtaste/playtaste/infrastructure/provider"
	"github.com/playtaste/playtaste/internal/database"
	"golang.org/x/sync/singleflight"
)

// Explanations serves per-locale explanation texts for
// recommendations, generating them on first access.
type Explanations struct {
	explanations recommendation.ExplanationStore
	recs         recommendation.Store
	catalog      *Catalog
	generator    provider.TextGenerator
	queue        *Queue
	group        singleflight.Group
	logger       *slog.Logger
}

// NewExplanations creates a new Explanations service.
func NewExplanations(
	explanations recommendation.ExplanationStore,
	recs recommendation.Store,
	catalog *Catalog,
	generator provider.TextGenerator,
	queue *Queue,
	logger *slog.Logger,
) *Explanations {
	return &Explanations{
		explanations: explanations,
		recs:         recs,
		catalog:      catalog,
		generator:    generator,
		queue:        queue,
		logger:       logger,
	}
}

// GetOrGenerate returns the stored explanation for a (recommendation,
// locale) pair, generating and persisting one when absent. Concurrent
// callers for the same pair share a single generation.
func (s *Explanations) GetOrGenerate(ctx context.Context, recommendationID int64, locale string) (recommendation.Explanation, error) {
	if !recommendation.IsSupportedLocale(locale) {
		return recommendation.Explanation{}, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}

	key := fmt.Sprintf("%d:%s", recommendationID, locale)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.getOrGenerate(ctx, recommendationID, locale)
	})
	if err != nil {
		return recommendation.Explanation{}, err
	}
	return v.(recommendation.Explanation), nil
}

func (s *Explanations) getOrGenerate(ctx context.Context, recommendationID int64, locale string) (recommendation.Explanation, error) {
	stored, err := s.explanations.GetByLocale(ctx, recommendationID, locale)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return recommendation.Explanation{}, err
	}

	rec, err := s.recs.Get(ctx, recommendationID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return recommendation.Explanation{}, fmt.Errorf("%w: recommendation %d", ErrNotFound, recommendationID)
		}
		return recommendation.Explanation{}, err
	}

	game, err := s.catalog.Get(ctx, rec.AppID())
	if err != nil {
		return recommendation.Explanation{}, err
	}

	prompt := buildPrompt(game.Name(), locale, rec.Explainability())

	resp, err := s.generator.ChatCompletion(ctx, provider.NewChatCompletionRequest(
		[]provider.Message{provider.UserMessage(prompt)},
	))
	if err != nil {
		return recommendation.Explanation{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	text := strings.TrimSpace(resp.Content())
	if text == "" {
		return recommendation.Explanation{}, fmt.Errorf("%w: empty explanation", ErrUpstream)
	}

	// A concurrent process may have stored its own text first; the
	// store keeps the winner and we return whatever it holds.
	saved, err := s.explanations.Save(ctx, recommendation.NewExplanation(recommendationID, locale, prompt, text))
	if err != nil {
		return recommendation.Explanation{}, fmt.Errorf("save explanation: %w", err)
	}

	s.logger.Debug("explanation generated",
		slog.Int64("recommendation_id", recommendationID),
		slog.String("locale", locale),
	)
	return saved, nil
}

// Prefetch queues background generation for a (recommendation, locale)
// pair. Idempotent; redundant calls collapse in the task queue.
func (s *Explanations) Prefetch(ctx context.Context, recommendationID int64, locale string) error {
	if !recommendation.IsSupportedLocale(locale) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}

	t := task.NewTask(task.OperationPrefetchExplanation, int(task.PriorityBackground), map[string]any{
		"recommendation_id": recommendationID,
		"locale":            locale,
	})
	return s.queue.Enqueue(ctx, t)
}

// buildPrompt produces the deterministic generation prompt for one
// recommendation. The weights map is serialized as JSON so equal
// inputs always yield the same prompt.
func buildPrompt(gameName, locale string, weights map[string]float64) string {
	weightsJSON, err := json.Marshal(weights)
	if err != nil {
		weightsJSON = []byte("{}")
	}
	return fmt.Sprintf(
		"Explain in %s (without explicitly mentioning the language) why '%s' (from Steam) was suggested based on the user's selected titles. Weights: %s",
		locale, gameName, weightsJSON,
	)
}
