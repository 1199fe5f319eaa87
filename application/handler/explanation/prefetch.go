// Package explanation provides task handlers for background
// explanation generation.
package explanation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/playtaste/playtaste/application/handler"
	"github.com/playtaste/playtaste/application/service"
)

// Prefetch generates an explanation for a (recommendation, locale)
// pair if one is not already stored.
type Prefetch struct {
	explanations *service.Explanations
	logger       *slog.Logger
}

// NewPrefetch creates a new Prefetch handler.
func NewPrefetch(explanations *service.Explanations, logger *slog.Logger) *Prefetch {
	return &Prefetch{
		explanations: explanations,
		logger:       logger,
	}
}

// Execute generates the explanation named by the payload. A
// recommendation deleted since enqueueing is not an error; the task is
// simply stale.
func (h *Prefetch) Execute(ctx context.Context, payload map[string]any) error {
	recommendationID, err := handler.ExtractInt64(payload, "recommendation_id")
	if err != nil {
		return err
	}
	locale, err := handler.ExtractString(payload, "locale")
	if err != nil {
		return err
	}

	_, err = h.explanations.GetOrGenerate(ctx, recommendationID, locale)
	if errors.Is(err, service.ErrNotFound) {
		h.logger.Debug("skipping prefetch for missing recommendation",
			slog.Int64("recommendation_id", recommendationID),
			slog.String("locale", locale),
		)
		return nil
	}
	return err
}
