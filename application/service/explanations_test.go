package service_test

import (
	"context"
	"errors"
	"github.com/playtaste/playtaste/application/service"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/playtaste/playtaste/application/handler/explanation"
	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/domain/recommendation"
	"github.com/playtaste/playtaste/domain/seed"
	"github.com/playtaste/playtaste/domain/task"
	"github.com/playtaste/playtaste/infrastructure/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createRecommendation runs the pipeline once and returns the single
// stored recommendation.
func createRecommendation(t *testing.T, env *testEnv) recommendation.Recommendation {
	t.Helper()
	ctx := context.Background()

	_, err := env.games.Save(ctx, catalog.NewGame(440, "Team Fortress 2").WithEntityID("E-TF2"))
	require.NoError(t, err)
	_, err = env.seedStore.Save(ctx, seed.NewSeed("user-1", 440))
	require.NoError(t, err)
	_, err = env.games.Save(ctx, catalog.NewGame(620, "Portal 2"))
	require.NoError(t, err)

	env.graph.insights = []provider.Candidate{{
		Name:           "Portal 2",
		EntityID:       "E-P2",
		Affinity:       0.9,
		Explainability: map[string]float64{"e-tf2": 0.8},
		SteamAppID:     620,
	}}

	result, err := env.requests.Create(ctx, "user-1", service.RequestCreateParams{})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	return result.Recommendations[0]
}

func TestExplanations_GetOrGenerate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	rec := createRecommendation(t, env)

	exp, err := env.explanations.GetOrGenerate(ctx, rec.ID(), "fr")
	require.NoError(t, err)
	assert.Equal(t, "generated explanation", exp.Text())
	assert.Contains(t, exp.Prompt(), "Explain in fr")
	assert.Contains(t, exp.Prompt(), "'Portal 2' (from Steam)")
	assert.Contains(t, exp.Prompt(), `"Team Fortress 2":0.8`)

	// A second call serves the stored row.
	again, err := env.explanations.GetOrGenerate(ctx, rec.ID(), "fr")
	require.NoError(t, err)
	assert.Equal(t, exp.ID(), again.ID())
	assert.Equal(t, 1, env.generator.callCount())

	// A different locale generates separately.
	_, err = env.explanations.GetOrGenerate(ctx, rec.ID(), "ja")
	require.NoError(t, err)
	assert.Equal(t, 2, env.generator.callCount())
}

func TestExplanations_UnsupportedLocale(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.explanations.GetOrGenerate(ctx, 1, "pt")
	require.ErrorIs(t, err, service.ErrUnsupportedLocale)
	assert.Zero(t, env.generator.callCount())

	err = env.explanations.Prefetch(ctx, 1, "klingon")
	require.ErrorIs(t, err, service.ErrUnsupportedLocale)
}

func TestExplanations_UnknownRecommendation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.explanations.GetOrGenerate(ctx, 424242, "en")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestExplanations_GeneratorFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	rec := createRecommendation(t, env)
	env.generator.err = errors.New("model unavailable")

	_, err := env.explanations.GetOrGenerate(ctx, rec.ID(), "en")
	require.ErrorIs(t, err, service.ErrUpstream)

	// A later call retries; nothing was cached.
	env.generator.err = nil
	exp, err := env.explanations.GetOrGenerate(ctx, rec.ID(), "en")
	require.NoError(t, err)
	assert.Equal(t, "generated explanation", exp.Text())
}

func TestExplanations_ConcurrentCallersShareOneGeneration(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	rec := createRecommendation(t, env)

	const callers = 8
	texts := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			exp, err := env.explanations.GetOrGenerate(ctx, rec.ID(), "de")
			texts[i], errs[i] = exp.Text(), err
		}()
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i], "caller %d", i)
		assert.Equal(t, "generated explanation", texts[i])
	}
	assert.Equal(t, 1, env.generator.callCount())
}

func TestExplanations_PrefetchThroughWorker(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	rec := createRecommendation(t, env)

	require.NoError(t, env.explanations.Prefetch(ctx, rec.ID(), "es"))
	// Redundant prefetches collapse in the queue.
	require.NoError(t, env.explanations.Prefetch(ctx, rec.ID(), "es"))

	pending, err := env.queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := service.NewRegistry()
	registry.Register(task.OperationPrefetchExplanation, explanation.NewPrefetch(env.explanations, logger))
	worker := service.NewWorker(env.taskStore, registry, logger)

	processed, err := worker.ProcessOne(ctx)
	require.NoError(t, err)
	require.True(t, processed)

	assert.Equal(t, 1, env.generator.callCount())

	// The explanation is now served from storage.
	exp, err := env.explanations.GetOrGenerate(ctx, rec.ID(), "es")
	require.NoError(t, err)
	assert.Equal(t, "generated explanation", exp.Text())
	assert.Equal(t, 1, env.generator.callCount())

	// Queue is drained.
	processed, err = worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestExplanations_StaleTaskForDeletedRecommendation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := explanation.NewPrefetch(env.explanations, logger)

	err := handler.Execute(ctx, map[string]any{
		"recommendation_id": float64(424242),
		"locale":            "en",
	})
	require.NoError(t, err, "stale tasks are dropped, not failed")
	assert.Zero(t, env.generator.callCount())
}
