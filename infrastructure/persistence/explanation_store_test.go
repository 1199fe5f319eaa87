package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/playtaste/playtaste/domain/recommendation"
	"github.com/playtaste/playtaste/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savedRecommendation(t *testing.T, db database.Database) recommendation.Recommendation {
	t.Helper()
	req := savedRequest(t, db, "user-1")
	recs, err := NewRecommendationStore(db).SaveBulk(context.Background(), []recommendation.Recommendation{
		recommendation.NewRecommendation(req.ID(), 440, 1, 0.9, nil, map[string]float64{"Portal 2": 0.7}),
	})
	require.NoError(t, err)
	return recs[0]
}

func TestExplanationStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	db := newMigratedDB(t)
	store := NewExplanationStore(db)
	rec := savedRecommendation(t, db)

	saved, err := store.Save(ctx, recommendation.NewExplanation(rec.ID(), "en", "why?", "because"))
	require.NoError(t, err)
	assert.NotZero(t, saved.ID())

	got, err := store.GetByLocale(ctx, rec.ID(), "en")
	require.NoError(t, err)
	assert.Equal(t, "because", got.Text())
	assert.Equal(t, "why?", got.Prompt())
	assert.Equal(t, "en", got.Locale())
}

func TestExplanationStore_GetMissingLocale(t *testing.T) {
	ctx := context.Background()
	db := newMigratedDB(t)
	store := NewExplanationStore(db)
	rec := savedRecommendation(t, db)

	_, err := store.Save(ctx, recommendation.NewExplanation(rec.ID(), "en", "p", "t"))
	require.NoError(t, err)

	_, err = store.GetByLocale(ctx, rec.ID(), "fr")
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestExplanationStore_FirstWriterWins(t *testing.T) {
	ctx := context.Background()
	db := newMigratedDB(t)
	store := NewExplanationStore(db)
	rec := savedRecommendation(t, db)

	first, err := store.Save(ctx, recommendation.NewExplanation(rec.ID(), "en", "p1", "first text"))
	require.NoError(t, err)

	second, err := store.Save(ctx, recommendation.NewExplanation(rec.ID(), "en", "p2", "second text"))
	require.NoError(t, err)

	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, "first text", second.Text(), "race loser observes the winner's row")
}

func TestExplanationStore_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	db := newMigratedDB(t)
	store := NewExplanationStore(db)
	rec := savedRecommendation(t, db)

	const writers = 8
	results := make([]recommendation.Explanation, writers)
	errs := make([]error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			results[i], errs[i] = store.Save(ctx, recommendation.NewExplanation(
				rec.ID(), "de", "prompt", "text from writer",
			))
		}()
	}
	wg.Wait()

	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i], "writer %d", i)
		assert.Equal(t, results[0].ID(), results[i].ID(), "all writers converge on one row")
		assert.Equal(t, results[0].Text(), results[i].Text())
	}
}

func TestExplanationStore_LocalesIndependent(t *testing.T) {
	ctx := context.Background()
	db := newMigratedDB(t)
	store := NewExplanationStore(db)
	rec := savedRecommendation(t, db)

	en, err := store.Save(ctx, recommendation.NewExplanation(rec.ID(), "en", "p", "english"))
	require.NoError(t, err)
	ja, err := store.Save(ctx, recommendation.NewExplanation(rec.ID(), "ja", "p", "japanese"))
	require.NoError(t, err)

	assert.NotEqual(t, en.ID(), ja.ID())
}
