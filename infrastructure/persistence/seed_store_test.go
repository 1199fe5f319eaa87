package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/playtaste/playtaste/domain/seed"
	"github.com/playtaste/playtaste/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewSeedStore(newMigratedDB(t))

	saved, err := store.Save(ctx, seed.NewSeed("user-1", 440))
	require.NoError(t, err)
	assert.Equal(t, "user-1", saved.UserID())
	assert.Equal(t, int64(440), saved.AppID())
	assert.Equal(t, 1, saved.Hits())

	got, err := store.Get(ctx, "user-1", 440)
	require.NoError(t, err)
	assert.Equal(t, int64(440), got.AppID())
	assert.Equal(t, 1, got.Hits())
}

func TestSeedStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewSeedStore(newMigratedDB(t))

	_, err := store.Get(ctx, "user-1", 999)
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestSeedStore_SaveIsUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewSeedStore(newMigratedDB(t))

	first, err := store.Save(ctx, seed.NewSeed("user-1", 440))
	require.NoError(t, err)

	_, err = store.Save(ctx, first.Touched())
	require.NoError(t, err)

	got, err := store.Get(ctx, "user-1", 440)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Hits())

	count, err := store.CountByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "touching a seed must not create a second row")
}

func TestSeedStore_FindByUserMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := NewSeedStore(newMigratedDB(t))

	now := time.Now()
	older := seed.ReconstructSeed("user-1", 440, now.Add(-2*time.Hour), 1, now.Add(-2*time.Hour))
	newer := seed.ReconstructSeed("user-1", 570, now.Add(-time.Hour), 3, now)
	other := seed.ReconstructSeed("user-2", 730, now, 1, now)

	for _, s := range []seed.Seed{older, newer, other} {
		_, err := store.Save(ctx, s)
		require.NoError(t, err)
	}

	seeds, err := store.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, int64(570), seeds[0].AppID())
	assert.Equal(t, int64(440), seeds[1].AppID())
}

func TestSeedStore_CountByUser(t *testing.T) {
	ctx := context.Background()
	store := NewSeedStore(newMigratedDB(t))

	for _, appID := range []int64{440, 570, 730} {
		_, err := store.Save(ctx, seed.NewSeed("user-1", appID))
		require.NoError(t, err)
	}
	_, err := store.Save(ctx, seed.NewSeed("user-2", 440))
	require.NoError(t, err)

	count, err := store.CountByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSeedStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewSeedStore(newMigratedDB(t))

	_, err := store.Save(ctx, seed.NewSeed("user-1", 440))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "user-1", 440))

	_, err = store.Get(ctx, "user-1", 440)
	require.ErrorIs(t, err, database.ErrNotFound)
}
