package service_test

import (
	"context"
	"github.com/playtaste/playtaste/application/service"
	"testing"

	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/infrastructure/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeds_AddAndList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(440, "Team Fortress 2").WithEntityID("E-TF2"))
	require.NoError(t, err)

	added, err := env.seeds.Add(ctx, "user-1", 440)
	require.NoError(t, err)
	assert.Equal(t, 1, added.Hits())

	seeds, err := env.seeds.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, int64(440), seeds[0].AppID())
}

func TestSeeds_ReAddTouches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(440, "Team Fortress 2").WithEntityID("E-TF2"))
	require.NoError(t, err)

	_, err = env.seeds.Add(ctx, "user-1", 440)
	require.NoError(t, err)

	again, err := env.seeds.Add(ctx, "user-1", 440)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Hits())

	seeds, err := env.seeds.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, seeds, 1)
}

func TestSeeds_LimitEnforced(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for i := 0; i < 6; i++ {
		appID := int64(100 + i)
		_, err := env.games.Save(ctx, catalog.NewGame(appID, "Game").WithEntityID("E"))
		require.NoError(t, err)
	}

	for i := 0; i < 5; i++ {
		_, err := env.seeds.Add(ctx, "user-1", int64(100+i))
		require.NoError(t, err)
	}

	_, err := env.seeds.Add(ctx, "user-1", 105)
	require.ErrorIs(t, err, service.ErrSeedLimit)

	// Re-adding an existing seed is still allowed at the limit.
	_, err = env.seeds.Add(ctx, "user-1", 100)
	require.NoError(t, err)

	// Other users have their own budget.
	_, err = env.seeds.Add(ctx, "user-2", 100)
	require.NoError(t, err)
}

func TestSeeds_AddResolvesEntity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(1145360, "Hades"))
	require.NoError(t, err)
	env.graph.search["Hades"] = []provider.Candidate{
		{Name: "Hades", EntityID: "E-HADES", SteamAppID: 1145360},
	}

	_, err = env.seeds.Add(ctx, "user-1", 1145360)
	require.NoError(t, err)

	game, err := env.games.Get(ctx, 1145360)
	require.NoError(t, err)
	assert.Equal(t, "E-HADES", game.EntityID())
}

func TestSeeds_AddUnsupportedGame(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(999, "Obscure Title"))
	require.NoError(t, err)
	// The taste graph has never heard of it.

	_, err = env.seeds.Add(ctx, "user-1", 999)
	require.ErrorIs(t, err, service.ErrUnsupportedByCatalog)

	seeds, err := env.seeds.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, seeds)
}

func TestSeeds_AddUnknownGame(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.seeds.Add(ctx, "user-1", 123456)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestSeeds_Remove(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(440, "Team Fortress 2").WithEntityID("E-TF2"))
	require.NoError(t, err)
	_, err = env.seeds.Add(ctx, "user-1", 440)
	require.NoError(t, err)

	require.NoError(t, env.seeds.Remove(ctx, "user-1", 440))

	seeds, err := env.seeds.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, seeds)

	// Removing an absent seed is a no-op.
	require.NoError(t, env.seeds.Remove(ctx, "user-1", 440))
}

func TestSeeds_Touch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(440, "Team Fortress 2").WithEntityID("E-TF2"))
	require.NoError(t, err)
	_, err = env.seeds.Add(ctx, "user-1", 440)
	require.NoError(t, err)

	touched, err := env.seeds.Touch(ctx, "user-1", 440)
	require.NoError(t, err)
	assert.Equal(t, 2, touched.Hits())

	_, err = env.seeds.Touch(ctx, "user-1", 999)
	require.ErrorIs(t, err, service.ErrNotFound)
}
