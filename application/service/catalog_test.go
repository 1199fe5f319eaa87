package service_test

import (
	"context"
	"fmt"
	"github.com/playtaste/playtaste/application/service"
	"testing"
	"time"

	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/infrastructure/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_NamesByEntityIDs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(440, "Team Fortress 2").WithEntityID("E-TF2"))
	require.NoError(t, err)
	_, err = env.games.Save(ctx, catalog.NewGame(570, "Dota 2").WithEntityID("E-DOTA"))
	require.NoError(t, err)

	names, err := env.catalog.NamesByEntityIDs(ctx, []string{"e-tf2", "E-DOTA", "e-missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"e-tf2":  "Team Fortress 2",
		"e-dota": "Dota 2",
	}, names)
}

func TestCatalog_SearchClampsPageSize(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for i := 0; i < 60; i++ {
		_, err := env.games.Save(ctx, catalog.NewGame(int64(1000+i), fmt.Sprintf("Game %02d", i)))
		require.NoError(t, err)
	}

	games, total, err := env.catalog.Search(ctx, service.CatalogSearchParams{Query: "game", Limit: 500})
	require.NoError(t, err)
	assert.Len(t, games, service.MaxCatalogPageSize)
	assert.Equal(t, int64(60), total)

	// Zero limit also means the maximum page.
	games, _, err = env.catalog.Search(ctx, service.CatalogSearchParams{Query: "game"})
	require.NoError(t, err)
	assert.Len(t, games, service.MaxCatalogPageSize)

	small, _, err := env.catalog.Search(ctx, service.CatalogSearchParams{Query: "game", Limit: 10, Offset: 55})
	require.NoError(t, err)
	assert.Len(t, small, 5)
}

func TestCatalog_SearchFilters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	var zero time.Time
	games := []catalog.Game{
		catalog.ReconstructGame(1, "Alpha Quest", "", "", false, 0, false, "2020", true, false, false, zero, zero),
		catalog.ReconstructGame(2, "Beta Quest", "", "", false, 18, false, "2021", true, true, true, zero, zero),
		catalog.ReconstructGame(3, "Gamma Quest", "", "", true, 0, true, "TBA", false, false, true, zero, zero),
	}
	for _, g := range games {
		_, err := env.games.Save(ctx, g)
		require.NoError(t, err)
	}

	linux, total, err := env.catalog.Search(ctx, service.CatalogSearchParams{Query: "quest", Platform: "linux"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, linux, 2)

	age := 12
	family, _, err := env.catalog.Search(ctx, service.CatalogSearchParams{Query: "quest", MaxAge: &age})
	require.NoError(t, err)
	assert.Len(t, family, 2)

	released := true
	out, _, err := env.catalog.Search(ctx, service.CatalogSearchParams{Query: "quest", Released: &released})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestCatalog_EnsureEntityAlreadyMapped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(440, "Team Fortress 2").WithEntityID("E-TF2"))
	require.NoError(t, err)

	game, err := env.catalog.EnsureEntity(ctx, 440)
	require.NoError(t, err)
	assert.Equal(t, "E-TF2", game.EntityID())
	assert.Empty(t, env.graph.searchCalls, "no lookup when a mapping exists")
}

func TestCatalog_EnsureEntityPrefersExactStoreID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(1145360, "Hades"))
	require.NoError(t, err)
	env.graph.search["Hades"] = []provider.Candidate{
		{Name: "Hades (film)", EntityID: "E-FILM"},
		{Name: "Hades", EntityID: "E-GAME", SteamAppID: 1145360},
	}

	game, err := env.catalog.EnsureEntity(ctx, 1145360)
	require.NoError(t, err)
	assert.Equal(t, "E-GAME", game.EntityID())
}

func TestCatalog_EnsureEntityTitleMatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(620, "Portal 2"))
	require.NoError(t, err)
	env.graph.search["Portal 2"] = []provider.Candidate{
		{Name: "Portal 2 Soundtrack", EntityID: "E-OST"},
		{Name: "  portal 2  ", EntityID: "E-GAME"},
	}

	game, err := env.catalog.EnsureEntity(ctx, 620)
	require.NoError(t, err)
	assert.Equal(t, "E-GAME", game.EntityID())
}

func TestCatalog_EnsureEntityTitleMatchIgnoresPunctuation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(220, "Half-Life 2"))
	require.NoError(t, err)
	env.graph.search["Half-Life 2"] = []provider.Candidate{
		{Name: "Half-Life 2: The Art Book", EntityID: "E-BOOK"},
		{Name: "Half Life 2", EntityID: "E-GAME"},
	}

	game, err := env.catalog.EnsureEntity(ctx, 220)
	require.NoError(t, err)
	assert.Equal(t, "E-GAME", game.EntityID())
}

func TestCatalog_EnsureEntityDescriptionMatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(570, "Dota 2"))
	require.NoError(t, err)
	env.graph.search["Dota 2"] = []provider.Candidate{
		{Name: "MOBA Compendium", EntityID: "E-OTHER", Description: "An overview of the genre"},
		{Name: "Defense of the Ancients", EntityID: "E-GAME", Description: "Dota 2 is a MOBA by Valve"},
	}

	game, err := env.catalog.EnsureEntity(ctx, 570)
	require.NoError(t, err)
	assert.Equal(t, "E-GAME", game.EntityID())
}

func TestCatalog_EnsureEntityFallsBackToFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(730, "Counter-Strike 2"))
	require.NoError(t, err)
	env.graph.search["Counter-Strike 2"] = []provider.Candidate{
		{Name: "CS Esports", EntityID: "E-FIRST"},
		{Name: "CS Documentary", EntityID: "E-SECOND"},
	}

	game, err := env.catalog.EnsureEntity(ctx, 730)
	require.NoError(t, err)
	assert.Equal(t, "E-FIRST", game.EntityID())
}

func TestCatalog_EnsureEntityNoCandidates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.games.Save(ctx, catalog.NewGame(999, "Obscure Title"))
	require.NoError(t, err)

	_, err = env.catalog.EnsureEntity(ctx, 999)
	require.ErrorIs(t, err, service.ErrUnsupportedByCatalog)

	// Candidates without entity IDs do not count either.
	env.graph.search["Obscure Title"] = []provider.Candidate{{Name: "Obscure Title"}}
	_, err = env.catalog.EnsureEntity(ctx, 999)
	require.ErrorIs(t, err, service.ErrUnsupportedByCatalog)
}
