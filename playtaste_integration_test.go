package playtaste_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playtaste/playtaste"
	"github.com/playtaste/playtaste/application/service"
	"github.com/playtaste/playtaste/domain/catalog"
	"github.com/playtaste/playtaste/domain/seed"
	"github.com/playtaste/playtaste/infrastructure/persistence"
	"github.com/playtaste/playtaste/infrastructure/provider"
	"github.com/playtaste/playtaste/internal/database"
)

const testPollPeriod = 50 * time.Millisecond

// stubGraph returns canned candidates for any insights call.
type stubGraph struct {
	candidates []provider.Candidate
}

func (g stubGraph) Insights(_ context.Context, _ provider.InsightsQuery) ([]provider.Candidate, error) {
	return g.candidates, nil
}

func (g stubGraph) Search(_ context.Context, _ string) ([]provider.Candidate, error) {
	return nil, nil
}

// stubText answers every chat completion with a fixed sentence.
type stubText struct{}

func (stubText) ChatCompletion(_ context.Context, _ provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	return provider.NewChatCompletionResponse("a cooperative shooter close to your library", "stop", provider.Usage{}), nil
}

func (stubText) SupportsTextGeneration() bool { return true }

func (stubText) Close() error { return nil }

// seedCatalog writes games and seeds straight into the database file
// before the client opens it.
func seedCatalog(t *testing.T, dbPath string, userID string, appIDs ...int64) {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewDatabase(ctx, "sqlite:///"+dbPath)
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	games := persistence.NewGameStore(db)
	seeds := persistence.NewSeedStore(db)
	now := time.Now()
	names := []string{"Team Fortress 2", "Portal 2", "Stardew Valley"}
	for i, appID := range appIDs {
		name := names[i%len(names)]
		game := catalog.ReconstructGame(
			appID, name, "E-"+name, "https://cdn.example.com/header.jpg",
			false, 0, false, "2011-04-19",
			true, true, true,
			now, now,
		)
		_, err := games.Save(ctx, game)
		require.NoError(t, err)
		_, err = seeds.Save(ctx, seed.NewSeed(userID, appID))
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())
}

func newTestClient(t *testing.T, graph service.TasteGraph) *playtaste.Client {
	t.Helper()

	dataDir := t.TempDir()
	dbPath := filepath.Join(dataDir, "playtaste.db")
	seedCatalog(t, dbPath, "user-1", 440, 620)

	client, err := playtaste.New(
		playtaste.WithSQLite(dbPath),
		playtaste.WithDataDir(dataDir),
		playtaste.WithTasteGraph(graph),
		playtaste.WithTextProvider(stubText{}),
		playtaste.WithWorkerPollPeriod(testPollPeriod),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestClient_RecommendationLifecycle(t *testing.T) {
	ctx := context.Background()
	graph := stubGraph{candidates: []provider.Candidate{
		{
			Name:           "Deep Rock Galactic",
			EntityID:       "E-DRG",
			Affinity:       0.93,
			Explainability: map[string]float64{"E-Team Fortress 2": 0.7},
			SteamAppID:     548430,
		},
	}}
	client := newTestClient(t, graph)

	created, err := client.Requests.Create(ctx, "user-1", service.RequestCreateParams{
		Name:    "co-op night",
		Filters: map[string]any{"take": 5},
	})
	require.NoError(t, err)
	require.Len(t, created.Recommendations, 1)
	assert.Equal(t, int64(548430), created.Recommendations[0].AppID())
	assert.Equal(t, 1, created.Recommendations[0].Rank())
	assert.NotEmpty(t, created.Request.PublicToken())

	// An identical request is served from storage, not the graph.
	again, err := client.Requests.Create(ctx, "user-1", service.RequestCreateParams{
		Filters: map[string]any{"take": 5},
	})
	require.NoError(t, err)
	assert.Equal(t, created.Request.ID(), again.Request.ID())

	// The share token exposes the same picks without identity.
	shared, err := client.Requests.GetShared(ctx, created.Request.PublicToken())
	require.NoError(t, err)
	assert.Len(t, shared.Recommendations, 1)
	assert.NotEmpty(t, shared.SeedGames)

	// Explanations are generated on demand and cached.
	expl, err := client.Explanations.GetOrGenerate(ctx, created.Recommendations[0].ID(), "en")
	require.NoError(t, err)
	assert.Contains(t, expl.Text(), "cooperative")

	cached, err := client.Explanations.GetOrGenerate(ctx, created.Recommendations[0].ID(), "en")
	require.NoError(t, err)
	assert.Equal(t, expl.ID(), cached.ID())
}

func TestClient_SeedManagement(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, stubGraph{})

	seeds, err := client.Seeds.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, seeds, 2)

	var before int
	for _, sd := range seeds {
		if sd.AppID() == 440 {
			before = sd.Hits()
		}
	}
	touched, err := client.Seeds.Touch(ctx, "user-1", 440)
	require.NoError(t, err)
	assert.Equal(t, before+1, touched.Hits())

	require.NoError(t, client.Seeds.Remove(ctx, "user-1", 440))

	seeds, err = client.Seeds.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, seeds, 1)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	client := newTestClient(t, stubGraph{})

	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Close(), service.ErrClientClosed)
}
