package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insightsFixture = `{
	"results": {
		"entities": [
			{
				"name": "Hades",
				"entity_id": "ent-hades",
				"properties": {
					"description": "A rogue-like dungeon crawler.",
					"external": {
						"steam": [{"id": "1145360"}],
						"metacritic": [{"critic_rating": 93}]
					}
				},
				"query": {
					"affinity": 0.97,
					"explainability": {
						"signal.interests.entities": [
							{"entity_id": "ent-seed-1", "score": 0.6},
							{"entity_id": "ent-seed-2", "score": 0.4}
						]
					}
				}
			},
			{
				"name": "Mystery Game",
				"entity_id": "ent-mystery",
				"properties": {
					"external": {
						"steam": {"id": 730}
					}
				},
				"query": {"affinity": 0.5}
			}
		]
	}
}`

func TestQlooClient_Insights(t *testing.T) {
	var gotQuery url.Values
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/insights/", r.URL.Path)
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("X-Api-Key")
		_, _ = w.Write([]byte(insightsFixture))
	}))
	defer srv.Close()

	c := NewQlooClient("test-key", WithQlooBaseURL(srv.URL))

	candidates, err := c.Insights(context.Background(), InsightsQuery{
		EntityIDs:     []string{"ent-seed-1", "ent-seed-2"},
		TagIDs:        []string{"urn:tag:genre:media:rpg"},
		ExcludeTagIDs: []string{"urn:tag:genre:media:sports"},
		Take:          10,
		Page:          1,
	})
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "urn:entity:videogame", gotQuery.Get("filter.type"))
	assert.Equal(t, "ent-seed-1,ent-seed-2", gotQuery.Get("signal.interests.entities"))
	assert.Equal(t, "true", gotQuery.Get("feature.explainability"))
	assert.Equal(t, "10", gotQuery.Get("take"))
	assert.Equal(t, "1", gotQuery.Get("page"))
	assert.Equal(t, "urn:tag:genre:media:rpg", gotQuery.Get("filter.tags"))
	assert.Equal(t, "urn:tag:genre:media:sports", gotQuery.Get("filter.exclude.tags"))

	require.Len(t, candidates, 2)

	hades := candidates[0]
	assert.Equal(t, "Hades", hades.Name)
	assert.Equal(t, "ent-hades", hades.EntityID)
	assert.Equal(t, "A rogue-like dungeon crawler.", hades.Description)
	assert.InDelta(t, 0.97, hades.Affinity, 1e-9)
	assert.Equal(t, int64(1145360), hades.SteamAppID)
	assert.InDelta(t, 93, hades.Metacritic, 1e-9)
	assert.Equal(t, map[string]float64{"ent-seed-1": 0.6, "ent-seed-2": 0.4}, hades.Explainability)
	assert.NotEmpty(t, hades.Raw)

	// External refs may arrive as a bare object with a numeric id.
	assert.Equal(t, int64(730), candidates[1].SteamAppID)
	assert.Empty(t, candidates[1].Explainability)
}

func TestQlooClient_InsightsOmitsEmptyTagFilters(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"results": {"entities": []}}`))
	}))
	defer srv.Close()

	c := NewQlooClient("test-key", WithQlooBaseURL(srv.URL))

	_, err := c.Insights(context.Background(), InsightsQuery{
		EntityIDs: []string{"ent-1"},
		Take:      10,
		Page:      1,
	})
	require.NoError(t, err)

	assert.False(t, gotQuery.Has("filter.tags"))
	assert.False(t, gotQuery.Has("filter.exclude.tags"))
}

func TestQlooClient_Search(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{
			"results": [
				{"name": "Portal 2", "entity_id": "ent-portal-2", "properties": {"description": "Puzzle sequel.", "external": {"steam": [{"id": "620"}]}}},
				{"name": "Portal", "entity_id": "ent-portal", "properties": {"external": {"steam": [{"id": "400"}]}}}
			]
		}`))
	}))
	defer srv.Close()

	c := NewQlooClient("test-key", WithQlooBaseURL(srv.URL))

	candidates, err := c.Search(context.Background(), "Portal 2")
	require.NoError(t, err)

	assert.Equal(t, "Portal 2", gotQuery.Get("query"))
	assert.Equal(t, "urn:entity:videogame", gotQuery.Get("types"))

	require.Len(t, candidates, 2)
	assert.Equal(t, "ent-portal-2", candidates[0].EntityID)
	assert.Equal(t, int64(620), candidates[0].SteamAppID)
}

func TestQlooClient_UpstreamErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer srv.Close()

	c := NewQlooClient("bad-key", WithQlooBaseURL(srv.URL))

	_, err := c.Insights(context.Background(), InsightsQuery{EntityIDs: []string{"e"}, Take: 10, Page: 1})
	require.Error(t, err)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusForbidden, pe.StatusCode())
	assert.Equal(t, "insights", pe.Operation())
}

func TestQlooClient_SingleAttemptByDefault(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewQlooClient("test-key", WithQlooBaseURL(srv.URL))

	_, err := c.Insights(context.Background(), InsightsQuery{EntityIDs: []string{"e"}, Take: 10, Page: 1})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "a failing insights call must not be retried")
}

func TestQlooClient_CachesInsightsResponses(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"results": {"entities": []}}`))
	}))
	defer srv.Close()

	c := NewQlooClientFromConfig(QlooConfig{
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		CacheDir: t.TempDir(),
		CacheTTL: time.Hour,
	})

	q := InsightsQuery{EntityIDs: []string{"e1"}, Take: 10, Page: 1}
	for i := 0; i < 3; i++ {
		_, err := c.Insights(context.Background(), q)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, calls)
}
