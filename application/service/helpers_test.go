package service_test

import (
	"context"
	"github.com/playtaste/playtaste/application/service"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/playtaste/playtaste/infrastructure/persistence"
	"github.com/playtaste/playtaste/infrastructure/provider"
	"github.com/playtaste/playtaste/internal/testdb"
)

// fakeTasteGraph is an in-memory TasteGraph with canned responses.
type fakeTasteGraph struct {
	mu            sync.Mutex
	insights      []provider.Candidate
	insightsErr   error
	search        map[string][]provider.Candidate
	searchErr     error
	insightsCalls []provider.InsightsQuery
	searchCalls   []string
}

func (f *fakeTasteGraph) Insights(_ context.Context, q provider.InsightsQuery) ([]provider.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insightsCalls = append(f.insightsCalls, q)
	if f.insightsErr != nil {
		return nil, f.insightsErr
	}
	return f.insights, nil
}

func (f *fakeTasteGraph) Search(_ context.Context, query string) ([]provider.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search[query], nil
}

func (f *fakeTasteGraph) insightsCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.insightsCalls)
}

// fakeTextGenerator is an in-memory TextGenerator returning fixed text.
type fakeTextGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	calls []provider.ChatCompletionRequest
}

func (f *fakeTextGenerator) ChatCompletion(_ context.Context, req provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return provider.ChatCompletionResponse{}, f.err
	}
	return provider.NewChatCompletionResponse(f.text, "stop", provider.NewUsage(10, 20, 30)), nil
}

func (f *fakeTextGenerator) SupportsTextGeneration() bool { return true }

func (f *fakeTextGenerator) Close() error { return nil }

func (f *fakeTextGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// testEnv wires the full service stack over an in-memory database.
type testEnv struct {
	graph        *fakeTasteGraph
	generator    *fakeTextGenerator
	games        persistence.GameStore
	seedStore    persistence.SeedStore
	requests     *service.Requests
	seeds        *service.Seeds
	catalog      *service.Catalog
	explanations *service.Explanations
	queue        *service.Queue
	taskStore    persistence.TaskStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testdb.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	graph := &fakeTasteGraph{search: map[string][]provider.Candidate{}}
	generator := &fakeTextGenerator{text: "generated explanation"}

	games := persistence.NewGameStore(db)
	seedStore := persistence.NewSeedStore(db)
	requestStore := persistence.NewRequestStore(db)
	recStore := persistence.NewRecommendationStore(db)
	explanationStore := persistence.NewExplanationStore(db)
	taskStore := persistence.NewTaskStore(db)

	queue := service.NewQueue(taskStore, logger)
	catalog := service.NewCatalog(games, graph, logger)
	seeds := service.NewSeeds(seedStore, catalog, logger)
	requests := service.NewRequests(requestStore, recStore, seedStore, catalog, graph, queue, logger)
	explanations := service.NewExplanations(explanationStore, recStore, catalog, generator, queue, logger)

	return &testEnv{
		graph:        graph,
		generator:    generator,
		games:        games,
		seedStore:    seedStore,
		requests:     requests,
		seeds:        seeds,
		catalog:      catalog,
		explanations: explanations,
		queue:        queue,
		taskStore:    taskStore,
	}
}
