package service_test

import (
	"context"
	"errors"
	"github.com/playtaste/playtaste/application/service"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/playtaste/playtaste/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	calls atomic.Int64
	err   error
	panic bool
}

func (h *recordingHandler) Execute(context.Context, map[string]any) error {
	h.calls.Add(1)
	if h.panic {
		panic("handler exploded")
	}
	return h.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_ProcessOne(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	h := &recordingHandler{}
	registry := service.NewRegistry()
	registry.Register(task.OperationPrefetchExplanation, h)
	worker := service.NewWorker(env.taskStore, registry, discardLogger())

	require.NoError(t, env.queue.Enqueue(ctx, task.NewTask(
		task.OperationPrefetchExplanation,
		int(task.PriorityBackground),
		map[string]any{"recommendation_id": int64(1), "locale": "en"},
	)))

	processed, err := worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, int64(1), h.calls.Load())

	processed, err = worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestWorker_FailedTaskIsDropped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	h := &recordingHandler{err: errors.New("boom")}
	registry := service.NewRegistry()
	registry.Register(task.OperationPrefetchExplanation, h)
	worker := service.NewWorker(env.taskStore, registry, discardLogger())

	require.NoError(t, env.queue.Enqueue(ctx, task.NewTask(
		task.OperationPrefetchExplanation,
		int(task.PriorityBackground),
		map[string]any{"recommendation_id": int64(1), "locale": "en"},
	)))

	processed, err := worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	// The failed task does not linger in the queue.
	pending, err := env.queue.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestWorker_RecoversFromPanic(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	h := &recordingHandler{panic: true}
	registry := service.NewRegistry()
	registry.Register(task.OperationPrefetchExplanation, h)
	worker := service.NewWorker(env.taskStore, registry, discardLogger())

	require.NoError(t, env.queue.Enqueue(ctx, task.NewTask(
		task.OperationPrefetchExplanation,
		int(task.PriorityBackground),
		map[string]any{"recommendation_id": int64(1), "locale": "en"},
	)))

	processed, err := worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, int64(1), h.calls.Load())
}

func TestWorker_StartStop(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	h := &recordingHandler{}
	registry := service.NewRegistry()
	registry.Register(task.OperationPrefetchExplanation, h)
	worker := service.NewWorker(env.taskStore, registry, discardLogger()).WithPollPeriod(time.Millisecond)

	require.NoError(t, env.queue.Enqueue(ctx, task.NewTask(
		task.OperationPrefetchExplanation,
		int(task.PriorityBackground),
		map[string]any{"recommendation_id": int64(1), "locale": "en"},
	)))

	worker.Start(ctx)
	assert.Eventually(t, func() bool {
		return h.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)
	worker.Stop()
}

func TestQueue_ListFiltersByOperation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.queue.Enqueue(ctx, task.NewTask(
		task.OperationPrefetchExplanation,
		int(task.PriorityBackground),
		map[string]any{"recommendation_id": int64(1), "locale": "en"},
	)))
	require.NoError(t, env.queue.Enqueue(ctx, task.NewTask(
		task.OperationExplanation,
		int(task.PriorityUserInitiated),
		map[string]any{"recommendation_id": int64(2), "locale": "en"},
	)))

	all, err := env.queue.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, task.OperationExplanation, all[0].Operation(), "highest priority first")

	op := task.OperationPrefetchExplanation
	filtered, err := env.queue.List(ctx, &service.TaskListParams{Operation: &op})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, op, filtered[0].Operation())
}
