package persistence

import (
	"context"
	"testing"

	"github.com/playtaste/playtaste/domain/task"
	"github.com/playtaste/playtaste/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore(newMigratedDB(t))

	saved, err := store.Save(ctx, task.NewTask(
		task.OperationPrefetchExplanation,
		int(task.PriorityBackground),
		map[string]any{"recommendation_id": int64(7), "locale": "fr"},
	))
	require.NoError(t, err)
	assert.NotZero(t, saved.ID())

	got, err := store.Get(ctx, saved.ID())
	require.NoError(t, err)
	assert.Equal(t, task.OperationPrefetchExplanation, got.Operation())
	assert.Equal(t, "fr", got.Payload()["locale"])
}

func TestTaskStore_GetNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore(newMigratedDB(t))

	_, err := store.Get(ctx, 404)
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestTaskStore_SaveDeduplicates(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore(newMigratedDB(t))

	payload := map[string]any{"recommendation_id": int64(7), "locale": "fr"}

	_, err := store.Save(ctx, task.NewTask(
		task.OperationPrefetchExplanation, int(task.PriorityBackground), payload,
	))
	require.NoError(t, err)

	// Same operation and payload collapse into the queued task, even at
	// a different priority.
	_, err = store.Save(ctx, task.NewTask(
		task.OperationPrefetchExplanation, int(task.PriorityUserInitiated), payload,
	))
	require.NoError(t, err)

	count, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	pending, err := store.FindPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int(task.PriorityUserInitiated), pending[0].Priority())
}

func TestTaskStore_DifferentPayloadsQueueSeparately(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore(newMigratedDB(t))

	for _, locale := range []string{"en", "fr", "ja"} {
		_, err := store.Save(ctx, task.NewTask(
			task.OperationPrefetchExplanation,
			int(task.PriorityBackground),
			map[string]any{"recommendation_id": int64(7), "locale": locale},
		))
		require.NoError(t, err)
	}

	count, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestTaskStore_DequeueHighestPriorityFirst(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore(newMigratedDB(t))

	_, err := store.Save(ctx, task.NewTask(
		task.OperationPrefetchExplanation,
		int(task.PriorityBackground),
		map[string]any{"recommendation_id": int64(1), "locale": "en"},
	))
	require.NoError(t, err)

	_, err = store.Save(ctx, task.NewTask(
		task.OperationExplanation,
		int(task.PriorityUserInitiated),
		map[string]any{"recommendation_id": int64(2), "locale": "en"},
	))
	require.NoError(t, err)

	first, ok, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, task.OperationExplanation, first.Operation())

	second, ok, err := store.Dequeue(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, task.OperationPrefetchExplanation, second.Operation())

	_, ok, err = store.Dequeue(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "queue is drained")

	count, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTaskStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewTaskStore(newMigratedDB(t))

	saved, err := store.Save(ctx, task.NewTask(
		task.OperationExplanation,
		int(task.PriorityNormal),
		map[string]any{"recommendation_id": int64(1), "locale": "en"},
	))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, saved))

	_, err = store.Get(ctx, saved.ID())
	require.ErrorIs(t, err, database.ErrNotFound)
}
