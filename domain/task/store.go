package task

import "context"

// TaskStore defines the interface for Task persistence operations.
// Existence of a row implies the task is pending; processed tasks are removed.
type TaskStore interface {
	// Get retrieves a task by ID.
	Get(ctx context.Context, id int64) (Task, error)

	// FindPending retrieves pending tasks ordered by priority.
	FindPending(ctx context.Context) ([]Task, error)

	// Save creates a new task. Tasks sharing a dedup_key collapse into
	// one row; the existing row wins and is returned.
	Save(ctx context.Context, task Task) (Task, error)

	// Delete removes a task.
	Delete(ctx context.Context, task Task) error

	// CountPending returns the number of pending tasks.
	CountPending(ctx context.Context) (int64, error)

	// Dequeue retrieves and removes the highest priority task.
	// The boolean is false when the queue is empty.
	Dequeue(ctx context.Context) (Task, bool, error)
}
