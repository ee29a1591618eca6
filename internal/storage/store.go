// Package storage persists tasks. Every driver satisfies TaskStore and
// reports a missing id as ErrNotFound.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// TaskStore is a durable collection of tasks keyed by id.
type TaskStore interface {
	// Create stores a new task, assigning its id and timestamps.
	Create(ctx context.Context, task models.Task) (*models.Task, error)
	// List returns all tasks in insertion order.
	List(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	// Update sets the non-nil fields of patch and returns the stored task.
	Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open returns the TaskStore selected by cfg.Driver. Relative paths are
// resolved by the caller.
func Open(ctx context.Context, cfg models.StoreConfig) (TaskStore, error) {
	switch cfg.Driver {
	case models.DriverSQLite, "":
		return NewSQLiteTaskStore(cfg.Path)
	case models.DriverYAML:
		return NewYAMLTaskStore(cfg.Path), nil
	case models.DriverMongo:
		return NewMongoTaskStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case models.DriverMemory:
		return NewMemoryTaskStore(), nil
	default:
		return nil, fmt.Errorf("opening store: unknown driver %q", cfg.Driver)
	}
}

// GenerateID returns a new random task id.
func GenerateID() string {
	return uuid.New().String()
}

// now is replaced in tests that need deterministic timestamps.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// newTask stamps id and timestamps onto a task about to be created.
func newTask(task models.Task) models.Task {
	ts := now()
	task.ID = GenerateID()
	task.CreatedAt = ts
	task.UpdatedAt = ts
	return task
}
