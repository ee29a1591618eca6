// Package core contains the task business logic: payload validation, the
// TaskService that fronts the store, and configuration loading.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/valter-silva-au/taskdesk/internal/storage"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// ErrTaskNotFound is returned when no task has the requested id.
var ErrTaskNotFound = storage.ErrNotFound

// TaskService defines the task operations shared by the HTTP API and the
// MCP server. Create and update validate their input before touching the
// store.
type TaskService interface {
	CreateTask(ctx context.Context, in TaskInput) (*models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, in TaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type taskService struct {
	store  storage.TaskStore
	events EventLogger
	logger *log.Logger
}

// NewTaskService creates a TaskService over store. events and logger may be
// nil.
func NewTaskService(store storage.TaskStore, events EventLogger, logger *log.Logger) TaskService {
	return &taskService{store: store, events: events, logger: logger}
}

func (s *taskService) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	if err := ValidateTaskInput(in); err != nil {
		return nil, err
	}

	task, err := s.store.Create(ctx, in.Task())
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.logEvent(EventTaskCreated, map[string]any{"task_id": task.ID, "title": task.Title})
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *taskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, id string, in TaskInput) (*models.Task, error) {
	if err := ValidateTaskInput(in); err != nil {
		return nil, err
	}

	// Read the previous state only when the completed flag may flip, so the
	// completion event is emitted once per transition.
	var wasCompleted bool
	if in.Completed != nil && *in.Completed && s.events != nil {
		prev, err := s.store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, ErrTaskNotFound
			}
			return nil, fmt.Errorf("updating task %s: %w", id, err)
		}
		wasCompleted = prev.Completed
	}

	task, err := s.store.Update(ctx, id, in.Patch())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}

	s.logEvent(EventTaskUpdated, map[string]any{"task_id": task.ID, "completed": task.Completed})
	if task.Completed && !wasCompleted && in.Completed != nil {
		s.logEvent(EventTaskCompleted, map[string]any{"task_id": task.ID})
	}
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("deleting task %s: %w", id, err)
	}

	s.logEvent(EventTaskDeleted, map[string]any{"task_id": id})
	return nil
}

// logEvent records an event. Event log failures never fail the operation.
func (s *taskService) logEvent(eventType string, data map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.LogEvent(eventType, data); err != nil && s.logger != nil {
		s.logger.Warn("writing event", "type", eventType, "err", err)
	}
}
