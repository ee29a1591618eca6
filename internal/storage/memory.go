package storage

import (
	"context"
	"sync"

	"github.com/valter-silva-au/taskdesk/pkg/models"
)

type memoryTaskStore struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]models.Task
}

// NewMemoryTaskStore creates a TaskStore that keeps tasks in process memory.
// Its contents are lost on Close.
func NewMemoryTaskStore() TaskStore {
	return &memoryTaskStore{tasks: make(map[string]models.Task)}
}

func (s *memoryTaskStore) Create(_ context.Context, task models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task = newTask(task)
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	return &task, nil
}

func (s *memoryTaskStore) List(_ context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Task, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.tasks[id])
	}
	return result, nil
}

func (s *memoryTaskStore) Get(_ context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &task, nil
}

func (s *memoryTaskStore) Update(_ context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&task)
	task.UpdatedAt = now()
	s.tasks[id] = task
	return &task, nil
}

func (s *memoryTaskStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memoryTaskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[string]models.Task)
	s.order = nil
	return nil
}
