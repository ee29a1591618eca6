package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/valter-silva-au/taskdesk/pkg/models"
	"gopkg.in/yaml.v3"
)

// TaskFile is the top-level structure of the YAML task file. Tasks are kept
// as a list so the file order is the insertion order.
type TaskFile struct {
	Version string        `yaml:"version"`
	Tasks   []models.Task `yaml:"tasks"`
}

// yamlTaskStore keeps every task in one YAML document. Each operation
// reloads the file under an exclusive lock, so several processes may share
// it.
type yamlTaskStore struct {
	path string
	mu   sync.Mutex
}

// NewYAMLTaskStore creates a TaskStore backed by the YAML file at path.
// The file is created on the first write.
func NewYAMLTaskStore(path string) TaskStore {
	return &yamlTaskStore{path: path}
}

func (s *yamlTaskStore) lockPath() string {
	return s.path + ".lock"
}

// withFile runs fn on the current file contents while holding both the
// in-process mutex and the cross-process lock. When fn returns save=true
// the modified contents are written back.
func (s *yamlTaskStore) withFile(fn func(tf *TaskFile) (save bool, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	lock, err := acquireLock(s.lockPath())
	if err != nil {
		return err
	}
	defer func() { _ = lock.release() }()

	tf, err := s.load()
	if err != nil {
		return err
	}
	save, err := fn(tf)
	if err != nil {
		return err
	}
	if !save {
		return nil
	}
	return s.save(tf)
}

func (s *yamlTaskStore) load() (*TaskFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &TaskFile{Version: "1.0"}, nil
		}
		return nil, fmt.Errorf("loading tasks: %w", err)
	}

	var tf TaskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("loading tasks: parsing YAML: %w", err)
	}
	if tf.Version == "" {
		tf.Version = "1.0"
	}
	return &tf, nil
}

// save writes to a temp file and renames it over the original so readers
// never observe a half-written document.
func (s *yamlTaskStore) save(tf *TaskFile) error {
	data, err := yaml.Marshal(tf)
	if err != nil {
		return fmt.Errorf("saving tasks: marshaling YAML: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("saving tasks: writing file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("saving tasks: replacing file: %w", err)
	}
	return nil
}

func indexOf(tasks []models.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *yamlTaskStore) Create(_ context.Context, task models.Task) (*models.Task, error) {
	task = newTask(task)
	err := s.withFile(func(tf *TaskFile) (bool, error) {
		tf.Tasks = append(tf.Tasks, task)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &task, nil
}

func (s *yamlTaskStore) List(_ context.Context) ([]models.Task, error) {
	var result []models.Task
	err := s.withFile(func(tf *TaskFile) (bool, error) {
		result = make([]models.Task, len(tf.Tasks))
		copy(result, tf.Tasks)
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return result, nil
}

func (s *yamlTaskStore) Get(_ context.Context, id string) (*models.Task, error) {
	var found *models.Task
	err := s.withFile(func(tf *TaskFile) (bool, error) {
		i := indexOf(tf.Tasks, id)
		if i < 0 {
			return false, ErrNotFound
		}
		t := tf.Tasks[i]
		found = &t
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *yamlTaskStore) Update(_ context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	var updated *models.Task
	err := s.withFile(func(tf *TaskFile) (bool, error) {
		i := indexOf(tf.Tasks, id)
		if i < 0 {
			return false, ErrNotFound
		}
		patch.Apply(&tf.Tasks[i])
		tf.Tasks[i].UpdatedAt = now()
		t := tf.Tasks[i]
		updated = &t
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *yamlTaskStore) Delete(_ context.Context, id string) error {
	return s.withFile(func(tf *TaskFile) (bool, error) {
		i := indexOf(tf.Tasks, id)
		if i < 0 {
			return false, ErrNotFound
		}
		tf.Tasks = append(tf.Tasks[:i], tf.Tasks[i+1:]...)
		return true, nil
	})
}

func (s *yamlTaskStore) Close() error {
	return nil
}
