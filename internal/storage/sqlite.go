package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// sqliteTaskStore keeps tasks in a single SQLite table. The seq column
// records insertion order; id is the public identifier.
type sqliteTaskStore struct {
	db *sql.DB
}

// NewSQLiteTaskStore opens (creating if needed) the SQLite database at
// dbPath and ensures the tasks table exists.
func NewSQLiteTaskStore(dbPath string) (TaskStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("opening sqlite store: path must not be empty")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("opening sqlite store: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	if dbPath == ":memory:" {
		// Every new connection to :memory: is a fresh database.
		db.SetMaxOpenConns(1)
	}

	s := &sqliteTaskStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	return s, nil
}

func (s *sqliteTaskStore) migrate() error {
	const schema = `
		CREATE TABLE IF NOT EXISTS tasks (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}
	return nil
}

func (s *sqliteTaskStore) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	task = newTask(task)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, task.ID, task.Title, task.Description, task.Completed, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	return &task, nil
}

func (s *sqliteTaskStore) List(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, completed, created_at, updated_at
		FROM tasks ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}
	return tasks, nil
}

func (s *sqliteTaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, completed, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id)

	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &t, nil
}

func (s *sqliteTaskStore) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			title = COALESCE(?, title),
			description = COALESCE(?, description),
			completed = COALESCE(?, completed),
			updated_at = ?
		WHERE id = ?
	`, patch.Title, patch.Description, patch.Completed, now(), id)
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *sqliteTaskStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteTaskStore) Close() error {
	return s.db.Close()
}
