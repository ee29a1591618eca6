package models

import "time"

// Status labels shown for a task's completed flag.
const (
	StatusLabelCompleted = "Completed"
	StatusLabelPending   = "Pending"
)

// Task is the single persisted entity: a to-do item with a store-generated,
// immutable identifier.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Completed   bool      `json:"completed" yaml:"completed"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// StatusLabel returns "Completed" or "Pending".
func (t Task) StatusLabel() string {
	if t.Completed {
		return StatusLabelCompleted
	}
	return StatusLabelPending
}

// TaskPatch carries the mutable fields of an update. A nil field is left
// unchanged by the store.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Apply copies the non-nil patch fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
