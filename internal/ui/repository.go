// Package ui is the terminal task manager: a Bubble Tea program that lists,
// searches, sorts and pages tasks fetched from the API, and adds, edits and
// deletes them through forms and a confirm dialog.
package ui

import "github.com/valter-silva-au/taskdesk/pkg/models"

// Repository is the in-memory task list the UI renders from. It is only
// touched from the Bubble Tea update loop.
type Repository struct {
	tasks []models.Task
}

// NewRepository creates an empty Repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Replace swaps in a freshly fetched list.
func (r *Repository) Replace(all []models.Task) {
	r.tasks = append([]models.Task(nil), all...)
}

// Append adds a created task at the end.
func (r *Repository) Append(task models.Task) {
	r.tasks = append(r.tasks, task)
}

// ReplaceByID overwrites the task with the given id in place, keeping that
// id even if task carries another one. It reports whether id was present.
func (r *Repository) ReplaceByID(id string, task models.Task) bool {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			task.ID = id
			r.tasks[i] = task
			return true
		}
	}
	return false
}

// RemoveByID drops the task with the given id and reports whether it was
// present.
func (r *Repository) RemoveByID(id string) bool {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i:i], r.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// All returns a copy of the tasks in display order.
func (r *Repository) All() []models.Task {
	return append([]models.Task(nil), r.tasks...)
}

// Len returns the number of tasks.
func (r *Repository) Len() int {
	return len(r.tasks)
}
