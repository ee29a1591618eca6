package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/valter-silva-au/taskdesk/internal/client"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// Form fields in focus order.
const (
	fieldTitle = iota
	fieldComment
	fieldStatus
	fieldCount
)

const msgTitleRequired = "Please enter task title"

// taskForm is the add/edit dialog. editID is empty when adding.
type taskForm struct {
	editID    string
	title     textinput.Model
	comment   textinput.Model
	completed bool
	focus     int
	err       string
}

func newFormInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.SetValue(value)
	in.CursorEnd()
	return in
}

func newAddForm() *taskForm {
	f := &taskForm{
		title:   newFormInput("Task title", ""),
		comment: newFormInput("Optional comment", ""),
	}
	f.title.Focus()
	return f
}

func newEditForm(task models.Task) *taskForm {
	f := &taskForm{
		editID:    task.ID,
		title:     newFormInput("Task title", task.Title),
		comment:   newFormInput("Optional comment", task.Description),
		completed: task.Completed,
	}
	f.title.Focus()
	return f
}

func (f *taskForm) editing() bool {
	return f.editID != ""
}

func (f *taskForm) heading() string {
	if f.editing() {
		return "Edit Task"
	}
	return "Add Task"
}

// setFocus moves focus to field and returns the cursor command of the
// input that gained it.
func (f *taskForm) setFocus(field int) tea.Cmd {
	f.focus = field
	f.title.Blur()
	f.comment.Blur()
	switch field {
	case fieldTitle:
		return f.title.Focus()
	case fieldComment:
		return f.comment.Focus()
	}
	return nil
}

// formAction is the outcome of a key press on the form.
type formAction int

const (
	formContinue formAction = iota
	formSubmit
	formCancel
)

// handleKey edits the focused field. Enter submits only when the title
// passes the client-side rule.
func (f *taskForm) handleKey(msg tea.KeyMsg) (formAction, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return formCancel, nil
	case tea.KeyEnter:
		if f.title.Value() == "" {
			f.err = msgTitleRequired
			f.setFocus(fieldTitle)
			return formContinue, nil
		}
		return formSubmit, nil
	case tea.KeyTab, tea.KeyDown:
		return formContinue, f.setFocus((f.focus + 1) % fieldCount)
	case tea.KeyShiftTab, tea.KeyUp:
		return formContinue, f.setFocus((f.focus - 1 + fieldCount) % fieldCount)
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
		if f.title.Value() != "" {
			f.err = ""
		}
	case fieldComment:
		f.comment, cmd = f.comment.Update(msg)
	case fieldStatus:
		switch msg.Type {
		case tea.KeySpace, tea.KeyLeft, tea.KeyRight:
			f.completed = !f.completed
		}
	}
	return formContinue, cmd
}

// request builds the API body. An empty comment is left out because the
// API rejects empty descriptions.
func (f *taskForm) request() client.TaskRequest {
	title := f.title.Value()
	completed := f.completed
	req := client.TaskRequest{Title: &title, Completed: &completed}
	if comment := f.comment.Value(); comment != "" {
		req.Description = &comment
	}
	return req
}

func statusLabel(completed bool) string {
	if completed {
		return models.StatusLabelCompleted
	}
	return models.StatusLabelPending
}
