package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/valter-silva-au/taskdesk/internal/client"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// NotificationTTL is how long a notification stays on screen.
const NotificationTTL = 3 * time.Second

// TaskAPI is the subset of the API client the UI needs.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, req client.TaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, req client.TaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirm
)

type noticeKind int

const (
	noticeSuccess noticeKind = iota
	noticeError
)

type notification struct {
	id   int
	kind noticeKind
	text string
}

// Messages carrying API results back to the model.
type (
	tasksLoadedMsg struct {
		tasks []models.Task
		err   error
	}
	taskCreatedMsg struct {
		task *models.Task
		err  error
	}
	taskUpdatedMsg struct {
		id   string
		task *models.Task
		err  error
	}
	taskDeletedMsg struct {
		id  string
		err error
	}
	clearNoticeMsg struct {
		id int
	}
)

// Model is the task manager screen.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	api    TaskAPI
	repo   *Repository

	mode      mode
	loading   bool
	pending   int
	search    textinput.Model
	sort      SortState
	page      int
	pageSize  int
	cursor    int
	form      *taskForm
	confirmID string
	notice    *notification
	noticeSeq int

	width  int
	height int
}

// NewModel creates the UI over api. Requests run under a context derived
// from ctx that is cancelled when the user quits.
func NewModel(ctx context.Context, api TaskAPI, pageSize int) Model {
	if pageSize <= 0 {
		pageSize = PageSizes[0]
	}
	ctx, cancel := context.WithCancel(ctx)
	return Model{
		ctx:      ctx,
		cancel:   cancel,
		api:      api,
		repo:     NewRepository(),
		search:   newSearchInput(),
		loading:  true,
		pageSize: pageSize,
	}
}

func (m Model) Init() tea.Cmd {
	return m.fetchTasks()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}

	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			if isCancelled(msg.err) {
				return m, nil
			}
			return m.notify(noticeError, "Failed to fetch tasks")
		}
		m.repo.Replace(msg.tasks)
		m.clampView()
		return m, nil

	case taskCreatedMsg:
		m.pending--
		if msg.err != nil {
			return m.notifyFailure("Failed to add task", msg.err)
		}
		m.repo.Append(*msg.task)
		return m.notify(noticeSuccess, "Task added successfully")

	case taskUpdatedMsg:
		m.pending--
		if msg.err != nil {
			return m.notifyFailure("Failed to update task", msg.err)
		}
		m.repo.ReplaceByID(msg.id, *msg.task)
		m.clampView()
		return m.notify(noticeSuccess, "Task updated successfully")

	case taskDeletedMsg:
		m.pending--
		if msg.err != nil {
			return m.notifyFailure("Failed to delete task", msg.err)
		}
		m.repo.RemoveByID(msg.id)
		m.clampView()
		return m.notify(noticeSuccess, "Task deleted successfully")

	case clearNoticeMsg:
		if m.notice != nil && m.notice.id == msg.id {
			m.notice = nil
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

// updateInputs forwards other messages, such as cursor blinks, to the
// text input that has focus.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.mode == modeSearch:
		m.search, cmd = m.search.Update(msg)
	case m.mode == modeForm && m.form.focus == fieldTitle:
		m.form.title, cmd = m.form.title.Update(msg)
	case m.mode == modeForm && m.form.focus == fieldComment:
		m.form.comment, cmd = m.form.comment.Update(msg)
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.pageTasks())-1 {
			m.cursor++
		}
	case "left", "h", "pgup":
		if m.page > 0 {
			m.page--
			m.cursor = 0
		}
	case "right", "l", "pgdown":
		if m.page < PageCount(len(m.visibleTasks()), m.pageSize)-1 {
			m.page++
			m.cursor = 0
		}
	case "home", "g":
		m.page, m.cursor = 0, 0
	case "end", "G":
		m.page = PageCount(len(m.visibleTasks()), m.pageSize) - 1
		m.cursor = 0
	case "/":
		m.mode = modeSearch
		return m, m.search.Focus()
	case "esc":
		if m.search.Value() != "" {
			m.search.Reset()
			m.page, m.cursor = 0, 0
		}
	case "1":
		m.sort = m.sort.Toggle(ColumnTitle)
	case "2":
		m.sort = m.sort.Toggle(ColumnComment)
	case "3":
		m.sort = m.sort.Toggle(ColumnStatus)
	case "s":
		m.pageSize = NextPageSize(m.pageSize)
		m.page, m.cursor = 0, 0
	case "a":
		m.form = newAddForm()
		m.mode = modeForm
	case "e", "enter":
		if task, ok := m.selected(); ok {
			m.form = newEditForm(task)
			m.mode = modeForm
		}
	case "d", "delete":
		if task, ok := m.selected(); ok {
			m.confirmID = task.ID
			m.mode = modeConfirm
		}
	}
	return m, nil
}

func newSearchInput() textinput.Model {
	in := textinput.New()
	in.Prompt = "Search: "
	in.Placeholder = "Search tasks..."
	return in
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.Blur()
		m.mode = modeList
		return m, nil
	case tea.KeyEsc:
		m.search.Reset()
		m.search.Blur()
		m.mode = modeList
		m.page, m.cursor = 0, 0
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.page, m.cursor = 0, 0
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, cmd := m.form.handleKey(msg)
	switch action {
	case formCancel:
		m.form = nil
		m.mode = modeList
	case formSubmit:
		form := m.form
		m.form = nil
		m.mode = modeList
		m.pending++
		if form.editing() {
			return m, m.updateTask(form.editID, form.request())
		}
		return m, m.createTask(form.request())
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		id := m.confirmID
		m.confirmID = ""
		m.mode = modeList
		m.pending++
		return m, m.deleteTask(id)
	case "n", "N", "esc":
		m.confirmID = ""
		m.mode = modeList
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

// notify shows text and schedules its removal. A newer notification
// replaces an older one; the stale clear message is ignored.
func (m Model) notify(kind noticeKind, text string) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	id := m.noticeSeq
	m.notice = &notification{id: id, kind: kind, text: text}
	return m, tea.Tick(NotificationTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}

// notifyFailure appends the server's message when there is one.
func (m Model) notifyFailure(text string, err error) (tea.Model, tea.Cmd) {
	if isCancelled(err) {
		return m, nil
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		text += ": " + apiErr.Message
	}
	return m.notify(noticeError, text)
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// visibleTasks is the repository after search and sort.
func (m Model) visibleTasks() []models.Task {
	return Sort(Filter(m.repo.All(), m.search.Value()), m.sort)
}

func (m Model) pageTasks() []models.Task {
	return Paginate(m.visibleTasks(), m.page, m.pageSize)
}

func (m Model) selected() (models.Task, bool) {
	tasks := m.pageTasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[m.cursor], true
}

// clampView keeps page and cursor valid after the list shrinks.
func (m *Model) clampView() {
	m.page = ClampPage(m.page, len(m.visibleTasks()), m.pageSize)
	if n := len(m.pageTasks()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) fetchTasks() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		tasks, err := api.ListTasks(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m Model) createTask(req client.TaskRequest) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		task, err := api.CreateTask(ctx, req)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (m Model) updateTask(id string, req client.TaskRequest) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		task, err := api.UpdateTask(ctx, id, req)
		return taskUpdatedMsg{id: id, task: task, err: err}
	}
}

func (m Model) deleteTask(id string) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		return taskDeletedMsg{id: id, err: api.DeleteTask(ctx, id)}
	}
}
