package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/valter-silva-au/taskdesk/internal/client"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// fakeTaskAPI implements TaskAPI in memory.
type fakeTaskAPI struct {
	mu       sync.Mutex
	tasks    []models.Task
	nextID   int
	listErr  error
	writeErr error
	requests []client.TaskRequest
	lastCtx  context.Context
}

func (f *fakeTaskAPI) ListTasks(ctx context.Context) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCtx = ctx
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeTaskAPI) CreateTask(ctx context.Context, req client.TaskRequest) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.nextID++
	task := models.Task{ID: fmt.Sprintf("id-%d", f.nextID), Title: *req.Title}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	f.tasks = append(f.tasks, task)
	return &task, nil
}

func (f *fakeTaskAPI) UpdateTask(ctx context.Context, id string, req client.TaskRequest) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Title = *req.Title
			if req.Description != nil {
				f.tasks[i].Description = *req.Description
			}
			if req.Completed != nil {
				f.tasks[i].Completed = *req.Completed
			}
			task := f.tasks[i]
			return &task, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "Task Not Found"}
}

func (f *fakeTaskAPI) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &client.APIError{StatusCode: 404, Message: "Task Not Found"}
}

func seedTasks(n int) []models.Task {
	tasks := make([]models.Task, n)
	for i := range tasks {
		tasks[i] = models.Task{
			ID:          fmt.Sprintf("seed-%02d", i),
			Title:       fmt.Sprintf("Task %02d", i),
			Description: fmt.Sprintf("comment %02d", i),
			Completed:   i%2 == 1,
		}
	}
	return tasks
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// send applies msg and returns the updated model and command.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return model, cmd
}

// sendAndRun applies msg and then feeds the result of its command back in.
func sendAndRun(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	m, cmd := send(t, m, msg)
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return send(t, m, cmd())
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		if r == ' ' {
			m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m, _ = send(t, m, keyRunes(string(r)))
	}
	return m
}

func loadedModel(t *testing.T, api *fakeTaskAPI) Model {
	t.Helper()
	m := NewModel(context.Background(), api, 10)
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init should return a fetch command")
	}
	m, _ = send(t, m, cmd())
	return m
}

func TestModel_InitLoads(t *testing.T) {
	api := &fakeTaskAPI{tasks: seedTasks(3)}
	m := NewModel(context.Background(), api, 10)
	if !m.loading {
		t.Fatal("model should start loading")
	}
	if !strings.Contains(m.View(), "Loading tasks...") {
		t.Error("view should show the loading indicator")
	}

	m, _ = send(t, m, m.Init()())
	if m.loading {
		t.Error("loading should be false after fetch")
	}
	if m.repo.Len() != 3 {
		t.Errorf("repo has %d tasks, want 3", m.repo.Len())
	}
	if !strings.Contains(m.View(), "Total 3 items") {
		t.Errorf("footer missing total: %s", m.View())
	}
}

func TestModel_FetchFailure(t *testing.T) {
	api := &fakeTaskAPI{listErr: errors.New("connection refused")}
	m := NewModel(context.Background(), api, 10)

	m, cmd := send(t, m, m.Init()())
	if m.loading {
		t.Error("loading should be false after failed fetch")
	}
	if m.notice == nil || m.notice.kind != noticeError || m.notice.text != "Failed to fetch tasks" {
		t.Fatalf("notice = %+v", m.notice)
	}
	if cmd == nil {
		t.Error("notification should schedule its removal")
	}
	if m.repo.Len() != 0 {
		t.Error("list should stay empty")
	}
}

func TestModel_AddTask(t *testing.T) {
	api := &fakeTaskAPI{}
	m := loadedModel(t, api)

	m, _ = send(t, m, keyRunes("a"))
	if m.mode != modeForm || m.form == nil || m.form.editing() {
		t.Fatal("expected add form")
	}

	m = typeText(t, m, "Buy milk")
	m, _ = send(t, m, key(tea.KeyTab))
	m = typeText(t, m, "2 liters")

	m, _ = sendAndRun(t, m, key(tea.KeyEnter))
	if m.mode != modeList {
		t.Error("form should close on submit")
	}
	if m.repo.Len() != 1 {
		t.Fatalf("repo has %d tasks, want 1", m.repo.Len())
	}
	got := m.repo.All()[0]
	if got.Title != "Buy milk" || got.Description != "2 liters" || got.Completed {
		t.Errorf("unexpected task: %+v", got)
	}
	if m.notice == nil || m.notice.text != "Task added successfully" {
		t.Errorf("notice = %+v", m.notice)
	}
	if req := api.requests[0]; req.Completed == nil || *req.Completed {
		t.Error("new task should be sent as pending")
	}
}

func TestModel_FormMovesCursorWithinTitle(t *testing.T) {
	api := &fakeTaskAPI{}
	m := loadedModel(t, api)

	m, _ = send(t, m, keyRunes("a"))
	m = typeText(t, m, "Bu milk")
	for i := 0; i < len(" milk"); i++ {
		m, _ = send(t, m, key(tea.KeyLeft))
	}
	m = typeText(t, m, "y")
	if got := m.form.title.Value(); got != "Buy milk" {
		t.Fatalf("title = %q, want %q", got, "Buy milk")
	}

	m, _ = sendAndRun(t, m, key(tea.KeyEnter))
	if m.repo.Len() != 1 || m.repo.All()[0].Title != "Buy milk" {
		t.Errorf("unexpected tasks: %+v", m.repo.All())
	}
}

func TestModel_AddTaskRequiresTitle(t *testing.T) {
	api := &fakeTaskAPI{}
	m := loadedModel(t, api)

	m, _ = send(t, m, keyRunes("a"))
	m, cmd := send(t, m, key(tea.KeyEnter))
	if cmd != nil {
		t.Error("no request should be sent without a title")
	}
	if m.mode != modeForm {
		t.Fatal("form should stay open")
	}
	if m.form.err != "Please enter task title" {
		t.Errorf("form error = %q", m.form.err)
	}
	if !strings.Contains(m.View(), "Please enter task title") {
		t.Error("view should show the form error")
	}
	if len(api.requests) != 0 {
		t.Errorf("requests = %d, want 0", len(api.requests))
	}
}

func TestModel_AddTaskFailure(t *testing.T) {
	api := &fakeTaskAPI{writeErr: &client.APIError{StatusCode: 400, Message: `"title" length must be at least 3 characters long`}}
	m := loadedModel(t, api)

	m, _ = send(t, m, keyRunes("a"))
	m = typeText(t, m, "ab")
	m, _ = sendAndRun(t, m, key(tea.KeyEnter))

	if m.repo.Len() != 0 {
		t.Error("list should be unchanged on failure")
	}
	want := `Failed to add task: "title" length must be at least 3 characters long`
	if m.notice == nil || m.notice.kind != noticeError || m.notice.text != want {
		t.Errorf("notice = %+v, want %q", m.notice, want)
	}
}

func TestModel_EditTask(t *testing.T) {
	api := &fakeTaskAPI{tasks: seedTasks(2)}
	m := loadedModel(t, api)

	m, _ = send(t, m, keyRunes("e"))
	if m.mode != modeForm || !m.form.editing() || m.form.title.Value() != "Task 00" {
		t.Fatalf("expected edit form pre-filled, got %+v", m.form)
	}

	m, _ = send(t, m, key(tea.KeyCtrlU))
	m = typeText(t, m, "Renamed")
	m, _ = send(t, m, key(tea.KeyShiftTab)) // wraps to status
	m, _ = send(t, m, key(tea.KeySpace))
	m, _ = sendAndRun(t, m, key(tea.KeyEnter))

	all := m.repo.All()
	if all[0].ID != "seed-00" || all[0].Title != "Renamed" || !all[0].Completed {
		t.Errorf("unexpected task: %+v", all[0])
	}
	if all[1].ID != "seed-01" {
		t.Error("order should be preserved")
	}
	if m.notice == nil || m.notice.text != "Task updated successfully" {
		t.Errorf("notice = %+v", m.notice)
	}
}

func TestModel_EditFailure(t *testing.T) {
	api := &fakeTaskAPI{tasks: seedTasks(1)}
	m := loadedModel(t, api)
	api.writeErr = errors.New("connection reset")

	m, _ = send(t, m, keyRunes("e"))
	m, _ = sendAndRun(t, m, key(tea.KeyEnter))
	if m.notice == nil || m.notice.text != "Failed to update task" {
		t.Errorf("notice = %+v", m.notice)
	}
	if m.repo.All()[0].Title != "Task 00" {
		t.Error("task should be unchanged on failure")
	}
}

func TestModel_DeleteTask(t *testing.T) {
	api := &fakeTaskAPI{tasks: seedTasks(2)}
	m := loadedModel(t, api)

	m, _ = send(t, m, keyRunes("d"))
	if m.mode != modeConfirm || m.confirmID != "seed-00" {
		t.Fatalf("expected confirm dialog for seed-00, got mode=%v id=%q", m.mode, m.confirmID)
	}
	if !strings.Contains(m.View(), "Are you sure you want to delete this task?") {
		t.Error("confirm dialog text missing")
	}

	m, _ = sendAndRun(t, m, keyRunes("y"))
	if m.repo.Len() != 1 || m.repo.All()[0].ID != "seed-01" {
		t.Fatalf("unexpected repo: %+v", m.repo.All())
	}
	if m.notice == nil || m.notice.text != "Task deleted successfully" {
		t.Errorf("notice = %+v", m.notice)
	}
}

func TestModel_DeleteCancelled(t *testing.T) {
	api := &fakeTaskAPI{tasks: seedTasks(2)}
	m := loadedModel(t, api)

	m, _ = send(t, m, keyRunes("d"))
	m, cmd := send(t, m, keyRunes("n"))
	if cmd != nil || m.mode != modeList || m.repo.Len() != 2 {
		t.Fatal("declining should leave the list unchanged")
	}
}

func TestModel_DeleteFailure(t *testing.T) {
	api := &fakeTaskAPI{tasks: seedTasks(1)}
	m := loadedModel(t, api)
	api.writeErr = &client.APIError{StatusCode: 404, Message: "Task Not Found"}

	m, _ = send(t, m, keyRunes("d"))
	m, _ = sendAndRun(t, m, key(tea.KeyEnter))
	if m.repo.Len() != 1 {
		t.Error("task should remain after a failed delete")
	}
	if m.notice == nil || m.notice.text != "Failed to delete task: Task Not Found" {
		t.Errorf("notice = %+v", m.notice)
	}
}

func TestModel_Search(t *testing.T) {
	api := &fakeTaskAPI{tasks: []models.Task{
		{ID: "1", Title: "Buy milk", Description: "2 liters"},
		{ID: "2", Title: "Walk dog", Completed: true},
		{ID: "3", Title: "Pay rent", Description: "MILK money"},
	}}
	m := loadedModel(t, api)

	m, _ = send(t, m, keyRunes("/"))
	m = typeText(t, m, "milk")
	if got := len(m.visibleTasks()); got != 2 {
		t.Fatalf("visible = %d, want 2", got)
	}
	m, _ = send(t, m, key(tea.KeyEnter))
	if m.mode != modeList || m.search.Value() != "milk" {
		t.Fatal("enter should keep the query and leave search mode")
	}

	m, _ = send(t, m, key(tea.KeyEsc))
	if m.search.Value() != "" || len(m.visibleTasks()) != 3 {
		t.Fatal("esc should clear the query")
	}

	m, _ = send(t, m, keyRunes("/"))
	m = typeText(t, m, "completed")
	if got := m.visibleTasks(); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("status label search = %+v", got)
	}
}

func TestModel_SortCycle(t *testing.T) {
	api := &fakeTaskAPI{tasks: []models.Task{
		{ID: "1", Title: "banana"},
		{ID: "2", Title: "Apple"},
		{ID: "3", Title: "cherry"},
	}}
	m := loadedModel(t, api)

	ids := func(m Model) string {
		var b strings.Builder
		for _, t := range m.visibleTasks() {
			b.WriteString(t.ID)
		}
		return b.String()
	}

	m, _ = send(t, m, keyRunes("1"))
	if got := ids(m); got != "213" {
		t.Errorf("ascending = %s, want 213", got)
	}
	m, _ = send(t, m, keyRunes("1"))
	if got := ids(m); got != "312" {
		t.Errorf("descending = %s, want 312", got)
	}
	m, _ = send(t, m, keyRunes("1"))
	if got := ids(m); got != "123" {
		t.Errorf("unsorted = %s, want 123", got)
	}
}

func TestModel_PaginationAndPageSize(t *testing.T) {
	api := &fakeTaskAPI{tasks: seedTasks(25)}
	m := loadedModel(t, api)

	if got := len(m.pageTasks()); got != 10 {
		t.Fatalf("first page = %d tasks, want 10", got)
	}
	m, _ = send(t, m, key(tea.KeyRight))
	m, _ = send(t, m, key(tea.KeyRight))
	if m.page != 2 || len(m.pageTasks()) != 5 {
		t.Fatalf("page=%d size=%d, want last page with 5", m.page, len(m.pageTasks()))
	}
	m, _ = send(t, m, key(tea.KeyRight))
	if m.page != 2 {
		t.Error("should not move past the last page")
	}

	m, _ = send(t, m, keyRunes("s"))
	if m.pageSize != 20 || m.page != 0 {
		t.Fatalf("pageSize=%d page=%d, want 20/0", m.pageSize, m.page)
	}
	if !strings.Contains(m.View(), "Total 25 items") {
		t.Error("footer should show the total")
	}
}

func TestModel_PageClampedWhenListShrinks(t *testing.T) {
	api := &fakeTaskAPI{tasks: seedTasks(11)}
	m := loadedModel(t, api)

	m, _ = send(t, m, key(tea.KeyRight))
	if m.page != 1 {
		t.Fatal("expected second page")
	}
	m, _ = send(t, m, keyRunes("d"))
	m, _ = sendAndRun(t, m, keyRunes("y"))
	if m.page != 0 {
		t.Errorf("page = %d, want 0 after the last page emptied", m.page)
	}
}

func TestModel_NotificationCleared(t *testing.T) {
	m := loadedModel(t, &fakeTaskAPI{listErr: errors.New("down")})
	if m.notice == nil {
		t.Fatal("expected a notification")
	}

	stale := clearNoticeMsg{id: m.notice.id - 1}
	m, _ = send(t, m, stale)
	if m.notice == nil {
		t.Fatal("a stale clear message must not remove the current notification")
	}

	m, _ = send(t, m, clearNoticeMsg{id: m.notice.id})
	if m.notice != nil {
		t.Error("notification should be cleared")
	}
}

func TestModel_QuitCancelsContext(t *testing.T) {
	api := &fakeTaskAPI{}
	m := loadedModel(t, api)

	_, cmd := send(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if api.lastCtx.Err() == nil {
		t.Error("request context should be cancelled after quit")
	}
}

func TestModel_CancelledRequestIsSilent(t *testing.T) {
	m := NewModel(context.Background(), &fakeTaskAPI{}, 10)
	m, cmd := send(t, m, taskDeletedMsg{id: "x", err: fmt.Errorf("deleting task x: %w", context.Canceled)})
	if cmd != nil || m.notice != nil {
		t.Error("a cancelled request should not notify")
	}
}
