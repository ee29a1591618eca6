package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/valter-silva-au/taskdesk/internal/core"
	"github.com/valter-silva-au/taskdesk/internal/observability"
	"github.com/valter-silva-au/taskdesk/internal/storage"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

var errMockStore = errors.New("connection refused")

// MockTaskService implements core.TaskService for testing.
type MockTaskService struct {
	CreateFunc func(ctx context.Context, in core.TaskInput) (*models.Task, error)
	ListFunc   func(ctx context.Context) ([]models.Task, error)
	GetFunc    func(ctx context.Context, id string) (*models.Task, error)
	UpdateFunc func(ctx context.Context, id string, in core.TaskInput) (*models.Task, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockTaskService) CreateTask(ctx context.Context, in core.TaskInput) (*models.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return nil, errMockStore
}

func (m *MockTaskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []models.Task{}, nil
}

func (m *MockTaskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, core.ErrTaskNotFound
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id string, in core.TaskInput) (*models.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, in)
	}
	return nil, core.ErrTaskNotFound
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return core.ErrTaskNotFound
}

func newTestServer(svc core.TaskService) (*Server, *bytes.Buffer) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	logger := observability.NewLoggerFromConfig(&logs, "debug", "logfmt")
	return NewServer(svc, logger), &logs
}

func newServiceBackedServer() *Server {
	s, _ := newTestServer(core.NewTaskService(storage.NewMemoryTaskStore(), nil, nil))
	return s
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestTaskLifecycle(t *testing.T) {
	s := newServiceBackedServer()

	w := doRequest(t, s, http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	createdTask := decodeBody[models.Task](t, w)
	if createdTask.Title != "Buy milk" || createdTask.Completed || createdTask.ID == "" {
		t.Fatalf("unexpected created task: %+v", createdTask)
	}

	w = doRequest(t, s, http.MethodGet, "/api/tasks/"+createdTask.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want %d", w.Code, http.StatusOK)
	}
	got := decodeBody[models.Task](t, w)
	if got.ID != createdTask.ID || got.Title != createdTask.Title {
		t.Fatalf("GET returned %+v, want %+v", got, createdTask)
	}

	w = doRequest(t, s, http.MethodPut, "/api/tasks/"+createdTask.ID, `{"title":"Buy oat milk","completed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	updated := decodeBody[models.Task](t, w)
	if updated.ID != createdTask.ID || updated.Title != "Buy oat milk" || !updated.Completed {
		t.Fatalf("unexpected updated task: %+v", updated)
	}

	w = doRequest(t, s, http.MethodDelete, "/api/tasks/"+createdTask.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d, want %d", w.Code, http.StatusOK)
	}
	if msg := decodeBody[map[string]string](t, w)["message"]; msg != "Task Deleted Successfully" {
		t.Errorf("DELETE message = %q", msg)
	}

	w = doRequest(t, s, http.MethodGet, "/api/tasks/"+createdTask.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if msg := decodeBody[map[string]string](t, w)["error"]; msg != "Task Not Found" {
		t.Errorf("error = %q, want %q", msg, "Task Not Found")
	}

	w = doRequest(t, s, http.MethodDelete, "/api/tasks/"+createdTask.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second DELETE status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleCreateTask_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"short title", `{"title":"ab"}`, `"title" length must be at least 3 characters long`},
		{"missing title", `{"description":"x"}`, `"title" is required`},
		{"empty title", `{"title":""}`, `"title" is not allowed to be empty`},
		{"empty body", ``, `"title" is required`},
		{"empty description", `{"title":"Buy milk","description":""}`, `"description" is not allowed to be empty`},
		{"wrong completed type", `{"title":"Buy milk","completed":"yes"}`, `"completed" must be a boolean`},
		{"not an object", `"Buy milk"`, `"value" must be of type object`},
		{"null body", `null`, `"value" must be of type object`},
		{"short title before wrong completed", `{"title":"ab","completed":"yes"}`, `"title" length must be at least 3 characters long`},
		{"missing title before wrong completed", `{"completed":"yes"}`, `"title" is required`},
		{"short title before wrong description", `{"title":"ab","description":7}`, `"title" length must be at least 3 characters long`},
		{"wrong description before wrong completed", `{"title":"Buy milk","description":7,"completed":"yes"}`, `"description" must be a string`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServiceBackedServer()
			w := doRequest(t, s, http.MethodPost, "/api/tasks", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if msg := decodeBody[map[string]string](t, w)["error"]; msg != tt.wantErr {
				t.Errorf("error = %q, want %q", msg, tt.wantErr)
			}

			// Nothing was stored.
			list := decodeBody[[]models.Task](t, doRequest(t, s, http.MethodGet, "/api/tasks", ""))
			if len(list) != 0 {
				t.Errorf("expected empty list after rejected create, got %d tasks", len(list))
			}
		})
	}
}

func TestHandleCreateTask_IgnoresClientID(t *testing.T) {
	s := newServiceBackedServer()
	w := doRequest(t, s, http.MethodPost, "/api/tasks", `{"_id":"mine","id":"mine","title":"Buy milk"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if task := decodeBody[models.Task](t, w); task.ID == "mine" {
		t.Error("client supplied id should be ignored")
	}
}

func TestHandleListTasks(t *testing.T) {
	s := newServiceBackedServer()

	w := doRequest(t, s, http.MethodGet, "/api/tasks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty list body = %q, want []", w.Body.String())
	}

	for _, title := range []string{"First", "Second", "Third"} {
		doRequest(t, s, http.MethodPost, "/api/tasks", `{"title":"`+title+`"}`)
	}

	w = doRequest(t, s, http.MethodGet, "/api/tasks?completed=true&page=2", "")
	list := decodeBody[[]models.Task](t, w)
	if len(list) != 3 {
		t.Fatalf("expected 3 tasks (query params ignored), got %d", len(list))
	}
	if list[0].Title != "First" || list[2].Title != "Third" {
		t.Errorf("unexpected order: %q, %q", list[0].Title, list[2].Title)
	}
}

func TestHandleUpdateTask_KeepsAbsentFields(t *testing.T) {
	s := newServiceBackedServer()
	createdTask := decodeBody[models.Task](t, doRequest(t, s, http.MethodPost, "/api/tasks", `{"title":"Buy milk","description":"2 liters"}`))

	w := doRequest(t, s, http.MethodPut, "/api/tasks/"+createdTask.ID, `{"title":"Buy milk","completed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	updated := decodeBody[models.Task](t, w)
	if updated.Description != "2 liters" || !updated.Completed {
		t.Errorf("unexpected task: %+v", updated)
	}
}

func TestHandleUpdateTask_ShortTitleKeepsStoredTask(t *testing.T) {
	s := newServiceBackedServer()
	createdTask := decodeBody[models.Task](t, doRequest(t, s, http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`))

	w := doRequest(t, s, http.MethodPut, "/api/tasks/"+createdTask.ID, `{"title":"ab","completed":true}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if msg := decodeBody[map[string]string](t, w)["error"]; msg != `"title" length must be at least 3 characters long` {
		t.Errorf("error = %q", msg)
	}

	got := decodeBody[models.Task](t, doRequest(t, s, http.MethodGet, "/api/tasks/"+createdTask.ID, ""))
	if got.Title != "Buy milk" || got.Completed {
		t.Errorf("stored task changed: %+v", got)
	}
}

func TestHandleUpdateTask_ValidationBeforeLookup(t *testing.T) {
	s := newServiceBackedServer()
	w := doRequest(t, s, http.MethodPut, "/api/tasks/missing", `{"title":"ab"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = doRequest(t, s, http.MethodPut, "/api/tasks/missing", `{"title":"abc"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandlers_StoreFailureIsGeneric500(t *testing.T) {
	mock := &MockTaskService{
		ListFunc: func(ctx context.Context) ([]models.Task, error) {
			return nil, errMockStore
		},
		GetFunc: func(ctx context.Context, id string) (*models.Task, error) {
			return nil, errMockStore
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			return errMockStore
		},
	}
	s, logs := newTestServer(mock)

	requests := []struct{ method, path, body string }{
		{http.MethodGet, "/api/tasks", ""},
		{http.MethodGet, "/api/tasks/abc", ""},
		{http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`},
		{http.MethodDelete, "/api/tasks/abc", ""},
	}
	for _, r := range requests {
		w := doRequest(t, s, r.method, r.path, r.body)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s %s status = %d, want %d", r.method, r.path, w.Code, http.StatusInternalServerError)
			continue
		}
		if msg := decodeBody[map[string]string](t, w)["error"]; msg != "Internal Server Error" {
			t.Errorf("%s %s error = %q", r.method, r.path, msg)
		}
		if strings.Contains(w.Body.String(), "connection refused") {
			t.Errorf("%s %s leaked internal detail: %s", r.method, r.path, w.Body.String())
		}
	}

	if !strings.Contains(logs.String(), "connection refused") {
		t.Error("expected the cause to be logged")
	}
}

func TestRecovery_PanicIsGeneric500(t *testing.T) {
	mock := &MockTaskService{
		GetFunc: func(ctx context.Context, id string) (*models.Task, error) {
			panic("nil map write")
		},
	}
	s, logs := newTestServer(mock)

	w := doRequest(t, s, http.MethodGet, "/api/tasks/abc", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if msg := decodeBody[map[string]string](t, w)["error"]; msg != "Internal Server Error" {
		t.Errorf("error = %q", msg)
	}
	if !strings.Contains(logs.String(), "nil map write") {
		t.Error("expected the panic value to be logged")
	}
}

func TestNoRoute(t *testing.T) {
	s := newServiceBackedServer()
	w := doRequest(t, s, http.MethodGet, "/api/unknown", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if msg := decodeBody[map[string]string](t, w)["error"]; msg != "Not Found" {
		t.Errorf("error = %q, want %q", msg, "Not Found")
	}
}

func TestCORS(t *testing.T) {
	s := newServiceBackedServer()

	preflight := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	preflight.Header.Set("Origin", "http://localhost:3000")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	preflight.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, preflight)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPut) {
		t.Errorf("Access-Control-Allow-Methods = %q, want it to include PUT", got)
	}

	get := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	get.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, get)
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin on GET = %q, want *", got)
	}
}

func TestRequestLogging(t *testing.T) {
	s, logs := newTestServer(&MockTaskService{})
	doRequest(t, s, http.MethodGet, "/api/tasks", "")

	out := logs.String()
	for _, want := range []string{"method=GET", "path=/api/tasks", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestServerRun_ShutsDownOnCancel(t *testing.T) {
	s := newServiceBackedServer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run returned %v, want nil after cancel", err)
	}
}
