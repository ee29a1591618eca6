// Package client is an HTTP client for the task API, used by the terminal
// UI and the task subcommands.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// DefaultTimeout applies when New is given a non-positive timeout.
const DefaultTimeout = 5 * time.Second

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// TaskRequest is the body of a create or update call. Nil fields are
// omitted. The id is never sent.
type TaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Client talks to one API base URL.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// New creates a Client for baseURL, e.g. http://localhost:5000. Every call
// is bounded by timeout in addition to its context.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, req TaskRequest) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, req TaskRequest) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), req, &task); err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

// do sends one request and decodes a 2xx JSON body into out (if non-nil).
// Non-2xx responses become *APIError carrying the body's error field.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
