// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the task service as MCP tools for AI assistants.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/taskdesk/internal/core"
	"github.com/valter-silva-au/taskdesk/internal/observability"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// Server wraps the task service and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	svc         core.TaskService
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server over svc. metricsCalc may be nil if
// the event log is unavailable.
func NewServer(svc core.TaskService, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		svc:         svc,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "taskdesk", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves MCP over stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskIDInput struct {
	ID string `json:"id" jsonschema:"the task id"`
}

type taskFieldsInput struct {
	ID          string  `json:"id,omitempty" jsonschema:"the task id (update only)"`
	Title       *string `json:"title,omitempty" jsonschema:"task title, at least 3 characters"`
	Description *string `json:"description,omitempty" jsonschema:"optional comment; must not be empty when given"`
	Completed   *bool   `json:"completed,omitempty" jsonschema:"whether the task is done"`
}

type taskOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type listTasksInput struct {
	Status string `json:"status,omitempty" jsonschema:"filter by status: pending or completed"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type deleteTaskOutput struct {
	Message string `json:"message"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksUpdated   int            `json:"tasks_updated"`
	TasksCompleted int            `json:"tasks_completed"`
	TasksDeleted   int            `json:"tasks_deleted"`
	TasksTouched   int            `json:"tasks_touched"`
	EventsByType   map[string]int `json:"events_by_type"`
	EventCount     int            `json:"event_count"`
	OldestEvent    string         `json:"oldest_event,omitempty"`
	NewestEvent    string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List all tasks in creation order, optionally only pending or completed ones.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get a task by id.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_task",
		Description: "Create a task. Title is required and must be at least 3 characters.",
	}, s.handleCreateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task",
		Description: "Update a task by id. Title is required; description and completed are changed only when given.",
	}, s.handleUpdateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task by id.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get task activity counters from the event log: created, updated, completed and deleted tasks.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(ctx context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	var want *bool
	switch input.Status {
	case "":
	case "pending":
		want = new(bool)
	case "completed":
		done := true
		want = &done
	default:
		return errorResult(fmt.Sprintf("invalid status %q: must be pending or completed", input.Status)), listTasksOutput{}, nil
	}

	tasks, err := s.svc.ListTasks(ctx)
	if err != nil {
		return serviceError("listing tasks", err), listTasksOutput{}, nil
	}

	out := listTasksOutput{Tasks: make([]taskOutput, 0, len(tasks))}
	for i := range tasks {
		if want != nil && tasks[i].Completed != *want {
			continue
		}
		out.Tasks = append(out.Tasks, taskToOutput(&tasks[i]))
	}
	out.Count = len(out.Tasks)

	return nil, out, nil
}

func (s *Server) handleGetTask(ctx context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.ID == "" {
		return errorResult("id is required"), taskOutput{}, nil
	}

	task, err := s.svc.GetTask(ctx, input.ID)
	if err != nil {
		return serviceError("getting task "+input.ID, err), taskOutput{}, nil
	}
	return nil, taskToOutput(task), nil
}

func (s *Server) handleCreateTask(ctx context.Context, _ *gomcp.CallToolRequest, input taskFieldsInput) (*gomcp.CallToolResult, taskOutput, error) {
	task, err := s.svc.CreateTask(ctx, input.taskInput())
	if err != nil {
		return serviceError("creating task", err), taskOutput{}, nil
	}
	return nil, taskToOutput(task), nil
}

func (s *Server) handleUpdateTask(ctx context.Context, _ *gomcp.CallToolRequest, input taskFieldsInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.ID == "" {
		return errorResult("id is required"), taskOutput{}, nil
	}

	task, err := s.svc.UpdateTask(ctx, input.ID, input.taskInput())
	if err != nil {
		return serviceError("updating task "+input.ID, err), taskOutput{}, nil
	}
	return nil, taskToOutput(task), nil
}

func (s *Server) handleDeleteTask(ctx context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, deleteTaskOutput, error) {
	if input.ID == "" {
		return errorResult("id is required"), deleteTaskOutput{}, nil
	}

	if err := s.svc.DeleteTask(ctx, input.ID); err != nil {
		return serviceError("deleting task "+input.ID, err), deleteTaskOutput{}, nil
	}
	return nil, deleteTaskOutput{Message: "Task Deleted Successfully"}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated:   metrics.TasksCreated,
		TasksUpdated:   metrics.TasksUpdated,
		TasksCompleted: metrics.TasksCompleted,
		TasksDeleted:   metrics.TasksDeleted,
		TasksTouched:   metrics.TasksTouched,
		EventsByType:   metrics.EventsByType,
		EventCount:     metrics.EventCount,
	}
	if out.EventsByType == nil {
		out.EventsByType = make(map[string]int)
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func (in taskFieldsInput) taskInput() core.TaskInput {
	return core.TaskInput{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
	}
}

func taskToOutput(t *models.Task) taskOutput {
	return taskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Status:      t.StatusLabel(),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{EventsByType: make(map[string]int)}
}

// serviceError reports validation and not-found outcomes with the same
// messages the HTTP API uses.
func serviceError(op string, err error) *gomcp.CallToolResult {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return errorResult(ve.Message)
	case errors.Is(err, core.ErrTaskNotFound):
		return errorResult("Task Not Found")
	default:
		return errorResult(fmt.Sprintf("%s: %s", op, err))
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
