package observability

import (
	"fmt"
	"time"
)

// Task event types counted by Calculate. They match the types the task
// service writes.
const (
	TypeTaskCreated   = "task.created"
	TypeTaskUpdated   = "task.updated"
	TypeTaskCompleted = "task.completed"
	TypeTaskDeleted   = "task.deleted"
)

// Metrics holds counters derived from the event log.
type Metrics struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksUpdated   int            `json:"tasks_updated"`
	TasksCompleted int            `json:"tasks_completed"`
	TasksDeleted   int            `json:"tasks_deleted"`
	TasksTouched   int            `json:"tasks_touched"`
	EventsByType   map[string]int `json:"events_by_type"`
	EventCount     int            `json:"event_count"`
	OldestEvent    *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{EventsByType: make(map[string]int)}
	m.EventCount = len(events)
	touched := make(map[string]struct{})

	for _, event := range events {
		t := event.Time
		if m.OldestEvent == nil || t.Before(*m.OldestEvent) {
			m.OldestEvent = &t
		}
		if m.NewestEvent == nil || t.After(*m.NewestEvent) {
			m.NewestEvent = &t
		}

		if event.TaskID != "" {
			touched[event.TaskID] = struct{}{}
		}
		m.EventsByType[event.Type]++
		switch event.Type {
		case TypeTaskCreated:
			m.TasksCreated++
		case TypeTaskUpdated:
			m.TasksUpdated++
		case TypeTaskCompleted:
			m.TasksCompleted++
		case TypeTaskDeleted:
			m.TasksDeleted++
		}
	}
	m.TasksTouched = len(touched)

	return m, nil
}
