package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event is one line of the event log.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Type    string         `json:"type"`
	TaskID  string         `json:"task_id,omitempty"`
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventFilter selects events on Read. Zero fields match everything.
type EventFilter struct {
	Since  *time.Time
	Until  *time.Time
	Type   string
	Level  string
	TaskID string
}

func (f EventFilter) match(e Event) bool {
	switch {
	case f.Since != nil && e.Time.Before(*f.Since):
		return false
	case f.Until != nil && e.Time.After(*f.Until):
		return false
	case f.Type != "" && e.Type != f.Type:
		return false
	case f.Level != "" && e.Level != f.Level:
		return false
	case f.TaskID != "" && e.TaskID != f.TaskID:
		return false
	}
	return true
}

// EventLog is an append-only record of task activity.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// maxEventLine bounds a single encoded event.
const maxEventLine = 1 << 20

type jsonlEventLog struct {
	mu   sync.Mutex
	path string
	out  *os.File
}

// NewJSONLEventLog opens the JSONL file at path for appending, creating it
// and any missing parent directories.
func NewJSONLEventLog(path string) (EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	out, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{path: path, out: out}, nil
}

func (l *jsonlEventLog) Write(event Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending %s event: %w", event.Type, err)
	}
	return nil
}

// Read returns the events matching filter, oldest first. Lines that do not
// decode are skipped. A log file that does not exist reads as empty.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	in, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = in.Close() }()

	var events []Event
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventLine)
	for sc.Scan() {
		e, ok := decodeEvent(sc.Bytes())
		if ok && filter.match(e) {
			events = append(events, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}

func decodeEvent(line []byte) (Event, bool) {
	var e Event
	if len(line) == 0 || json.Unmarshal(line, &e) != nil {
		return Event{}, false
	}
	return e, true
}

func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.out.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}
