// Package observability records what taskdesk does: an append-only JSONL
// event log written by the task service, metrics derived from it on demand,
// and the charmbracelet console logger used by the server and CLI.
package observability
