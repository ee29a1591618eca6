package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdesk/internal/core"
	"github.com/valter-silva-au/taskdesk/internal/observability"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Config   *models.Config
	Logger   *log.Logger
	TaskSvc  core.TaskService
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)

// Openers for the task store and event log, set in app.go. Commands that
// read or write tasks directly call them from PreRunE.
var (
	OpenStore    func(ctx context.Context) error
	OpenEventLog func() error
)

// openTaskService opens the task store unless a service is already set.
func openTaskService(cmd *cobra.Command, _ []string) error {
	if TaskSvc != nil || OpenStore == nil {
		return nil
	}
	return OpenStore(cmdContext(cmd))
}

// openEventLog opens the event log unless metrics are already available.
func openEventLog(_ *cobra.Command, _ []string) error {
	if MetricsCalc != nil || OpenEventLog == nil {
		return nil
	}
	return OpenEventLog()
}

// logger returns the configured logger, or one that discards output when
// the app has not been initialized.
func logger() *log.Logger {
	if Logger == nil {
		return observability.NewDiscardLogger()
	}
	return Logger
}

// config returns the loaded configuration, or the defaults.
func config() *models.Config {
	if Config == nil {
		return core.DefaultConfig()
	}
	return Config
}
