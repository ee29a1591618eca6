// Package internal provides the App struct that wires all components of
// taskdesk together and initializes the CLI layer.
package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/valter-silva-au/taskdesk/internal/cli"
	"github.com/valter-silva-au/taskdesk/internal/core"
	"github.com/valter-silva-au/taskdesk/internal/observability"
	"github.com/valter-silva-au/taskdesk/internal/storage"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// HomeEnv overrides base path discovery.
const HomeEnv = "TASKDESK_HOME"

// App holds all service dependencies for taskdesk.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.Config
	Logger    *log.Logger

	// Storage layer
	Store storage.TaskStore

	// Core services
	TaskSvc     core.TaskService
	ProjectInit core.ProjectInitializer

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp loads configuration and wires the CLI. basePath is the directory
// holding .taskdesk.yaml; relative store and event log paths are resolved
// against it.
//
// An invalid configuration is fatal. The task store and event log are not
// opened here: OpenStore and OpenEventLog open them for the commands that
// need them, so init, ui, task and version never touch either.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.Validate(cfg); err != nil {
		return nil, err
	}
	cfg.Store.Path = resolvePath(basePath, cfg.Store.Path)
	cfg.Events.Path = resolvePath(basePath, cfg.Events.Path)
	app.Config = cfg

	app.Logger = observability.NewLoggerFromConfig(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	app.ProjectInit = core.NewProjectInitializer()

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = app.Config
	cli.Logger = app.Logger
	cli.ProjectInit = app.ProjectInit
	cli.OpenStore = app.OpenStore
	cli.OpenEventLog = app.OpenEventLog

	cli.TaskSvc = nil
	cli.EventLog = nil
	cli.MetricsCalc = nil

	return app, nil
}

// OpenEventLog opens the event log and its metrics calculator. It does
// nothing once the log is open.
func (a *App) OpenEventLog() error {
	if a.EventLog != nil {
		return nil
	}
	el, err := observability.NewJSONLEventLog(a.Config.Events.Path)
	if err != nil {
		return err
	}
	a.EventLog = el
	a.MetricsCalc = observability.NewMetricsCalculator(el)

	cli.EventLog = a.EventLog
	cli.MetricsCalc = a.MetricsCalc
	return nil
}

// OpenStore opens the configured task store and builds the task service on
// top of it. An event log that cannot be opened only disables events. It
// does nothing once the service exists.
func (a *App) OpenStore(ctx context.Context) error {
	if a.TaskSvc != nil {
		return nil
	}
	if err := a.OpenEventLog(); err != nil {
		a.Logger.Warn("event log disabled", "path", a.Config.Events.Path, "err", err)
	}

	store, err := storage.Open(ctx, a.Config.Store)
	if err != nil {
		return fmt.Errorf("opening %s task store: %w", a.Config.Store.Driver, err)
	}
	a.Store = store

	var evtAdapter core.EventLogger
	if a.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: a.EventLog}
	}
	a.TaskSvc = core.NewTaskService(a.Store, evtAdapter, a.Logger)

	cli.TaskSvc = a.TaskSvc
	return nil
}

// Close releases the task store and the event log file handle. It is safe
// to call Close on an App whose store or event log is nil.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing task store: %w", err))
		}
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing event log: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ResolveBasePath determines the taskdesk base directory. It checks the
// TASKDESK_HOME env var, then the nearest parent directory containing
// .taskdesk.yaml, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	// Walk up to find a directory containing .taskdesk.yaml.
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	// Fall back to cwd.
	cwd, _ := os.Getwd()
	return cwd
}

// resolvePath joins a relative path onto basePath. Empty and absolute paths
// are returned unchanged.
func resolvePath(basePath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(basePath, p)
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

// The task id is lifted out of data so the log can be filtered by task.
func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	taskID, _ := data["task_id"].(string)
	rest := make(map[string]any, len(data))
	for k, v := range data {
		if k != "task_id" {
			rest[k] = v
		}
	}
	if len(rest) == 0 {
		rest = nil
	}
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		TaskID:  taskID,
		Message: eventType,
		Data:    rest,
	})
}
