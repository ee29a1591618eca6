package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// ConfigFileName is the name of the configuration file, without extension,
// looked up in the base path.
const ConfigFileName = ".taskdesk"

// EnvPrefix prefixes every environment variable override, e.g.
// TASKDESK_SERVER_ADDR for server.addr.
const EnvPrefix = "TASKDESK"

// ConfigurationManager loads and validates the taskdesk configuration.
type ConfigurationManager interface {
	Load() (*models.Config, error)
	Validate(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file and environment overrides.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .taskdesk.yaml from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *models.Config {
	return &models.Config{
		Server: models.ServerConfig{Addr: ":5000"},
		Store: models.StoreConfig{
			Driver:        models.DriverSQLite,
			Path:          "taskdesk.db",
			MongoDatabase: "taskdesk",
		},
		Client: models.ClientConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 5 * time.Second,
		},
		UI:     models.UIConfig{PageSize: 10},
		Log:    models.LogConfig{Level: "info", Format: "text"},
		Events: models.EventsConfig{Path: ".taskdesk_events.jsonl"},
	}
}

// Load reads .taskdesk.yaml from the base path. A missing file is not an
// error; defaults and environment overrides still apply. Precedence:
// environment > file > defaults.
func (cm *viperConfigManager) Load() (*models.Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("store.driver", cfg.Store.Driver)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("store.mongo_uri", cfg.Store.MongoURI)
	v.SetDefault("store.mongo_database", cfg.Store.MongoDatabase)
	v.SetDefault("client.base_url", cfg.Client.BaseURL)
	v.SetDefault("client.timeout", cfg.Client.Timeout)
	v.SetDefault("ui.page_size", cfg.UI.PageSize)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("events.path", cfg.Events.Path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
		}
	}

	cfg.Server.Addr = v.GetString("server.addr")
	cfg.Store.Driver = strings.ToLower(v.GetString("store.driver"))
	cfg.Store.Path = v.GetString("store.path")
	cfg.Store.MongoURI = v.GetString("store.mongo_uri")
	cfg.Store.MongoDatabase = v.GetString("store.mongo_database")
	cfg.Client.BaseURL = strings.TrimRight(v.GetString("client.base_url"), "/")
	cfg.Client.Timeout = v.GetDuration("client.timeout")
	cfg.UI.PageSize = v.GetInt("ui.page_size")
	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log.format"))
	cfg.Events.Path = v.GetString("events.path")

	return cfg, nil
}

var validDrivers = map[string]bool{
	models.DriverSQLite: true,
	models.DriverYAML:   true,
	models.DriverMongo:  true,
	models.DriverMemory: true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"fatal": true,
}

var validLogFormats = map[string]bool{
	"text":   true,
	"json":   true,
	"logfmt": true,
}

// Validate checks cfg for invalid values and reports every problem found
// in one error.
func (cm *viperConfigManager) Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		errs = append(errs, "server.addr must not be empty")
	}

	if !validDrivers[cfg.Store.Driver] {
		errs = append(errs, fmt.Sprintf(
			"store.driver %q is invalid, must be one of: sqlite, yaml, mongo, memory",
			cfg.Store.Driver,
		))
	}
	switch cfg.Store.Driver {
	case models.DriverSQLite, models.DriverYAML:
		if cfg.Store.Path == "" {
			errs = append(errs, fmt.Sprintf("store.path must not be empty for driver %q", cfg.Store.Driver))
		}
	case models.DriverMongo:
		if cfg.Store.MongoURI == "" {
			errs = append(errs, "store.mongo_uri must not be empty for driver \"mongo\"")
		}
	}

	if cfg.Client.BaseURL == "" {
		errs = append(errs, "client.base_url must not be empty")
	}
	if cfg.Client.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("client.timeout must be positive, got %s", cfg.Client.Timeout))
	}

	if cfg.UI.PageSize <= 0 {
		errs = append(errs, fmt.Sprintf("ui.page_size must be positive, got %d", cfg.UI.PageSize))
	}

	if !validLogLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Sprintf(
			"log.level %q is invalid, must be one of: debug, info, warn, error, fatal",
			cfg.Log.Level,
		))
	}
	if !validLogFormats[cfg.Log.Format] {
		errs = append(errs, fmt.Sprintf(
			"log.format %q is invalid, must be one of: text, json, logfmt",
			cfg.Log.Format,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
