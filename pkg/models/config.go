package models

import "time"

// Store driver names accepted by store.driver.
const (
	DriverSQLite = "sqlite"
	DriverYAML   = "yaml"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// StoreConfig selects and configures the task store driver.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	Path          string `yaml:"path" mapstructure:"path"`
	MongoURI      string `yaml:"mongo_uri,omitempty" mapstructure:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database,omitempty" mapstructure:"mongo_database"`
}

// ClientConfig holds settings for the HTTP client used by the UI and the
// task subcommands.
type ClientConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// UIConfig holds settings for the terminal UI.
type UIConfig struct {
	PageSize int `yaml:"page_size" mapstructure:"page_size"`
}

// LogConfig holds console logger settings.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// EventsConfig locates the JSONL event log.
type EventsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// Config is the full configuration read from .taskdesk.yaml and
// TASKDESK_* environment variables.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Client ClientConfig `yaml:"client" mapstructure:"client"`
	UI     UIConfig     `yaml:"ui" mapstructure:"ui"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Events EventsConfig `yaml:"events" mapstructure:"events"`
}
