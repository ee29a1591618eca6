package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/taskdesk/pkg/models"
	"gopkg.in/yaml.v3"
)

// InitConfig holds the parameters for initializing a taskdesk workspace.
type InitConfig struct {
	BasePath string
	// Driver selects store.driver; empty means sqlite.
	Driver string
	// Addr sets server.addr and the matching client.base_url; empty keeps
	// the defaults.
	Addr string
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// ProjectInitializer prepares a directory to hold taskdesk data.
type ProjectInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type projectInitializer struct{}

// NewProjectInitializer creates a new ProjectInitializer.
func NewProjectInitializer() ProjectInitializer {
	return &projectInitializer{}
}

const defaultGitignore = `# taskdesk data
taskdesk.db
tasks.yaml
*.lock
.taskdesk_events.jsonl
`

// Init creates the base directory, .taskdesk.yaml and .gitignore. It is safe
// to run on an existing workspace: files that already exist are skipped and
// not overwritten.
func (pi *projectInitializer) Init(config InitConfig) (*InitResult, error) {
	result := &InitResult{}

	cfg, err := initialConfig(config)
	if err != nil {
		return nil, err
	}

	created, err := ensureDir(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing workspace: creating directory %s: %w", config.BasePath, err)
	}
	if created {
		result.Created = append(result.Created, config.BasePath)
	} else {
		result.Skipped = append(result.Skipped, config.BasePath)
	}

	configPath := filepath.Join(config.BasePath, ConfigFileName+".yaml")
	if err := pi.writeFileIfNotExists(configPath, func() ([]byte, error) {
		return yaml.Marshal(cfg)
	}, result); err != nil {
		return nil, err
	}

	gitignorePath := filepath.Join(config.BasePath, ".gitignore")
	if err := pi.writeFileIfNotExists(gitignorePath, func() ([]byte, error) {
		return []byte(defaultGitignore), nil
	}, result); err != nil {
		return nil, err
	}

	return result, nil
}

// initialConfig is the configuration written by Init.
func initialConfig(config InitConfig) (*models.Config, error) {
	cfg := DefaultConfig()

	switch config.Driver {
	case "", models.DriverSQLite:
	case models.DriverYAML:
		cfg.Store.Driver = models.DriverYAML
		cfg.Store.Path = "tasks.yaml"
	case models.DriverMongo:
		cfg.Store.Driver = models.DriverMongo
		cfg.Store.Path = ""
		cfg.Store.MongoURI = "mongodb://localhost:27017"
	case models.DriverMemory:
		cfg.Store.Driver = models.DriverMemory
		cfg.Store.Path = ""
	default:
		return nil, fmt.Errorf("initializing workspace: unknown store driver %q", config.Driver)
	}

	if config.Addr != "" {
		cfg.Server.Addr = config.Addr
		cfg.Client.BaseURL = baseURLForAddr(config.Addr)
	}
	return cfg, nil
}

// baseURLForAddr turns a listen address such as ":8080" or
// "127.0.0.1:8080" into the URL a local client would use.
func baseURLForAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// ensureDir creates a directory if it does not exist. Returns true if created.
func ensureDir(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileIfNotExists writes content from contentFn if the file does not exist.
// It records created/skipped in the result.
func (pi *projectInitializer) writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing workspace: generating content for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("initializing workspace: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}
