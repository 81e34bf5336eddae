package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/stepflow/internal/config"
	"github.com/vk/stepflow/internal/workflowstore"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkflowID string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	Storage config.Storage
}

// DefaultConfig returns the configuration used when neither a settings file
// nor flags override anything: a file store under ~/.stepflow.
func DefaultConfig() Config {
	return Config{
		WorkflowID: config.DefaultWorkflowID,
		LogFormat:  "text",
		LogLevel:   "warn",
		Storage: config.Storage{
			Driver: config.DriverFile,
			Path:   defaultStoragePath(),
		},
	}
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".stepflow"
	}
	return filepath.Join(home, ".stepflow")
}

// WithSettings layers the non-empty values of a loaded settings file over
// cfg and returns the result.
func (cfg Config) WithSettings(m *config.Model) Config {
	if m == nil {
		return cfg
	}
	if m.WorkflowID != "" {
		cfg.WorkflowID = m.WorkflowID
	}
	if m.HealthcheckPort != 0 {
		cfg.HealthcheckPort = m.HealthcheckPort
	}
	if m.Log.Level != "" {
		cfg.LogLevel = m.Log.Level
	}
	if m.Log.Format != "" {
		cfg.LogFormat = m.Log.Format
	}

	s := m.Storage
	if s.Driver != "" && s.Driver != cfg.Storage.Driver {
		// A different backend starts from a clean slate so that, say, a
		// default file path never leaks into a redis configuration.
		cfg.Storage = config.Storage{Driver: s.Driver}
	}
	if s.Path != "" {
		cfg.Storage.Path = s.Path
	}
	if s.Address != "" {
		cfg.Storage.Address = s.Address
	}
	if s.Password != "" {
		cfg.Storage.Password = s.Password
	}
	if s.DB != 0 {
		cfg.Storage.DB = s.DB
	}
	if s.KeyPrefix != "" {
		cfg.Storage.KeyPrefix = s.KeyPrefix
	}
	if s.DSN != "" {
		cfg.Storage.DSN = s.DSN
	}
	if s.Table != "" {
		cfg.Storage.Table = s.Table
	}
	return cfg
}

// NewConfig normalizes and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	cfg.WorkflowID = strings.TrimSpace(cfg.WorkflowID)
	if cfg.WorkflowID == "" {
		return nil, errors.New("workflow id is a required configuration field and cannot be empty")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	switch cfg.Storage.Driver {
	case config.DriverMemory:
	case config.DriverFile:
		if cfg.Storage.Path == "" {
			return nil, errors.New("the file storage driver requires a path")
		}
	case config.DriverRedis:
		if cfg.Storage.Address == "" {
			return nil, errors.New("the redis storage driver requires an address")
		}
	case config.DriverPostgres:
		if cfg.Storage.DSN == "" {
			return nil, errors.New("the postgres storage driver requires a dsn")
		}
	default:
		return nil, fmt.Errorf("%w: %q", workflowstore.ErrUnknownDriver, cfg.Storage.Driver)
	}

	return &cfg, nil
}
