package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/s2quake/vtree/internal/backend/local"
	"github.com/s2quake/vtree/internal/backend/memory"
	"github.com/s2quake/vtree/internal/logging"
	"github.com/s2quake/vtree/pkg/vtree"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// Backend names accepted by the backend key.
const (
	BackendLocal  = local.Kind
	BackendMemory = memory.Kind
)

// Environment variables that override the file.
const (
	EnvBackend     = "VTREE_BACKEND"
	EnvRoot        = "VTREE_ROOT"
	EnvWritePolicy = "VTREE_WRITE_POLICY"
	EnvLogFormat   = "VTREE_LOG_FORMAT"
	EnvVerbose     = "VTREE_VERBOSE"
)

type LogConfig struct {
	Format  string `yaml:"format"`
	Verbose bool   `yaml:"verbose"`
}

type Config struct {
	Backend     string        `yaml:"backend"`
	Local       local.Config  `yaml:"local"`
	Memory      memory.Config `yaml:"memory"`
	Log         LogConfig     `yaml:"log"`
	MetricsFile string        `yaml:"metrics_file,omitempty"`
}

const ConfigFileName = vtree.ConfigFileName

// Default returns the configuration used when no file is present: a local
// backend over the working directory.
func Default() *Config {
	return &Config{
		Backend: BackendLocal,
		Local: local.Config{
			Root:        ".",
			WritePolicy: local.WriteDestructive,
		},
		Log: LogConfig{Format: logging.FormatConsole},
	}
}

// Load reads vtree.yaml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads the config file at path. Keys missing from the file keep
// their Default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v: %w", path, err, vtree.ErrInvalidConfig)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBackend); ok && v != "" {
		c.Backend = v
	}
	if v, ok := lookup(EnvRoot); ok && v != "" {
		c.Local.Root = v
	}
	if v, ok := lookup(EnvWritePolicy); ok && v != "" {
		c.Local.WritePolicy = local.WritePolicy(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvVerbose); ok && v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s=%q is not a boolean: %w", EnvVerbose, v, vtree.ErrInvalidConfig)
		}
		c.Log.Verbose = verbose
	}
	return nil
}

// Validate checks names and enumerations. It does not touch the host.
// The backend name is normalized to lower case.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(c.Backend)
	switch c.Backend {
	case BackendLocal:
		if c.Local.Root == "" {
			return fmt.Errorf("local.root is required: %w", vtree.ErrInvalidConfig)
		}
		if _, err := local.ParseWritePolicy(string(c.Local.WritePolicy)); err != nil {
			return err
		}
		if c.Local.Retries < 0 {
			return fmt.Errorf("local.retries must not be negative: %w", vtree.ErrInvalidConfig)
		}
	case BackendMemory:
		if c.Memory.MaxBytes < 0 {
			return fmt.Errorf("memory.max_bytes must not be negative: %w", vtree.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s): %w", c.Backend, BackendLocal, BackendMemory, vtree.ErrInvalidConfig)
	}

	switch c.Log.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q: %w", c.Log.Format, vtree.ErrInvalidConfig)
	}
	return nil
}
