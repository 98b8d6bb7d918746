package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	FileName          = "config.yaml"
	DefaultDataRoot   = "data"
	DefaultBackupRoot = "backups"
	DefaultLogLevel   = "warn"
)

type Config struct {
	DataRoot      string `yaml:"data_root,omitempty"`
	BackupRoot    string `yaml:"backup_root,omitempty"`
	DefaultClient string `yaml:"default_client,omitempty"`
	LogLevel      string `yaml:"log_level,omitempty"`
	LockTimeout   string `yaml:"lock_timeout,omitempty"`
}

func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

func Save(dataDir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dataDir, FileName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Roots returns the data and backup roots. Relative paths resolve under
// dataDir.
func (c *Config) Roots(dataDir string) (dataRoot, backupRoot string) {
	return resolve(dataDir, c.DataRoot, DefaultDataRoot), resolve(dataDir, c.BackupRoot, DefaultBackupRoot)
}

func resolve(base, p, def string) string {
	if p == "" {
		p = def
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// LockTimeoutOr parses lock_timeout, returning def when it is unset.
func (c *Config) LockTimeoutOr(def time.Duration) (time.Duration, error) {
	if c.LockTimeout == "" {
		return def, nil
	}
	d, err := time.ParseDuration(c.LockTimeout)
	if err != nil {
		return 0, fmt.Errorf("parsing lock_timeout %q: %w", c.LockTimeout, err)
	}
	return d, nil
}

// Level returns the configured log level name, or the default.
func (c *Config) Level() string {
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}
