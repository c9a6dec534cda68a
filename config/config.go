// Package config loads and saves the user-level orchestrator configuration
// at ~/.warden/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wardenhq/warden/internal/fileutil"
)

const (
	ConfigDir      = ".warden"
	ConfigFileName = "config.yaml"
)

type Config struct {
	Version int          `yaml:"version"`
	Engine  EngineConfig `yaml:"engine"`
	Watch   WatchConfig  `yaml:"watch"`
	Ignore  []string     `yaml:"ignore,omitempty"`
	LogDir  string       `yaml:"log_dir,omitempty"`
}

// EngineConfig identifies the external backup engine and bounds command
// invocations against it.
type EngineConfig struct {
	Binary            string `yaml:"binary"`
	StateDir          string `yaml:"state_dir"`
	CommandTimeoutSec int    `yaml:"command_timeout_sec"`
}

type WatchConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
	SettleMs        int `yaml:"settle_ms"`
	PollSec         int `yaml:"poll_sec"`
}

func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Engine: EngineConfig{
			Binary:            "keepsafe",
			StateDir:          ".keepsafe",
			CommandTimeoutSec: 10,
		},
		Watch: WatchConfig{
			IntervalMinutes: 20,
			SettleMs:        500,
			PollSec:         5,
		},
	}
}

// CommandTimeout returns the bounded wait applied to every engine command.
func (c *Config) CommandTimeout() time.Duration {
	if c.Engine.CommandTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Engine.CommandTimeoutSec) * time.Second
}

// SettleDelay returns the write-settling delay for file-change tracking.
func (c *Config) SettleDelay() time.Duration {
	if c.Watch.SettleMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Watch.SettleMs) * time.Millisecond
}

// PollInterval returns the status reconciliation poll interval.
func (c *Config) PollInterval() time.Duration {
	if c.Watch.PollSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Watch.PollSec) * time.Second
}

// Dir returns the configuration directory, ~/.warden.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ConfigDir), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load reads the configuration, filling in defaults for absent fields. A
// missing file yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Save writes the configuration atomically.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to an explicit path atomically.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Engine.Binary == "" {
		cfg.Engine.Binary = def.Engine.Binary
	}
	if cfg.Engine.StateDir == "" {
		cfg.Engine.StateDir = def.Engine.StateDir
	}
	if cfg.Engine.CommandTimeoutSec <= 0 {
		cfg.Engine.CommandTimeoutSec = def.Engine.CommandTimeoutSec
	}
	if cfg.Watch.IntervalMinutes <= 0 {
		cfg.Watch.IntervalMinutes = def.Watch.IntervalMinutes
	}
	if cfg.Watch.SettleMs <= 0 {
		cfg.Watch.SettleMs = def.Watch.SettleMs
	}
	if cfg.Watch.PollSec <= 0 {
		cfg.Watch.PollSec = def.Watch.PollSec
	}
}
