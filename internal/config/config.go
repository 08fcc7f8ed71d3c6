// Package config handles hustle-tui configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for hustle-tui.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// API settings for the marketplace backend
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Messaging settings
	Messaging MessagingConfig `yaml:"messaging" mapstructure:"messaging"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global settings.
type GlobalConfig struct {
	// DataDir is where hustle-tui stores its data (default: ~/.local/share/hustle-tui).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/hustle-tui).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// APIConfig contains backend API settings.
type APIConfig struct {
	// BaseURL is the root of the marketplace REST API.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// RequestsPerSecond caps the outbound request rate.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// MessagingConfig contains messaging view settings.
type MessagingConfig struct {
	// PollInterval is how often an open thread re-fetches its messages.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// SearchDebounce is the pause after the last keystroke before user search fires.
	SearchDebounce time.Duration `yaml:"search_debounce" mapstructure:"search_debounce"`

	// SearchMinChars is the minimum query length before user search fires.
	SearchMinChars int `yaml:"search_min_chars" mapstructure:"search_min_chars"`

	// SearchLimit is the maximum number of user search results requested.
	SearchLimit int `yaml:"search_limit" mapstructure:"search_limit"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// ShowTimestamps shows timestamps next to message bubbles.
	ShowTimestamps bool `yaml:"show_timestamps" mapstructure:"show_timestamps"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "hustle-tui"),
			ConfigDir: filepath.Join(homeDir, ".config", "hustle-tui"),
		},
		API: APIConfig{
			BaseURL:           "http://localhost:8000/api",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 10,
		},
		Messaging: MessagingConfig{
			PollInterval:   5 * time.Second,
			SearchDebounce: 300 * time.Millisecond,
			SearchMinChars: 2,
			SearchLimit:    10,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		TUI: TUIConfig{
			Theme:          "default",
			ShowTimestamps: true,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}

	if c.API.Timeout < time.Second {
		return fmt.Errorf("api.timeout must be at least 1s")
	}

	if c.API.RequestsPerSecond <= 0 {
		return fmt.Errorf("api.requests_per_second must be positive")
	}

	if c.Messaging.PollInterval < 500*time.Millisecond {
		return fmt.Errorf("messaging.poll_interval must be at least 500ms")
	}

	if c.Messaging.SearchDebounce < 50*time.Millisecond {
		return fmt.Errorf("messaging.search_debounce must be at least 50ms")
	}

	if c.Messaging.SearchMinChars < 1 {
		return fmt.Errorf("messaging.search_min_chars must be at least 1")
	}

	if c.Messaging.SearchLimit < 1 {
		return fmt.Errorf("messaging.search_limit must be at least 1")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// SessionPath returns the path of the SQLite session store.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Global.DataDir, "session.db")
}
