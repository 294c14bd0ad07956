// Package config handles the client configuration directory, its files,
// and the server settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "tasktrack"

	// SessionFile is the stored session filename.
	SessionFile = "session.json"

	// SettingsFile is the optional client settings filename.
	SettingsFile = "config.yaml"

	// ServerEnv overrides the server URL from the settings file.
	ServerEnv = "TASKTRACK_SERVER"

	// DefaultServerURL is used when nothing else is configured.
	DefaultServerURL = "http://localhost:5000"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// ServerURL is the base URL of the task API.
	ServerURL string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// settings is the on-disk shape of config.yaml.
type settings struct {
	ServerURL string `yaml:"server_url"`
}

// New creates a Config for configDir (or the default directory when empty)
// and resolves the server URL: config.yaml, then $TASKTRACK_SERVER, then
// serverURL if non-empty.
func New(configDir, serverURL string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, ServerURL: DefaultServerURL}

	s, err := readSettings(cfg.SettingsPath())
	if err != nil {
		return nil, err
	}
	if s.ServerURL != "" {
		cfg.ServerURL = s.ServerURL
	}
	if env := os.Getenv(ServerEnv); env != "" {
		cfg.ServerURL = env
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if the session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

func readSettings(path string) (settings, error) {
	var s settings
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	return s, nil
}
