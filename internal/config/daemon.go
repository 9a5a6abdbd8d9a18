// Package config handles the pipontopd settings file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Setting keys exposed through Bool and reported by Diff.
const (
	KeyStick  = "stick"
	KeyDebug  = "debug"
	KeyDBus   = "dbus"
	KeyNotify = "notify"
)

// MatchersFileName is the default name of the title matchers document.
const MatchersFileName = "pip-title-matchers.json"

// DaemonConfig is the configuration for pipontopd.
// Loaded from ~/.config/pipontop/pipontopd.toml
type DaemonConfig struct {
	Behavior BehaviorConfig `toml:"behavior"`
	Matchers MatchersConfig `toml:"matchers"`
	Log      LogConfig      `toml:"log"`
	DBus     DBusConfig     `toml:"dbus"`
	Notify   NotifyConfig   `toml:"notify"`
}

// BehaviorConfig contains window behavior settings.
type BehaviorConfig struct {
	Stick bool `toml:"stick"` // Show PiP windows on all workspaces
}

// MatchersConfig locates the exact-title matchers document.
type MatchersConfig struct {
	Path string `toml:"path"` // Empty = default path next to this file
}

// LogConfig contains logging settings.
type LogConfig struct {
	Debug bool   `toml:"debug"` // Shortcut for level = "debug"
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// DBusConfig contains the control interface settings.
type DBusConfig struct {
	Enabled bool `toml:"enabled"` // Read at start only
}

// NotifyConfig contains desktop notification settings.
type NotifyConfig struct {
	Enabled bool `toml:"enabled"` // Notify about matcher and settings errors
}

// ValidLogLevels returns all valid log level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Behavior: BehaviorConfig{
			Stick: false,
		},
		Log: LogConfig{
			Debug: false,
			Level: "info",
		},
		DBus: DBusConfig{
			Enabled: true,
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
	}
}

// ConfigDir returns the pipontop configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "pipontop"), nil
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "pipontopd.toml"), nil
}

// LoadDaemonConfig loads the daemon configuration from path, or from the
// default path when path is empty. A missing file yields the defaults.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		var err error
		if path, err = DaemonConfigPath(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig saves the daemon configuration to path, or to the default
// path when path is empty.
func SaveDaemonConfig(path string, config *DaemonConfig) error {
	if path == "" {
		var err error
		if path, err = DaemonConfigPath(); err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.Log.Level, ValidLogLevels())
	}
	return nil
}

// MatchersPath returns the configured matchers document path, expanding ~,
// or the default location inside the config directory.
func (c *DaemonConfig) MatchersPath() (string, error) {
	if c.Matchers.Path != "" {
		return expandPath(c.Matchers.Path), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, MatchersFileName), nil
}

// LogLevel returns the effective slog level. Debug overrides Level.
func (c *DaemonConfig) LogLevel() slog.Level {
	if c.Log.Debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Bool returns the boolean setting stored under key. Unknown keys are false.
func (c *DaemonConfig) Bool(key string) bool {
	switch key {
	case KeyStick:
		return c.Behavior.Stick
	case KeyDebug:
		return c.Log.Debug
	case KeyDBus:
		return c.DBus.Enabled
	case KeyNotify:
		return c.Notify.Enabled
	default:
		return false
	}
}

// Diff returns the setting keys whose values differ between old and next.
// KeyDBus is not reported: the control interface is only set up at start.
func Diff(old, next *DaemonConfig) []string {
	var changed []string
	for _, key := range []string{KeyStick, KeyDebug, KeyNotify} {
		if old.Bool(key) != next.Bool(key) {
			changed = append(changed, key)
		}
	}
	return changed
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
