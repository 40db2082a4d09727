// Package config handles loading the taskapp config.toml file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the config.toml file.
type Config struct {
	Database Database `toml:"database"`
	Reminder Reminder `toml:"reminder"`
	UI       UI       `toml:"ui"`
	Log      Log      `toml:"log"`
}

// Database contains storage configuration.
type Database struct {
	// Path is the SQLite database file. Empty means the XDG data directory.
	Path string `toml:"path"`
}

// Reminder contains notification configuration.
type Reminder struct {
	Enabled bool `toml:"enabled"`
	// Lead fires reminders this long before the task date, e.g. "10m".
	Lead time.Duration `toml:"lead"`
}

// UI contains display configuration.
type UI struct {
	DateFormat   string `toml:"date-format"`
	ShowRelative bool   `toml:"show-relative"`
}

// Log contains logging configuration.
type Log struct {
	// Level is one of debug, info, warn, error. Empty disables logging.
	Level string `toml:"level"`
	// File is the log file. Empty means the XDG state directory.
	File string `toml:"file"`
}

// DefaultDateFormat matches the row format of the list screen.
const DefaultDateFormat = "2006-01-02 15:04"

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Reminder: Reminder{Enabled: true},
		UI:       UI{DateFormat: DefaultDateFormat, ShowRelative: true},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/taskapp/config.toml.
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "taskapp", "config.toml"), nil
}

// DefaultLogPath returns $XDG_STATE_HOME/taskapp/taskapp.log.
func DefaultLogPath() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "taskapp", "taskapp.log"), nil
}

// Load reads the config file at path, or the default path if empty.
// Returns the default config if the file does not exist.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse config file %s: unknown key %s", path, undecoded[0])
	}

	cfg.Database.Path = strings.TrimSpace(cfg.Database.Path)
	cfg.UI.DateFormat = strings.TrimSpace(cfg.UI.DateFormat)
	if cfg.UI.DateFormat == "" {
		cfg.UI.DateFormat = DefaultDateFormat
	}
	if cfg.Reminder.Lead < 0 {
		return nil, fmt.Errorf("parse config file %s: reminder.lead must not be negative", path)
	}
	if _, err := cfg.LogLevel(); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LogLevel parses Log.Level. An empty level means debug when TASKAPP_DEBUG=1
// and info otherwise.
func (c *Config) LogLevel() (level slog.Level, err error) {
	name := strings.TrimSpace(c.Log.Level)
	if name == "" {
		if os.Getenv("TASKAPP_DEBUG") == "1" {
			return slog.LevelDebug, nil
		}
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// LogEnabled reports whether a log file should be written.
func (c *Config) LogEnabled() bool {
	return strings.TrimSpace(c.Log.Level) != "" || os.Getenv("TASKAPP_DEBUG") == "1"
}
