package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Reminder.Enabled || cfg.UI.DateFormat != DefaultDateFormat || !cfg.UI.ShowRelative {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.LogEnabled() {
		t.Error("logging should be disabled by default")
	}
}

func TestLoadDefaultPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "taskapp", "config.toml")
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("[database]\npath = \"/tmp/x.db\"\n"), 0o644)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/x.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[database]
path = "  /data/tasks.db  "

[reminder]
enabled = false
lead = "10m"

[ui]
date-format = "01/02 15:04"
show-relative = false

[log]
level = "debug"
file = "/tmp/taskapp.log"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/data/tasks.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Reminder.Enabled || cfg.Reminder.Lead != 10*time.Minute {
		t.Errorf("Reminder = %+v", cfg.Reminder)
	}
	if cfg.UI.DateFormat != "01/02 15:04" || cfg.UI.ShowRelative {
		t.Errorf("UI = %+v", cfg.UI)
	}
	level, err := cfg.LogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("LogLevel = %v, %v", level, err)
	}
	if !cfg.LogEnabled() {
		t.Error("expected logging enabled")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[database\n", "parse config file"},
		{"unknown key", "[database]\nfile = \"x\"\n", "unknown key database.file"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"negative lead", "[reminder]\nlead = \"-5m\"\n", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDebugEnv(t *testing.T) {
	t.Setenv("TASKAPP_DEBUG", "1")
	cfg := Default()
	if !cfg.LogEnabled() {
		t.Error("TASKAPP_DEBUG=1 should enable logging")
	}
	if level, _ := cfg.LogLevel(); level != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level)
	}
}
