package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nissyi-gh/taskapp/internal/config"
)

// NewLogger returns the logger described by cfg and a function closing its
// file. The terminal belongs to the UI, so logs only ever go to a file.
func NewLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	if !cfg.LogEnabled() {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}

	path := cfg.Log.File
	if path == "" {
		path, err = config.DefaultLogPath()
		if err != nil {
			return nil, nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	return newTextLogger(f, level), f.Close, nil
}

func newTextLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
