// Package logging builds the daemon's structured logger from config.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/zenmover/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Handle owns a logger and its sink. The level can be changed after
// construction, which config reload relies on.
type Handle struct {
	Logger *slog.Logger

	level *slog.LevelVar
	close func() error
}

// New builds a logger. Without a file configured it writes to stderr, or to
// fallback when non-nil.
func New(cfg config.LoggingConfig, fallback io.Writer) (*Handle, error) {
	writer, closeFn, err := resolveWriter(cfg, fallback)
	if err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	level.Set(ParseLevel(cfg.Level))
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	return &Handle{
		Logger: slog.New(handler).With(slog.String("app", "zenmover")),
		level:  level,
		close:  closeFn,
	}, nil
}

// SetLevel changes the minimum level of every logger derived from h.
func (h *Handle) SetLevel(level string) {
	h.level.Set(ParseLevel(level))
}

// Level returns the current minimum level.
func (h *Handle) Level() slog.Level {
	return h.level.Level()
}

// Close flushes and closes a file sink.
func (h *Handle) Close() error {
	if h == nil || h.close == nil {
		return nil
	}
	return h.close()
}

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolveWriter(cfg config.LoggingConfig, fallback io.Writer) (io.Writer, func() error, error) {
	path := strings.TrimSpace(cfg.File)
	if path == "" {
		if fallback == nil {
			fallback = os.Stderr
		}
		return fallback, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	rot := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return rot, rot.Close, nil
}
