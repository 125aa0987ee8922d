package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/zenmover/internal/mover"
)

// WatcherConfig holds configuration for the target watcher.
type WatcherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// TargetWatcher periodically resolves the target window and reports when it
// appears or goes away.
type TargetWatcher struct {
	interval time.Duration
	locator  *mover.Locator
	reporter mover.Reporter
	logger   *slog.Logger

	mu      sync.Mutex
	checked bool
	found   bool
	class   string
}

// NewTargetWatcher creates a watcher with the given configuration.
func NewTargetWatcher(cfg WatcherConfig, locator *mover.Locator, reporter mover.Reporter) *TargetWatcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if reporter == nil {
		reporter = mover.ReporterFunc(func(string) {})
	}

	return &TargetWatcher{
		interval: interval,
		locator:  locator,
		reporter: reporter,
		logger:   logger,
	}
}

// Run starts the watch loop. Blocks until context is cancelled.
func (w *TargetWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Debug("target watcher started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("target watcher stopped")
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// CheckNow triggers an immediate pass and returns whether the target exists.
func (w *TargetWatcher) CheckNow() bool {
	return w.check()
}

// Found returns the result of the last pass.
func (w *TargetWatcher) Found() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.found
}

func (w *TargetWatcher) check() (found bool) {
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("target watcher panic recovered", "error", err)
		}
	}()

	class := w.locator.Class()
	_, err := w.locator.Resolve()
	switch {
	case err == nil:
		found = true
	case errors.Is(err, mover.ErrTargetNotFound):
	default:
		w.logger.Warn("target watcher: resolve failed", "class", class, "error", err)
		return w.Found()
	}

	w.mu.Lock()
	changed := !w.checked || w.found != found || w.class != class
	w.checked = true
	w.found = found
	w.class = class
	w.mu.Unlock()

	if !changed {
		return found
	}
	if found {
		w.logger.Info("target window found", "class", class)
		w.reporter.Report("Target window found: " + class)
	} else {
		w.logger.Info("target window not present", "class", class)
		w.reporter.Report("Target window not found!")
	}
	return found
}
