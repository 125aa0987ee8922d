// Package daemon wires the mover, the page agent channel and the control
// socket into one long-running process.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/zenmover/internal/config"
	"github.com/1broseidon/zenmover/internal/hotkeys"
	"github.com/1broseidon/zenmover/internal/ipc"
	"github.com/1broseidon/zenmover/internal/logging"
	"github.com/1broseidon/zenmover/internal/lookup"
	"github.com/1broseidon/zenmover/internal/mover"
	"github.com/1broseidon/zenmover/internal/platform"
	"github.com/1broseidon/zenmover/internal/server"
	"github.com/1broseidon/zenmover/internal/status"
)

// recentStatusSize is how many status messages are kept for GET_STATUS.
const recentStatusSize = 32

// Options configures a daemon.
type Options struct {
	Backend     platform.Backend
	BackendName string
	Config      *config.Config

	// LoadConfig re-reads configuration on reload. Nil disables reload.
	LoadConfig func() (*config.Config, error)
	// Logging, when set, has its level updated on reload.
	Logging *logging.Handle
	// Console receives status lines in addition to the log.
	Console status.Reporter
	// SocketPath enables the control socket when non-empty.
	SocketPath string
	// Scheduler drives edge debounce timers; nil uses real timers.
	Scheduler mover.Scheduler
	// WatchInterval is the target watcher period.
	WatchInterval time.Duration
	Logger        *slog.Logger
}

// Daemon owns every long-lived component and implements ipc.Controller.
type Daemon struct {
	backendName string
	loadConfig  func() (*config.Config, error)
	logHandle   *logging.Handle
	socketPath  string
	scheduler   mover.Scheduler
	logger      *slog.Logger
	started     time.Time

	locator  *mover.Locator
	windows  *mover.Windows
	movable  *lookup.Store
	recorder *status.Recorder
	reporter status.Reporter
	hotkeys  *hotkeys.Handler
	watcher  *TargetWatcher
	ws       *server.Server

	edge atomic.Pointer[mover.EdgeMonitor]

	mu  sync.Mutex
	cfg *config.Config
}

// New builds a daemon from opts. Nothing is started until Run.
func New(opts Options) (*Daemon, error) {
	if opts.Backend == nil {
		return nil, errors.New("daemon: backend is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	movableDir, err := cfg.MovableDirPath()
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		backendName: opts.BackendName,
		loadConfig:  opts.LoadConfig,
		logHandle:   opts.Logging,
		socketPath:  opts.SocketPath,
		scheduler:   opts.Scheduler,
		logger:      logger,
		started:     time.Now(),
		locator:     mover.NewLocator(opts.Backend, cfg.TargetClass),
		windows:     mover.NewWindows(opts.Backend),
		movable:     lookup.NewStore(movableDir, logger),
		recorder:    status.NewRecorder(recentStatusSize),
		cfg:         cfg,
	}
	if d.backendName == "" {
		d.backendName = "unknown"
	}
	d.reporter = status.Multi{status.NewLogReporter(logger), d.recorder, opts.Console}
	d.windows.SetBlocked(cfg.MoverBlocked)
	d.edge.Store(d.newEdgeMonitor(cfg))
	d.hotkeys = hotkeys.NewHandler(opts.Backend, d.windows, logger)
	d.watcher = NewTargetWatcher(WatcherConfig{Interval: opts.WatchInterval, Logger: logger}, d.locator, d.reporter)
	d.ws = server.New(server.Options{
		Listen:         cfg.Listen,
		Path:           cfg.Path,
		FrameRate:      cfg.FrameRate,
		FrameBurst:     cfg.FrameBurst,
		ReadLimit:      cfg.ReadLimit,
		OriginPatterns: cfg.OriginPatterns,
	}, d.NewSession, logger)

	return d, nil
}

func (d *Daemon) newEdgeMonitor(cfg *config.Config) *mover.EdgeMonitor {
	return mover.NewEdgeMonitor(d.windows, d.locator, d.scheduler, cfg.EdgeDebounce(), cfg.EdgeThreshold)
}

// NewSession creates the mover session for a freshly connected page agent.
func (d *Daemon) NewSession(id string) *mover.Session {
	return mover.NewSession(mover.SessionConfig{
		ID:       id,
		Locator:  d.locator,
		Windows:  d.windows,
		Edge:     d.edge.Load(),
		Lookup:   d.movable,
		Releaser: d.hotkeys,
		Reporter: d.reporter,
		Logger:   d.logger,
	})
}

// WebSocket returns the page agent server.
func (d *Daemon) WebSocket() *server.Server {
	return d.ws
}

// Recorder returns the recent status messages.
func (d *Daemon) Recorder() *status.Recorder {
	return d.recorder
}

// Run starts every component and blocks until ctx is cancelled or the
// WebSocket listener fails.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := d.Config()
	if err := d.hotkeys.RegisterBlockToggle(cfg.BlockHotkey); err != nil {
		d.logger.Warn("block hotkey not registered", "hotkey", cfg.BlockHotkey, "error", err)
	} else if cfg.BlockHotkey != "" && d.hotkeys.Available() {
		d.logger.Info("block hotkey registered", "hotkey", cfg.BlockHotkey)
	}

	if d.socketPath != "" {
		ipcServer := ipc.NewServer(d.socketPath, d, d.logger)
		if err := ipcServer.Start(); err != nil {
			return fmt.Errorf("start IPC server: %w", err)
		}
		defer ipcServer.Stop()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := d.movable.Watch(ctx); err != nil {
			d.logger.Warn("movable dir watch stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		d.watcher.CheckNow()
		d.watcher.Run(ctx)
	}()

	d.logger.Info("zenmover daemon started",
		"backend", d.backendName,
		"target_class", cfg.TargetClass,
		"blocked", d.windows.Blocked())

	err := d.ws.ListenAndServe(ctx)
	cancel()
	wg.Wait()

	if d.Config().CenterOnExit {
		if cerr := d.CenterWindow(); cerr != nil && !errors.Is(cerr, mover.ErrTargetNotFound) {
			d.logger.Warn("center on exit failed", "error", cerr)
		}
	}
	d.logger.Info("zenmover daemon stopped")
	return err
}

// Config returns the active configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// ApplyConfig pushes cfg into every running component. Listen address and
// path changes need a restart.
func (d *Daemon) ApplyConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	movableDir, err := cfg.MovableDirPath()
	if err != nil {
		return err
	}

	d.mu.Lock()
	prev := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	if d.logHandle != nil {
		d.logHandle.SetLevel(cfg.Logging.Level)
	}
	d.locator.SetClass(cfg.TargetClass)
	if prev.MoverBlocked != cfg.MoverBlocked {
		d.windows.SetBlocked(cfg.MoverBlocked)
	}
	d.edge.Store(d.newEdgeMonitor(cfg))
	d.movable.SetDir(movableDir)
	d.ws.SetFrameLimit(cfg.FrameRate, cfg.FrameBurst)
	d.ws.SetOriginPatterns(cfg.OriginPatterns)

	if prev.BlockHotkey != cfg.BlockHotkey {
		if err := d.hotkeys.RegisterBlockToggle(cfg.BlockHotkey); err != nil {
			d.logger.Warn("block hotkey not registered", "hotkey", cfg.BlockHotkey, "error", err)
		}
	}
	if prev.Listen != cfg.Listen || prev.Path != cfg.Path {
		d.logger.Warn("listen address change requires a restart", "listen", cfg.Listen, "path", cfg.Path)
	}
	if prev.TargetClass != cfg.TargetClass {
		d.watcher.CheckNow()
	}
	return nil
}

// Reload re-reads configuration and applies it.
func (d *Daemon) Reload() error {
	if d.loadConfig == nil {
		return errors.New("reload not supported")
	}
	cfg, err := d.loadConfig()
	if err != nil {
		d.logger.Warn("config reload failed", "error", err)
		return err
	}
	if err := d.ApplyConfig(cfg); err != nil {
		d.logger.Warn("config reload rejected", "error", err)
		return err
	}
	d.logger.Info("config reloaded")
	return nil
}

// Status implements ipc.Controller.
func (d *Daemon) Status() ipc.StatusData {
	cfg := d.Config()
	st := ipc.StatusData{
		DaemonRunning: true,
		UptimeSeconds: int64(time.Since(d.started).Seconds()),
		Backend:       d.backendName,
		Listen:        cfg.Listen,
		TargetClass:   d.locator.Class(),
		Blocked:       d.windows.Blocked(),
		Connections:   d.ws.Connections(),
	}
	if addr := d.ws.Addr(); addr != nil {
		st.Listen = addr.String()
	}
	if target, err := d.locator.Resolve(); err == nil {
		st.TargetFound = true
		if placement, err := d.windows.Placement(target); err == nil {
			st.Placement = placement.String()
		}
	}
	if last, ok := d.recorder.Last(); ok {
		st.LastStatus = last.Message
		st.LastStatusTime = last.Time
	}
	return st
}

// Monitors implements ipc.Controller.
func (d *Daemon) Monitors() ([]ipc.MonitorInfo, error) {
	displays, err := d.windows.Displays()
	if err != nil {
		return nil, err
	}
	out := make([]ipc.MonitorInfo, 0, len(displays))
	for _, disp := range displays {
		out = append(out, ipc.MonitorInfo{
			ID:      disp.ID,
			Name:    disp.Name,
			X:       disp.Bounds.X,
			Y:       disp.Bounds.Y,
			Width:   disp.Bounds.Width,
			Height:  disp.Bounds.Height,
			Primary: disp.Primary,
		})
	}
	return out, nil
}

// SetBlocked implements ipc.Controller.
func (d *Daemon) SetBlocked(blocked bool) {
	d.windows.SetBlocked(blocked)
	d.logger.Info("mover kill-switch set", "blocked", blocked)
}

// CenterWindow implements ipc.Controller.
func (d *Daemon) CenterWindow() error {
	target, err := d.locator.Resolve()
	if err != nil {
		return err
	}
	if err := d.windows.CenterOnPrimary(target); err != nil {
		return err
	}
	d.reporter.Report("Window centered on primary display")
	return nil
}

// Lookup implements ipc.Controller.
func (d *Daemon) Lookup(domain string) ([]string, error) {
	return d.movable.Lookup(domain)
}
