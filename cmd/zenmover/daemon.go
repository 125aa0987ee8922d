package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/1broseidon/zenmover/internal/config"
	"github.com/1broseidon/zenmover/internal/daemon"
	"github.com/1broseidon/zenmover/internal/logging"
	"github.com/1broseidon/zenmover/internal/platform"
	"github.com/1broseidon/zenmover/internal/runtimepath"
	"github.com/1broseidon/zenmover/internal/status"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	backendName := fs.String("backend", "x11", "Window system backend: x11 or memory")
	path := fs.String("path", "", "Config file path (default: ~/.config/zenmover/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zenmover daemon [--backend x11|memory] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	loadConfig := func() (*config.Config, error) {
		res, err := loadConfigResult(*path)
		if err != nil {
			return nil, err
		}
		return res.Config, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logHandle, err := logging.New(cfg.Logging, nil)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logHandle.Close()
	logger := logHandle.Logger

	var (
		backend   platform.Backend
		eventLoop func()
		quit      func()
	)
	switch *backendName {
	case "x11":
		if cfg.Display != "" {
			os.Setenv("DISPLAY", cfg.Display)
		}
		if cfg.XAuthority != "" {
			os.Setenv("XAUTHORITY", cfg.XAuthority)
		}
		linux, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
		if err != nil {
			log.Fatalf("Failed to connect to display: %v", err)
		}
		defer linux.Disconnect()
		backend = linux
		eventLoop = linux.EventLoop
		quit = linux.Quit
	case "memory":
		backend = platform.NewMemoryBackend()
		logger.Warn("running with the in-memory backend; no real windows will move")
	default:
		fmt.Fprintf(os.Stderr, "Unknown backend: %s\n", *backendName)
		return 2
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		log.Fatalf("Failed to resolve IPC socket path: %v", err)
	}

	var console status.Reporter
	if term.IsTerminal(int(os.Stdout.Fd())) {
		console = status.NewConsoleReporter(os.Stdout)
	}

	d, err := daemon.New(daemon.Options{
		Backend:     backend,
		BackendName: *backendName,
		Config:      cfg,
		LoadConfig:  loadConfig,
		Logging:     logHandle,
		Console:     console,
		SocketPath:  socketPath,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("Failed to create daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					logger.Info("received SIGHUP, reloading config")
					if err := d.Reload(); err != nil {
						logger.Error("config reload failed", "error", err)
					}
				default:
					logger.Info("shutting down zenmover daemon", "signal", sig.String())
					cancel()
					return
				}
			}
		}
	}()

	if eventLoop != nil {
		go eventLoop()
		defer quit()
	}

	if err := d.Run(ctx); err != nil {
		logger.Error("daemon stopped with error", "error", err)
		return 1
	}
	return 0
}
