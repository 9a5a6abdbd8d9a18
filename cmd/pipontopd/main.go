// Package main is the entry point for the pipontopd daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/pipontop/internal/config"
	"github.com/jmylchreest/pipontop/internal/daemon"
	"github.com/jmylchreest/pipontop/internal/dbus"
	"github.com/jmylchreest/pipontop/internal/event"
	"github.com/jmylchreest/pipontop/internal/x11"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/pipontop/pipontopd.toml)")
	verbose := flag.Bool("verbose", false, "Enable debug logging regardless of the config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("pipontopd version", version)
		os.Exit(0)
	}

	// Set up structured logging; the level follows the config file.
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(*configPath, *verbose, level, logger); err != nil {
		logger.Error("pipontopd failed", "error", err)
		os.Exit(1)
	}
	logger.Info("pipontopd stopped")
}

func run(configPath string, verbose bool, level *slog.LevelVar, logger *slog.Logger) error {
	if configPath == "" {
		var err error
		if configPath, err = config.DaemonConfigPath(); err != nil {
			return err
		}
	}

	cfg, err := config.LoadDaemonConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	level.Set(cfg.LogLevel())
	if verbose {
		level.Set(slog.LevelDebug)
	}
	logger.Info("starting pipontopd", "version", version, "config", configPath, "stick", cfg.Behavior.Stick)

	dispatcher := event.NewDispatcher(logger.With("component", "dispatcher"))

	backend, err := x11.Connect(dispatcher, logger.With("component", "x11"))
	if err != nil {
		return err
	}
	defer backend.Close()

	opts := daemon.Options{
		Dispatcher: dispatcher,
		Backend:    backend,
		Settings:   daemon.NewSettingsWatcher(configPath, cfg, dispatcher, logger.With("component", "settings")),
		Level:      level,
		Verbose:    verbose,
		Logger:     logger,
	}

	conn, err := godbus.SessionBus()
	if err != nil {
		logger.Warn("no session bus, control interface and notifications disabled", "error", err)
	}

	if conn != nil {
		notifier := daemon.NewInternalNotifier(logger)
		sender := dbus.NewNotifier(conn)
		notifier.SetNotifyHandler(func(n *dbus.Notification) error {
			_, err := sender.Send(n)
			return err
		})
		opts.Notifier = notifier
	}

	d := daemon.New(opts)

	// Set up signal handling: SIGINT/SIGTERM stop, SIGHUP reloads.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The control interface is exported once the watcher is running.
	controlErr := make(chan error, 1)
	controlDone := make(chan struct{})
	if conn != nil && cfg.DBus.Enabled {
		control := dbus.NewControlServer(d, logger.With("component", "dbus"))
		defer func() { _ = control.Stop() }()
		go func() {
			defer close(controlDone)
			select {
			case <-ctx.Done():
				return
			case <-d.Ready():
			}
			if err := control.Start(conn); err != nil {
				controlErr <- err
				cancel()
			}
		}()
	} else {
		close(controlDone)
	}

	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	defer signal.Stop(hupCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hupCh:
				logger.Info("received SIGHUP, reloading")
				d.RequestReload()
			}
		}
	}()

	err = d.Run(ctx)
	cancel()
	<-controlDone
	if err != nil {
		return err
	}
	select {
	case err := <-controlErr:
		return err
	default:
		return nil
	}
}
