package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/pipontop/internal/classify"
	"github.com/jmylchreest/pipontop/internal/config"
	"github.com/jmylchreest/pipontop/internal/event"
	"github.com/jmylchreest/pipontop/internal/host"
	"github.com/jmylchreest/pipontop/internal/watcher"
)

// Backend is a window manager connection that feeds the dispatcher.
type Backend interface {
	host.WindowManager

	// Start begins translating window manager events into dispatcher
	// events. It returns once the event loop is running.
	Start(ctx context.Context) error
	Stop()
}

// Options configures a Daemon.
type Options struct {
	Dispatcher *event.Dispatcher
	Backend    Backend
	Settings   *SettingsWatcher
	Notifier   *InternalNotifier // nil disables desktop notifications
	Level      *slog.LevelVar    // updated when the log settings change
	Verbose    bool              // keeps Level at debug regardless of settings
	Logger     *slog.Logger
}

// Daemon runs the PiP watcher against a window manager backend. The watcher
// is only ever touched on the dispatcher goroutine.
type Daemon struct {
	logger     *slog.Logger
	dispatcher *event.Dispatcher
	backend    Backend
	settings   *SettingsWatcher
	notifier   *InternalNotifier
	level      *slog.LevelVar
	verbose    bool

	watcher      *watcher.Watcher
	matchersPath string

	// ready is closed once the startup enable has run. Control requests
	// wait for it so they are always ordered after startup.
	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a Daemon. Run starts it.
func New(opts Options) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NewInternalNotifier(logger)
		notifier.SetEnabled(false)
	}

	d := &Daemon{
		logger:     logger,
		dispatcher: opts.Dispatcher,
		backend:    opts.Backend,
		settings:   opts.Settings,
		notifier:   notifier,
		level:      opts.Level,
		verbose:    opts.Verbose,
		ready:      make(chan struct{}),
	}
	d.watcher = watcher.New(opts.Backend, opts.Settings, opts.Dispatcher, nil, logger.With("component", "watcher"))

	d.settings.SetReloadCallback(d.onSettingsReloaded)
	d.settings.SetErrorCallback(d.notifier.NotifyConfigError)
	d.applyLogSettings(d.settings.Config())
	d.notifier.SetEnabled(opts.Notifier != nil && d.settings.Config().Notify.Enabled)
	return d
}

// Run enables the watcher and processes events until ctx is cancelled. The
// watcher is disabled before Run returns, releasing every PiP window.
func (d *Daemon) Run(ctx context.Context) error {
	// Queued before the backend can post events. Control requests wait for
	// Ready, so they are ordered after it too.
	d.dispatcher.Invoke(d.start)

	if err := d.backend.Start(ctx); err != nil {
		d.notifier.NotifyBackendError(err)
		return fmt.Errorf("failed to start window manager backend: %w", err)
	}
	defer d.backend.Stop()

	if err := d.settings.Start(); err != nil {
		d.logger.Warn("settings will not be hot-reloaded", "error", err)
	}
	defer d.settings.Stop()

	err := d.dispatcher.Run(ctx)

	// The dispatcher has stopped so the watcher is ours. Work still queued
	// is dropped; pending Calls fail with their context.
	d.watcher.Disable()
	d.logger.Info("watcher disabled")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (d *Daemon) start() {
	d.watcher.SetExactTitles(d.loadMatchers())
	d.watcher.Enable()
	d.readyOnce.Do(func() { close(d.ready) })
	d.logger.Info("pipontopd ready", "matchers", d.matchersPath)
}

// Ready is closed once Run has enabled the watcher.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// RequestReload queues a reload without waiting for it.
func (d *Daemon) RequestReload() {
	d.dispatcher.Invoke(d.reload)
}

// Status returns a snapshot of the watcher.
func (d *Daemon) Status(ctx context.Context) (watcher.Status, error) {
	var status watcher.Status
	err := d.call(ctx, func() {
		status = d.watcher.Snapshot()
	})
	return status, err
}

// Enable starts the watcher if it is stopped.
func (d *Daemon) Enable(ctx context.Context) error {
	return d.call(ctx, d.watcher.Enable)
}

// Disable stops the watcher and clears above and sticky on PiP windows.
func (d *Daemon) Disable(ctx context.Context) error {
	return d.call(ctx, d.watcher.Disable)
}

// Reload disables the watcher, re-reads the title matchers and enables the
// watcher again if it was running.
func (d *Daemon) Reload(ctx context.Context) error {
	return d.call(ctx, d.reload)
}

// call runs fn on the dispatcher once startup has completed.
func (d *Daemon) call(ctx context.Context, fn func()) error {
	select {
	case <-d.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	return d.dispatcher.Call(ctx, fn)
}

func (d *Daemon) reload() {
	wasEnabled := d.watcher.Enabled()
	d.watcher.Disable()
	exact := d.loadMatchers()
	d.watcher.SetExactTitles(exact)
	if wasEnabled {
		d.watcher.Enable()
	}
	d.logger.Info("reloaded", "exact_titles", exact.Len(), "enabled", wasEnabled)
}

// loadMatchers reads the matchers document. Failures fall back to the
// built-in rules only.
func (d *Daemon) loadMatchers() *classify.ExactTitles {
	path, err := d.settings.Config().MatchersPath()
	if err != nil {
		d.logger.Warn("failed to resolve title matchers path", "error", err)
		d.notifier.NotifyMatchersError(err)
		return classify.NewExactTitles()
	}
	d.matchersPath = path

	exact, err := classify.ReadMatchers(path)
	if err != nil {
		d.logger.Warn("failed to load title matchers", "path", path, "error", err)
		d.notifier.NotifyMatchersError(err)
		return classify.NewExactTitles()
	}
	d.logger.Debug("loaded title matchers", "path", path, "titles", exact.Len())
	return exact
}

// onSettingsReloaded runs on the settings watcher goroutine.
func (d *Daemon) onSettingsReloaded(cfg *config.DaemonConfig) {
	d.applyLogSettings(cfg)
	d.notifier.SetEnabled(cfg.Notify.Enabled)

	path, err := cfg.MatchersPath()
	if err != nil {
		return
	}
	d.dispatcher.Invoke(func() {
		if path != d.matchersPath && d.watcher.Enabled() {
			d.logger.Info("title matchers path changed", "path", path)
			d.reload()
		}
	})
}

func (d *Daemon) applyLogSettings(cfg *config.DaemonConfig) {
	if d.level == nil || d.verbose {
		return
	}
	d.level.Set(cfg.LogLevel())
}
