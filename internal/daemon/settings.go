package daemon

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/pipontop/internal/config"
	"github.com/jmylchreest/pipontop/internal/event"
)

// SettingsWatcher is the settings store backed by the daemon config file.
// It watches the file for changes, validates new contents and posts a
// SettingChanged event for every boolean setting that changed value.
type SettingsWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger
	poster event.Poster

	// Path to watch
	configPath string

	// Current valid config
	current *config.DaemonConfig

	// Callbacks
	onReloadCallback func(newConfig *config.DaemonConfig)
	onErrorCallback  func(err error)

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewSettingsWatcher creates a SettingsWatcher holding initial.
func NewSettingsWatcher(configPath string, initial *config.DaemonConfig, poster event.Poster, logger *slog.Logger) *SettingsWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if initial == nil {
		initial = config.DefaultDaemonConfig()
	}
	return &SettingsWatcher{
		logger:     logger,
		poster:     poster,
		configPath: configPath,
		current:    initial,
	}
}

// SetReloadCallback sets the callback to invoke when config is successfully reloaded.
func (w *SettingsWatcher) SetReloadCallback(callback func(newConfig *config.DaemonConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReloadCallback = callback
}

// SetErrorCallback sets the callback to invoke when config reload fails validation.
func (w *SettingsWatcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onErrorCallback = callback
}

// Bool returns the current value of a boolean setting.
func (w *SettingsWatcher) Bool(key string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current.Bool(key)
}

// Config returns the current valid configuration.
func (w *SettingsWatcher) Config() *config.DaemonConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Start begins watching the config file for changes.
func (w *SettingsWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	// Watch the directory containing the file; editors replace files on save.
	dir := filepath.Dir(w.configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.watcher = watcher
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	go w.watch(watcher, w.stopCh, w.doneCh)

	w.logger.Debug("settings watcher started", "path", w.configPath)
	return nil
}

// Stop stops watching the config file.
func (w *SettingsWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	watcher := w.watcher
	done := w.doneCh
	w.mu.Unlock()

	<-done
	if err := watcher.Close(); err != nil {
		w.logger.Debug("failed to close file watcher", "error", err)
	}
	w.logger.Debug("settings watcher stopped")
}

// watch is the main watch loop.
func (w *SettingsWatcher) watch(watcher *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	filename := filepath.Base(w.configPath)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Only care about our file
			if filepath.Base(ev.Name) != filename {
				continue
			}

			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.logger.Debug("config file changed", "path", w.configPath, "op", ev.Op.String())
				w.Reload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-stop:
			return
		}
	}
}

// Reload re-reads the config file. An invalid file keeps the current
// configuration and is reported through the error callback. It returns the
// keys that changed.
func (w *SettingsWatcher) Reload() []string {
	w.mu.RLock()
	reloadCallback := w.onReloadCallback
	errorCallback := w.onErrorCallback
	w.mu.RUnlock()

	next, err := config.LoadDaemonConfig(w.configPath)
	if err != nil {
		w.logger.Warn("config file changed but validation failed", "error", err)
		if errorCallback != nil {
			errorCallback(err)
		}
		return nil
	}

	w.mu.Lock()
	changed := config.Diff(w.current, next)
	w.current = next
	w.mu.Unlock()

	for _, key := range changed {
		w.logger.Info("setting changed", "key", key, "value", next.Bool(key))
		w.poster.Post(event.Event{Kind: event.SettingChanged, Key: key})
	}

	if reloadCallback != nil {
		reloadCallback(next)
	}
	return changed
}
