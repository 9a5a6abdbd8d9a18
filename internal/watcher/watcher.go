// Package watcher keeps PiP windows above other windows and, when the stick
// setting is on, on every workspace. It follows the active workspace and
// re-evaluates windows as they appear, are renamed and disappear.
package watcher

import (
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/jmylchreest/pipontop/internal/classify"
	"github.com/jmylchreest/pipontop/internal/event"
	"github.com/jmylchreest/pipontop/internal/host"
)

// SettingStick is the settings key that makes PiP windows visible on all
// workspaces.
const SettingStick = "stick"

// Bus is the subscription side of the event dispatcher.
type Bus interface {
	Subscribe(topic event.Topic, handler event.Handler) event.HandlerID
	Unsubscribe(id event.HandlerID) bool
}

// trackedWindow is the state attached to an observed window.
type trackedWindow struct {
	titleSub event.HandlerID
	pipAble  bool   // last classification
	title    string // last non-empty title seen
}

// Watcher applies the title classifier to every window on the active
// workspace. All methods must be called from the dispatcher goroutine.
type Watcher struct {
	wm       host.WindowManager
	settings host.Settings
	bus      Bus
	logger   *slog.Logger
	exact    *classify.ExactTitles

	enabled   bool
	enabledAt time.Time

	settingsSub event.HandlerID
	switchSub   event.HandlerID

	// The single live workspace subscription pair.
	workspace    host.WorkspaceID
	hasWorkspace bool
	addedSub     event.HandlerID
	removedSub   event.HandlerID

	windows map[host.WindowID]*trackedWindow
}

// New creates a disabled Watcher.
func New(wm host.WindowManager, settings host.Settings, bus Bus, exact *classify.ExactTitles, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		wm:       wm,
		settings: settings,
		bus:      bus,
		logger:   logger,
		exact:    exact,
		windows:  make(map[host.WindowID]*trackedWindow),
	}
}

// SetExactTitles replaces the exact-match title set. Windows are not
// re-evaluated until their next title change or workspace sync.
func (w *Watcher) SetExactTitles(exact *classify.ExactTitles) {
	w.exact = exact
}

// Enabled reports whether the watcher is running.
func (w *Watcher) Enabled() bool {
	return w.enabled
}

// Enable starts observing settings, workspace switches and the windows of
// the active workspace. Calling Enable twice is a no-op.
func (w *Watcher) Enable() {
	if w.enabled {
		return
	}
	w.enabled = true
	w.enabledAt = time.Now()
	w.logger.Debug("enabled", "exact_titles", w.exact.Len())

	w.settingsSub = w.bus.Subscribe(event.Topic{Kind: event.SettingChanged}, w.onSettingChanged)
	w.switchSub = w.bus.Subscribe(event.Topic{Kind: event.WorkspaceSwitched}, w.onSwitchWorkspace)
	w.syncWorkspace()
}

// Disable drops every subscription and clears the above and sticky state of
// every window currently classified as PiP. Calling Disable twice is a no-op.
func (w *Watcher) Disable() {
	if !w.enabled {
		return
	}
	w.logger.Debug("disabling")

	w.bus.Unsubscribe(w.settingsSub)
	w.bus.Unsubscribe(w.switchSub)
	w.settingsSub = 0
	w.switchSub = 0
	w.dropWorkspace()

	windows, err := w.wm.Windows()
	if err != nil {
		w.logger.Warn("failed to list windows", "error", err)
	}
	for _, win := range windows {
		if tw, ok := w.windows[win]; ok && tw.pipAble {
			w.setAbove(win, false)
			w.setSticky(win, false)
		}
		w.onWindowRemoved(event.Event{Kind: event.WindowRemoved, Window: win})
	}

	// Windows the host no longer lists still hold subscriptions.
	for _, win := range slices.Sorted(maps.Keys(w.windows)) {
		w.onWindowRemoved(event.Event{Kind: event.WindowRemoved, Window: win})
	}

	w.enabled = false
	w.enabledAt = time.Time{}
}

func (w *Watcher) onSettingChanged(ev event.Event) {
	switch ev.Key {
	case SettingStick:
		// bring already present windows in line with the new value
		w.syncWorkspace()
	default:
	}
}

func (w *Watcher) onSwitchWorkspace(event.Event) {
	w.syncWorkspace()
}

// syncWorkspace moves the added/removed subscriptions to the active
// workspace and re-evaluates every window on it.
func (w *Watcher) syncWorkspace() {
	ws, err := w.wm.ActiveWorkspace()
	if err != nil {
		w.logger.Warn("failed to get active workspace", "error", err)
		return
	}

	windows, err := w.wm.WorkspaceWindows(ws)
	if err != nil {
		w.logger.Warn("failed to list workspace windows", "workspace", ws, "error", err)
	}

	w.dropWorkspace()
	w.workspace = ws
	w.hasWorkspace = true
	w.addedSub = w.bus.Subscribe(event.WorkspaceTopic(event.WindowAdded, ws), w.onWindowAdded)
	w.removedSub = w.bus.Subscribe(event.WorkspaceTopic(event.WindowRemoved, ws), w.onWindowRemoved)
	w.logger.Debug("watching workspace", "workspace", ws, "windows", len(windows))

	for _, win := range windows {
		w.onWindowAdded(event.Event{Kind: event.WindowAdded, Workspace: ws, Window: win})
	}
}

func (w *Watcher) dropWorkspace() {
	if !w.hasWorkspace {
		return
	}
	w.bus.Unsubscribe(w.addedSub)
	w.bus.Unsubscribe(w.removedSub)
	w.addedSub = 0
	w.removedSub = 0
	w.hasWorkspace = false
}

func (w *Watcher) onWindowAdded(ev event.Event) {
	tw, ok := w.windows[ev.Window]
	if !ok {
		tw = &trackedWindow{}
		w.windows[ev.Window] = tw
	}
	if tw.titleSub == 0 {
		tw.titleSub = w.bus.Subscribe(event.WindowTopic(ev.Window), w.onTitleChanged)
	}
	w.logger.Debug("window-added", "window", ev.Window, "workspace", ev.Workspace)

	w.checkTitle(ev.Window)
}

func (w *Watcher) onWindowRemoved(ev event.Event) {
	tw, ok := w.windows[ev.Window]
	if !ok {
		return
	}
	if tw.titleSub != 0 {
		w.bus.Unsubscribe(tw.titleSub)
		tw.titleSub = 0
	}
	delete(w.windows, ev.Window)
	w.logger.Debug("window-removed", "window", ev.Window, "workspace", ev.Workspace)
}

func (w *Watcher) onTitleChanged(ev event.Event) {
	w.checkTitle(ev.Window)
}

// checkTitle classifies the window and applies the result. A window that
// was PiP on the previous check is always re-applied, so a title that stops
// matching actively clears above and sticky.
func (w *Watcher) checkTitle(win host.WindowID) {
	tw, ok := w.windows[win]
	if !ok {
		return
	}

	title, err := w.wm.Title(win)
	if err != nil {
		w.logger.Debug("failed to read title", "window", win, "error", err)
		return
	}
	if title == "" {
		return
	}
	tw.title = title

	verdict := classify.Evaluate(title, w.exact)
	isPip := verdict.Pip()
	w.logger.Debug("check-title", "window", win, "title", title,
		"normalized", verdict.Normalized, "static", verdict.Static,
		"exact", verdict.Exact, "final", isPip)

	if isPip || tw.pipAble {
		stick := isPip && w.settings.Bool(SettingStick)
		w.setAbove(win, isPip)
		w.setSticky(win, stick)
	}
	tw.pipAble = isPip
}

func (w *Watcher) setAbove(win host.WindowID, above bool) {
	w.logger.Debug("apply above", "window", win, "above", above)
	if err := w.wm.SetAbove(win, above); err != nil {
		w.logger.Warn("failed to set above", "window", win, "above", above, "error", err)
	}
}

func (w *Watcher) setSticky(win host.WindowID, sticky bool) {
	w.logger.Debug("apply stick", "window", win, "sticky", sticky)
	if err := w.wm.SetSticky(win, sticky); err != nil {
		w.logger.Warn("failed to set sticky", "window", win, "sticky", sticky, "error", err)
	}
}
