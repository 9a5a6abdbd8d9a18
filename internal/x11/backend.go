// Package x11 drives an EWMH-compliant X11 window manager. Always-on-top
// and on-all-workspaces are the _NET_WM_STATE_ABOVE and _NET_WM_STATE_STICKY
// states; window and workspace changes are read from property notifications.
package x11

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/jmylchreest/pipontop/internal/event"
	"github.com/jmylchreest/pipontop/internal/host"
)

const (
	stateAbove  = "_NET_WM_STATE_ABOVE"
	stateSticky = "_NET_WM_STATE_STICKY"

	// wakeProperty is changed on the private wake window to unblock the
	// event loop on Stop.
	wakeProperty = "_PIPONTOP_WAKE"
)

var _ host.WindowManager = (*Backend)(nil)

// Backend implements host.WindowManager on an X11 connection and posts
// window manager events to the dispatcher.
type Backend struct {
	xu     *xgbutil.XUtil
	poster event.Poster
	logger *slog.Logger

	// clients maps tracked windows to their workspace. Only touched before
	// the event loop starts and on the event loop goroutine.
	clients map[xproto.Window]host.WorkspaceID

	mu      sync.Mutex
	running bool
	wake    *xwindow.Window
	doneCh  chan struct{}
}

// Connect opens the display named by $DISPLAY.
func Connect(poster event.Poster, logger *slog.Logger) (*Backend, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	return New(xu, poster, logger), nil
}

// New creates a Backend on an existing connection.
func New(xu *xgbutil.XUtil, poster event.Poster, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		xu:      xu,
		poster:  poster,
		logger:  logger,
		clients: make(map[xproto.Window]host.WorkspaceID),
	}
}

// Start subscribes to property changes and runs the X event loop in the
// background until ctx is cancelled or Stop is called.
func (b *Backend) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}

	if wm, err := ewmh.GetEwmhWM(b.xu); err == nil {
		b.logger.Info("connected to window manager", "wm", wm)
	} else {
		b.logger.Warn("window manager is not EWMH compliant", "error", err)
	}

	root := xwindow.New(b.xu, b.xu.RootWin())
	if err := root.Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}
	xevent.PropertyNotifyFun(b.onRootProperty).Connect(b.xu, root.Id)

	wake, err := xwindow.Generate(b.xu)
	if err != nil {
		return fmt.Errorf("failed to create wake window: %w", err)
	}
	wake.Create(root.Id, -1, -1, 1, 1, xproto.CwEventMask, xproto.EventMaskPropertyChange)

	clients, err := ewmh.ClientListGet(b.xu)
	if err != nil {
		b.logger.Warn("failed to read client list", "error", err)
	}
	for _, win := range clients {
		if ws, ok := b.inspect(win); ok {
			b.track(win, ws)
		}
	}

	b.wake = wake
	b.doneCh = make(chan struct{})
	b.running = true

	done := b.doneCh
	go func() {
		defer close(done)
		xevent.Main(b.xu)
	}()
	go func() {
		select {
		case <-ctx.Done():
			b.Stop()
		case <-done:
		}
	}()

	b.logger.Debug("x11 backend started", "clients", len(b.clients))
	return nil
}

// Stop ends the event loop and waits for it to exit.
func (b *Backend) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	done := b.doneCh
	wake := b.wake
	b.mu.Unlock()

	xevent.Quit(b.xu)
	// The loop only notices Quit after the next event.
	if err := xprop.ChangeProp32(b.xu, wake.Id, wakeProperty, "CARDINAL", 1); err != nil {
		b.logger.Warn("failed to wake event loop", "error", err)
	}
	<-done
	wake.Destroy()
	b.logger.Debug("x11 backend stopped")
}

// Close stops the backend and closes the X connection.
func (b *Backend) Close() {
	b.Stop()
	b.xu.Conn().Close()
}

// ActiveWorkspace implements host.WindowManager.
func (b *Backend) ActiveWorkspace() (host.WorkspaceID, error) {
	desktop, err := ewmh.CurrentDesktopGet(b.xu)
	if err != nil {
		return 0, fmt.Errorf("failed to read current desktop: %w", err)
	}
	return host.WorkspaceID(desktop), nil
}

// WorkspaceWindows implements host.WindowManager.
func (b *Backend) WorkspaceWindows(ws host.WorkspaceID) ([]host.WindowID, error) {
	clients, err := ewmh.ClientListGet(b.xu)
	if err != nil {
		return nil, fmt.Errorf("failed to read client list: %w", err)
	}

	var ids []host.WindowID
	for _, win := range clients {
		winWS, ok := b.inspect(win)
		if ok && winWS.Includes(ws) {
			ids = append(ids, host.WindowID(win))
		}
	}
	return ids, nil
}

// Windows implements host.WindowManager.
func (b *Backend) Windows() ([]host.WindowID, error) {
	clients, err := ewmh.ClientListGet(b.xu)
	if err != nil {
		return nil, fmt.Errorf("failed to read client list: %w", err)
	}
	ids := make([]host.WindowID, len(clients))
	for i, win := range clients {
		ids[i] = host.WindowID(win)
	}
	return ids, nil
}

// Title implements host.WindowManager. _NET_WM_NAME is preferred over the
// ICCCM WM_NAME.
func (b *Backend) Title(win host.WindowID) (string, error) {
	title, err := ewmh.WmNameGet(b.xu, xproto.Window(win))
	if err == nil && title != "" {
		return title, nil
	}

	title, err2 := icccm.WmNameGet(b.xu, xproto.Window(win))
	if err2 == nil {
		return title, nil
	}

	if err != nil {
		return "", err
	}
	return "", err2
}

// SetAbove implements host.WindowManager.
func (b *Backend) SetAbove(win host.WindowID, above bool) error {
	return b.setState(win, stateAbove, above)
}

// SetSticky implements host.WindowManager.
func (b *Backend) SetSticky(win host.WindowID, sticky bool) error {
	return b.setState(win, stateSticky, sticky)
}

func (b *Backend) setState(win host.WindowID, state string, on bool) error {
	action := ewmh.StateRemove
	if on {
		action = ewmh.StateAdd
	}
	if err := ewmh.WmStateReq(b.xu, xproto.Window(win), action, state); err != nil {
		return fmt.Errorf("failed to change %s on window %d: %w", state, win, err)
	}
	return nil
}

// inspect returns the workspace of win and whether it is a normal,
// tab-list window.
func (b *Backend) inspect(win xproto.Window) (host.WorkspaceID, bool) {
	types, _ := ewmh.WmWindowTypeGet(b.xu, win)
	if !normalWindowType(types) {
		return 0, false
	}
	states, _ := ewmh.WmStateGet(b.xu, win)
	if skipsTaskbar(states) {
		return 0, false
	}

	desktop, err := ewmh.WmDesktopGet(b.xu, win)
	if err != nil {
		// Unplaced windows are treated as visible everywhere.
		return host.AllWorkspaces, true
	}
	return workspaceOf(desktop), true
}

// track starts listening to property changes on win.
func (b *Backend) track(win xproto.Window, ws host.WorkspaceID) {
	b.clients[win] = ws
	if err := xwindow.New(b.xu, win).Listen(xproto.EventMaskPropertyChange); err != nil {
		b.logger.Debug("failed to listen on window", "window", win, "error", err)
	}
	xevent.PropertyNotifyFun(b.onClientProperty).Connect(b.xu, win)
}

func (b *Backend) untrack(win xproto.Window) {
	delete(b.clients, win)
	xevent.Detach(b.xu, win)
}

func (b *Backend) onRootProperty(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
	name, err := xprop.AtomName(xu, ev.Atom)
	if err != nil {
		return
	}

	switch name {
	case "_NET_CURRENT_DESKTOP":
		ws, err := b.ActiveWorkspace()
		if err != nil {
			b.logger.Warn("failed to read workspace after switch", "error", err)
			return
		}
		b.poster.Post(event.Event{Kind: event.WorkspaceSwitched, Workspace: ws})

	case "_NET_CLIENT_LIST":
		clients, err := ewmh.ClientListGet(xu)
		if err != nil {
			b.logger.Warn("failed to read client list", "error", err)
			return
		}
		added, removed := diffClients(b.clients, clients)
		for _, win := range removed {
			ws := b.clients[win]
			b.untrack(win)
			b.poster.Post(event.Event{Kind: event.WindowRemoved, Workspace: ws, Window: host.WindowID(win)})
		}
		for _, win := range added {
			ws, ok := b.inspect(win)
			if !ok {
				continue
			}
			b.track(win, ws)
			b.poster.Post(event.Event{Kind: event.WindowAdded, Workspace: ws, Window: host.WindowID(win)})
		}
	}
}

func (b *Backend) onClientProperty(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
	old, ok := b.clients[ev.Window]
	if !ok {
		return
	}
	name, err := xprop.AtomName(xu, ev.Atom)
	if err != nil {
		return
	}

	switch name {
	case "_NET_WM_NAME", "WM_NAME":
		b.poster.Post(event.Event{Kind: event.TitleChanged, Window: host.WindowID(ev.Window)})

	case "_NET_WM_DESKTOP":
		desktop, err := ewmh.WmDesktopGet(xu, ev.Window)
		if err != nil {
			return
		}
		ws := workspaceOf(desktop)
		if ws == old {
			return
		}
		b.clients[ev.Window] = ws
		b.poster.Post(event.Event{Kind: event.WindowRemoved, Workspace: old, Window: host.WindowID(ev.Window)})
		b.poster.Post(event.Event{Kind: event.WindowAdded, Workspace: ws, Window: host.WindowID(ev.Window)})
	}
}
