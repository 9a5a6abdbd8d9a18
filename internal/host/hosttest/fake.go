// Package hosttest provides an in-memory window manager for tests.
package hosttest

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jmylchreest/pipontop/internal/event"
	"github.com/jmylchreest/pipontop/internal/host"
)

// ErrNoWindow is returned for operations on unknown windows.
var ErrNoWindow = errors.New("no such window")

// Window is the fake's view of one window.
type Window struct {
	ID        host.WindowID
	Title     string
	Workspace host.WorkspaceID
	Above     bool
	Sticky    bool
}

// Call records a property change made through the WindowManager interface.
type Call struct {
	Op     string // "above" or "sticky"
	Window host.WindowID
	Value  bool
}

// String returns the string representation of Call.
func (c Call) String() string {
	return fmt.Sprintf("%s(%d)=%t", c.Op, c.Window, c.Value)
}

// WM is a host.WindowManager that posts events like a real backend would.
type WM struct {
	poster  event.Poster
	active  host.WorkspaceID
	windows map[host.WindowID]*Window
	order   []host.WindowID

	// Calls lists every SetAbove/SetSticky call in order.
	Calls []Call
}

// NewWM creates a fake window manager showing workspace active.
func NewWM(poster event.Poster, active host.WorkspaceID) *WM {
	return &WM{
		poster:  poster,
		active:  active,
		windows: make(map[host.WindowID]*Window),
	}
}

// Seed adds a window without posting any event, for windows that exist
// before the watcher is enabled.
func (m *WM) Seed(id host.WindowID, ws host.WorkspaceID, title string) *Window {
	w := &Window{ID: id, Title: title, Workspace: ws}
	m.windows[id] = w
	m.order = append(m.order, id)
	return w
}

// Open adds a window and posts WindowAdded.
func (m *WM) Open(id host.WindowID, ws host.WorkspaceID, title string) *Window {
	w := m.Seed(id, ws, title)
	m.poster.Post(event.Event{Kind: event.WindowAdded, Workspace: ws, Window: id})
	return w
}

// Close removes a window and posts WindowRemoved.
func (m *WM) Close(id host.WindowID) {
	w, ok := m.windows[id]
	if !ok {
		return
	}
	delete(m.windows, id)
	m.order = slices.DeleteFunc(m.order, func(other host.WindowID) bool { return other == id })
	m.poster.Post(event.Event{Kind: event.WindowRemoved, Workspace: w.Workspace, Window: id})
}

// Rename changes a window title and posts TitleChanged.
func (m *WM) Rename(id host.WindowID, title string) {
	w, ok := m.windows[id]
	if !ok {
		return
	}
	w.Title = title
	m.poster.Post(event.Event{Kind: event.TitleChanged, Window: id})
}

// Move moves a window to ws, posting WindowRemoved then WindowAdded.
func (m *WM) Move(id host.WindowID, ws host.WorkspaceID) {
	w, ok := m.windows[id]
	if !ok {
		return
	}
	old := w.Workspace
	w.Workspace = ws
	m.poster.Post(event.Event{Kind: event.WindowRemoved, Workspace: old, Window: id})
	m.poster.Post(event.Event{Kind: event.WindowAdded, Workspace: ws, Window: id})
}

// Switch activates ws and posts WorkspaceSwitched.
func (m *WM) Switch(ws host.WorkspaceID) {
	m.active = ws
	m.poster.Post(event.Event{Kind: event.WorkspaceSwitched, Workspace: ws})
}

// Window returns the fake window with the given ID, or nil.
func (m *WM) Window(id host.WindowID) *Window {
	return m.windows[id]
}

// ResetCalls clears the recorded calls.
func (m *WM) ResetCalls() {
	m.Calls = nil
}

// ActiveWorkspace implements host.WindowManager.
func (m *WM) ActiveWorkspace() (host.WorkspaceID, error) {
	return m.active, nil
}

// WorkspaceWindows implements host.WindowManager.
func (m *WM) WorkspaceWindows(ws host.WorkspaceID) ([]host.WindowID, error) {
	var ids []host.WindowID
	for _, id := range m.order {
		w := m.windows[id]
		if w.Sticky || w.Workspace.Includes(ws) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Windows implements host.WindowManager.
func (m *WM) Windows() ([]host.WindowID, error) {
	return slices.Clone(m.order), nil
}

// Title implements host.WindowManager.
func (m *WM) Title(win host.WindowID) (string, error) {
	w, ok := m.windows[win]
	if !ok {
		return "", ErrNoWindow
	}
	return w.Title, nil
}

// SetAbove implements host.WindowManager.
func (m *WM) SetAbove(win host.WindowID, above bool) error {
	m.Calls = append(m.Calls, Call{Op: "above", Window: win, Value: above})
	w, ok := m.windows[win]
	if !ok {
		return ErrNoWindow
	}
	w.Above = above
	return nil
}

// SetSticky implements host.WindowManager.
func (m *WM) SetSticky(win host.WindowID, sticky bool) error {
	m.Calls = append(m.Calls, Call{Op: "sticky", Window: win, Value: sticky})
	w, ok := m.windows[win]
	if !ok {
		return ErrNoWindow
	}
	w.Sticky = sticky
	return nil
}

// Settings is an in-memory host.Settings that posts SettingChanged.
type Settings struct {
	poster event.Poster
	values map[string]bool
}

// NewSettings creates settings with every key false.
func NewSettings(poster event.Poster) *Settings {
	return &Settings{poster: poster, values: make(map[string]bool)}
}

// Bool implements host.Settings.
func (s *Settings) Bool(key string) bool {
	return s.values[key]
}

// Set stores value and posts SettingChanged when it differs.
func (s *Settings) Set(key string, value bool) {
	if s.values[key] == value {
		return
	}
	s.values[key] = value
	s.poster.Post(event.Event{Kind: event.SettingChanged, Key: key})
}
