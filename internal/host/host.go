// Package host defines the boundary between pipontop and the window manager
// it drives. The core never creates or destroys windows; it only reads titles
// and toggles the always-on-top and on-all-workspaces properties.
package host

// WindowID identifies a top-level window.
type WindowID uint32

// WorkspaceID identifies a virtual desktop.
type WorkspaceID uint32

// AllWorkspaces marks a window that is stuck to every workspace.
const AllWorkspaces WorkspaceID = 0xFFFFFFFF

// Includes reports whether a window living on ws is visible on other.
func (ws WorkspaceID) Includes(other WorkspaceID) bool {
	return ws == other || ws == AllWorkspaces || other == AllWorkspaces
}

// WindowManager is the window-management API consumed by the watcher.
type WindowManager interface {
	// ActiveWorkspace returns the currently shown workspace.
	ActiveWorkspace() (WorkspaceID, error)

	// WorkspaceWindows returns the normal windows on ws, including windows
	// stuck to all workspaces.
	WorkspaceWindows(ws WorkspaceID) ([]WindowID, error)

	// Windows returns every window the manager knows about.
	Windows() ([]WindowID, error)

	// Title returns the current window title. An empty title means the
	// window has not published one yet.
	Title(win WindowID) (string, error)

	SetAbove(win WindowID, above bool) error
	SetSticky(win WindowID, sticky bool) error
}

// Settings is the read side of the settings store.
type Settings interface {
	Bool(key string) bool
}
