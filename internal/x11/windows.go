package x11

import (
	"slices"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/jmylchreest/pipontop/internal/host"
)

// tabListTypes are the window types that show up in a window switcher.
var tabListTypes = []string{
	"_NET_WM_WINDOW_TYPE_NORMAL",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_WM_WINDOW_TYPE_UTILITY",
}

// normalWindowType reports whether a window with the given
// _NET_WM_WINDOW_TYPE list is a regular application window. Windows
// without a type are normal.
func normalWindowType(types []string) bool {
	if len(types) == 0 {
		return true
	}
	// The first type the client lists is the preferred one.
	return slices.Contains(tabListTypes, types[0])
}

func skipsTaskbar(states []string) bool {
	return slices.Contains(states, "_NET_WM_STATE_SKIP_TASKBAR")
}

// workspaceOf converts a _NET_WM_DESKTOP value.
func workspaceOf(desktop uint) host.WorkspaceID {
	if desktop == 0xFFFFFFFF {
		return host.AllWorkspaces
	}
	return host.WorkspaceID(desktop)
}

// diffClients compares the tracked windows with a fresh _NET_CLIENT_LIST.
// Both results keep client list order; removed windows are sorted.
func diffClients(tracked map[xproto.Window]host.WorkspaceID, clients []xproto.Window) (added, removed []xproto.Window) {
	present := make(map[xproto.Window]struct{}, len(clients))
	for _, win := range clients {
		present[win] = struct{}{}
		if _, ok := tracked[win]; !ok {
			added = append(added, win)
		}
	}
	for win := range tracked {
		if _, ok := present[win]; !ok {
			removed = append(removed, win)
		}
	}
	slices.Sort(removed)
	return added, removed
}
