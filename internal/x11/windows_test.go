package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/pipontop/internal/host"
)

func TestNormalWindowType(t *testing.T) {
	tests := []struct {
		name     string
		types    []string
		expected bool
	}{
		{"untyped", nil, true},
		{"normal", []string{"_NET_WM_WINDOW_TYPE_NORMAL"}, true},
		{"dialog", []string{"_NET_WM_WINDOW_TYPE_DIALOG"}, true},
		{"utility", []string{"_NET_WM_WINDOW_TYPE_UTILITY", "_NET_WM_WINDOW_TYPE_NORMAL"}, true},
		{"dock", []string{"_NET_WM_WINDOW_TYPE_DOCK"}, false},
		{"desktop", []string{"_NET_WM_WINDOW_TYPE_DESKTOP"}, false},
		{"preferred type wins", []string{"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NORMAL"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalWindowType(tt.types))
		})
	}
}

func TestSkipsTaskbar(t *testing.T) {
	assert.False(t, skipsTaskbar(nil))
	assert.False(t, skipsTaskbar([]string{"_NET_WM_STATE_ABOVE"}))
	assert.True(t, skipsTaskbar([]string{"_NET_WM_STATE_ABOVE", "_NET_WM_STATE_SKIP_TASKBAR"}))
}

func TestWorkspaceOf(t *testing.T) {
	assert.Equal(t, host.WorkspaceID(0), workspaceOf(0))
	assert.Equal(t, host.WorkspaceID(3), workspaceOf(3))
	assert.Equal(t, host.AllWorkspaces, workspaceOf(0xFFFFFFFF))
}

func TestDiffClients(t *testing.T) {
	tracked := map[xproto.Window]host.WorkspaceID{
		10: 0,
		11: 1,
		12: host.AllWorkspaces,
		13: 0,
	}

	added, removed := diffClients(tracked, []xproto.Window{20, 11, 10, 21})
	assert.Equal(t, []xproto.Window{20, 21}, added)
	assert.Equal(t, []xproto.Window{12, 13}, removed)

	added, removed = diffClients(nil, []xproto.Window{1})
	assert.Equal(t, []xproto.Window{1}, added)
	assert.Empty(t, removed)

	added, removed = diffClients(tracked, nil)
	assert.Empty(t, added)
	assert.Equal(t, []xproto.Window{10, 11, 12, 13}, removed)
}
