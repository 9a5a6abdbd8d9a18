package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/pipontop/internal/config"
	"github.com/jmylchreest/pipontop/internal/watcher"
)

type fakeClient struct {
	status watcher.Status
	err    error
	calls  []string
}

func (c *fakeClient) Status(ctx context.Context) (watcher.Status, error) {
	c.calls = append(c.calls, "status")
	return c.status, c.err
}

func (c *fakeClient) Enable(ctx context.Context) error {
	c.calls = append(c.calls, "enable")
	return c.err
}

func (c *fakeClient) Disable(ctx context.Context) error {
	c.calls = append(c.calls, "disable")
	return c.err
}

func (c *fakeClient) Reload(ctx context.Context) error {
	c.calls = append(c.calls, "reload")
	return c.err
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, client *fakeClient, args ...string) (string, error) {
	t.Helper()
	if client != nil {
		orig := newClient
		newClient = func() (daemonClient, error) { return client, nil }
		t.Cleanup(func() { newClient = orig })
	}
	t.Cleanup(func() {
		stickOpts.quiet = false
		checkOpts.quiet = false
		checkOpts.matchers = ""
		statusOpts.waybar = false
		globalOpts.format = "plain"
		globalOpts.configPath = ""
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNextStick(t *testing.T) {
	tests := []struct {
		current  bool
		action   string
		expected bool
		wantErr  bool
	}{
		{false, "on", true, false},
		{true, "off", false, false},
		{false, "toggle", true, false},
		{true, "toggle", false, false},
		{true, "1", true, false},
		{false, "maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			got, err := nextStick(tt.current, tt.action)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStickCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipontopd.toml")

	out, err := execute(t, nil, "--config", path, "stick")
	require.NoError(t, err)
	assert.Equal(t, "Stick: off\n", out)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "showing the setting does not write the file")

	out, err = execute(t, nil, "--config", path, "stick", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "Stick: on\n", out)

	cfg, err := config.LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Behavior.Stick)

	_, err = execute(t, nil, "--config", path, "stick", "sideways")
	assert.Error(t, err)
}

func TestControlCommands(t *testing.T) {
	client := &fakeClient{}

	out, err := execute(t, client, "enable")
	require.NoError(t, err)
	assert.Equal(t, "pipontopd enabled\n", out)

	out, err = execute(t, client, "reload")
	require.NoError(t, err)
	assert.Equal(t, "pipontopd reloaded\n", out)

	_, err = execute(t, client, "disable")
	require.NoError(t, err)
	assert.Equal(t, []string{"enable", "reload", "disable"}, client.calls)

	failing := &fakeClient{err: errors.New("name has no owner")}
	_, err = execute(t, failing, "reload")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is pipontopd running?")
}

func TestStatusCommand(t *testing.T) {
	client := &fakeClient{status: watcher.Status{
		Enabled:   true,
		Workspace: 2,
		Windows: []watcher.WindowStatus{
			{ID: 7, Title: "Picture-in-Picture", Pip: true},
		},
	}}

	out, err := execute(t, client, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Workspace:    2")
	assert.Contains(t, out, "Picture-in-Picture")

	out, err = execute(t, client, "--format", "json", "windows")
	require.NoError(t, err)
	var windows []watcher.WindowStatus
	require.NoError(t, json.Unmarshal([]byte(out), &windows))
	assert.Equal(t, client.status.Windows, windows)

	_, err = execute(t, client, "--format", "xml", "status")
	assert.Error(t, err)
}

func TestStatusCommand_Waybar(t *testing.T) {
	out, err := execute(t, &fakeClient{err: errors.New("no daemon")}, "status", "--waybar")
	require.NoError(t, err, "waybar output never fails")

	var status WaybarStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, "error", status.Class)
}

func TestGenerateWaybarStatus(t *testing.T) {
	tests := []struct {
		name   string
		status watcher.Status
		text   string
		class  string
	}{
		{"disabled", watcher.Status{}, "", "disabled"},
		{"idle", watcher.Status{Enabled: true}, "0", "idle"},
		{
			"active sticky",
			watcher.Status{Enabled: true, Stick: true, Windows: []watcher.WindowStatus{{ID: 1, Title: "PiP", Pip: true}}},
			"1", "active-sticky",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateWaybarStatus(tt.status)
			assert.Equal(t, tt.text, got.Text)
			assert.Equal(t, tt.class, got.Class)
			assert.Equal(t, tt.class, got.Alt)
		})
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	matchers := filepath.Join(dir, "matchers.json")
	require.NoError(t, os.WriteFile(matchers, []byte(`{"firefox": ["Floating Player"]}`), 0644))

	out, err := execute(t, nil, "--format", "json", "check", "--matchers", matchers,
		"Picture-in-Picture", "Floating   Player", "Editor")
	require.NoError(t, err)

	var checks []struct {
		Title string `json:"title"`
		Pip   bool   `json:"pip"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &checks))
	require.Len(t, checks, 3)
	assert.True(t, checks[0].Pip)
	assert.True(t, checks[1].Pip)
	assert.False(t, checks[2].Pip)

	_, err = execute(t, nil, "check", "--matchers", matchers, "--quiet", "Picture-in-Picture")
	assert.NoError(t, err)

	_, err = execute(t, nil, "check", "--matchers", matchers, "--quiet", "Picture-in-Picture", "Editor")
	assert.Error(t, err)
}
