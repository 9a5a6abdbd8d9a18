package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/pipontop/internal/watcher"
)

// Client calls the pipontopd control interface.
type Client struct {
	obj dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return NewClientWithConn(conn), nil
}

// NewClientWithConn creates a client on an existing connection.
func NewClientWithConn(conn *dbus.Conn) *Client {
	return &Client{obj: conn.Object(DBusBusName, DBusPath)}
}

// Status returns the daemon status including the tracked windows.
func (c *Client) Status(ctx context.Context) (watcher.Status, error) {
	var r StatusReply
	err := c.obj.CallWithContext(ctx, DBusInterface+".Status", 0).Store(
		&r.Enabled, &r.Stick, &r.Workspace, &r.Tracked, &r.Pip, &r.ExactTitles, &r.EnabledAt)
	if err != nil {
		return watcher.Status{}, fmt.Errorf("status: %w", err)
	}

	windows, err := c.ListWindows(ctx)
	if err != nil {
		return watcher.Status{}, err
	}
	return r.Status(windows), nil
}

// ListWindows returns the windows tracked by the daemon.
func (c *Client) ListWindows(ctx context.Context) ([]WindowInfo, error) {
	var windows []WindowInfo
	if err := c.obj.CallWithContext(ctx, DBusInterface+".ListWindows", 0).Store(&windows); err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	return windows, nil
}

// Enable asks the daemon to start watching windows.
func (c *Client) Enable(ctx context.Context) error {
	return c.call(ctx, "Enable")
}

// Disable asks the daemon to stop watching windows.
func (c *Client) Disable(ctx context.Context) error {
	return c.call(ctx, "Disable")
}

// Reload asks the daemon to re-read its title matchers.
func (c *Client) Reload(ctx context.Context) error {
	return c.call(ctx, "Reload")
}

func (c *Client) call(ctx context.Context, method string) error {
	if err := c.obj.CallWithContext(ctx, DBusInterface+"."+method, 0).Err; err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}
