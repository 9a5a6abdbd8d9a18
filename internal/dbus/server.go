package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/pipontop/internal/watcher"
)

// callTimeout bounds how long a D-Bus method waits for the daemon.
const callTimeout = 5 * time.Second

// Controller is the daemon side of the control interface.
type Controller interface {
	Status(ctx context.Context) (watcher.Status, error)
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	Reload(ctx context.Context) error
}

// ControlServer implements the io.github.jmylchreest.PipOnTop D-Bus interface.
type ControlServer struct {
	conn       *dbus.Conn
	logger     *slog.Logger
	controller Controller

	mu      sync.Mutex
	running bool
}

// NewControlServer creates a new ControlServer.
func NewControlServer(controller Controller, logger *slog.Logger) *ControlServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ControlServer{
		logger:     logger,
		controller: controller,
	}
}

// Start exports the control object on conn and claims the bus name.
func (s *ControlServer) Start(conn *dbus.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server already running")
	}

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: controlMethods(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken (is another pipontopd running?)", DBusBusName)
	}

	s.conn = conn
	s.running = true
	s.logger.Info("D-Bus control server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name and unexports the object.
func (s *ControlServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	_ = s.conn.Export(nil, DBusPath, DBusInterface)
	_ = s.conn.Export(nil, DBusPath, "org.freedesktop.DBus.Introspectable")
	// Don't close the connection as it's shared (SessionBus)

	s.logger.Info("D-Bus control server stopped")
	return nil
}

// Status reports the watcher state.
// D-Bus method: Status() -> (bbuuuux)
func (s *ControlServer) Status() (bool, bool, uint32, uint32, uint32, uint32, int64, *dbus.Error) {
	s.logger.Debug("Status called")

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	status, err := s.controller.Status(ctx)
	if err != nil {
		return false, false, 0, 0, 0, 0, 0, dbus.MakeFailedError(err)
	}
	r := NewStatusReply(status)
	return r.Enabled, r.Stick, r.Workspace, r.Tracked, r.Pip, r.ExactTitles, r.EnabledAt, nil
}

// ListWindows returns the tracked windows.
// D-Bus method: ListWindows() -> a(usb)
func (s *ControlServer) ListWindows() ([]WindowInfo, *dbus.Error) {
	s.logger.Debug("ListWindows called")

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	status, err := s.controller.Status(ctx)
	if err != nil {
		return nil, dbus.MakeFailedError(err)
	}
	return NewWindowInfos(status.Windows), nil
}

// Enable starts the watcher.
// D-Bus method: Enable() -> nothing
func (s *ControlServer) Enable() *dbus.Error {
	s.logger.Debug("Enable called")
	return s.run(s.controller.Enable)
}

// Disable stops the watcher and releases every PiP window.
// D-Bus method: Disable() -> nothing
func (s *ControlServer) Disable() *dbus.Error {
	s.logger.Debug("Disable called")
	return s.run(s.controller.Disable)
}

// Reload re-reads the title matchers and re-applies them.
// D-Bus method: Reload() -> nothing
func (s *ControlServer) Reload() *dbus.Error {
	s.logger.Debug("Reload called")
	return s.run(s.controller.Reload)
}

func (s *ControlServer) run(fn func(ctx context.Context) error) *dbus.Error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// controlMethods returns the D-Bus method introspection data.
func controlMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "enabled", Type: "b", Direction: "out"},
				{Name: "stick", Type: "b", Direction: "out"},
				{Name: "workspace", Type: "u", Direction: "out"},
				{Name: "tracked", Type: "u", Direction: "out"},
				{Name: "pip", Type: "u", Direction: "out"},
				{Name: "exact_titles", Type: "u", Direction: "out"},
				{Name: "enabled_at", Type: "x", Direction: "out"},
			},
		},
		{
			Name: "ListWindows",
			Args: []introspect.Arg{
				{Name: "windows", Type: "a(usb)", Direction: "out"},
			},
		},
		{Name: "Enable"},
		{Name: "Disable"},
		{Name: "Reload"},
	}
}
