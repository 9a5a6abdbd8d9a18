package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Notifier sends desktop notifications to the running notification daemon.
type Notifier struct {
	conn *dbus.Conn
}

// NewNotifier creates a Notifier on conn.
func NewNotifier(conn *dbus.Conn) *Notifier {
	return &Notifier{conn: conn}
}

// Send delivers n and returns the ID assigned by the notification daemon.
func (s *Notifier) Send(n *Notification) (uint32, error) {
	if s.conn == nil {
		return 0, fmt.Errorf("not connected to D-Bus")
	}

	actions := n.Actions
	if actions == nil {
		actions = []string{}
	}
	hints := n.Hints
	if hints == nil {
		hints = map[string]dbus.Variant{}
	}

	var id uint32
	err := s.conn.Object(notificationsName, notificationsPath).Call(
		notificationsInterface+".Notify", 0,
		n.AppName,
		n.ReplacesID,
		n.AppIcon,
		n.Summary,
		n.Body,
		actions,
		hints,
		n.ExpireTimeout,
	).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}
	return id, nil
}
