package dbus

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/pipontop/internal/host"
	"github.com/jmylchreest/pipontop/internal/watcher"
)

const (
	// DBusInterface is the control interface name.
	DBusInterface = "io.github.jmylchreest.PipOnTop"
	// DBusPath is the control object path.
	DBusPath = "/io/github/jmylchreest/PipOnTop"
	// DBusBusName is the bus name to claim.
	DBusBusName = "io.github.jmylchreest.PipOnTop"
)

const (
	notificationsName      = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsInterface = "org.freedesktop.Notifications"
)

// WindowInfo is the wire form of one tracked window: (usb).
type WindowInfo struct {
	ID    uint32
	Title string
	Pip   bool
}

// StatusReply is the decoded result of the Status method.
type StatusReply struct {
	Enabled     bool
	Stick       bool
	Workspace   uint32
	Tracked     uint32
	Pip         uint32
	ExactTitles uint32
	EnabledAt   int64 // Unix seconds, 0 when disabled
}

// NewStatusReply converts a watcher status to its wire form.
func NewStatusReply(s watcher.Status) StatusReply {
	reply := StatusReply{
		Enabled:     s.Enabled,
		Stick:       s.Stick,
		Workspace:   uint32(s.Workspace),
		Tracked:     uint32(len(s.Windows)),
		Pip:         uint32(s.PipCount()),
		ExactTitles: uint32(s.ExactTitles),
	}
	if !s.EnabledAt.IsZero() {
		reply.EnabledAt = s.EnabledAt.Unix()
	}
	return reply
}

// NewWindowInfos converts watcher window statuses to their wire form.
func NewWindowInfos(windows []watcher.WindowStatus) []WindowInfo {
	infos := make([]WindowInfo, len(windows))
	for i, w := range windows {
		infos[i] = WindowInfo{ID: uint32(w.ID), Title: w.Title, Pip: w.Pip}
	}
	return infos
}

// Status converts the reply and windows back into a watcher status.
func (r StatusReply) Status(windows []WindowInfo) watcher.Status {
	status := watcher.Status{
		Enabled:     r.Enabled,
		Stick:       r.Stick,
		Workspace:   host.WorkspaceID(r.Workspace),
		ExactTitles: int(r.ExactTitles),
		Windows:     make([]watcher.WindowStatus, len(windows)),
	}
	if r.EnabledAt > 0 {
		status.EnabledAt = time.Unix(r.EnabledAt, 0)
	}
	for i, w := range windows {
		status.Windows[i] = watcher.WindowStatus{ID: host.WindowID(w.ID), Title: w.Title, Pip: w.Pip}
	}
	return status
}

// Urgency levels defined by the notification specification.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// Notification is an outgoing org.freedesktop.Notifications.Notify call.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Urgency returns the urgency hint, or UrgencyNormal if unset.
func (n *Notification) Urgency() byte {
	if n.Hints == nil {
		return UrgencyNormal
	}
	if v, ok := n.Hints["urgency"]; ok {
		if u, ok := v.Value().(byte); ok {
			return u
		}
	}
	return UrgencyNormal
}
