package daemon

import (
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/pipontop/internal/dbus"
)

// NotificationLevel indicates the urgency/severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// String returns the string representation of NotificationLevel.
func (l NotificationLevel) String() string {
	switch l {
	case NotificationLevelInfo:
		return "info"
	case NotificationLevelWarning:
		return "warning"
	case NotificationLevelError:
		return "error"
	default:
		return "unknown"
	}
}

// InternalNotifier sends desktop notifications about pipontopd's own
// problems. The same key is not repeated within the minimum interval.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	// Handler that delivers a notification
	notifyHandler func(notification *dbus.Notification) error

	// Rate limiting
	lastNotifyTime map[string]time.Time // key -> last notification time
	minInterval    time.Duration        // minimum time between same notifications
	now            func() time.Time

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		enabled:        true,
	}
}

// SetNotifyHandler sets the function that delivers notifications.
func (n *InternalNotifier) SetNotifyHandler(handler func(notification *dbus.Notification) error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifyHandler = handler
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notifications.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends an internal notification if not rate-limited.
// The key is used for rate limiting - same key won't notify again within minInterval.
func (n *InternalNotifier) Notify(key, summary, body string, level NotificationLevel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return
	}

	if n.notifyHandler == nil {
		n.logger.Debug("internal notification skipped: no handler", "summary", summary)
		return
	}

	now := n.now()
	if lastTime, ok := n.lastNotifyTime[key]; ok && now.Sub(lastTime) < n.minInterval {
		n.logger.Debug("internal notification rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = now

	urgency := dbus.UrgencyNormal
	icon := "dialog-warning"
	switch level {
	case NotificationLevelInfo:
		urgency = dbus.UrgencyLow
		icon = "dialog-information"
	case NotificationLevelError:
		urgency = dbus.UrgencyCritical
		icon = "dialog-error"
	}

	notification := &dbus.Notification{
		AppName: "pipontopd",
		AppIcon: icon,
		Summary: summary,
		Body:    body,
		Hints: map[string]godbus.Variant{
			"urgency":   godbus.MakeVariant(urgency),
			"transient": godbus.MakeVariant(true),
		},
		ExpireTimeout: 5000,
	}

	n.logger.Debug("sending internal notification", "key", key, "summary", summary, "level", level.String())
	if err := n.notifyHandler(notification); err != nil {
		n.logger.Warn("failed to send internal notification", "summary", summary, "error", err)
	}
}

// NotifyConfigError sends a notification about config validation error.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyMatchersError sends a notification about an unreadable matchers document.
func (n *InternalNotifier) NotifyMatchersError(err error) {
	n.Notify(
		"matchers-error",
		"Title Matchers Error",
		"Only the built-in PiP titles are used: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyBackendError sends a notification about losing the window manager.
func (n *InternalNotifier) NotifyBackendError(err error) {
	n.Notify(
		"backend-error",
		"Window Manager Unavailable",
		"PiP windows are no longer managed: "+err.Error(),
		NotificationLevelError,
	)
}
