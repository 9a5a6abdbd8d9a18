// Package dbus exposes the pipontopd control interface on the session bus
// and sends desktop notifications through org.freedesktop.Notifications.
package dbus
