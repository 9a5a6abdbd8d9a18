// Package daemon provides the main orchestration for pipontopd.
// It coordinates the event dispatcher, the window manager backend, the
// settings file watcher, the PiP watcher and the D-Bus control interface.
package daemon
