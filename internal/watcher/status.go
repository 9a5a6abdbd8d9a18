package watcher

import (
	"cmp"
	"slices"
	"time"

	"github.com/jmylchreest/pipontop/internal/host"
)

// WindowStatus describes one observed window.
type WindowStatus struct {
	ID    host.WindowID `json:"id" yaml:"id"`
	Title string        `json:"title" yaml:"title"`
	Pip   bool          `json:"pip" yaml:"pip"`
}

// Status is a point-in-time view of the watcher.
type Status struct {
	Enabled     bool             `json:"enabled" yaml:"enabled"`
	EnabledAt   time.Time        `json:"enabled_at,omitzero" yaml:"enabled_at,omitempty"`
	Stick       bool             `json:"stick" yaml:"stick"`
	Workspace   host.WorkspaceID `json:"workspace" yaml:"workspace"`
	ExactTitles int              `json:"exact_titles" yaml:"exact_titles"`
	Windows     []WindowStatus   `json:"windows" yaml:"windows"`
}

// PipCount returns the number of windows currently classified as PiP.
func (s Status) PipCount() int {
	count := 0
	for _, win := range s.Windows {
		if win.Pip {
			count++
		}
	}
	return count
}

// Snapshot returns the current status, windows ordered by ID.
func (w *Watcher) Snapshot() Status {
	status := Status{
		Enabled:     w.enabled,
		EnabledAt:   w.enabledAt,
		Stick:       w.settings.Bool(SettingStick),
		Workspace:   w.workspace,
		ExactTitles: w.exact.Len(),
		Windows:     make([]WindowStatus, 0, len(w.windows)),
	}

	for id, tw := range w.windows {
		status.Windows = append(status.Windows, WindowStatus{
			ID:    id,
			Title: tw.title,
			Pip:   tw.pipAble,
		})
	}
	slices.SortFunc(status.Windows, func(a, b WindowStatus) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return status
}
