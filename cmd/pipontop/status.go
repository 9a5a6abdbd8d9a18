package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pipontop/internal/adapter/output"
	"github.com/jmylchreest/pipontop/internal/watcher"
)

var statusOpts struct {
	waybar  bool
	windows bool
}

var windowsOpts struct {
	pip bool
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long: `Show whether pipontopd is watching windows, the stick setting, the active
workspace and the windows it currently tracks.

With --waybar the output is a Waybar custom module JSON object:

  "custom/pip": {
    "exec": "pipontop status --waybar",
    "interval": 5,
    "return-type": "json",
    "on-click": "pipontop stick toggle"
  }`,
	RunE: runStatus,
}

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List windows tracked by the daemon",
	RunE:  runWindows,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(windowsCmd)

	statusCmd.Flags().BoolVar(&statusOpts.waybar, "waybar", false,
		"Output Waybar-compatible JSON")
	statusCmd.Flags().BoolVar(&statusOpts.windows, "windows", true,
		"Include tracked windows")
	windowsCmd.Flags().BoolVar(&windowsOpts.pip, "pip", false,
		"Only list windows classified as PiP")
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, err := fetchStatus()
	if err != nil {
		if statusOpts.waybar {
			return outputWaybar(cmd.OutOrStdout(), WaybarStatus{Text: "", Alt: "error", Class: "error", Tooltip: err.Error()})
		}
		return err
	}

	if statusOpts.waybar {
		return outputWaybar(cmd.OutOrStdout(), generateWaybarStatus(status))
	}

	opts := output.DefaultFormatterOptions()
	opts.ShowWindows = statusOpts.windows
	return formatter(opts).FormatStatus(cmd.OutOrStdout(), status)
}

func runWindows(cmd *cobra.Command, args []string) error {
	status, err := fetchStatus()
	if err != nil {
		return err
	}

	opts := output.DefaultFormatterOptions()
	opts.OnlyPip = windowsOpts.pip
	return formatter(opts).FormatWindows(cmd.OutOrStdout(), status.Windows)
}

func fetchStatus() (watcher.Status, error) {
	client, err := newClient()
	if err != nil {
		return watcher.Status{}, err
	}

	ctx, cancel := requestContext()
	defer cancel()

	status, err := client.Status(ctx)
	if err != nil {
		return watcher.Status{}, fmt.Errorf("is pipontopd running? %w", err)
	}
	logger.Debug("daemon status", "enabled", status.Enabled, "windows", len(status.Windows))
	return status, nil
}

// generateWaybarStatus creates a WaybarStatus from the daemon status.
func generateWaybarStatus(status watcher.Status) WaybarStatus {
	if !status.Enabled {
		return WaybarStatus{
			Text:    "",
			Alt:     "disabled",
			Tooltip: "pipontop is disabled",
			Class:   "disabled",
		}
	}

	pip := status.PipCount()
	class := "idle"
	if pip > 0 {
		class = "active"
	}
	if status.Stick {
		class += "-sticky"
	}

	return WaybarStatus{
		Text:    fmt.Sprintf("%d", pip),
		Alt:     class,
		Tooltip: buildTooltip(status),
		Class:   class,
	}
}

// buildTooltip lists the PiP windows.
func buildTooltip(status watcher.Status) string {
	lines := []string{fmt.Sprintf("Stick: %t", status.Stick)}
	for _, win := range status.Windows {
		if win.Pip {
			lines = append(lines, win.Title)
		}
	}
	if len(lines) == 1 {
		lines = append(lines, "No PiP windows")
	}
	return strings.Join(lines, "\n")
}

// outputWaybar writes the status as JSON.
func outputWaybar(w io.Writer, status WaybarStatus) error {
	return json.NewEncoder(w).Encode(status)
}
