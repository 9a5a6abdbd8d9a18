package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pipontop/internal/config"
)

var stickOpts struct {
	quiet bool // Suppress output
}

// stickCmd represents the stick command group.
var stickCmd = &cobra.Command{
	Use:   "stick [on|off|toggle]",
	Short: "Show or change the stick setting",
	Long: `Show or change whether PiP windows are shown on all workspaces.

The setting is stored in the pipontopd config file; a running daemon picks
the change up immediately and applies it to the windows of the active
workspace.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE:      runStick,
}

func init() {
	stickCmd.Flags().BoolVarP(&stickOpts.quiet, "quiet", "q", false,
		"Suppress output")
	rootCmd.AddCommand(stickCmd)
}

func runStick(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	cfg, err := config.LoadDaemonConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if len(args) == 1 {
		next, err := nextStick(cfg.Behavior.Stick, args[0])
		if err != nil {
			return err
		}
		if next != cfg.Behavior.Stick {
			cfg.Behavior.Stick = next
			if err := config.SaveDaemonConfig(path, cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			logger.Debug("stick setting saved", "path", path, "stick", next)
		}
	}

	if !stickOpts.quiet {
		state := "off"
		if cfg.Behavior.Stick {
			state = "on"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stick: %s\n", state)
	}
	return nil
}

// nextStick returns the stick value after applying action.
func nextStick(current bool, action string) (bool, error) {
	switch action {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	case "toggle":
		return !current, nil
	default:
		return current, fmt.Errorf("invalid argument %q, must be one of: on, off, toggle", action)
	}
}
