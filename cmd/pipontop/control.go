package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Start watching windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		return control(cmd, "enabled", daemonClient.Enable)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop watching windows and release every PiP window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return control(cmd, "disabled", daemonClient.Disable)
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read the title matchers file",
	Long: `Ask pipontopd to disable, re-read the title matchers file and enable
again. Use this after editing pip-title-matchers.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return control(cmd, "reloaded", daemonClient.Reload)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(reloadCmd)
}

// control runs a daemon request and reports the result.
func control(cmd *cobra.Command, done string, request func(daemonClient, context.Context) error) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := request(client, ctx); err != nil {
		return fmt.Errorf("is pipontopd running? %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pipontopd %s\n", done)
	return nil
}
