// Package main provides the CLI entrypoint for pipontop.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pipontop/internal/adapter/output"
	"github.com/jmylchreest/pipontop/internal/config"
	"github.com/jmylchreest/pipontop/internal/dbus"
	"github.com/jmylchreest/pipontop/internal/watcher"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	globalOpts struct {
		verbose    bool
		configPath string
		format     string
		timeout    time.Duration
	}
	logger *slog.Logger
)

// daemonClient is the part of the D-Bus client the commands use.
type daemonClient interface {
	Status(ctx context.Context) (watcher.Status, error)
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	Reload(ctx context.Context) error
}

// newClient connects to pipontopd. Replaced in tests.
var newClient = func() (daemonClient, error) {
	return dbus.NewClient()
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pipontop",
	Short: "Keep Picture-in-Picture windows on top",
	Long: `pipontop controls pipontopd, the daemon that keeps Picture-in-Picture
windows always on top and, with the stick setting, on every workspace.

Running pipontop without a subcommand shows the daemon status.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		if !slices.Contains(output.FormatTypes(), output.FormatType(globalOpts.format)) {
			return fmt.Errorf("invalid format %q, must be one of: %v", globalOpts.format, output.FormatTypes())
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/pipontop/pipontopd.toml)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.format, "format", "f", string(output.FormatPlain),
		"Output format: plain, json, yaml")
	rootCmd.PersistentFlags().DurationVar(&globalOpts.timeout, "timeout", 5*time.Second,
		"Timeout for daemon requests")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// configPath returns the config file path from --config or the default.
func configPath() (string, error) {
	if globalOpts.configPath != "" {
		return globalOpts.configPath, nil
	}
	return config.DaemonConfigPath()
}

// formatter returns the formatter selected with --format.
func formatter(opts output.FormatterOptions) output.Formatter {
	return output.NewFormatter(output.FormatType(globalOpts.format), opts)
}

// requestContext returns a context bounded by --timeout.
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), globalOpts.timeout)
}
