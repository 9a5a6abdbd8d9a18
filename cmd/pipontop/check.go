package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pipontop/internal/adapter/input"
	"github.com/jmylchreest/pipontop/internal/adapter/output"
	"github.com/jmylchreest/pipontop/internal/classify"
	"github.com/jmylchreest/pipontop/internal/config"
)

var checkOpts struct {
	matchers string
	quiet    bool
}

var checkCmd = &cobra.Command{
	Use:   "check <title>... | check -",
	Short: "Classify window titles without the daemon",
	Long: `Classify one or more window titles with the built-in rules and the
title matchers file, and show whether each would be kept on top.

Pass "-" to read one title per line from standard input.

With --quiet nothing is printed and the exit code is 0 only if every title
is a PiP title.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkOpts.matchers, "matchers", "",
		"Path to title matchers file (default: from config)")
	checkCmd.Flags().BoolVarP(&checkOpts.quiet, "quiet", "q", false,
		"Suppress output, report through the exit code")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	titles, err := input.NewSource(args).Titles(context.Background())
	if err != nil {
		return err
	}

	exact, err := loadCheckMatchers()
	if err != nil {
		return err
	}

	checks := make([]output.Check, len(titles))
	allPip := true
	for i, title := range titles {
		checks[i] = output.NewCheck(title, exact)
		allPip = allPip && checks[i].Pip
	}

	if checkOpts.quiet {
		if !allPip {
			return fmt.Errorf("not every title is a PiP title")
		}
		return nil
	}
	return formatter(output.DefaultFormatterOptions()).FormatChecks(cmd.OutOrStdout(), checks)
}

// loadCheckMatchers reads the matchers file named by --matchers or the config.
func loadCheckMatchers() (*classify.ExactTitles, error) {
	path := checkOpts.matchers
	if path == "" {
		cfgPath, err := configPath()
		if err != nil {
			return nil, err
		}
		cfg, err := config.LoadDaemonConfig(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if path, err = cfg.MatchersPath(); err != nil {
			return nil, err
		}
	}

	exact, err := classify.ReadMatchers(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded title matchers", "path", path, "titles", exact.Len())
	return exact, nil
}
