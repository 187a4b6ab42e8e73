// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	drydocklog "github.com/davetashner/drydock/internal/log"
)

// Global flag values.
var (
	verbose   bool
	quiet     bool
	noColor   bool
	logFormat string
)

// rootCmd is the base command for drydock.
var rootCmd = &cobra.Command{
	Use:   "drydock",
	Short: "Find code copied between projects",
	Long: `Drydock finds duplicated source files within and across projects and
ranks them by how urgently they should move into a shared library.

Files are normalized (comments, whitespace and identifiers erased) and
fingerprinted. Fingerprints seen in one project are internal duplicates;
fingerprints seen in several projects are cross-project leakage, scored
by spread, frequency and size.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if noColor {
			color.NoColor = true
		}
		if err := drydocklog.SetupWriter(cmd.ErrOrStderr(), logFormat, verbose, quiet); err != nil {
			return exitError(ExitInvalidArgs, "drydock: %v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", drydocklog.FormatText, "log format on stderr (text, json)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}
