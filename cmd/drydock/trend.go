// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/report"
	"github.com/davetashner/drydock/internal/state"
)

// Trend-specific flag values.
var trendFormat string

// trendCmd compares two saved reports.
var trendCmd = &cobra.Command{
	Use:   "trend <old.json> [new.json]",
	Short: "Compare two saved reports",
	Long: `Compare the cross-project leakage of two saved reports.

Leaks are matched by fingerprint: new leaks appear only in the newer report,
resolved leaks only in the older one, remaining leaks in both. The newer
report defaults to ` + state.DefaultReportFile + `.

Examples:
  drydock trend last-week.json
  drydock trend --format json old.json new.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTrend,
}

func init() {
	trendCmd.Flags().StringVarP(&trendFormat, "format", "f", "text", "output format (text, json)")
}

func runTrend(cmd *cobra.Command, args []string) error {
	if trendFormat != "text" && trendFormat != "json" {
		return exitError(ExitInvalidArgs, "drydock: unknown trend format %q (available: json, text)", trendFormat)
	}
	newPath := state.DefaultReportFile
	if len(args) == 2 {
		newPath = args[1]
	}

	older, err := readReport(args[0])
	if err != nil {
		return err
	}
	newer, err := readReport(newPath)
	if err != nil {
		return err
	}
	t := state.AnalyzeTrend(older, newer)

	w := cmd.OutOrStdout()
	if trendFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(t); err != nil {
			return exitError(ExitTotalFailure, "drydock: encoding trend (%v)", err)
		}
		return nil
	}
	if err := report.Trend(w, t); err != nil {
		return exitError(ExitTotalFailure, "drydock: %v", err)
	}
	return nil
}

// readReport loads a report the user named; a missing file is an error.
func readReport(path string) (*clone.Report, error) {
	r, err := state.LoadReport(path)
	if err != nil {
		return nil, exitError(ExitInvalidArgs, "drydock: cannot read %q (%v)", path, err)
	}
	if r == nil {
		return nil, exitError(ExitInvalidArgs, "drydock: report %q does not exist", path)
	}
	return r, nil
}
