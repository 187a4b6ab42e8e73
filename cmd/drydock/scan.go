// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/output"
	"github.com/davetashner/drydock/internal/report"
	"github.com/davetashner/drydock/internal/scan"
	"github.com/davetashner/drydock/internal/server"
	"github.com/davetashner/drydock/internal/state"
)

// Scan-specific flag values.
var (
	scanOpts       scanFlags
	scanFormat     string
	scanFail       bool
	scanCompare    string
	scanOpen       bool
	scanNoProgress bool
	scanLimit      int
)

// scanCmd is the subcommand for scanning directories.
var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Scan directories for duplicated code",
	Long: `Scan directories, files, or glob patterns for duplicated source files.

The report is written as JSON to --output (default drydock-report.json) and
a summary is printed to stdout in --format. Nothing is written when the
scan fails or is interrupted with Ctrl-C.

Examples:
  drydock scan services/ libs/
  drydock scan --fail --format sarif . > drydock.sarif
  drydock scan --compare drydock-report.json .
  drydock scan --open`,
	RunE: runScan,
}

func init() {
	scanOpts.register(scanCmd.Flags())
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "", "stdout format (csv, json, junit, markdown, sarif, text) (default: text)")
	scanCmd.Flags().BoolVar(&scanFail, "fail", false, "exit 1 when any cross-project leak is found")
	scanCmd.Flags().StringVar(&scanCompare, "compare", "", "earlier report to compare against; prints the trend")
	scanCmd.Flags().BoolVar(&scanOpen, "open", false, "serve the dashboard after the scan and open a browser")
	scanCmd.Flags().BoolVar(&scanNoProgress, "no-progress", false, "hide the progress bar")
	scanCmd.Flags().IntVar(&scanLimit, "limit", report.DefaultLimit, "rows per table in the text summary (0 = all)")
}

func runScan(cmd *cobra.Command, args []string) error {
	// 1. Resolve base directory and settings.
	base, err := resolveBase(scanOpts.base)
	if err != nil {
		return err
	}
	cli := scanOpts.settings()
	cli.Format = scanFormat
	cli.FailOnLeaks = scanFail
	settings, err := loadSettings(base, cli)
	if err != nil {
		return err
	}
	formatter, err := output.GetFormatter(settings.Format)
	if err != nil {
		return exitError(ExitInvalidArgs, "drydock: %v", err)
	}
	if _, ok := formatter.(*output.TextFormatter); ok {
		formatter = &output.TextFormatter{Limit: scanLimit}
	}
	wl, err := loadWhitelist(base, settings)
	if err != nil {
		return err
	}

	// 2. Load the comparison baseline before the report file is replaced.
	var baseline *clone.Report
	if scanCompare != "" {
		baseline, err = state.LoadReport(inBase(base, scanCompare))
		if err != nil {
			return exitError(ExitInvalidArgs, "drydock: cannot read %q (%v)", scanCompare, err)
		}
		if baseline == nil {
			slog.Warn("comparison report not found; trend is against an empty report", "path", scanCompare)
		}
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	// 3. Scan; Ctrl-C cancels.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := scanOptions(base, settings, wl, scanOpts.ignoreFile)
	bar := newProgress(cmd.ErrOrStderr(), !scanNoProgress && !quiet)
	opts.Progress = bar.callback()

	r, _, err := scan.New().Run(ctx, paths, opts)
	bar.Finish()
	if err != nil {
		return scanError(err)
	}

	// 4. Persist and print.
	outPath := inBase(base, settings.Output)
	if err := state.SaveReport(outPath, r); err != nil {
		return exitError(ExitTotalFailure, "drydock: cannot write report %q (%v)", settings.Output, err)
	}
	slog.Debug("report written", "path", outPath)

	stdout := cmd.OutOrStdout()
	if err := formatter.Format(r, stdout); err != nil {
		return exitError(ExitTotalFailure, "drydock: formatting failed (%v)", err)
	}

	if scanCompare != "" {
		if err := printTrend(trendWriter(cmd, formatter), state.AnalyzeTrend(baseline, r)); err != nil {
			return exitError(ExitTotalFailure, "drydock: %v", err)
		}
	}

	// 5. Optionally keep serving the result.
	if scanOpen {
		scanFn := func(ctx context.Context, paths []string) (*clone.Report, error) {
			return runAndSave(ctx, paths, opts, outPath)
		}
		if err := openDashboard(ctx, cmd, base, settings.Port, r, scanFn); err != nil {
			return err
		}
	}

	if settings.FailOnLeaks && len(r.CrossProjectLeakage) > 0 {
		return exitError(ExitLeaksFound, "drydock: %d cross-project leak(s) found", len(r.CrossProjectLeakage))
	}
	return nil
}

// scanError maps a scan failure to an exit code.
func scanError(err error) error {
	switch {
	case errors.Is(err, scan.ErrCancelled):
		return exitError(ExitTotalFailure, "drydock: scan cancelled; no report written")
	case errors.Is(err, scan.ErrNoInput):
		return exitError(ExitInvalidArgs, "drydock: %v (check the paths and try again)", err)
	default:
		return exitError(ExitTotalFailure, "drydock: scan failed (%v)", err)
	}
}

// runAndSave scans and persists the report. A save failure is logged; the
// report is still returned.
func runAndSave(ctx context.Context, paths []string, opts scan.Options, outPath string) (*clone.Report, error) {
	opts.Progress = nil
	r, _, err := scan.New().Run(ctx, paths, opts)
	if err != nil {
		return nil, err
	}
	if err := state.SaveReport(outPath, r); err != nil {
		slog.Warn("cannot write report", "path", outPath, "error", err)
	}
	return r, nil
}

// trendWriter keeps machine-readable stdout clean: the trend goes to stdout
// only after a text summary.
func trendWriter(cmd *cobra.Command, f output.Formatter) io.Writer {
	if f.Name() == "text" {
		return cmd.OutOrStdout()
	}
	return cmd.ErrOrStderr()
}

func printTrend(w io.Writer, t *state.TrendResult) error {
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return report.Trend(w, t)
}

// openDashboard serves r on localhost until ctx is cancelled.
func openDashboard(ctx context.Context, cmd *cobra.Command, base string, port int, r *clone.Report, scanFn server.ScanFunc) error {
	srv := server.New(state.NewSnapshot(r), scanFn, base)
	srv.AllowedOrigins = server.LocalOrigins(port)

	ln, err := server.Listen(fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return exitError(ExitTotalFailure, "drydock: %v", err)
	}
	url := fmt.Sprintf("http://localhost:%d", port)
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Dashboard at %s (Ctrl-C to stop)\n", url)
	if err := openBrowser(ctx, url); err != nil {
		slog.Warn("cannot open browser", "error", err)
	}
	if err := server.Serve(ctx, ln, srv.Handler()); err != nil {
		return exitError(ExitTotalFailure, "drydock: %v", err)
	}
	return nil
}
