// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/discover"
	"github.com/davetashner/drydock/internal/scan"
	"github.com/davetashner/drydock/internal/server"
	"github.com/davetashner/drydock/internal/state"
	"github.com/davetashner/drydock/internal/watch"
)

// Serve-specific flag values.
var (
	serveOpts  scanFlags
	serveWatch bool
)

// serveCmd runs the dashboard API.
var serveCmd = &cobra.Command{
	Use:   "serve [paths...]",
	Short: "Serve the dashboard API",
	Long: `Serve scan results over HTTP on localhost.

The last saved report (--output) is served until a new scan completes.
When paths are given they are scanned at startup. With --watch, the paths
are rescanned whenever files change; a change during a scan restarts it.

Endpoints:
  GET  /api/data     current report
  POST /api/scan     {"paths": [...]} runs a scan
  POST /api/cancel   cancels the running scan
  GET  /api/status   scan activity
  GET  /api/trend    previous report compared to the current one
  GET  /api/code     ?file= content of a file in the report`,
	RunE: runServe,
}

func init() {
	serveOpts.register(serveCmd.Flags())
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "rescan when files under the paths change")
}

func runServe(cmd *cobra.Command, args []string) error {
	base, err := resolveBase(serveOpts.base)
	if err != nil {
		return err
	}
	settings, err := loadSettings(base, serveOpts.settings())
	if err != nil {
		return err
	}
	wl, err := loadWhitelist(base, settings)
	if err != nil {
		return err
	}

	outPath := inBase(base, settings.Output)
	previous, err := state.LoadReport(outPath)
	if err != nil {
		slog.Warn("ignoring unreadable report", "path", outPath, "error", err)
		previous = nil
	}

	paths := args
	if len(paths) == 0 && serveWatch {
		paths = []string{"."}
	}

	opts := scanOptions(base, settings, wl, serveOpts.ignoreFile)
	srv := server.New(state.NewSnapshot(previous), func(ctx context.Context, p []string) (*clone.Report, error) {
		return runAndSave(ctx, p, opts, outPath)
	}, base)
	srv.AllowedOrigins = server.LocalOrigins(settings.Port)

	var filter *discover.Filter
	if serveWatch {
		filter, err = discover.NewFilter(discover.Options{Ignore: opts.Ignore, IgnoreFile: opts.IgnoreFile, BaseDir: base})
		if err != nil {
			return exitError(ExitInvalidArgs, "drydock: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	addr := fmt.Sprintf("localhost:%d", settings.Port)
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Dashboard API at http://%s (Ctrl-C to stop)\n", addr)
	g.Go(func() error {
		return server.ListenAndServe(ctx, addr, srv.Handler())
	})

	if len(paths) > 0 {
		g.Go(func() error {
			logScan(srv.Scan(ctx, paths))
			return nil
		})
	}
	if serveWatch {
		roots := watchRoots(base, paths)
		g.Go(func() error {
			return watch.Run(ctx, roots, watch.Options{Skip: filter.Skip}, func(ctx context.Context) {
				logScan(srv.Rescan(ctx, paths))
			})
		})
	}

	if err := g.Wait(); err != nil {
		return exitError(ExitTotalFailure, "drydock: %v", err)
	}
	return nil
}

// logScan reports the outcome of a background scan. Cancellation and
// overlap with an API-triggered scan are expected and logged at debug.
func logScan(r *clone.Report, err error) {
	switch {
	case err == nil:
		slog.Info("scan published", "leaks", len(r.CrossProjectLeakage), "duplicates", len(r.InternalDuplicates))
	case errors.Is(err, scan.ErrCancelled), errors.Is(err, server.ErrScanInProgress):
		slog.Debug("scan skipped", "reason", err)
	default:
		slog.Error("scan failed", "error", err)
	}
}

// watchRoots returns the directories to watch for paths: each existing
// directory, the parent of each file, and base for globs or when nothing
// else resolves.
func watchRoots(base string, paths []string) []string {
	seen := make(map[string]bool)
	var roots []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			roots = append(roots, dir)
		}
	}
	for _, p := range paths {
		abs := inBase(base, p)
		info, err := cmdFS.Stat(abs)
		switch {
		case err != nil:
			add(base)
		case info.IsDir():
			add(filepath.Clean(abs))
		default:
			add(filepath.Dir(abs))
		}
	}
	if len(roots) == 0 {
		add(base)
	}
	return roots
}
