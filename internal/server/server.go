// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

// Package server exposes scan results over HTTP for the dashboard.
//
// The current report lives in a state.Snapshot and is replaced whole after
// each successful scan. At most one scan runs at a time.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/state"
)

// DefaultPort is the dashboard's listen port.
const DefaultPort = 3000

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// ErrScanInProgress is returned when a scan is requested while another one
// is running.
var ErrScanInProgress = errors.New("scan already in progress")

// ScanFunc runs one scan over paths. It must return an error wrapping
// scan.ErrCancelled when ctx is cancelled before completion.
type ScanFunc func(ctx context.Context, paths []string) (*clone.Report, error)

// Status describes the scan activity of a server.
type Status struct {
	Scanning  bool       `json:"scanning"`
	ScanID    string     `json:"scan_id,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// Server serves the report API.
type Server struct {
	snapshot *state.Snapshot
	scan     ScanFunc
	baseDir  string

	// AllowedOrigins are the CORS origins accepted by the API.
	AllowedOrigins []string

	mu      sync.Mutex
	running *run
}

type run struct {
	id      string
	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a server publishing into snap. baseDir is the directory
// occurrence paths are relative to; /api/code never serves files outside it.
func New(snap *state.Snapshot, scan ScanFunc, baseDir string) *Server {
	if snap == nil {
		snap = state.NewSnapshot(nil)
	}
	return &Server{
		snapshot:       snap,
		scan:           scan,
		baseDir:        baseDir,
		AllowedOrigins: LocalOrigins(DefaultPort),
	}
}

// LocalOrigins returns the localhost origins for port.
func LocalOrigins(port int) []string {
	return []string{
		fmt.Sprintf("http://localhost:%d", port),
		fmt.Sprintf("http://127.0.0.1:%d", port),
	}
}

// Snapshot returns the snapshot the server publishes into.
func (s *Server) Snapshot() *state.Snapshot { return s.snapshot }

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/data", s.handleData)
		r.Post("/scan", s.handleScan)
		r.Post("/cancel", s.handleCancel)
		r.Get("/status", s.handleStatus)
		r.Get("/trend", s.handleTrend)
		r.Get("/code", s.handleCode)
	})
	return r
}

// Scan runs a scan and publishes its report. It returns ErrScanInProgress
// if another scan is running. A failed or cancelled scan leaves the
// published report untouched.
func (s *Server) Scan(ctx context.Context, paths []string) (*clone.Report, error) {
	return s.runScan(ctx, paths, false)
}

// Rescan cancels any running scan, waits for it to stop, and then scans.
func (s *Server) Rescan(ctx context.Context, paths []string) (*clone.Report, error) {
	return s.runScan(ctx, paths, true)
}

func (s *Server) runScan(ctx context.Context, paths []string, preempt bool) (*clone.Report, error) {
	ctx, cur, err := s.begin(ctx, preempt)
	if err != nil {
		return nil, err
	}
	defer s.finish(cur)

	log := slog.With("scan_id", cur.id)
	log.Info("scan started", "paths", paths)
	report, err := s.scan(ctx, paths)
	if err != nil {
		log.Warn("scan failed", "error", err, "duration", time.Since(cur.started))
		return nil, err
	}
	s.snapshot.Publish(report)
	log.Info("scan published", "leaks", len(report.CrossProjectLeakage), "duplicates", len(report.InternalDuplicates), "duration", time.Since(cur.started))
	return report, nil
}

func (s *Server) begin(ctx context.Context, preempt bool) (context.Context, *run, error) {
	for {
		s.mu.Lock()
		cur := s.running
		if cur == nil {
			runCtx, cancel := context.WithCancel(ctx)
			r := &run{
				id:      uuid.NewString(),
				started: time.Now(),
				cancel:  cancel,
				done:    make(chan struct{}),
			}
			s.running = r
			s.mu.Unlock()
			return runCtx, r, nil
		}
		s.mu.Unlock()

		if !preempt {
			return nil, nil, ErrScanInProgress
		}
		cur.cancel()
		select {
		case <-cur.done:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
}

func (s *Server) finish(r *run) {
	r.cancel()
	s.mu.Lock()
	if s.running == r {
		s.running = nil
	}
	s.mu.Unlock()
	close(r.done)
}

// Cancel requests cancellation of the running scan. It reports whether a
// scan was running.
func (s *Server) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running == nil {
		return false
	}
	s.running.cancel()
	return true
}

// Status reports whether a scan is running.
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running == nil {
		return Status{}
	}
	started := s.running.started
	return Status{Scanning: true, ScanID: s.running.id, StartedAt: &started}
}

// ListenAndServe listens on addr and serves h until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	ln, err := Listen(addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, h)
}

// Listen opens a TCP listener on addr. An address in use is reported as a
// probable second instance.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s (is another instance running?): %w", addr, err)
	}
	return ln, nil
}

// Serve serves h on ln until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("dashboard listening", "addr", "http://"+ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
