// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

// Package scan drives a full duplicate scan: discover files, fingerprint
// each one, group identical fingerprints, and classify the groups into a
// report.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/discover"
	"github.com/davetashner/drydock/internal/fingerprint"
	"github.com/davetashner/drydock/internal/project"
	"github.com/davetashner/drydock/internal/testable"
	"github.com/davetashner/drydock/internal/tokenize"
	"github.com/davetashner/drydock/internal/vcs"
	"github.com/davetashner/drydock/internal/whitelist"
)

// ErrCancelled is returned when the scan context is cancelled before the
// report is complete. No partial report accompanies it.
var ErrCancelled = errors.New("scan cancelled")

// ErrNoInput is returned when no input path exists.
var ErrNoInput = discover.ErrNoInput

// Options tunes a scan.
type Options struct {
	// MinLines skips files shorter than this many lines.
	MinLines int
	// Workers normalizing files concurrently; <= 1 is sequential.
	Workers int
	// Whitelist drops accepted fingerprints from the report.
	Whitelist *whitelist.Whitelist
	// Enrich attaches git author/date to duplicated occurrences.
	Enrich        bool
	EnrichWorkers int
	// ScoreExponent weights spread; zero selects clone.DefaultExponent.
	ScoreExponent float64
	// BaseDir anchors relative input paths, occurrence paths, and project
	// identifiers. Defaults to the working directory.
	BaseDir string
	// Ignore adds doublestar patterns to the default ignore list.
	Ignore     []string
	IgnoreFile string
	// Progress, when set, is called after each file. Calls are serialized.
	Progress func(done, total int)
}

// Stats summarizes a completed scan.
type Stats struct {
	Files    int           `json:"files"`
	Indexed  int           `json:"indexed"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Projects int           `json:"projects"`
	Duration time.Duration `json:"duration"`
}

// ResolverFunc builds the project resolver for a set of scan roots.
type ResolverFunc func(roots []string, base string) project.Resolver

// Scanner runs scans. Its fields are the replaceable collaborators; the
// zero value is not usable, use New.
type Scanner struct {
	Tokenizer   tokenize.Tokenizer
	NewResolver ResolverFunc
	Lookup      vcs.Lookup
	FS          testable.FileSystem
}

// New returns a Scanner backed by the chroma tokenizer, marker-based project
// resolution, and git metadata lookup.
func New() *Scanner {
	return &Scanner{
		Tokenizer: tokenize.NewChroma(),
		NewResolver: func(roots []string, base string) project.Resolver {
			return project.NewMarkerResolver(roots, base)
		},
		Lookup: vcs.Default(),
		FS:     testable.DefaultFS,
	}
}

// Run discovers files under paths and scans them.
func (s *Scanner) Run(ctx context.Context, paths []string, opts Options) (*clone.Report, *Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, cancelled(err)
	}
	base, err := s.base(opts.BaseDir)
	if err != nil {
		return nil, nil, err
	}
	opts.BaseDir = base

	found, err := discover.Files(ctx, discover.Options{
		Patterns:   paths,
		Ignore:     opts.Ignore,
		IgnoreFile: opts.IgnoreFile,
		BaseDir:    base,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, cancelled(ctx.Err())
		}
		return nil, nil, err
	}
	slog.Debug("discovered files", "files", len(found.Files), "roots", len(found.Roots))

	return s.Files(ctx, found.Files, s.NewResolver(found.Roots, base), opts)
}

// Files scans an explicit list of absolute file paths.
func (s *Scanner) Files(ctx context.Context, files []string, resolver project.Resolver, opts Options) (*clone.Report, *Stats, error) {
	start := time.Now()
	base, err := s.base(opts.BaseDir)
	if err != nil {
		return nil, nil, err
	}

	w := &walker{
		s:          s,
		normalizer: fingerprint.NewNormalizer(s.Tokenizer),
		resolver:   resolver,
		base:       base,
		minLines:   opts.MinLines,
		progress:   opts.Progress,
		total:      len(files),
	}

	var results []fileResult
	if opts.Workers > 1 {
		results, err = w.parallel(ctx, files, opts.Workers)
	} else {
		results, err = w.sequential(ctx, files)
	}
	if err != nil {
		return nil, nil, err
	}

	idx := fingerprint.NewIndex()
	stats := &Stats{Files: len(files)}
	for _, r := range results {
		switch r.status {
		case statusIndexed:
			idx.Add(r.fp, r.lines, fingerprint.Occurrence{Project: r.project, File: r.rel})
			stats.Indexed++
		case statusFailed:
			stats.Failed++
		default:
			stats.Skipped++
		}
	}
	stats.Projects = len(idx.Projects())

	classifier := clone.Classifier{Scorer: clone.Scorer{Exponent: opts.ScoreExponent}}
	if opts.Whitelist != nil {
		classifier.Whitelist = opts.Whitelist
	}
	if opts.Enrich && s.Lookup != nil {
		classifier.Enricher = vcs.Enricher{Lookup: s.Lookup, Workers: opts.EnrichWorkers, Base: base}
	}
	report := classifier.Classify(ctx, idx.Entries())
	if err := ctx.Err(); err != nil {
		return nil, nil, cancelled(err)
	}

	stats.Duration = time.Since(start)
	slog.Info("scan complete",
		"files", stats.Files,
		"indexed", stats.Indexed,
		"projects", stats.Projects,
		"internal", len(report.InternalDuplicates),
		"leaks", len(report.CrossProjectLeakage),
		"duration", stats.Duration.Round(time.Millisecond),
	)
	return report, stats, nil
}

func (s *Scanner) base(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := s.fs().Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve base directory: %w", err)
	}
	return abs, nil
}

func (s *Scanner) fs() testable.FileSystem {
	if s.FS == nil {
		return testable.DefaultFS
	}
	return s.FS
}

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// Rel returns path relative to base with forward slashes, or path itself
// when it lies outside base.
func Rel(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

type status int

const (
	statusSkipped status = iota
	statusIndexed
	statusFailed
)

type fileResult struct {
	status  status
	fp      string
	lines   int
	project string
	rel     string
}

// walker fingerprints files. Index mutation happens in the caller, in
// input order, so sequential and parallel walks build identical reports.
type walker struct {
	s          *Scanner
	normalizer *fingerprint.Normalizer
	resolver   project.Resolver
	base       string
	minLines   int

	progress func(done, total int)
	mu       sync.Mutex
	done     int
	total    int
}

func (w *walker) sequential(ctx context.Context, files []string) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}
		results[i] = w.process(path)
		w.tick()
	}
	return results, nil
}

func (w *walker) parallel(ctx context.Context, files []string, workers int) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = w.process(path)
			w.tick()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	return results, nil
}

func (w *walker) tick() {
	if w.progress == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.done++
	w.progress(w.done, w.total)
}

// process reads and fingerprints one file. Tokenizer failures are logged
// and counted; they never abort the scan.
func (w *walker) process(path string) fileResult {
	fsys := w.s.fs()
	info, err := fsys.Stat(path)
	if err != nil {
		slog.Warn("cannot stat file", "path", path, "error", err)
		return fileResult{status: statusFailed}
	}
	if !info.Mode().IsRegular() {
		return fileResult{status: statusSkipped}
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		slog.Warn("cannot read file", "path", path, "error", err)
		return fileResult{status: statusFailed}
	}
	text := string(data)

	if w.minLines > 0 && fingerprint.LineCount(text) < w.minLines {
		return fileResult{status: statusSkipped}
	}

	res, ok, err := w.normalizer.Normalize(text, tokenize.HintFor(path))
	if err != nil {
		slog.Warn("skipping file", "path", path, "error", err)
		return fileResult{status: statusFailed}
	}
	if !ok {
		return fileResult{status: statusSkipped}
	}

	proj := project.Unknown
	if w.resolver != nil {
		proj = w.resolver.Resolve(path)
	}
	return fileResult{
		status:  statusIndexed,
		fp:      res.Fingerprint,
		lines:   res.LineCount,
		project: proj,
		rel:     Rel(w.base, path),
	}
}
