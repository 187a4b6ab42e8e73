// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

// Package discover expands path and glob arguments into the list of source
// files to scan, applying default and user ignore patterns.
package discover

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/davetashner/drydock/internal/testable"
)

// DefaultIgnoreFile is the project-local ignore pattern file.
const DefaultIgnoreFile = ".drydockignore"

// ErrNoInput is returned when none of the input patterns resolves to an
// existing path.
var ErrNoInput = errors.New("no readable input paths")

// DefaultIgnore excludes build output, VCS and IDE directories, and image
// assets.
var DefaultIgnore = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/dist/**",
	"**/build/**",
	"**/out/**",
	"**/client-build/**",
	"**/server-build/**",
	"**/.idea/**",
	"**/.vscode/**",
	"**/*.png",
	"**/*.jpg",
	"**/*.jpeg",
	"**/*.gif",
	"**/*.svg",
	"**/*.ico",
}

// FS is the file system used for discovery. Tests may replace it.
var FS testable.FileSystem = testable.DefaultFS

// Options controls file discovery.
type Options struct {
	// Patterns are directories, files, or doublestar globs. Relative
	// patterns are resolved against BaseDir.
	Patterns []string
	// Ignore patterns are added to DefaultIgnore.
	Ignore []string
	// IgnoreFile overrides BaseDir/.drydockignore.
	IgnoreFile string
	// BaseDir defaults to the working directory.
	BaseDir string
}

// Result lists discovered files and the scan roots they came from.
type Result struct {
	Files []string // absolute, sorted, unique
	Roots []string // absolute, in pattern order
}

// Files resolves opts.Patterns into source files.
func Files(ctx context.Context, opts Options) (*Result, error) {
	base, m, err := load(opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	rootSeen := make(map[string]bool)
	res := &Result{}
	resolved := false

	addRoot := func(root string) {
		if !rootSeen[root] {
			rootSeen[root] = true
			res.Roots = append(res.Roots, root)
		}
	}
	addFile := func(path string) {
		if !seen[path] && !isBinaryFile(path) {
			seen[path] = true
			res.Files = append(res.Files, path)
		}
	}

	for _, pat := range opts.Patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		abs := pat
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(base, pat)
		}

		if hasMeta(pat) {
			root, matches, err := expandGlob(abs)
			if err != nil {
				return nil, fmt.Errorf("expand %q: %w", pat, err)
			}
			if len(matches) == 0 {
				slog.Warn("pattern matched no files", "pattern", pat)
				continue
			}
			resolved = true
			addRoot(root)
			for _, f := range matches {
				if !isHidden(root, f) && !m.ignored(root, f) {
					addFile(f)
				}
			}
			continue
		}

		info, err := FS.Stat(abs)
		if err != nil {
			slog.Warn("input path not found", "path", pat, "error", err)
			continue
		}
		resolved = true
		if !info.IsDir() {
			addRoot(filepath.Dir(abs))
			if info.Mode().IsRegular() {
				addFile(abs)
			}
			continue
		}

		addRoot(abs)
		if err := walk(ctx, abs, m, addFile); err != nil {
			return nil, err
		}
	}

	if !resolved {
		return nil, ErrNoInput
	}
	sort.Strings(res.Files)
	return res, nil
}

// Filter applies the hidden-entry and ignore rules of discovery to
// arbitrary paths, for callers that watch the tree after a scan.
type Filter struct {
	m *matcher
}

// NewFilter loads the ignore rules opts would use.
func NewFilter(opts Options) (*Filter, error) {
	_, m, err := load(opts)
	if err != nil {
		return nil, err
	}
	return &Filter{m: m}, nil
}

// Skip reports whether discovery would skip path found under root.
func (f *Filter) Skip(root, path string) bool {
	if path == root {
		return false
	}
	return isHidden(root, path) || f.m.ignored(root, path)
}

// load resolves the base directory and builds the ignore matcher from the
// defaults, the ignore file, and opts.Ignore.
func load(opts Options) (string, *matcher, error) {
	base := opts.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, fmt.Errorf("resolve working directory: %w", err)
		}
		base = wd
	}
	base, err := FS.Abs(base)
	if err != nil {
		return "", nil, fmt.Errorf("resolve base directory: %w", err)
	}

	ignoreFile := opts.IgnoreFile
	if ignoreFile == "" {
		ignoreFile = filepath.Join(base, DefaultIgnoreFile)
	}
	extra, err := LoadIgnoreFile(ignoreFile)
	if err != nil {
		return "", nil, err
	}
	return base, newMatcher(base, mergeIgnores(extra, opts.Ignore)), nil
}

// walk adds every regular, non-hidden, non-ignored file under root.
func walk(ctx context.Context, root string, m *matcher, add func(string)) error {
	return FS.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Debug("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || m.ignored(root, path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			add(path)
		}
		return nil
	})
}

// expandGlob returns the static base of pattern and the regular files the
// pattern matches under it.
func expandGlob(pattern string) (string, []string, error) {
	root, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
	root = filepath.FromSlash(root)
	matches, err := doublestar.Glob(os.DirFS(root), rel, doublestar.WithFilesOnly())
	if err != nil {
		return "", nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		path := filepath.Join(root, filepath.FromSlash(m))
		if info, err := FS.Stat(path); err == nil && info.Mode().IsRegular() {
			out = append(out, path)
		}
	}
	return root, out, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// isHidden reports whether any path segment below root starts with '.'.
func isHidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return true
		}
	}
	return false
}

// isBinaryFile reports whether path looks binary (NUL byte in the first
// 512 bytes). Unreadable files count as binary.
func isBinaryFile(path string) bool {
	f, err := FS.Open(path)
	if err != nil {
		return true
	}
	defer f.Close() //nolint:errcheck // read-only file

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		// Empty files are text.
		return !errors.Is(err, io.EOF)
	}
	for _, b := range buf[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}

// LoadIgnoreFile reads one pattern per line, skipping blanks and '#'
// comments. A missing file yields no patterns.
func LoadIgnoreFile(path string) ([]string, error) {
	f, err := FS.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ignore file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ignore file: %w", err)
	}
	return patterns, nil
}

// mergeIgnores returns DefaultIgnore followed by each extra list.
func mergeIgnores(extra ...[]string) []string {
	merged := make([]string, len(DefaultIgnore))
	copy(merged, DefaultIgnore)
	for _, e := range extra {
		merged = append(merged, e...)
	}
	return merged
}
