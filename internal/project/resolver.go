// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

// Package project maps file paths to the project that owns them.
//
// A project root is either a member of a monorepo layout detected at a scan
// root (go.work, pnpm, npm/yarn workspaces, lerna, nx, cargo) or the
// nearest ancestor directory holding a marker file such as go.mod or
// package.json. The search never climbs above the scan root that contains
// the file; files with no project root resolve to Unknown.
package project

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Unknown is the identifier for files outside any detectable project.
const Unknown = "unknown"

// Markers are file or directory names whose presence makes a directory a
// project root. Entries containing '*' are globs matched within the
// directory.
var Markers = []string{
	"package.json",
	"go.mod",
	"Cargo.toml",
	"pyproject.toml",
	"setup.py",
	"requirements.txt",
	"pom.xml",
	"build.gradle",
	"build.gradle.kts",
	"composer.json",
	"Gemfile",
	"mix.exs",
	"pubspec.yaml",
	"Package.swift",
	"*.csproj",
	"*.sln",
	".git",
}

// Resolver maps an absolute file path to a stable project identifier.
type Resolver interface {
	Resolve(path string) string
}

// Project describes a resolved project root.
type Project struct {
	ID   string
	Name string
	Dir  string
}

// MarkerResolver resolves projects by walking up from a file to the nearest
// project root. It is safe for concurrent use and caches every directory it
// visits, so the same path always yields the same identifier.
type MarkerResolver struct {
	roots   []string // absolute scan roots, longest first
	base    string
	members map[string]bool

	mu       sync.Mutex
	cache    map[string]string // directory -> project id
	projects map[string]Project
}

// NewMarkerResolver builds a resolver for the given scan roots. Identifiers
// are project root paths relative to base (slash separated), or absolute
// paths when the root lies outside base.
func NewMarkerResolver(roots []string, base string) *MarkerResolver {
	r := &MarkerResolver{
		base:     base,
		members:  make(map[string]bool),
		cache:    make(map[string]string),
		projects: make(map[string]Project),
	}
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		r.roots = append(r.roots, abs)

		layout, err := DetectWorkspaces(abs)
		if err != nil {
			slog.Debug("workspace detection failed", "root", abs, "error", err)
			continue
		}
		if layout != nil {
			slog.Debug("detected monorepo", "root", abs, "kind", layout.Kind, "members", len(layout.Members))
			for _, m := range layout.Members {
				r.members[m] = true
			}
		}
	}
	sort.Slice(r.roots, func(i, j int) bool { return len(r.roots[i]) > len(r.roots[j]) })
	return r
}

// Resolve returns the project identifier owning path.
func (r *MarkerResolver) Resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Unknown
	}
	limit := r.rootFor(abs)

	r.mu.Lock()
	defer r.mu.Unlock()

	var visited []string
	id := Unknown
	dir := filepath.Dir(abs)
	for {
		if cached, ok := r.cache[dir]; ok {
			id = cached
			break
		}
		visited = append(visited, dir)
		if r.members[dir] || hasMarker(dir) {
			id = r.register(dir)
			break
		}
		if dir == limit {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	for _, d := range visited {
		r.cache[d] = id
	}
	return id
}

// Projects returns every project resolved so far, sorted by identifier.
func (r *MarkerResolver) Projects() []Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// register records dir as a project root and returns its identifier.
// Callers hold r.mu.
func (r *MarkerResolver) register(dir string) string {
	id := identifier(r.base, dir)
	if _, ok := r.projects[id]; !ok {
		r.projects[id] = Project{ID: id, Name: Name(dir), Dir: dir}
	}
	return id
}

// rootFor returns the deepest scan root containing abs, or "" when none
// does (the walk then stops at the file system root).
func (r *MarkerResolver) rootFor(abs string) string {
	for _, root := range r.roots {
		if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return root
		}
	}
	return ""
}

func identifier(base, dir string) string {
	if base != "" {
		if rel, err := filepath.Rel(base, dir); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(dir)
}

func hasMarker(dir string) bool {
	for _, m := range Markers {
		if strings.Contains(m, "*") {
			if matches, _ := filepath.Glob(filepath.Join(dir, m)); len(matches) > 0 {
				return true
			}
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
			return true
		}
	}
	return false
}

var _ Resolver = (*MarkerResolver)(nil)
