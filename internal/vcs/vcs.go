// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

// Package vcs looks up who last changed a file and when. Lookups never
// fail: any problem yields no metadata.
package vcs

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"

	"github.com/davetashner/drydock/internal/gitcli"
	"github.com/davetashner/drydock/internal/testable"
)

// DateFormat is the layout of Info.Date.
const DateFormat = "2006-01-02"

// Info is the author and date of the last change to a file.
type Info struct {
	Author string
	Date   string
}

// Lookup returns last-change metadata for an absolute file path.
type Lookup interface {
	Lookup(ctx context.Context, path string) (Info, bool)
}

// Checker is a Lookup that can tell a file without history apart from a
// failed lookup. A nil error with ok false is a definite answer.
type Checker interface {
	Check(ctx context.Context, path string) (Info, bool, error)
}

// CLI looks up history with the git binary.
type CLI struct{}

// Lookup runs git log in the file's directory.
func (c CLI) Lookup(ctx context.Context, path string) (Info, bool) {
	info, ok, err := c.Check(ctx, path)
	if err != nil {
		slog.Debug("git log failed", "path", path, "error", err)
		return Info{}, false
	}
	return info, ok
}

// Check is Lookup with the git error returned.
func (CLI) Check(ctx context.Context, path string) (Info, bool, error) {
	c, ok, err := gitcli.LastChange(ctx, filepath.Dir(path), filepath.Base(path))
	if err != nil || !ok {
		return Info{}, false, err
	}
	return Info{Author: c.Author, Date: c.Date}, true, nil
}

// GoGit looks up history with go-git. Opened repositories are cached by
// directory.
type GoGit struct {
	Opener testable.GitOpener // nil uses testable.DefaultGitOpener

	mu    sync.Mutex
	repos map[string]testable.GitRepository
}

// NewGoGit returns a GoGit lookup using the default opener.
func NewGoGit() *GoGit {
	return &GoGit{Opener: testable.DefaultGitOpener}
}

// Lookup returns the author and date of the newest commit touching path.
func (g *GoGit) Lookup(ctx context.Context, path string) (Info, bool) {
	if ctx.Err() != nil {
		return Info{}, false
	}
	repo := g.repo(filepath.Dir(path))
	if repo == nil {
		return Info{}, false
	}
	rel, err := filepath.Rel(repo.Root(), path)
	if err != nil {
		return Info{}, false
	}
	rel = filepath.ToSlash(rel)

	iter, err := repo.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
	if err != nil {
		slog.Debug("go-git log failed", "path", path, "error", err)
		return Info{}, false
	}
	defer iter.Close()

	c, err := iter.Next()
	if err != nil || c == nil {
		return Info{}, false
	}
	return Info{Author: c.Author.Name, Date: c.Author.When.Format(DateFormat)}, true
}

func (g *GoGit) repo(dir string) testable.GitRepository {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.repos[dir]; ok {
		return r
	}
	if g.repos == nil {
		g.repos = make(map[string]testable.GitRepository)
	}
	opener := g.Opener
	if opener == nil {
		opener = testable.DefaultGitOpener
	}
	r, err := opener.Open(dir)
	if err != nil {
		slog.Debug("no git repository", "dir", dir, "error", err)
		r = nil
	}
	g.repos[dir] = r
	return r
}

// Chain tries each lookup in order and returns the first hit. A Checker
// that answers without error ends the search even on a miss; later lookups
// only run when it failed.
type Chain []Lookup

// Lookup implements Lookup.
func (c Chain) Lookup(ctx context.Context, path string) (Info, bool) {
	for _, l := range c {
		if ch, ok := l.(Checker); ok {
			info, found, err := ch.Check(ctx, path)
			if err == nil {
				return info, found
			}
			slog.Debug("lookup failed, trying next", "path", path, "error", err)
			continue
		}
		if info, ok := l.Lookup(ctx, path); ok {
			return info, true
		}
	}
	return Info{}, false
}

// Default prefers the git binary and falls back to go-git, which also
// covers hosts without git installed.
func Default() Lookup {
	if err := gitcli.Available(); err != nil {
		slog.Debug("git binary unavailable, using go-git", "error", err)
		return NewGoGit()
	}
	return Chain{CLI{}, NewGoGit()}
}

var (
	_ Lookup = CLI{}
	_ Lookup = (*GoGit)(nil)
	_ Lookup = Chain(nil)

	_ Checker = CLI{}
)
