// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func rels(t *testing.T, base string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(base, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestFiles_DirectoryWalk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "main.go"), "package main")
	writeFile(t, filepath.Join(dir, "a", "node_modules", "dep", "index.js"), "x")
	writeFile(t, filepath.Join(dir, "a", "dist", "bundle.js"), "x")
	writeFile(t, filepath.Join(dir, "a", "logo.png"), "x")
	writeFile(t, filepath.Join(dir, "a", ".hidden", "secret.go"), "x")
	writeFile(t, filepath.Join(dir, "a", ".env"), "x")
	writeFile(t, filepath.Join(dir, "b", "lib.py"), "x = 1")
	writeFile(t, filepath.Join(dir, "b", "blob.bin"), "ab\x00cd")

	res, err := Files(context.Background(), Options{Patterns: []string{"a", "b"}, BaseDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/main.go", "b/lib.py"}, rels(t, dir, res.Files))
	assert.Equal(t, []string{filepath.Join(dir, "a"), filepath.Join(dir, "b")}, res.Roots)
}

func TestFiles_Glob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "x.ts"), "x")
	writeFile(t, filepath.Join(dir, "src", "deep", "y.ts"), "y")
	writeFile(t, filepath.Join(dir, "src", "z.js"), "z")
	writeFile(t, filepath.Join(dir, "src", "build", "gen.ts"), "g")

	res, err := Files(context.Background(), Options{Patterns: []string{"src/**/*.ts"}, BaseDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/deep/y.ts", "src/x.ts"}, rels(t, dir, res.Files))
	assert.Equal(t, []string{filepath.Join(dir, "src")}, res.Roots)
}

func TestFiles_PlainFileAndDedup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.go"), "package one")

	res, err := Files(context.Background(), Options{Patterns: []string{"one.go", ".", filepath.Join(dir, "one.go")}, BaseDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"one.go"}, rels(t, dir, res.Files))
}

func TestFiles_EmptyFileIsKept(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "empty.js"), "")

	res, err := Files(context.Background(), Options{Patterns: []string{"."}, BaseDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"empty.js"}, rels(t, dir, res.Files))
}

func TestFiles_IgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.go"), "x")
	writeFile(t, filepath.Join(dir, "gen", "skip.go"), "x")
	writeFile(t, filepath.Join(dir, "pkg", "thing.min.js"), "x")
	writeFile(t, filepath.Join(dir, "pkg", "vendor", "v.go"), "x")
	writeFile(t, filepath.Join(dir, DefaultIgnoreFile), "# generated\ngen/**\n\n*.min.js\n")

	res, err := Files(context.Background(), Options{
		Patterns: []string{"."},
		Ignore:   []string{"vendor/"},
		BaseDir:  dir,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.go"}, rels(t, dir, res.Files))
}

func TestFiles_ExplicitIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "x")
	writeFile(t, filepath.Join(dir, "b.go"), "x")
	custom := filepath.Join(t.TempDir(), "ignore.txt")
	writeFile(t, custom, "/b.go\n")

	res, err := Files(context.Background(), Options{Patterns: []string{"."}, IgnoreFile: custom, BaseDir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go"}, rels(t, dir, res.Files))
}

func TestFiles_NoInput(t *testing.T) {
	dir := t.TempDir()
	_, err := Files(context.Background(), Options{Patterns: []string{"missing", "nothing/*.go"}, BaseDir: dir})
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = Files(context.Background(), Options{BaseDir: dir})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestFiles_SomeMissingIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "real", "x.go"), "x")

	res, err := Files(context.Background(), Options{Patterns: []string{"missing", "real"}, BaseDir: dir})
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
}

func TestFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.go"), "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Files(ctx, Options{Patterns: []string{"."}, BaseDir: dir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadIgnoreFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ignore")
	writeFile(t, path, "  # comment\n\nfoo/**\n  *.tmp  \n")

	got, err := LoadIgnoreFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo/**", "*.tmp"}, got)

	got, err = LoadIgnoreFile(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMatcher(t *testing.T) {
	base := "/work"
	m := newMatcher(base, mergeIgnores([]string{"/top.go", "docs/*.md", "!keep.md", "tmp/"}))

	tests := []struct {
		path string
		want bool
	}{
		{"/work/node_modules", true},
		{"/work/app/node_modules/x/y.js", true},
		{"/work/app/icon.svg", true},
		{"/work/top.go", true},
		{"/work/sub/top.go", false},
		{"/work/docs/readme.md", true},
		{"/work/app/docs/readme.md", false},
		{"/work/app/tmp", true},
		{"/work/app/main.go", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.ignored(base, filepath.FromSlash(tt.path)), tt.path)
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden("/r", "/r/.git/config"))
	assert.True(t, isHidden("/r", "/r/a/.cache/x"))
	assert.False(t, isHidden("/r", "/r/a/b.go"))
}

func TestFilter_Skip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultIgnoreFile), "generated/**\n")

	f, err := NewFilter(Options{BaseDir: dir, Ignore: []string{"*.snap"}})
	require.NoError(t, err)

	assert.False(t, f.Skip(dir, dir))
	assert.False(t, f.Skip(dir, filepath.Join(dir, "src", "a.go")))
	assert.True(t, f.Skip(dir, filepath.Join(dir, ".git")))
	assert.True(t, f.Skip(dir, filepath.Join(dir, "node_modules")))
	assert.True(t, f.Skip(dir, filepath.Join(dir, "generated", "x.go")))
	assert.True(t, f.Skip(dir, filepath.Join(dir, "src", "a.snap")))
}
