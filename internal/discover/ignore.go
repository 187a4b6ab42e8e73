package discover

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// matcher applies doublestar ignore patterns to discovered paths.
//
// Paths are matched relative to the base directory when they lie inside it,
// and relative to their scan root otherwise. A pattern without a '/' matches
// the base name at any depth; a leading '/' anchors the pattern.
type matcher struct {
	base     string
	patterns []string
	names    []string
}

func newMatcher(base string, patterns []string) *matcher {
	m := &matcher{base: base}
	for _, p := range patterns {
		p = strings.TrimSuffix(strings.TrimSpace(p), "/")
		if p == "" || strings.HasPrefix(p, "!") {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			slog.Warn("ignoring invalid ignore pattern", "pattern", p)
			continue
		}
		switch {
		case strings.HasPrefix(p, "/"):
			m.patterns = append(m.patterns, strings.TrimPrefix(p, "/"))
		case !strings.Contains(p, "/"):
			m.names = append(m.names, p)
		default:
			m.patterns = append(m.patterns, p)
		}
	}
	return m
}

// ignored reports whether path (under root) matches an ignore pattern.
func (m *matcher) ignored(root, path string) bool {
	name := filepath.Base(path)
	for _, p := range m.names {
		if doublestar.MatchUnvalidated(p, name) {
			return true
		}
	}

	rel := m.rel(root, path)
	for _, p := range m.patterns {
		if doublestar.MatchUnvalidated(p, rel) {
			return true
		}
	}
	return false
}

func (m *matcher) rel(root, path string) string {
	for _, dir := range []string{m.base, root} {
		if r, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(r, "..") {
			return filepath.ToSlash(r)
		}
	}
	return filepath.ToSlash(path)
}
