package project

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind identifies the monorepo tool or convention that defines a layout.
type Kind string

const (
	KindGoWork Kind = "go-work"
	KindPnpm   Kind = "pnpm"
	KindNpm    Kind = "npm"
	KindLerna  Kind = "lerna"
	KindNx     Kind = "nx"
	KindCargo  Kind = "cargo"
)

// Layout is a detected monorepo: a root and the member directories that
// each count as a separate project.
type Layout struct {
	Kind    Kind
	Root    string
	Members []string // absolute, sorted
}

// detector probes a directory for one layout kind. It returns nil, nil when
// the manifest is absent or declares no existing members.
type detector func(root string) (*Layout, error)

// detectors run in order; first match wins.
var detectors = []detector{
	detectGoWork,
	detectPnpm,
	detectNpm,
	detectLerna,
	detectNx,
	detectCargo,
}

// DetectWorkspaces probes root for a known monorepo layout. It returns nil
// when root is not a monorepo.
func DetectWorkspaces(root string) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	for _, fn := range detectors {
		layout, err := fn(abs)
		if err != nil {
			return nil, err
		}
		if layout != nil {
			return layout, nil
		}
	}
	return nil, nil
}

// newLayout expands member patterns under root and drops excluded ones.
func newLayout(kind Kind, root string, patterns, exclude []string) (*Layout, error) {
	dirs, err := expandDirs(root, patterns)
	if err != nil {
		return nil, err
	}
	if len(exclude) > 0 {
		skip, err := expandDirs(root, exclude)
		if err != nil {
			return nil, err
		}
		drop := make(map[string]bool, len(skip))
		for _, d := range skip {
			drop[d] = true
		}
		kept := dirs[:0]
		for _, d := range dirs {
			if !drop[d] {
				kept = append(kept, d)
			}
		}
		dirs = kept
	}
	if len(dirs) == 0 {
		return nil, nil
	}
	return &Layout{Kind: kind, Root: root, Members: dirs}, nil
}

// expandDirs resolves glob patterns relative to root into existing
// directories. Negated patterns ("!pkg/x") are ignored. Results are
// absolute, sorted and unique.
func expandDirs(root string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	for _, pat := range patterns {
		if pat == "" || pat[0] == '!' {
			continue
		}
		abs := pat
		if !filepath.IsAbs(pat) {
			abs = filepath.Join(root, pat)
		}
		matches, err := doublestar.FilepathGlob(abs)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] && dirExists(m) {
				seen[m] = true
				dirs = append(dirs, m)
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
