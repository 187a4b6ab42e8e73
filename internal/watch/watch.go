// Package watch reruns a scan when files under the scan roots change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the tree must be quiet before a rescan.
const DefaultDebounce = 300 * time.Millisecond

// Trigger runs one rescan. Its context is cancelled when a newer change
// arrives or the watch stops.
type Trigger func(ctx context.Context)

// Options tunes Run.
type Options struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Skip reports whether path, found under root, should be neither
	// watched nor counted as a change. Nil skips hidden entries only.
	Skip func(root, path string) bool
}

// Run watches every directory under roots and calls trigger after each
// burst of changes. It returns when ctx is cancelled, after the last
// trigger has returned.
func Run(ctx context.Context, roots []string, opts Options, trigger Trigger) error {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	skip := opts.Skip
	if skip == nil {
		skip = skipHidden
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close() //nolint:errcheck // nothing to do on close failure

	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		r, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", root, err)
		}
		abs = append(abs, r)
	}
	// Longest first so rootOf finds the deepest root.
	sort.Slice(abs, func(i, j int) bool { return len(abs[i]) > len(abs[j]) })

	watched := 0
	for _, root := range abs {
		n, err := addRecursive(w, root, skip)
		if err != nil {
			return err
		}
		watched += n
	}
	slog.Info("watching for changes", "roots", len(abs), "directories", watched)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	var (
		wg     sync.WaitGroup
		cancel context.CancelFunc
	)
	defer func() {
		if cancel != nil {
			cancel()
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			root := rootOf(abs, ev.Name)
			if skip(root, ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if _, err := addRecursive(w, ev.Name, func(_, p string) bool { return skip(root, p) }); err != nil {
						slog.Warn("watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			slog.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if cancel != nil {
				cancel()
			}
			timer.Reset(debounce)

		case <-timer.C:
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(ctx)
			wg.Add(1)
			go func(ctx context.Context, done context.CancelFunc) {
				defer wg.Done()
				defer done()
				trigger(ctx)
			}(runCtx, cancel)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

// addRecursive watches dir and every directory below it that skip allows.
// It returns the number of directories added.
func addRecursive(w *fsnotify.Watcher, dir string, skip func(root, path string) bool) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skip(dir, path) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		n++
		return nil
	})
	return n, err
}

// rootOf returns the deepest root containing path, or path's directory.
func rootOf(roots []string, path string) string {
	for _, r := range roots {
		if path == r || strings.HasPrefix(path, r+string(filepath.Separator)) {
			return r
		}
	}
	return filepath.Dir(path)
}

func skipHidden(root, path string) bool {
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
