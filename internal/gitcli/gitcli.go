// Package gitcli runs the native git binary for per-file history lookups,
// which are much faster than walking history with go-git.
package gitcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/davetashner/drydock/internal/testable"
)

// DefaultTimeout is the per-command timeout for git operations.
const DefaultTimeout = 5 * time.Second

// ErrNotFound is returned when the git binary is not on PATH.
var ErrNotFound = errors.New("git not found on PATH")

var (
	mu       sync.RWMutex
	executor testable.CommandExecutor = testable.DefaultExecutor()
)

// SetExecutor replaces the command executor. Passing nil restores the
// production executor.
func SetExecutor(e testable.CommandExecutor) {
	mu.Lock()
	defer mu.Unlock()
	if e == nil {
		e = testable.DefaultExecutor()
	}
	executor = e
}

func current() testable.CommandExecutor {
	mu.RLock()
	defer mu.RUnlock()
	return executor
}

// Available reports whether git can be executed.
func Available() error {
	if _, err := current().LookPath("git"); err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return nil
}

// Run executes a git command in repoDir and returns its stdout.
func Run(ctx context.Context, repoDir string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	cmd := current().CommandContext(ctx, "git", args...)
	cmd.Dir = repoDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Exec is Run with stdout returned as a trimmed string.
func Exec(ctx context.Context, repoDir string, args ...string) (string, error) {
	out, err := Run(ctx, repoDir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Change is the author and short date (YYYY-MM-DD) of a commit.
type Change struct {
	Author string
	Date   string
}

// LastChange returns the most recent commit touching relPath. The boolean
// is false when the path has no history (untracked or no commits).
func LastChange(ctx context.Context, repoDir, relPath string) (Change, bool, error) {
	out, err := Exec(ctx, repoDir, "log", "-1", "--format=%an|%ad", "--date=short", "--", relPath)
	if err != nil {
		return Change{}, false, err
	}
	c, ok := ParseChange(out)
	return c, ok, nil
}

// ParseChange parses one "author|date" line as produced by
// git log --format=%an|%ad. Author names may themselves contain '|'.
func ParseChange(line string) (Change, bool) {
	line = strings.TrimSpace(line)
	i := strings.LastIndex(line, "|")
	if i < 0 {
		return Change{}, false
	}
	c := Change{
		Author: strings.TrimSpace(line[:i]),
		Date:   strings.TrimSpace(line[i+1:]),
	}
	if c.Author == "" && c.Date == "" {
		return Change{}, false
	}
	return c, true
}
