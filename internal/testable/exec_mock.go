package testable

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// MockCommandExecutor simulates command execution with canned output. Each
// command is keyed by its name and arguments joined with spaces.
type MockCommandExecutor struct {
	// LookPathErr, when non-nil, is returned by LookPath.
	LookPathErr error
	// LookPathResult is the path LookPath reports; defaults to /usr/bin/git.
	LookPathResult string

	// CommandOutputs maps a command key to its stdout.
	CommandOutputs map[string]string
	// CommandErrors maps a command key to a stderr message; the command
	// exits non-zero.
	CommandErrors map[string]string

	// DefaultOutput is printed for unmatched commands.
	DefaultOutput string
	// DefaultError, when non-empty, makes every unmatched command fail.
	DefaultError string

	mu sync.Mutex
	// Calls records invoked command keys.
	Calls []string
}

// LookPath returns the configured result or error.
func (m *MockCommandExecutor) LookPath(_ string) (string, error) {
	if m.LookPathErr != nil {
		return "", m.LookPathErr
	}
	if m.LookPathResult != "" {
		return m.LookPathResult, nil
	}
	return "/usr/bin/git", nil
}

// CommandContext returns a shell command that reproduces the configured
// output or failure.
func (m *MockCommandExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	key := name + " " + strings.Join(args, " ")
	m.mu.Lock()
	m.Calls = append(m.Calls, key)
	m.mu.Unlock()

	if msg, ok := m.CommandErrors[key]; ok {
		return fail(ctx, msg)
	}
	if out, ok := m.CommandOutputs[key]; ok {
		return succeed(ctx, out)
	}
	if m.DefaultError != "" {
		return fail(ctx, m.DefaultError)
	}
	return succeed(ctx, m.DefaultOutput)
}

func fail(ctx context.Context, msg string) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("echo %q >&2; exit 1", msg)) //nolint:gosec // test helper
}

func succeed(ctx context.Context, out string) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("printf '%%s' %q", out)) //nolint:gosec // test helper
}

var _ CommandExecutor = (*MockCommandExecutor)(nil)
