// Package integration contains end-to-end tests for drydock.
//
// These tests build the drydock binary and run it against generated
// project trees, verifying exit codes, report files, machine-readable
// stdout and idempotency.
package integration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repoRoot returns the drydock repository root directory.
func repoRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	// test/integration/scan_test.go -> repo root
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

// buildBinary compiles drydock into a temp directory.
func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds the binary")
	}
	binary := filepath.Join(t.TempDir(), "drydock-test")
	cmd := exec.Command("go", "build", "-o", binary, "./cmd/drydock") //nolint:gosec // test helper
	cmd.Dir = repoRoot(t)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "go build failed:\n%s", out)
	return binary
}

// fixtureTree writes two projects sharing a helper file and returns the
// directory. The shared file differs only in identifiers and comments.
func fixtureTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"billing/package.json":  `{"name": "billing"}`,
		"shipping/package.json": `{"name": "shipping"}`,
		"billing/retry.go":      retrySource("Retry", "attempts", "// Retry calls fn until it succeeds."),
		"shipping/backoff.go":   retrySource("Backoff", "tries", "/* copied from billing */"),
		"shipping/main.go":      "package shipping\n\nfunc main() {}\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func retrySource(fn, counter, comment string) string {
	return fmt.Sprintf(`package util

%s
func %s(fn func() error, max int) error {
	var err error
	for %s := 0; %s < max; %s++ {
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}
`, comment, fn, counter, counter, counter)
}

// run executes the binary in dir and returns stdout and the exit code.
func run(t *testing.T, binary, dir string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(binary, args...) //nolint:gosec // test helper
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+t.TempDir())
	stdout, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(stdout), exitErr.ExitCode()
	}
	require.NoError(t, err)
	return string(stdout), 0
}

func TestScan_ExitCodes(t *testing.T) {
	binary := buildBinary(t)
	dir := fixtureTree(t)

	_, code := run(t, binary, dir, "scan", "--quiet", "--no-enrich")
	assert.Equal(t, 0, code, "leaks without --fail")

	_, code = run(t, binary, dir, "scan", "--quiet", "--no-enrich", "--fail")
	assert.Equal(t, 1, code, "leaks with --fail")

	_, code = run(t, binary, dir, "scan", "--quiet", "--no-enrich", "--fail", "shipping")
	assert.Equal(t, 0, code, "single project has no leaks")

	_, code = run(t, binary, dir, "scan", "--quiet", "missing-dir")
	assert.Equal(t, 2, code, "no readable input")

	_, code = run(t, binary, dir, "scan", "--quiet", "--min-lines", "-3")
	assert.Equal(t, 2, code, "invalid flag value")
}

func TestScan_ReportFile(t *testing.T) {
	binary := buildBinary(t)
	dir := fixtureTree(t)

	_, code := run(t, binary, dir, "scan", "--quiet", "--no-enrich")
	require.Equal(t, 0, code)

	data, err := os.ReadFile(filepath.Join(dir, "drydock-report.json")) //nolint:gosec // test output
	require.NoError(t, err)

	var report struct {
		InternalDuplicates  []json.RawMessage `json:"internal_duplicates"`
		CrossProjectLeakage []struct {
			Hash      string   `json:"hash"`
			Spread    int      `json:"spread"`
			Frequency int      `json:"frequency"`
			Projects  []string `json:"projects"`
		} `json:"cross_project_leakage"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Empty(t, report.InternalDuplicates)
	require.Len(t, report.CrossProjectLeakage, 1)
	l := report.CrossProjectLeakage[0]
	assert.Len(t, l.Hash, 64)
	assert.Equal(t, 2, l.Spread)
	assert.Equal(t, 2, l.Frequency)
	assert.Equal(t, []string{"billing", "shipping"}, l.Projects)
}

func TestScan_Idempotent(t *testing.T) {
	binary := buildBinary(t)
	dir := fixtureTree(t)

	out1, code := run(t, binary, dir, "scan", "--quiet", "--no-enrich", "--format", "json")
	require.Equal(t, 0, code, "first scan failed")
	out2, code := run(t, binary, dir, "scan", "--quiet", "--no-enrich", "--format", "json")
	require.Equal(t, 0, code, "second scan failed")

	assert.Equal(t, out1, out2, "scan output is not idempotent")
}

func TestScan_MachineReadableFormats(t *testing.T) {
	binary := buildBinary(t)
	dir := fixtureTree(t)

	for _, format := range []string{"json", "sarif"} {
		t.Run(format, func(t *testing.T) {
			stdout, code := run(t, binary, dir, "scan", "--quiet", "--no-enrich", "--format", format)
			require.Equal(t, 0, code)
			assert.True(t, json.Valid([]byte(stdout)), "stdout is not valid JSON:\n%s", stdout)
		})
	}

	stdout, code := run(t, binary, dir, "scan", "--quiet", "--no-enrich", "--format", "csv")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Len(t, lines, 3, "header plus one row per occurrence")
}

func TestTrend_AfterFix(t *testing.T) {
	binary := buildBinary(t)
	dir := fixtureTree(t)

	_, code := run(t, binary, dir, "scan", "--quiet", "--no-enrich", "-o", "before.json")
	require.Equal(t, 0, code)
	require.NoError(t, os.Remove(filepath.Join(dir, "shipping", "backoff.go")))
	_, code = run(t, binary, dir, "scan", "--quiet", "--no-enrich")
	require.Equal(t, 0, code)

	stdout, code := run(t, binary, dir, "trend", "--format", "json", "before.json")
	require.Equal(t, 0, code)

	var trend struct {
		NewLeaks      []json.RawMessage `json:"newLeaks"`
		ResolvedLeaks []json.RawMessage `json:"resolvedLeaks"`
		ScoreChange   float64           `json:"scoreChange"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &trend))
	assert.Empty(t, trend.NewLeaks)
	assert.Len(t, trend.ResolvedLeaks, 1)
	assert.Less(t, trend.ScoreChange, 0.0)
}
