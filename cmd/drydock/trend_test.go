package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/fingerprint"
	"github.com/davetashner/drydock/internal/state"
)

func leak(hash string, score float64) clone.CrossProjectLeakage {
	return clone.CrossProjectLeakage{
		Hash: hash, Lines: 10, Frequency: 2, Spread: 2, Score: score,
		Projects: []string{"a", "b"},
		Occurrences: []fingerprint.Occurrence{
			{Project: "a", File: "a/" + hash + ".go"},
			{Project: "b", File: "b/" + hash + ".go"},
		},
	}
}

// writeReports saves an older and a newer report in a fresh directory.
func writeReports(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	older := clone.Empty()
	older.CrossProjectLeakage = []clone.CrossProjectLeakage{leak("keep", 100), leak("fixed", 100)}
	newer := clone.Empty()
	newer.CrossProjectLeakage = []clone.CrossProjectLeakage{leak("keep", 100), leak("fresh", 400)}
	require.NoError(t, state.SaveReport(filepath.Join(dir, "old.json"), older))
	require.NoError(t, state.SaveReport(filepath.Join(dir, state.DefaultReportFile), newer))
	return dir
}

func TestTrend_TextDefaultsToCurrentReport(t *testing.T) {
	dir := writeReports(t)
	chdir(t, dir)

	stdout, _, err := execute(t, "trend", "old.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Leakage trend")
	assert.Contains(t, stdout, "New leaks:        1")
	assert.Contains(t, stdout, "Resolved leaks:   1")
	assert.Contains(t, stdout, "Remaining leaks:  1")
	assert.Contains(t, stdout, "degrading")
}

func TestTrend_JSON(t *testing.T) {
	dir := writeReports(t)

	stdout, _, err := execute(t, "trend", "--format", "json",
		filepath.Join(dir, "old.json"), filepath.Join(dir, state.DefaultReportFile))
	require.NoError(t, err)

	var got struct {
		NewLeaks       []clone.CrossProjectLeakage `json:"newLeaks"`
		ResolvedLeaks  []clone.CrossProjectLeakage `json:"resolvedLeaks"`
		RemainingLeaks []clone.CrossProjectLeakage `json:"remainingLeaks"`
		ScoreChange    float64                     `json:"scoreChange"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.NewLeaks, 1)
	assert.Equal(t, "fresh", got.NewLeaks[0].Hash)
	require.Len(t, got.ResolvedLeaks, 1)
	assert.Equal(t, "fixed", got.ResolvedLeaks[0].Hash)
	require.Len(t, got.RemainingLeaks, 1)
	assert.InDelta(t, 300.0, got.ScoreChange, 1e-9)
}

func TestTrend_Errors(t *testing.T) {
	dir := writeReports(t)
	writeTestFile(t, dir, "broken.json", "{not json")
	old := filepath.Join(dir, "old.json")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing old", []string{"trend", filepath.Join(dir, "nope.json"), old}, "does not exist"},
		{"missing new", []string{"trend", old, filepath.Join(dir, "nope.json")}, "does not exist"},
		{"malformed", []string{"trend", filepath.Join(dir, "broken.json"), old}, "cannot read"},
		{"bad format", []string{"trend", "--format", "csv", old, old}, "unknown trend format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			ece := requireExitCode(t, err, ExitInvalidArgs)
			assert.Contains(t, ece.msg, tt.want)
		})
	}
}

func TestTrend_RequiresOldReport(t *testing.T) {
	_, _, err := execute(t, "trend")
	assert.Error(t, err)
}
