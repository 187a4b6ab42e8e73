// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/fingerprint"
	"github.com/davetashner/drydock/internal/testable"
)

func sampleReport() *clone.Report {
	return &clone.Report{
		InternalDuplicates: []clone.InternalDuplicate{{
			Hash: "d1", Lines: 40, Frequency: 2, Score: 80, Project: "svc",
			Occurrences: []string{"svc/a.js", "svc/b.js"},
		}},
		CrossProjectLeakage: []clone.CrossProjectLeakage{{
			Hash: "l1", Lines: 1, Frequency: 2, Spread: 2, Score: 5.656854249492381,
			Projects: []string{"alpha", "beta"},
			Occurrences: []fingerprint.Occurrence{
				{Project: "alpha", File: "alpha/x.py", Author: "ann", Date: "2024-01-01"},
				{Project: "beta", File: "beta/x.py"},
			},
		}},
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultReportFile)
	require.NoError(t, SaveReport(path, sampleReport()))

	got, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, sampleReport(), got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")
}

func TestLoadReport_Missing(t *testing.T) {
	got, err := LoadReport(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadReport_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))
	_, err := LoadReport(path)
	assert.Error(t, err)
}

func TestDecodeReport_MissingCollections(t *testing.T) {
	r, err := DecodeReport([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, r.InternalDuplicates)
	assert.NotNil(t, r.CrossProjectLeakage)
}

func TestDecodeReport_PersistedFormat(t *testing.T) {
	data := []byte(`{
  "internal_duplicates": [],
  "cross_project_leakage": [{
    "hash": "abc", "lines": 3, "frequency": 2, "spread": 2, "score": 16.97,
    "projects": ["a", "b"],
    "occurrences": [{"project": "a", "file": "a/x.ts", "author": "Kim", "date": "2023-07-01"}, {"project": "b", "file": "b/x.ts"}]
  }]
}`)
	r, err := DecodeReport(data)
	require.NoError(t, err)
	require.Len(t, r.CrossProjectLeakage, 1)
	assert.Equal(t, "Kim", r.CrossProjectLeakage[0].Occurrences[0].Author)
	assert.InDelta(t, 16.97, r.TotalLeakageScore(), 1e-9)
}

func TestEncodeReport_Nil(t *testing.T) {
	data, err := EncodeReport(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"internal_duplicates":[],"cross_project_leakage":[]}`, string(data))

	data, err = EncodeReport(&clone.Report{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"internal_duplicates":[],"cross_project_leakage":[]}`, string(data))
}

func TestSaveReport_RenameFailureCleansUp(t *testing.T) {
	var removed []string
	FS = &testable.MockFileSystem{
		RenameFn: func(_, _ string) error { return errors.New("cross-device link") },
		RemoveFn: func(name string) error {
			removed = append(removed, name)
			return os.Remove(name)
		},
	}
	defer func() { FS = testable.DefaultFS }()

	path := filepath.Join(t.TempDir(), "report.json")
	err := SaveReport(path, sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replace report")
	assert.Equal(t, []string{path + ".tmp"}, removed)
}

func TestSaveReport_WriteFailure(t *testing.T) {
	FS = &testable.MockFileSystem{
		WriteFileFn: func(string, []byte, os.FileMode) error { return errors.New("disk full") },
	}
	defer func() { FS = testable.DefaultFS }()

	err := SaveReport(filepath.Join(t.TempDir(), "r.json"), clone.Empty())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestLoadReport_ReadFailure(t *testing.T) {
	FS = &testable.MockFileSystem{
		ReadFileFn: func(string) ([]byte, error) { return nil, errors.New("permission denied") },
	}
	defer func() { FS = testable.DefaultFS }()

	_, err := LoadReport("whatever.json")
	require.Error(t, err)
}
