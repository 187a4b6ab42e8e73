// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

// Package state persists scan reports and compares two of them over time.
//
// A report is written as one JSON snapshot per run. The next run (or the
// dashboard) reloads it as the baseline for trend analysis.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/testable"
)

// DefaultReportFile is the report written by a scan unless overridden.
const DefaultReportFile = "drydock-report.json"

// FS is the file system implementation used by this package.
// Override in tests with a testable.MockFileSystem.
var FS testable.FileSystem = testable.DefaultFS

// LoadReport reads a persisted report. If the file does not exist, it
// returns (nil, nil). Missing collections decode as empty.
func LoadReport(path string) (*clone.Report, error) {
	data, err := FS.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read report: %w", err)
	}
	return DecodeReport(data)
}

// DecodeReport parses report JSON.
func DecodeReport(data []byte) (*clone.Report, error) {
	r := clone.Empty()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	if r.InternalDuplicates == nil {
		r.InternalDuplicates = []clone.InternalDuplicate{}
	}
	if r.CrossProjectLeakage == nil {
		r.CrossProjectLeakage = []clone.CrossProjectLeakage{}
	}
	return r, nil
}

// EncodeReport renders a report as indented JSON. A nil report encodes as
// two empty collections.
func EncodeReport(r *clone.Report) ([]byte, error) {
	if r == nil {
		r = clone.Empty()
	}
	out := *r
	if out.InternalDuplicates == nil {
		out.InternalDuplicates = []clone.InternalDuplicate{}
	}
	if out.CrossProjectLeakage == nil {
		out.CrossProjectLeakage = []clone.CrossProjectLeakage{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// SaveReport writes r to path. The file is written to a temporary sibling
// and renamed so readers never observe a partial report.
func SaveReport(path string, r *clone.Report) error {
	data, err := EncodeReport(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	dir := filepath.Dir(path)
	if err := FS.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := FS.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // report is meant to be shared
		return fmt.Errorf("write report: %w", err)
	}
	if err := FS.Rename(tmp, path); err != nil {
		_ = FS.Remove(tmp)
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}
