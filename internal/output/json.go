// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/state"
)

func init() {
	RegisterFormatter(NewJSONFormatter())
}

// JSONFormatter writes the report in its persisted JSON form.
type JSONFormatter struct {
	// Compact forces single-line output. When false, output is indented
	// unless w is a pipe or regular file.
	Compact bool
}

// Compile-time interface check.
var _ Formatter = (*JSONFormatter)(nil)

// NewJSONFormatter returns a new JSONFormatter with default settings.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format writes r as JSON. The document is the same one SaveReport
// persists, so it can be fed back as a trend baseline.
func (f *JSONFormatter) Format(r *clone.Report, w io.Writer) error {
	var data []byte
	var err error
	if f.shouldCompact(w) {
		r = orEmpty(r)
		out := *r
		if out.InternalDuplicates == nil {
			out.InternalDuplicates = []clone.InternalDuplicate{}
		}
		if out.CrossProjectLeakage == nil {
			out.CrossProjectLeakage = []clone.CrossProjectLeakage{}
		}
		data, err = json.Marshal(&out)
		data = append(data, '\n')
	} else {
		data, err = state.EncodeReport(r)
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// shouldCompact reports whether to emit a single line: always when Compact
// is set, otherwise for pipes and regular files.
func (f *JSONFormatter) shouldCompact(w io.Writer) bool {
	if f.Compact {
		return true
	}
	if file, ok := w.(*os.File); ok {
		fi, err := file.Stat()
		if err != nil {
			return false
		}
		return fi.Mode()&os.ModeCharDevice == 0
	}
	return false
}
