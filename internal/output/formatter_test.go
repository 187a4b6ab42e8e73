// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package output

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/fingerprint"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// Compile-time interface check.
var _ Formatter = (*stubFormatter)(nil)

type stubFormatter struct{}

func (s *stubFormatter) Name() string                              { return "stub" }
func (s *stubFormatter) Format(_ *clone.Report, _ io.Writer) error { return nil }

// restoreFormatters re-registers the built-in formatters after a test
// cleared the registry.
func restoreFormatters() {
	resetFmtForTesting()
	RegisterFormatter(NewJSONFormatter())
	RegisterFormatter(NewCSVFormatter())
	RegisterFormatter(NewJUnitFormatter())
	RegisterFormatter(NewMarkdownFormatter())
	RegisterFormatter(NewSARIFFormatter())
	RegisterFormatter(NewTextFormatter())
}

var (
	hashA = strings.Repeat("a", 64)
	hashB = strings.Repeat("b", 64)
)

func sampleReport() *clone.Report {
	return &clone.Report{
		CrossProjectLeakage: []clone.CrossProjectLeakage{{
			Hash:      hashA,
			Lines:     20,
			Frequency: 2,
			Spread:    2,
			Score:     56.57,
			Projects:  []string{"billing", "shop"},
			Occurrences: []fingerprint.Occurrence{
				{Project: "billing", File: "billing/util.js", Author: "Grace Hopper", Date: "2024-05-06"},
				{Project: "shop", File: "shop/util.js"},
			},
		}},
		InternalDuplicates: []clone.InternalDuplicate{{
			Hash:        hashB,
			Lines:       8,
			Frequency:   2,
			Score:       8,
			Project:     "billing",
			Occurrences: []string{"billing/a.js", "billing/b.js"},
		}},
	}
}

func TestFormatterInterface(t *testing.T) {
	var f Formatter = &stubFormatter{}
	assert.Equal(t, "stub", f.Name())
	assert.NoError(t, f.Format(nil, &bytes.Buffer{}))
}

func TestGetFormatter_BuiltIns(t *testing.T) {
	for _, name := range []string{"json", "csv", "junit", "markdown", "sarif", "text"} {
		f, err := GetFormatter(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, f.Name())
	}
	assert.Equal(t, []string{"csv", "json", "junit", "markdown", "sarif", "text"}, Names())
}

func TestGetFormatter_Unknown(t *testing.T) {
	_, err := GetFormatter("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format: "yaml"`)
	assert.Contains(t, err.Error(), "csv, json, junit")
}

func TestRegisterFormatter_Reset(t *testing.T) {
	resetFmtForTesting()
	defer restoreFormatters()

	_, err := GetFormatter("json")
	assert.Error(t, err)

	RegisterFormatter(&stubFormatter{})
	f, err := GetFormatter("stub")
	require.NoError(t, err)
	assert.Equal(t, "stub", f.Name())
	assert.Equal(t, []string{"stub"}, Names())
}

func TestAllFormatters_NilReport(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			f, err := GetFormatter(name)
			require.NoError(t, err)
			var buf bytes.Buffer
			require.NoError(t, f.Format(nil, &buf))
			assert.NotEmpty(t, buf.String())
		})
	}
}
