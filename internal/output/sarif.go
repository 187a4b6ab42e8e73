// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/davetashner/drydock/internal/clone"
)

func init() {
	RegisterFormatter(NewSARIFFormatter())
}

// SARIFFormatter writes the report as a SARIF v2.1.0 JSON document, one
// result per finding with a location for every occurrence.
type SARIFFormatter struct {
	// Version is the drydock version to embed in the SARIF tool component.
	// If empty, "dev" is used.
	Version string
}

// Compile-time interface check.
var _ Formatter = (*SARIFFormatter)(nil)

// NewSARIFFormatter returns a new SARIFFormatter with default settings.
func NewSARIFFormatter() *SARIFFormatter {
	return &SARIFFormatter{}
}

// Name returns the format name.
func (f *SARIFFormatter) Name() string { return "sarif" }

// Format writes r as a SARIF v2.1.0 document to w.
func (f *SARIFFormatter) Format(r *clone.Report, w io.Writer) error {
	doc := f.buildDocument(orEmpty(r))

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write sarif: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write sarif trailing newline: %w", err)
	}
	return nil
}

// SARIF document types, only exported for JSON marshaling.

type sarifDocument struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                  `json:"id"`
	ShortDescription sarifMultiformatMessage `json:"shortDescription"`
	DefaultConfig    *sarifReportingConfig   `json:"defaultConfiguration,omitempty"`
}

type sarifMultiformatMessage struct {
	Text string `json:"text"`
}

type sarifReportingConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID              string                     `json:"ruleId"`
	RuleIndex           int                        `json:"ruleIndex"`
	Level               string                     `json:"level"`
	Rank                float64                    `json:"rank"`
	Message             sarifMultiformatMessage    `json:"message"`
	Locations           []sarifLocation            `json:"locations,omitempty"`
	PartialFingerprints map[string]string          `json:"partialFingerprints,omitempty"`
	Properties          map[string]json.RawMessage `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// Rule indexes into sarifRules.
const (
	leakRule = iota
	duplicateRule
)

var sarifRules = []sarifRule{
	{
		ID:               KindLeak,
		ShortDescription: sarifMultiformatMessage{Text: "Code duplicated across project boundaries"},
		DefaultConfig:    &sarifReportingConfig{Level: "warning"},
	},
	{
		ID:               KindDuplicate,
		ShortDescription: sarifMultiformatMessage{Text: "Code duplicated within a single project"},
		DefaultConfig:    &sarifReportingConfig{Level: "note"},
	},
}

func (f *SARIFFormatter) buildDocument(r *clone.Report) sarifDocument {
	version := f.Version
	if version == "" {
		version = "dev"
	}
	return sarifDocument{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "drydock",
						Version:        version,
						InformationURI: "https://github.com/davetashner/drydock",
						Rules:          sarifRules,
					},
				},
				Results: buildResults(r),
			},
		},
	}
}

func buildResults(r *clone.Report) []sarifResult {
	maxScore := 0.0
	for _, l := range r.CrossProjectLeakage {
		maxScore = max(maxScore, l.Score)
	}
	for _, d := range r.InternalDuplicates {
		maxScore = max(maxScore, d.Score)
	}

	results := make([]sarifResult, 0, len(r.CrossProjectLeakage)+len(r.InternalDuplicates))
	for _, l := range r.CrossProjectLeakage {
		files := make([]string, 0, len(l.Occurrences))
		for _, o := range l.Occurrences {
			files = append(files, o.File)
		}
		results = append(results, sarifResult{
			RuleID:    KindLeak,
			RuleIndex: leakRule,
			Level:     "warning",
			Rank:      rank(l.Score, maxScore),
			Message: sarifMultiformatMessage{
				Text: fmt.Sprintf("%d lines duplicated across %d projects: %s", l.Lines, l.Spread, strings.Join(l.Projects, ", ")),
			},
			Locations:           locations(files),
			PartialFingerprints: map[string]string{"drydock/v1": l.Hash},
			Properties: map[string]json.RawMessage{
				"score":    mustMarshal(l.Score),
				"projects": mustMarshal(l.Projects),
			},
		})
	}
	for _, d := range r.InternalDuplicates {
		results = append(results, sarifResult{
			RuleID:    KindDuplicate,
			RuleIndex: duplicateRule,
			Level:     "note",
			Rank:      rank(d.Score, maxScore),
			Message: sarifMultiformatMessage{
				Text: fmt.Sprintf("%d lines duplicated %d times in %s", d.Lines, d.Frequency, d.Project),
			},
			Locations:           locations(d.Occurrences),
			PartialFingerprints: map[string]string{"drydock/v1": d.Hash},
			Properties: map[string]json.RawMessage{
				"score":   mustMarshal(d.Score),
				"project": mustMarshal(d.Project),
			},
		})
	}
	return results
}

// rank scales a score into SARIF's 0-100 range relative to the worst finding.
func rank(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return score / maxScore * 100
}

func locations(files []string) []sarifLocation {
	locs := make([]sarifLocation, 0, len(files))
	for _, f := range files {
		locs = append(locs, sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: f, URIBaseID: "%SRCROOT%"},
			},
		})
	}
	return locs
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("mustMarshal: %v", err))
	}
	return data
}
