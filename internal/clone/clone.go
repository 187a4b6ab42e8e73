// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

// Package clone turns fingerprint index entries into a ranked report of
// internal duplicates and cross-project leakage.
package clone

import (
	"github.com/davetashner/drydock/internal/fingerprint"
)

// InternalDuplicate is a fingerprint duplicated inside a single project.
type InternalDuplicate struct {
	Hash        string   `json:"hash"`
	Lines       int      `json:"lines"`
	Frequency   int      `json:"frequency"`
	Score       float64  `json:"score"`
	Project     string   `json:"project"`
	Occurrences []string `json:"occurrences"`
}

// CrossProjectLeakage is a fingerprint shared by two or more projects.
type CrossProjectLeakage struct {
	Hash        string                   `json:"hash"`
	Lines       int                      `json:"lines"`
	Frequency   int                      `json:"frequency"`
	Spread      int                      `json:"spread"`
	Score       float64                  `json:"score"`
	Projects    []string                 `json:"projects"`
	Occurrences []fingerprint.Occurrence `json:"occurrences"`
}

// Report is the result of one scan. Both collections are sorted by
// descending score. A Report is not modified after it is returned.
type Report struct {
	InternalDuplicates  []InternalDuplicate   `json:"internal_duplicates"`
	CrossProjectLeakage []CrossProjectLeakage `json:"cross_project_leakage"`
}

// Empty returns a report with non-nil, empty collections so it serializes
// as two empty arrays.
func Empty() *Report {
	return &Report{
		InternalDuplicates:  []InternalDuplicate{},
		CrossProjectLeakage: []CrossProjectLeakage{},
	}
}

// Files returns every file path referenced by an occurrence.
func (r *Report) Files() map[string]bool {
	files := make(map[string]bool)
	if r == nil {
		return files
	}
	for _, d := range r.InternalDuplicates {
		for _, f := range d.Occurrences {
			files[f] = true
		}
	}
	for _, l := range r.CrossProjectLeakage {
		for _, o := range l.Occurrences {
			files[o.File] = true
		}
	}
	return files
}

// TotalLeakageScore sums the scores of all cross-project leaks.
func (r *Report) TotalLeakageScore() float64 {
	if r == nil {
		return 0
	}
	var total float64
	for _, l := range r.CrossProjectLeakage {
		total += l.Score
	}
	return total
}

// TotalDuplicateScore sums the scores of all internal duplicates.
func (r *Report) TotalDuplicateScore() float64 {
	if r == nil {
		return 0
	}
	var total float64
	for _, d := range r.InternalDuplicates {
		total += d.Score
	}
	return total
}

// Leak returns the cross-project leak with the given hash.
func (r *Report) Leak(hash string) (CrossProjectLeakage, bool) {
	if r != nil {
		for _, l := range r.CrossProjectLeakage {
			if l.Hash == hash {
				return l, true
			}
		}
	}
	return CrossProjectLeakage{}, false
}
