// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package clone

import (
	"context"
	"sort"

	"github.com/davetashner/drydock/internal/fingerprint"
)

// Filter reports fingerprints to drop before classification.
type Filter interface {
	Contains(fp string) bool
}

// Enricher attaches author and date metadata to occurrences in place.
// Implementations must not fail; missing metadata is left empty.
type Enricher interface {
	Enrich(ctx context.Context, occs []fingerprint.Occurrence)
}

// Classifier splits index entries into internal duplicates and
// cross-project leakage.
type Classifier struct {
	Scorer    Scorer
	Whitelist Filter   // optional
	Enricher  Enricher // optional; runs only for surviving entries
}

// Classify builds a report from entries in discovery order. Entries with a
// single occurrence or a whitelisted fingerprint are dropped.
func (c Classifier) Classify(ctx context.Context, entries []*fingerprint.Entry) *Report {
	report := Empty()

	for _, e := range entries {
		if e == nil || e.Frequency() < 2 {
			continue
		}
		if c.Whitelist != nil && c.Whitelist.Contains(e.Fingerprint) {
			continue
		}

		projects := distinctProjects(e.Occurrences)
		spread := len(projects)
		freq := e.Frequency()
		score := c.Scorer.Score(spread, freq, e.LineCount)

		if spread > 1 {
			occs := make([]fingerprint.Occurrence, len(e.Occurrences))
			copy(occs, e.Occurrences)
			if c.Enricher != nil {
				c.Enricher.Enrich(ctx, occs)
			}
			report.CrossProjectLeakage = append(report.CrossProjectLeakage, CrossProjectLeakage{
				Hash:        e.Fingerprint,
				Lines:       e.LineCount,
				Frequency:   freq,
				Spread:      spread,
				Score:       score,
				Projects:    projects,
				Occurrences: occs,
			})
			continue
		}

		files := make([]string, len(e.Occurrences))
		for i, o := range e.Occurrences {
			files[i] = o.File
		}
		report.InternalDuplicates = append(report.InternalDuplicates, InternalDuplicate{
			Hash:        e.Fingerprint,
			Lines:       e.LineCount,
			Frequency:   freq,
			Score:       score,
			Project:     projects[0],
			Occurrences: files,
		})
	}

	Sort(report)
	return report
}

// Sort orders both collections by descending score, keeping discovery
// order for equal scores.
func Sort(r *Report) {
	sort.SliceStable(r.InternalDuplicates, func(i, j int) bool {
		return r.InternalDuplicates[i].Score > r.InternalDuplicates[j].Score
	})
	sort.SliceStable(r.CrossProjectLeakage, func(i, j int) bool {
		return r.CrossProjectLeakage[i].Score > r.CrossProjectLeakage[j].Score
	})
}

// distinctProjects returns occurrence projects in first-seen order.
func distinctProjects(occs []fingerprint.Occurrence) []string {
	seen := make(map[string]bool, len(occs))
	var out []string
	for _, o := range occs {
		if !seen[o.Project] {
			seen[o.Project] = true
			out = append(out, o.Project)
		}
	}
	return out
}
