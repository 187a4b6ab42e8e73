// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

// Package report renders scan results and trends for the terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/davetashner/drydock/internal/clone"
)

// DefaultLimit is the number of rows shown per table when the caller passes
// a non-positive limit.
const DefaultLimit = 10

// hashWidth is the number of fingerprint characters shown in tables.
const hashWidth = 12

// Summary writes a human-readable overview of r: finding counts, total
// scores, the top leaks and duplicates, and the project pairs that share
// the most code.
func Summary(w io.Writer, r *clone.Report, limit int) error {
	if limit <= 0 {
		limit = DefaultLimit
	}
	leaks, dups := 0, 0
	if r != nil {
		leaks, dups = len(r.CrossProjectLeakage), len(r.InternalDuplicates)
	}

	if _, err := fmt.Fprintf(w, "%s\n", SectionTitle("Drydock scan summary")); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	if _, err := fmt.Fprintf(w, "  Cross-project leaks:  %s (score %.1f)\n", colorCount(leaks), r.TotalLeakageScore()); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	if _, err := fmt.Fprintf(w, "  Internal duplicates:  %s (score %.1f)\n", colorCount(dups), r.TotalDuplicateScore()); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	if leaks > 0 {
		if err := renderLeaks(w, r.CrossProjectLeakage, limit); err != nil {
			return err
		}
		if err := renderPairs(w, r.Matrix(), limit); err != nil {
			return err
		}
	}
	if dups > 0 {
		if err := renderDuplicates(w, r.InternalDuplicates, limit); err != nil {
			return err
		}
	}
	return nil
}

func renderLeaks(w io.Writer, leaks []clone.CrossProjectLeakage, limit int) error {
	if err := heading(w, "Top cross-project leaks", len(leaks), limit); err != nil {
		return err
	}
	tbl := leakTable()
	for _, l := range head(leaks, limit) {
		addLeakRow(tbl, l)
	}
	return tbl.Render(w)
}

func leakTable() *Table {
	return NewTable(
		Column{Header: "Score", Align: AlignRight},
		Column{Header: "Lines", Align: AlignRight},
		Column{Header: "Freq", Align: AlignRight},
		Column{Header: "Spread", Align: AlignRight, Color: ColorSpread},
		Column{Header: "Hash"},
		Column{Header: "Projects", MaxWidth: 60},
	)
}

func addLeakRow(tbl *Table, l clone.CrossProjectLeakage) {
	tbl.AddRow(
		formatScore(l.Score),
		strconv.Itoa(l.Lines),
		strconv.Itoa(l.Frequency),
		strconv.Itoa(l.Spread),
		ShortHash(l.Hash),
		strings.Join(l.Projects, ", "),
	)
}

func renderDuplicates(w io.Writer, dups []clone.InternalDuplicate, limit int) error {
	if err := heading(w, "Top internal duplicates", len(dups), limit); err != nil {
		return err
	}
	tbl := NewTable(
		Column{Header: "Score", Align: AlignRight},
		Column{Header: "Lines", Align: AlignRight},
		Column{Header: "Freq", Align: AlignRight},
		Column{Header: "Hash"},
		Column{Header: "Project", Color: ColorProject, MaxWidth: 40},
		Column{Header: "First file", MaxWidth: 50},
	)
	for _, d := range head(dups, limit) {
		first := ""
		if len(d.Occurrences) > 0 {
			first = d.Occurrences[0]
		}
		tbl.AddRow(
			formatScore(d.Score),
			strconv.Itoa(d.Lines),
			strconv.Itoa(d.Frequency),
			ShortHash(d.Hash),
			d.Project,
			first,
		)
	}
	return tbl.Render(w)
}

type pair struct {
	a, b  string
	count int
}

func renderPairs(w io.Writer, m clone.ProjectMatrix, limit int) error {
	var pairs []pair
	for i := range m.Projects {
		for j := i + 1; j < len(m.Projects); j++ {
			if n := m.Counts[i][j]; n > 0 {
				pairs = append(pairs, pair{a: m.Projects[i], b: m.Projects[j], count: n})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].count > pairs[j].count })

	if err := heading(w, "Project pairs sharing code", len(pairs), limit); err != nil {
		return err
	}
	tbl := NewTable(
		Column{Header: "Leaks", Align: AlignRight},
		Column{Header: "Project A", Color: ColorProject, MaxWidth: 40},
		Column{Header: "Project B", Color: ColorProject, MaxWidth: 40},
	)
	for _, p := range head(pairs, limit) {
		tbl.AddRow(strconv.Itoa(p.count), p.a, p.b)
	}
	return tbl.Render(w)
}

func heading(w io.Writer, title string, total, limit int) error {
	suffix := ""
	if total > limit {
		suffix = fmt.Sprintf(" (top %d of %d)", limit, total)
	}
	if _, err := fmt.Fprintf(w, "\n%s%s\n", SectionTitle(title), suffix); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}

func head[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

// ShortHash abbreviates a fingerprint for display.
func ShortHash(h string) string {
	if len(h) > hashWidth {
		return h[:hashWidth]
	}
	return h
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', 1, 64)
}
