// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"io"

	"github.com/davetashner/drydock/internal/state"
)

// Trend writes the comparison of two scans: the direction, the score
// change, and the new and resolved leaks.
func Trend(w io.Writer, t *state.TrendResult) error {
	if t == nil {
		t = state.AnalyzeTrend(nil, nil)
	}
	if _, err := fmt.Fprintf(w, "%s\n", SectionTitle("Leakage trend")); err != nil {
		return fmt.Errorf("render trend: %w", err)
	}
	lines := []string{
		fmt.Sprintf("  Direction:        %s", ColorDirection(string(t.Direction()))),
		fmt.Sprintf("  Score change:     %s", colorDelta(t.ScoreChange)),
		fmt.Sprintf("  New leaks:        %d", len(t.NewLeaks)),
		fmt.Sprintf("  Resolved leaks:   %d", len(t.ResolvedLeaks)),
		fmt.Sprintf("  Remaining leaks:  %d", len(t.RemainingLeaks)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("render trend: %w", err)
		}
	}

	if len(t.NewLeaks) > 0 {
		if _, err := fmt.Fprintf(w, "\n%s\n", SectionTitle("New leaks")); err != nil {
			return fmt.Errorf("render trend: %w", err)
		}
		tbl := leakTable()
		for _, l := range t.NewLeaks {
			addLeakRow(tbl, l)
		}
		if err := tbl.Render(w); err != nil {
			return err
		}
	}
	if len(t.ResolvedLeaks) > 0 {
		if _, err := fmt.Fprintf(w, "\n%s\n", SectionTitle("Resolved leaks")); err != nil {
			return fmt.Errorf("render trend: %w", err)
		}
		tbl := leakTable()
		for _, l := range t.ResolvedLeaks {
			addLeakRow(tbl, l)
		}
		if err := tbl.Render(w); err != nil {
			return err
		}
	}
	return nil
}
