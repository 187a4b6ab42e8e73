// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package state

import (
	"sync/atomic"

	"github.com/davetashner/drydock/internal/clone"
)

// Snapshot holds the current and baseline reports for concurrent readers.
// Reports are published whole; a reader sees either the previous report or
// the next one, never one under construction.
type Snapshot struct {
	pair atomic.Pointer[reportPair]
}

// reportPair is swapped as a unit so the baseline always matches the
// report it preceded.
type reportPair struct {
	current  *clone.Report
	baseline *clone.Report
}

// NewSnapshot returns a snapshot seeded with an initial report, which also
// becomes the baseline. r may be nil.
func NewSnapshot(r *clone.Report) *Snapshot {
	s := &Snapshot{}
	s.pair.Store(&reportPair{current: r, baseline: r})
	return s
}

// Load returns the current report, or nil if none has been published.
func (s *Snapshot) Load() *clone.Report {
	return s.pair.Load().current
}

// Baseline returns the report the current one should be compared against.
func (s *Snapshot) Baseline() *clone.Report {
	return s.pair.Load().baseline
}

// Reports returns the current report and its baseline from a single
// publication.
func (s *Snapshot) Reports() (current, baseline *clone.Report) {
	p := s.pair.Load()
	return p.current, p.baseline
}

// Publish makes r current. The report it replaces becomes the baseline.
func (s *Snapshot) Publish(r *clone.Report) {
	for {
		old := s.pair.Load()
		next := &reportPair{current: r, baseline: old.baseline}
		if old.current != nil {
			next.baseline = old.current
		}
		if s.pair.CompareAndSwap(old, next) {
			return
		}
	}
}

// Trend compares the baseline with the current report.
func (s *Snapshot) Trend() *TrendResult {
	current, baseline := s.Reports()
	return AnalyzeTrend(baseline, current)
}
