// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package state

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/drydock/internal/clone"
)

func leaks(scores map[string]float64, order ...string) *clone.Report {
	r := clone.Empty()
	for _, h := range order {
		r.CrossProjectLeakage = append(r.CrossProjectLeakage, clone.CrossProjectLeakage{
			Hash: h, Score: scores[h], Spread: 2, Frequency: 2, Projects: []string{"a", "b"},
		})
	}
	return r
}

func hashList(ls []clone.CrossProjectLeakage) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Hash)
	}
	return out
}

func TestAnalyzeTrend_NewResolvedRemaining(t *testing.T) {
	older := leaks(map[string]float64{"h1": 100, "h2": 50}, "h1", "h2")
	newer := leaks(map[string]float64{"h1": 100, "h3": 200}, "h3", "h1")

	res := AnalyzeTrend(older, newer)
	assert.Equal(t, []string{"h3"}, hashList(res.NewLeaks))
	assert.Equal(t, []string{"h2"}, hashList(res.ResolvedLeaks))
	assert.Equal(t, []string{"h1"}, hashList(res.RemainingLeaks))
	assert.InDelta(t, 150.0, res.ScoreChange, 1e-9)
	assert.Equal(t, Degrading, res.Direction())
}

func TestAnalyzeTrend_RemainingKeepsNewerRecord(t *testing.T) {
	older := leaks(map[string]float64{"h1": 10}, "h1")
	newer := leaks(map[string]float64{"h1": 30}, "h1")
	newer.CrossProjectLeakage[0].Frequency = 3

	res := AnalyzeTrend(older, newer)
	require.Len(t, res.RemainingLeaks, 1)
	assert.Equal(t, 3, res.RemainingLeaks[0].Frequency)
	assert.InDelta(t, 20.0, res.ScoreChange, 1e-9)
}

func TestAnalyzeTrend_SetIdentities(t *testing.T) {
	older := leaks(map[string]float64{"a": 1, "b": 2, "c": 3, "d": 4}, "a", "b", "c", "d")
	newer := leaks(map[string]float64{"c": 5, "d": 4, "e": 9, "f": 1}, "e", "c", "f", "d")

	res := AnalyzeTrend(older, newer)

	newSide := append(hashList(res.NewLeaks), hashList(res.RemainingLeaks)...)
	assert.ElementsMatch(t, []string{"c", "d", "e", "f"}, newSide)
	oldSide := append(hashList(res.ResolvedLeaks), hashList(res.RemainingLeaks)...)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, oldSide)
	assert.InDelta(t, newer.TotalLeakageScore()-older.TotalLeakageScore(), res.ScoreChange, 1e-9)
}

func TestAnalyzeTrend_IgnoresInternalDuplicates(t *testing.T) {
	older := clone.Empty()
	older.InternalDuplicates = []clone.InternalDuplicate{{Hash: "x", Score: 1000}}
	res := AnalyzeTrend(older, clone.Empty())
	assert.Empty(t, res.ResolvedLeaks)
	assert.Zero(t, res.ScoreChange)
	assert.Equal(t, Stable, res.Direction())
}

func TestAnalyzeTrend_NilReports(t *testing.T) {
	newer := leaks(map[string]float64{"h": 12}, "h")

	res := AnalyzeTrend(nil, newer)
	assert.Equal(t, []string{"h"}, hashList(res.NewLeaks))
	assert.NotNil(t, res.ResolvedLeaks)
	assert.InDelta(t, 12.0, res.ScoreChange, 1e-9)

	res = AnalyzeTrend(newer, nil)
	assert.Equal(t, []string{"h"}, hashList(res.ResolvedLeaks))
	assert.Equal(t, Improving, res.Direction())

	res = AnalyzeTrend(nil, nil)
	assert.Empty(t, res.NewLeaks)
	assert.Equal(t, Stable, res.Direction())
}

func TestClassifyDirection(t *testing.T) {
	tests := []struct {
		old, new float64
		want     Direction
	}{
		{0, 0, Stable},
		{100, 105, Stable},
		{100, 95, Stable},
		{100, 150, Degrading},
		{100, 50, Improving},
		{0, 10, Degrading},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyDirection(tt.old, tt.new), "%v -> %v", tt.old, tt.new)
	}
}

func TestTrendResult_JSONKeys(t *testing.T) {
	data, err := json.Marshal(AnalyzeTrend(nil, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"newLeaks":[],"resolvedLeaks":[],"remainingLeaks":[],"scoreChange":0}`, string(data))
}

func TestSnapshot_PublishRotatesBaseline(t *testing.T) {
	first := leaks(map[string]float64{"h1": 10}, "h1")
	second := leaks(map[string]float64{"h1": 10, "h2": 5}, "h1", "h2")

	s := NewSnapshot(first)
	assert.Same(t, first, s.Load())
	assert.Same(t, first, s.Baseline())
	assert.Empty(t, s.Trend().NewLeaks)

	s.Publish(second)
	assert.Same(t, second, s.Load())
	assert.Same(t, first, s.Baseline())
	assert.Equal(t, []string{"h2"}, hashList(s.Trend().NewLeaks))
}

func TestSnapshot_EmptyStart(t *testing.T) {
	s := NewSnapshot(nil)
	assert.Nil(t, s.Load())
	r := clone.Empty()
	s.Publish(r)
	assert.Nil(t, s.Baseline())
	assert.Same(t, r, s.Load())
}

func TestSnapshot_ConcurrentReaders(t *testing.T) {
	s := NewSnapshot(clone.Empty())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Publish(leaks(map[string]float64{"h": 1}, "h"))
		}()
		go func() {
			defer wg.Done()
			r := s.Load()
			assert.NotNil(t, r)
			_ = s.Trend()
		}()
	}
	wg.Wait()
}

func TestSnapshot_ReportsStayPaired(t *testing.T) {
	const rounds = 200
	reports := make([]*clone.Report, rounds)
	index := make(map[*clone.Report]int, rounds)
	for i := range reports {
		reports[i] = clone.Empty()
		index[reports[i]] = i
	}

	s := NewSnapshot(reports[0])
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, r := range reports[1:] {
			s.Publish(r)
		}
	}()

	for {
		current, baseline := s.Reports()
		if current != reports[0] {
			require.Equal(t, index[current]-1, index[baseline], "baseline must precede current")
		}
		select {
		case <-done:
			current, baseline = s.Reports()
			assert.Same(t, reports[rounds-1], current)
			assert.Same(t, reports[rounds-2], baseline)
			return
		default:
		}
	}
}
