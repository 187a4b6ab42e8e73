package state

import (
	"math"

	"github.com/davetashner/drydock/internal/clone"
)

// deadbandPct is the relative score change below which a trend is "stable".
const deadbandPct = 0.10

// Direction describes whether leakage is improving, stable, or degrading.
type Direction string

const (
	Improving Direction = "improving"
	Stable    Direction = "stable"
	Degrading Direction = "degrading"
)

// TrendResult compares the cross-project leakage of two reports. Internal
// duplicates do not take part.
type TrendResult struct {
	NewLeaks       []clone.CrossProjectLeakage `json:"newLeaks"`
	ResolvedLeaks  []clone.CrossProjectLeakage `json:"resolvedLeaks"`
	RemainingLeaks []clone.CrossProjectLeakage `json:"remainingLeaks"`
	// ScoreChange is the new total leak score minus the old one.
	ScoreChange float64 `json:"scoreChange"`

	oldScore float64
	newScore float64
}

// AnalyzeTrend classifies every leak as new (only in newer), resolved (only
// in older), or remaining (in both; the newer record is kept). New and
// remaining leaks keep newer-report order, resolved leaks older-report
// order. Nil reports count as empty.
func AnalyzeTrend(older, newer *clone.Report) *TrendResult {
	res := &TrendResult{
		NewLeaks:       []clone.CrossProjectLeakage{},
		ResolvedLeaks:  []clone.CrossProjectLeakage{},
		RemainingLeaks: []clone.CrossProjectLeakage{},
		oldScore:       older.TotalLeakageScore(),
		newScore:       newer.TotalLeakageScore(),
	}
	res.ScoreChange = res.newScore - res.oldScore

	oldSet := hashes(older)
	newSet := hashes(newer)

	if newer != nil {
		for _, l := range newer.CrossProjectLeakage {
			if oldSet[l.Hash] {
				res.RemainingLeaks = append(res.RemainingLeaks, l)
			} else {
				res.NewLeaks = append(res.NewLeaks, l)
			}
		}
	}
	if older != nil {
		for _, l := range older.CrossProjectLeakage {
			if !newSet[l.Hash] {
				res.ResolvedLeaks = append(res.ResolvedLeaks, l)
			}
		}
	}
	return res
}

// Direction classifies the score change with a 10% deadband relative to
// the older total. Lower leakage is improving.
func (t *TrendResult) Direction() Direction {
	return classifyDirection(t.oldScore, t.newScore)
}

func classifyDirection(oldVal, newVal float64) Direction {
	if oldVal == 0 && newVal == 0 {
		return Stable
	}

	base := oldVal
	if base == 0 {
		base = newVal
	}
	if math.Abs(newVal-oldVal)/base <= deadbandPct {
		return Stable
	}
	if newVal < oldVal {
		return Improving
	}
	return Degrading
}

func hashes(r *clone.Report) map[string]bool {
	set := make(map[string]bool)
	if r == nil {
		return set
	}
	for _, l := range r.CrossProjectLeakage {
		set[l.Hash] = true
	}
	return set
}
