// Copyright 2026 The Drydock Authors
// SPDX-License-Identifier: MIT

package clone

import "math"

// DefaultExponent weights spread superlinearly: code shared by many
// projects costs more to keep in sync than the same number of copies in one.
const DefaultExponent = 1.5

// Scorer computes the refactor priority of a duplicate cluster.
type Scorer struct {
	// Exponent applied to spread. Zero or negative selects DefaultExponent.
	Exponent float64
}

// Score returns spread^Exponent × frequency × lines.
func (s Scorer) Score(spread, frequency, lines int) float64 {
	exp := s.Exponent
	if exp <= 0 {
		exp = DefaultExponent
	}
	return math.Pow(float64(spread), exp) * float64(frequency) * float64(lines)
}
