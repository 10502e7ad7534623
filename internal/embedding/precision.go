// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package embedding

import "fmt"

// Precision selects the numeric precision of vector components.
type Precision string

const (
	Float32 Precision = "float32"
	Float64 Precision = "float64"
)

// ParsePrecision accepts "float32" or "float64".
func ParsePrecision(s string) (Precision, error) {
	switch p := Precision(s); p {
	case Float32, Float64:
		return p, nil
	default:
		return "", fmt.Errorf("unknown embedding precision %q", s)
	}
}

// apply rounds every component to the requested precision in place.
func (p Precision) apply(v []float64) {
	if p != Float32 {
		return
	}
	for i, x := range v {
		v[i] = float64(float32(x))
	}
}
