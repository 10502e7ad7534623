// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package embedding

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// DefaultDimensions matches the width of common sentence-embedding models.
const DefaultDimensions = 384

// Feature weights. Whole words dominate; character trigrams let
// morphological variants ("recursion", "recursive") land near each other.
const (
	unigramWeight = 1.0
	bigramWeight  = 0.5
	trigramWeight = 0.25
)

// Model is an encoder capability.
type Model interface {
	Encode(text string, precision Precision) ([]float64, error)
	Dimensions() int
}

// HashingModel is a feature-hashing text encoder.
type HashingModel struct {
	dims int
	seed string
}

// NewHashingModel returns a model producing vectors of length dims. seed
// namespaces the hash space; models with different seeds are unrelated.
func NewHashingModel(dims int, seed string) (*HashingModel, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", dims)
	}
	return &HashingModel{dims: dims, seed: seed}, nil
}

// Dimensions implements Model.
func (m *HashingModel) Dimensions() int {
	return m.dims
}

// Encode implements Model. The result has unit length unless text has no
// tokens, in which case it is the zero vector.
func (m *HashingModel) Encode(text string, precision Precision) ([]float64, error) {
	vec := make([]float64, m.dims)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	for i, tok := range tokens {
		m.add(vec, "w:"+tok, unigramWeight)
		if i > 0 {
			m.add(vec, "b:"+tokens[i-1]+" "+tok, bigramWeight)
		}
		padded := "^" + tok + "$"
		runes := []rune(padded)
		for j := 0; j+3 <= len(runes); j++ {
			m.add(vec, "c:"+string(runes[j:j+3]), trigramWeight)
		}
	}

	normalize(vec)
	precision.apply(vec)
	return vec, nil
}

// add folds one feature into vec. The top bit of the hash picks the sign so
// that collisions cancel out on average instead of accumulating.
func (m *HashingModel) add(vec []float64, feature string, weight float64) {
	h := xxhash.Sum64String(m.seed + feature)
	idx := int(h % uint64(m.dims))
	if h>>63 == 1 {
		vec[idx] -= weight
	} else {
		vec[idx] += weight
	}
}

// tokenize lower-cases text and splits it on anything that is not a letter
// or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float64) {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}
