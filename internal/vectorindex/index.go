// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

// Package vectorindex is an in-memory nearest-neighbor index over flashcard
// embeddings.
//
// Vectors are normalized on insert, so the inner product used for ranking is
// cosine similarity. Each entry holds its vector behind an atomic pointer: an
// upsert swaps in a freshly built, immutable vector, and a concurrent search
// sees either the old vector or the new one, never a mix. The index is
// derived state and can be rebuilt from the catalog at any time.
package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/metrics"
)

// DefaultTopK is used when a search asks for zero or fewer results.
const DefaultTopK = 5

// ErrDimensionMismatch is returned when a vector does not match the index width.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Match is one search hit.
type Match struct {
	ID    string
	Score float64
}

type entry struct {
	id  string
	seq uint64
	vec atomic.Pointer[[]float64]
}

// Index stores one vector per flashcard id.
type Index struct {
	dims   int
	logger zerolog.Logger

	mu      sync.RWMutex
	entries []*entry
	byID    map[string]*entry
	nextSeq uint64
}

// New returns an empty index for vectors of length dims.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(dims int, logger zerolog.Logger) *Index {
	return &Index{
		dims:   dims,
		logger: logger.With().Str("component", "vectorindex").Logger(),
		byID:   make(map[string]*entry),
	}
}

// Dimensions returns the vector width.
func (idx *Index) Dimensions() int {
	return idx.dims
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Upsert inserts or replaces the vector for id. A replaced entry keeps its
// original insertion position for tie-breaking.
func (idx *Index) Upsert(id string, vector []float64) error {
	if len(vector) != idx.dims {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), idx.dims)
	}
	vec := normalized(vector)

	idx.mu.RLock()
	e, ok := idx.byID[id]
	idx.mu.RUnlock()
	if ok {
		e.vec.Store(&vec)
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if e, ok := idx.byID[id]; ok {
		e.vec.Store(&vec)
		return nil
	}
	e = &entry{id: id, seq: idx.nextSeq}
	idx.nextSeq++
	e.vec.Store(&vec)
	idx.entries = append(idx.entries, e)
	idx.byID[id] = e
	metrics.VectorIndexSize.Set(float64(len(idx.entries)))
	return nil
}

// Remove deletes id from the index. Removing an unknown id is a no-op.
func (idx *Index) Remove(id string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	e, ok := idx.byID[id]
	if !ok {
		return false
	}
	delete(idx.byID, id)
	// Copy instead of shifting in place: searches hold the old slice.
	kept := make([]*entry, 0, len(idx.entries)-1)
	for _, other := range idx.entries {
		if other != e {
			kept = append(kept, other)
		}
	}
	idx.entries = kept
	metrics.VectorIndexSize.Set(float64(len(idx.entries)))
	idx.logger.Debug().Str("flashcard_id", id).Int("size", len(kept)).Msg("vector removed")
	return true
}

// Vector returns a copy of the stored (normalized) vector for id.
func (idx *Index) Vector(id string) ([]float64, bool) {
	idx.mu.RLock()
	e, ok := idx.byID[id]
	idx.mu.RUnlock()
	if !ok {
		return nil, false
	}
	v := *e.vec.Load()
	out := make([]float64, len(v))
	copy(out, v)
	return out, true
}

// Search returns up to topK entries ordered by descending similarity to
// query. Equal scores keep insertion order. topK <= 0 means DefaultTopK; a
// topK larger than the index returns every entry. An empty index returns an
// empty result.
func (idx *Index) Search(query []float64, topK int) ([]Match, error) {
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), idx.dims)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	start := time.Now()
	defer func() { metrics.VectorSearchDuration.Observe(time.Since(start).Seconds()) }()

	idx.mu.RLock()
	snapshot := idx.entries
	idx.mu.RUnlock()

	if len(snapshot) == 0 {
		return []Match{}, nil
	}

	q := normalized(query)
	type scored struct {
		Match
		seq uint64
	}
	all := make([]scored, len(snapshot))
	for i, e := range snapshot {
		all[i] = scored{Match: Match{ID: e.id, Score: dot(q, *e.vec.Load())}, seq: e.seq}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].seq < all[j].seq
	})

	if topK > len(all) {
		topK = len(all)
	}
	out := make([]Match, topK)
	for i := range out {
		out[i] = all[i].Match
	}
	return out, nil
}

// normalized returns a unit-length copy of v. The zero vector stays zero.
func normalized(v []float64) []float64 {
	out := make([]float64, len(v))
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
