// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

const epsilon = 1e-9

func newIndex(t *testing.T, dims int) *Index {
	t.Helper()
	return New(dims, zerolog.Nop())
}

func TestSearch_SelfMatchFirst(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, 3)
	vectors := map[string][]float64{
		"A": {1, 2, 3},
		"B": {-1, 0, 1},
		"C": {3, 1, 0},
	}
	for _, id := range []string{"A", "B", "C"} {
		if err := idx.Upsert(id, vectors[id]); err != nil {
			t.Fatal(err)
		}
	}

	got, err := idx.Search(vectors["A"], 3)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].ID != "A" {
		t.Fatalf("expected A first, got %v", got)
	}
	if math.Abs(got[0].Score-1.0) > epsilon {
		t.Errorf("self-match score = %v, want 1.0", got[0].Score)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("results not descending: %v", got)
		}
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	t.Parallel()

	got, err := newIndex(t, 2).Search([]float64{1, 0}, 5)
	if err != nil {
		t.Fatalf("empty index must not error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
}

func TestSearch_TopKClampedAndDefaulted(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, 2)
	for i := 0; i < 8; i++ {
		_ = idx.Upsert(fmt.Sprintf("c%d", i), []float64{1, float64(i)})
	}

	tests := []struct {
		topK int
		want int
	}{
		{0, DefaultTopK},
		{-3, DefaultTopK},
		{2, 2},
		{8, 8},
		{100, 8},
	}
	for _, tt := range tests {
		got, err := idx.Search([]float64{1, 1}, tt.topK)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tt.want {
			t.Errorf("topK=%d returned %d results, want %d", tt.topK, len(got), tt.want)
		}
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, 2)
	for _, id := range []string{"first", "second", "third"} {
		_ = idx.Upsert(id, []float64{0, 1})
	}
	// Re-upserting keeps the original position.
	_ = idx.Upsert("first", []float64{0, 2})

	got, _ := idx.Search([]float64{0, 1}, 3)
	want := []string{"first", "second", "third"}
	for i, m := range got {
		if m.ID != want[i] {
			t.Fatalf("tie order = %v, want %v", got, want)
		}
	}
}

func TestUpsert_ReplacesVector(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, 2)
	_ = idx.Upsert("x", []float64{1, 0})
	_ = idx.Upsert("x", []float64{0, 1})

	if idx.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", idx.Len())
	}
	got, _ := idx.Search([]float64{0, 1}, 1)
	if math.Abs(got[0].Score-1) > epsilon {
		t.Errorf("expected the replaced vector to match, score %v", got[0].Score)
	}
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, 3)
	if err := idx.Upsert("x", []float64{1, 2}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := idx.Search([]float64{1}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch from Search, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, 2)
	_ = idx.Upsert("a", []float64{1, 0})
	_ = idx.Upsert("b", []float64{0, 1})

	if !idx.Remove("a") {
		t.Fatal("expected Remove to report true")
	}
	if idx.Remove("a") {
		t.Error("second Remove should report false")
	}
	if _, ok := idx.Vector("a"); ok {
		t.Error("removed vector still present")
	}
	got, _ := idx.Search([]float64{1, 0}, 5)
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("unexpected results after remove: %v", got)
	}
}

func TestZeroVectorScoresZero(t *testing.T) {
	t.Parallel()

	idx := newIndex(t, 2)
	_ = idx.Upsert("empty", []float64{0, 0})
	got, err := idx.Search([]float64{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Score != 0 {
		t.Errorf("zero vector score = %v", got[0].Score)
	}
}

func TestConcurrentUpsertAndSearch(t *testing.T) {
	t.Parallel()

	const dims = 16
	idx := newIndex(t, dims)
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				vec := make([]float64, dims)
				vec[(w+i)%dims] = 1
				_ = idx.Upsert(fmt.Sprintf("w%d-%d", w, i%20), vec)
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := make([]float64, dims)
			q[0] = 1
			for i := 0; i < 200; i++ {
				got, err := idx.Search(q, 10)
				if err != nil {
					t.Error(err)
					return
				}
				for _, m := range got {
					// Every stored vector is one-hot, so a torn read
					// would show up as a fractional score.
					if m.Score != 0 && math.Abs(m.Score-1) > epsilon {
						t.Errorf("torn vector observed: %v", m)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	if idx.Len() != 80 {
		t.Errorf("expected 80 entries, got %d", idx.Len())
	}
}
