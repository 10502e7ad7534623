// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/flashcards", "200"))

	RecordAPIRequest("GET", "/api/v1/flashcards", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/flashcards", "200"))
	if after != before+1 {
		t.Errorf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != start+1 {
		t.Errorf("expected %v active requests, got %v", start+1, got)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("expected %v active requests, got %v", start, got)
	}
}

func TestRecordQTableUpdate(t *testing.T) {
	before := testutil.ToFloat64(QTableUpdates.WithLabelValues("correct", "success"))
	RecordQTableUpdate("correct", "success")
	if got := testutil.ToFloat64(QTableUpdates.WithLabelValues("correct", "success")); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}
}

func TestRecordStoreOperation(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		label     string
		wantDelta float64
	}{
		{"success", nil, false, "false", 0},
		{"permanent failure", errors.New("boom"), false, "false", 1},
		{"transient failure", errors.New("busy"), true, "true", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := StoreErrors.WithLabelValues("find_one", "flashcards", tt.label)
			before := testutil.ToFloat64(c)
			RecordStoreOperation("find_one", "flashcards", time.Millisecond, tt.err, tt.retryable)
			if got := testutil.ToFloat64(c) - before; got != tt.wantDelta {
				t.Errorf("error counter delta = %v, want %v", got, tt.wantDelta)
			}
		})
	}
}

func TestRecordEmbedding(t *testing.T) {
	before := testutil.ToFloat64(EmbeddingRequests.WithLabelValues("timeout"))
	RecordEmbedding("timeout", time.Second)
	if got := testutil.ToFloat64(EmbeddingRequests.WithLabelValues("timeout")); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}
}
