// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package docstore

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// flakyStore fails the first `failures` calls with a transient fault.
type flakyStore struct {
	Store
	failures int32
	calls    atomic.Int32
	err      error
}

func (f *flakyStore) fail() error {
	n := f.calls.Add(1)
	if n <= f.failures {
		if f.err != nil {
			return f.err
		}
		return unavailable("test", errors.New("connection reset"))
	}
	return nil
}

func (f *flakyStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return f.Store.FindOne(ctx, collection, filter)
}

func (f *flakyStore) UpdateOne(ctx context.Context, collection string, filter Filter, update Update, upsert bool) (UpdateResult, error) {
	if err := f.fail(); err != nil {
		return UpdateResult{}, err
	}
	return f.Store.UpdateOne(ctx, collection, filter, update, upsert)
}

func newFlaky(t *testing.T, failures int32) *flakyStore {
	t.Helper()
	inner, err := OpenBadger(BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = inner.Close() })
	return &flakyStore{Store: inner, failures: failures}
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
}

func TestResilient_RetriesReads(t *testing.T) {
	flaky := newFlaky(t, 2)
	r := NewResilient(flaky, "test-reads", fastRetry(), DefaultBreakerConfig(), zerolog.Nop())

	_, err := r.FindOne(context.Background(), "flashcards", ByID("missing"))
	if !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments after retries, got %v", err)
	}
	if got := flaky.calls.Load(); got != 3 {
		t.Errorf("expected 3 calls, got %d", got)
	}
}

func TestResilient_GivesUpAfterMaxRetries(t *testing.T) {
	flaky := newFlaky(t, 100)
	r := NewResilient(flaky, "test-giveup", fastRetry(), DefaultBreakerConfig(), zerolog.Nop())

	_, err := r.FindOne(context.Background(), "flashcards", ByID("x"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := flaky.calls.Load(); got != 4 {
		t.Errorf("expected 1 call + 3 retries, got %d", got)
	}
}

func TestResilient_WritesRetriedOnlyWhenIdempotent(t *testing.T) {
	tests := []struct {
		name      string
		filter    Filter
		wantCalls int32
		wantErr   bool
	}{
		{"pinned id", ByID("u1"), 2, false},
		{"field filter", Filter{"user_id": "u1"}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flaky := newFlaky(t, 1)
			r := NewResilient(flaky, "test-writes-"+tt.name, fastRetry(), DefaultBreakerConfig(), zerolog.Nop())

			_, err := r.UpdateOne(context.Background(), "performance", tt.filter,
				Update{Set: map[string]any{"q_table": map[string]any{}}}, true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := flaky.calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestResilient_NonRetryableErrorsPassThrough(t *testing.T) {
	flaky := newFlaky(t, 1)
	flaky.err = errors.New("permanent corruption")
	r := NewResilient(flaky, "test-permanent", fastRetry(), DefaultBreakerConfig(), zerolog.Nop())

	_, err := r.FindOne(context.Background(), "flashcards", ByID("x"))
	if err == nil || errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected the permanent error, got %v", err)
	}
	if got := flaky.calls.Load(); got != 1 {
		t.Errorf("permanent errors must not be retried, got %d calls", got)
	}
}

func TestResilient_BreakerOpens(t *testing.T) {
	flaky := newFlaky(t, 1000)
	breaker := BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 2, FailureRatio: 0.5}
	r := NewResilient(flaky, "test-breaker", RetryConfig{MaxRetries: 0, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}, breaker, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, _ = r.FindOne(context.Background(), "flashcards", ByID("x"))
	}
	if r.State() != "open" {
		t.Fatalf("expected open breaker, got %s", r.State())
	}

	before := flaky.calls.Load()
	_, err := r.FindOne(context.Background(), "flashcards", ByID("x"))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable while open, got %v", err)
	}
	if flaky.calls.Load() != before {
		t.Error("open breaker must not reach the store")
	}
}

func TestResilient_NotFoundDoesNotTripBreaker(t *testing.T) {
	flaky := newFlaky(t, 0)
	breaker := BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 2, FailureRatio: 0.5}
	r := NewResilient(flaky, "test-notfound", fastRetry(), breaker, zerolog.Nop())

	for i := 0; i < 5; i++ {
		if _, err := r.FindOne(context.Background(), "flashcards", ByID("x")); !errors.Is(err, ErrNoDocuments) {
			t.Fatalf("expected ErrNoDocuments, got %v", err)
		}
	}
	if r.State() != "closed" {
		t.Errorf("expected closed breaker, got %s", r.State())
	}
}
