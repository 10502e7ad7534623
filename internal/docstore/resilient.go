// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/flashpath/internal/metrics"
)

// RetryConfig bounds retries of transient faults.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// BreakerConfig configures the circuit breaker in front of the store.
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32
	// Interval resets the failure counts while closed.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// MinRequests is the sample size needed before the breaker may trip.
	MinRequests uint32
	// FailureRatio trips the breaker once reached.
	FailureRatio float64
}

// DefaultRetryConfig retries three times starting at 50ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialInterval: 50 * time.Millisecond, MaxInterval: time.Second}
}

// DefaultBreakerConfig opens after 60% failures over at least 10 requests.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// Resilient decorates a Store with retries and a circuit breaker.
// Only ErrUnavailable faults are retried or counted against the breaker;
// ErrNoDocuments and validation errors pass straight through.
type Resilient struct {
	inner  Store
	cb     *gobreaker.CircuitBreaker[any]
	retry  RetryConfig
	name   string
	logger zerolog.Logger
}

// NewResilient wraps inner.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewResilient(inner Store, name string, retry RetryConfig, breaker BreakerConfig, logger zerolog.Logger) *Resilient {
	r := &Resilient{
		inner:  inner,
		retry:  retry,
		name:   name,
		logger: logger.With().Str("component", "docstore").Str("breaker", name).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	r.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: breaker.MaxRequests,
		Interval:    breaker.Interval,
		Timeout:     breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breaker.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= breaker.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
	return r
}

// State returns the breaker state: closed, half-open or open.
func (r *Resilient) State() string {
	return stateToString(r.cb.State())
}

// FindOne implements Store.
func (r *Resilient) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	return execute(ctx, r, "find_one", collection, true, func() (Document, error) {
		return r.inner.FindOne(ctx, collection, filter)
	})
}

// Find implements Store.
func (r *Resilient) Find(ctx context.Context, collection string, filter Filter, projection Projection) ([]Document, error) {
	return execute(ctx, r, "find", collection, true, func() ([]Document, error) {
		return r.inner.Find(ctx, collection, filter, projection)
	})
}

// UpdateOne implements Store. Retried only when the filter pins "_id".
func (r *Resilient) UpdateOne(ctx context.Context, collection string, filter Filter, update Update, upsert bool) (UpdateResult, error) {
	_, idempotent := filter.pinnedID()
	return execute(ctx, r, "update_one", collection, idempotent, func() (UpdateResult, error) {
		return r.inner.UpdateOne(ctx, collection, filter, update, upsert)
	})
}

// DeleteOne implements Store. Retried only when the filter pins "_id".
func (r *Resilient) DeleteOne(ctx context.Context, collection string, filter Filter) (bool, error) {
	_, idempotent := filter.pinnedID()
	return execute(ctx, r, "delete_one", collection, idempotent, func() (bool, error) {
		return r.inner.DeleteOne(ctx, collection, filter)
	})
}

// Close closes the wrapped store.
func (r *Resilient) Close() error {
	return r.inner.Close()
}

func execute[T any](ctx context.Context, r *Resilient, op, collection string, retry bool, fn func() (T, error)) (T, error) {
	var result T

	attempt := func() error {
		start := time.Now()
		out, err := r.cb.Execute(func() (any, error) {
			return fn()
		})
		metrics.RecordStoreOperation(op, collection, time.Since(start), err, IsRetryable(err))

		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "rejected").Inc()
			return backoff.Permanent(fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err))
		case IsRetryable(err):
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "failure").Inc()
			if retry {
				return err
			}
			return backoff.Permanent(err)
		case err != nil:
			// ErrNoDocuments and friends are answers, not faults.
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "success").Inc()
			return backoff.Permanent(err)
		}

		metrics.CircuitBreakerRequests.WithLabelValues(r.name, "success").Inc()
		typed, ok := out.(T)
		if !ok && out != nil {
			return backoff.Permanent(fmt.Errorf("docstore %s: unexpected result type %T", op, out))
		}
		result = typed
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.retry.InitialInterval
	policy.MaxInterval = r.retry.MaxInterval
	policy.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		metrics.StoreRetries.WithLabelValues(op).Inc()
		r.logger.Debug().Err(err).Str("operation", op).Str("collection", collection).Dur("wait", wait).Msg("retrying store operation")
	}

	err := backoff.RetryNotify(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, r.retry.MaxRetries), ctx), notify)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
