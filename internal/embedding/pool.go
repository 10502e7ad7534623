// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/flashpath/internal/metrics"
)

// PoolConfig configures a Pool.
type PoolConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	Precision Precision

	// RatePerSecond caps encodes per second; zero disables the limit.
	RatePerSecond float64
	Burst         int
}

// DefaultPoolConfig returns four workers with a five second timeout.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:   4,
		QueueSize: 64,
		Timeout:   5 * time.Second,
		Precision: Float32,
		Burst:     16,
	}
}

type result struct {
	vec []float64
	err error
}

type job struct {
	ctx       context.Context
	text      string
	precision Precision
	done      chan result
}

// Pool runs encodes on a fixed set of worker goroutines. It implements
// suture.Service: workers run for the lifetime of Serve.
type Pool struct {
	encoder *Encoder
	cfg     PoolConfig
	jobs    chan job
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewPool creates a pool over encoder. Call Serve to start the workers.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPool(encoder *Encoder, cfg PoolConfig, logger zerolog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPoolConfig().Timeout
	}
	if cfg.Precision == "" {
		cfg.Precision = Float32
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Pool{
		encoder: encoder,
		cfg:     cfg,
		jobs:    make(chan job, cfg.QueueSize),
		limiter: limiter,
		logger:  logger.With().Str("component", "embedding-pool").Logger(),
	}
}

// Dimensions returns the vector length produced by the pool.
func (p *Pool) Dimensions() int {
	return p.encoder.Dimensions()
}

// Precision returns the precision Embed uses.
func (p *Pool) Precision() Precision {
	return p.cfg.Precision
}

// Serve starts the workers and blocks until ctx is canceled.
func (p *Pool) Serve(ctx context.Context) error {
	if err := p.encoder.Load(); err != nil {
		return fmt.Errorf("embedding pool: %w", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.work(ctx, id)
		}(i)
	}
	p.logger.Info().Int("workers", p.cfg.Workers).Int("dimensions", p.encoder.Dimensions()).Msg("embedding pool started")

	<-ctx.Done()
	wg.Wait()
	p.logger.Info().Msg("embedding pool stopped")
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (p *Pool) String() string {
	return "embedding-pool"
}

// Embed encodes text with the pool's configured precision.
func (p *Pool) Embed(ctx context.Context, text string) ([]float64, error) {
	return p.EmbedWithPrecision(ctx, text, p.cfg.Precision)
}

// EmbedWithPrecision encodes text on a worker. The call is bounded by the
// pool timeout: if the encoder has not answered in time the result is
// ErrTimeout, even if the worker is still busy.
func (p *Pool) EmbedWithPrecision(ctx context.Context, text string, precision Precision) ([]float64, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, p.fail(ctx, err, start)
	}

	j := job{ctx: ctx, text: text, precision: precision, done: make(chan result, 1)}
	metrics.EmbeddingQueueDepth.Inc()
	select {
	case p.jobs <- j:
	case <-ctx.Done():
		metrics.EmbeddingQueueDepth.Dec()
		return nil, p.fail(ctx, ctx.Err(), start)
	}

	select {
	case r := <-j.done:
		if r.err != nil {
			metrics.RecordEmbedding("error", time.Since(start))
			return nil, r.err
		}
		metrics.RecordEmbedding("success", time.Since(start))
		return r.vec, nil
	case <-ctx.Done():
		return nil, p.fail(ctx, ctx.Err(), start)
	}
}

// fail maps a context error onto the pool's error taxonomy. The limiter
// refuses early, with ctx still live, when the wait would pass the deadline.
func (p *Pool) fail(ctx context.Context, err error, start time.Time) error {
	if ctx.Err() == nil || errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		metrics.RecordEmbedding("timeout", time.Since(start))
		p.logger.Warn().Dur("timeout", p.cfg.Timeout).Msg("embedding timed out")
		return fmt.Errorf("%w after %s", ErrTimeout, p.cfg.Timeout)
	}
	metrics.RecordEmbedding("canceled", time.Since(start))
	return err
}

func (p *Pool) work(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			metrics.EmbeddingQueueDepth.Dec()
			if j.ctx.Err() != nil {
				continue
			}
			vec, err := p.encoder.Encode(j.text, j.precision)
			if err != nil {
				p.logger.Error().Err(err).Int("worker", id).Msg("encoder failed")
			}
			j.done <- result{vec: vec, err: err}
		}
	}
}
