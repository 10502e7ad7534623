// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// WarmupService runs a startup task once. A failed attempt returns its error
// so the supervisor restarts the service with backoff; success calls onDone
// and tells the supervisor not to restart it.
type WarmupService struct {
	name    string
	task    func(ctx context.Context) error
	onDone  func()
	timeout time.Duration
	logger  zerolog.Logger
}

// NewWarmupService creates a WarmupService. onDone may be nil. A
// non-positive timeout means 5 minutes per attempt.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewWarmupService(name string, task func(ctx context.Context) error, onDone func(), timeout time.Duration, logger zerolog.Logger) *WarmupService {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &WarmupService{
		name:    name,
		task:    task,
		onDone:  onDone,
		timeout: timeout,
		logger:  logger.With().Str("service", name).Logger(),
	}
}

// Serve implements suture.Service.
func (w *WarmupService) Serve(ctx context.Context) error {
	start := time.Now()
	taskCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.task(taskCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.logger.Warn().Err(err).Msg("Warm-up failed, will retry")
		return fmt.Errorf("%s: %w", w.name, err)
	}

	w.logger.Info().Dur("duration", time.Since(start)).Msg("Warm-up complete")
	if w.onDone != nil {
		w.onDone()
	}
	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer.
func (w *WarmupService) String() string {
	return w.name
}
