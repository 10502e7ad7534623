// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// JanitorService calls sweep every interval until its context is canceled.
// sweep returns the number of items it removed.
type JanitorService struct {
	name     string
	sweep    func() int
	interval time.Duration
	logger   zerolog.Logger
}

// NewJanitorService creates a JanitorService. A non-positive interval means
// one minute.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewJanitorService(name string, sweep func() int, interval time.Duration, logger zerolog.Logger) *JanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &JanitorService{
		name:     name,
		sweep:    sweep,
		interval: interval,
		logger:   logger.With().Str("service", name).Logger(),
	}
}

// Serve implements suture.Service.
func (j *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := j.sweep(); removed > 0 {
				j.logger.Debug().Int("removed", removed).Msg("Sweep complete")
			}
		}
	}
}

// String implements fmt.Stringer.
func (j *JanitorService) String() string {
	return j.name
}
