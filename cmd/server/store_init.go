// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/config"
	"github.com/tomtom215/flashpath/internal/docstore"
)

// openStore opens the configured backend and wraps it with retries and a
// circuit breaker.
//
//nolint:gocritic // zerolog.Logger is passed by value
func openStore(cfg *config.StoreConfig, logger zerolog.Logger) (*docstore.Resilient, error) {
	var (
		inner docstore.Store
		err   error
	)
	switch cfg.Backend {
	case config.BackendSQLite:
		inner, err = docstore.OpenSQLite(docstore.SQLiteConfig{Path: cfg.Path})
	case config.BackendBadger, "":
		inner, err = docstore.OpenBadger(docstore.BadgerConfig{
			Path:       cfg.Path,
			InMemory:   cfg.InMemory,
			SyncWrites: cfg.SyncWrites,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	retry := docstore.RetryConfig{
		MaxRetries:      uint64(max(cfg.RetryMax, 0)),
		InitialInterval: cfg.RetryInitial,
		MaxInterval:     cfg.RetryMaxInterval,
	}
	breaker := docstore.DefaultBreakerConfig()
	if cfg.BreakerTimeout > 0 {
		breaker.Timeout = cfg.BreakerTimeout
	}
	if cfg.BreakerMinRequests > 0 {
		breaker.MinRequests = uint32(cfg.BreakerMinRequests)
	}
	if cfg.BreakerFailureRatio > 0 {
		breaker.FailureRatio = cfg.BreakerFailureRatio
	}
	if retry.InitialInterval <= 0 {
		retry.InitialInterval = 50 * time.Millisecond
	}

	return docstore.NewResilient(inner, cfg.Backend, retry, breaker, logger), nil
}
