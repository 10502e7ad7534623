// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

func TestWarmupService_Success(t *testing.T) {
	var done atomic.Bool
	svc := NewWarmupService("index-warmup", func(context.Context) error { return nil }, func() { done.Store(true) }, 0, zerolog.Nop())

	err := svc.Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("Serve = %v, want ErrDoNotRestart", err)
	}
	if !done.Load() {
		t.Error("onDone was not called")
	}
	if svc.String() != "index-warmup" {
		t.Errorf("String = %q", svc.String())
	}
}

func TestWarmupService_RetriedBySupervisor(t *testing.T) {
	var attempts atomic.Int32
	finished := make(chan struct{})
	svc := NewWarmupService("flaky", func(context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("store not ready")
		}
		return nil
	}, func() { close(finished) }, time.Second, zerolog.Nop())

	sup := suture.New("test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errCh := sup.ServeBackground(ctx)

	select {
	case <-finished:
	case <-time.After(4 * time.Second):
		t.Fatal("warm-up never succeeded")
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}

	cancel()
	<-errCh
}

func TestWarmupService_Canceled(t *testing.T) {
	svc := NewWarmupService("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, nil, time.Minute, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
}

func TestJanitorService(t *testing.T) {
	var sweeps atomic.Int32
	svc := NewJanitorService("cache-janitor", func() int {
		sweeps.Add(1)
		return 1
	}, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve = %v, want DeadlineExceeded", err)
	}
	if sweeps.Load() < 2 {
		t.Errorf("sweeps = %d, want at least 2", sweeps.Load())
	}
}

func TestJanitorService_DefaultInterval(t *testing.T) {
	svc := NewJanitorService("j", func() int { return 0 }, 0, zerolog.Nop())
	if svc.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", svc.interval)
	}
}
