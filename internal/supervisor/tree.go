// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer selects the child supervisor a service runs under.
type Layer int

const (
	// Data runs the embedding pool and the index warm-up.
	Data Layer = iota
	// Messaging runs the re-embed consumer and the cache janitor.
	Messaging
	// API runs the HTTP server.
	API

	layerCount
)

var layerNames = [layerCount]string{"data-layer", "messaging-layer", "api-layer"}

func (l Layer) String() string {
	if l < 0 || l >= layerCount {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// TreeConfig tunes restart behaviour for every layer. Zero fields take
// suture's defaults: threshold 5, decay 30s, backoff 15s, timeout 10s.
type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

func (c TreeConfig) spec() suture.Spec {
	return suture.Spec{
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// Tree is the "flashpath" root supervisor with one child per Layer. A layer
// stuck in restart backoff leaves the others running.
type Tree struct {
	root   *suture.Supervisor
	layers [layerCount]*suture.Supervisor
}

// NewTree builds the tree. Supervisor events are logged through logger.
func NewTree(logger *slog.Logger, cfg TreeConfig) *Tree {
	rootSpec := cfg.spec()
	// MustHook has a pointer receiver. Children inherit the hook.
	rootSpec.EventHook = (&sutureslog.Handler{Logger: logger}).MustHook()

	t := &Tree{root: suture.New("flashpath", rootSpec)}
	for l := range t.layers {
		t.layers[l] = suture.New(layerNames[l], cfg.spec())
		t.root.Add(t.layers[l])
	}
	return t
}

// Add runs svc under layer l.
func (t *Tree) Add(l Layer, svc suture.Service) suture.ServiceToken {
	return t.layers[l].Add(svc)
}

// Remove stops a service added to layer l.
func (t *Tree) Remove(l Layer, token suture.ServiceToken) error {
	return t.layers[l].Remove(token)
}

// ServeBackground starts the tree. The channel receives the root's exit
// error once; it is never closed.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that outlived ShutdownTimeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
