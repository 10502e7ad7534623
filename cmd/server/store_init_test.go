// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/config"
	"github.com/tomtom215/flashpath/internal/docstore"
)

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StoreConfig
	}{
		{name: "badger in memory", cfg: config.StoreConfig{Backend: config.BackendBadger, InMemory: true}},
		{name: "sqlite", cfg: config.StoreConfig{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "flashpath.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.RetryMax = 1
			tt.cfg.RetryInitial = time.Millisecond
			tt.cfg.RetryMaxInterval = 10 * time.Millisecond

			store, err := openStore(&tt.cfg, zerolog.Nop())
			if err != nil {
				t.Fatalf("openStore: %v", err)
			}
			defer store.Close()

			ctx := context.Background()
			if _, err := store.UpdateOne(ctx, "flashcards", docstore.ByID("c1"),
				docstore.Update{Set: map[string]any{"question": "q"}}, true); err != nil {
				t.Fatalf("UpdateOne: %v", err)
			}
			doc, err := store.FindOne(ctx, "flashcards", docstore.ByID("c1"))
			if err != nil {
				t.Fatalf("FindOne: %v", err)
			}
			if doc["question"] != "q" {
				t.Errorf("question = %v", doc["question"])
			}
			if store.State() != "closed" {
				t.Errorf("breaker state = %q, want closed", store.State())
			}
		})
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := openStore(&config.StoreConfig{Backend: "mongo"}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if errors.Is(err, docstore.ErrUnavailable) {
		t.Error("unknown backend should not be reported as unavailable")
	}
}
