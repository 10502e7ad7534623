// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// backends returns a fresh instance of every Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	b, err := OpenBadger(BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	s, err := OpenSQLite(SQLiteConfig{Path: filepath.Join(t.TempDir(), "docs.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = b.Close()
		_ = s.Close()
	})
	return map[string]Store{"badger": b, "sqlite": s}
}

func TestStore_UpsertAndFindOne(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			res, err := store.UpdateOne(ctx, "performance", Filter{"user_id": "u1"},
				Update{Set: map[string]any{"q_table": map[string]any{"c1": map[string]float64{"correct": 1}}}}, true)
			if err != nil {
				t.Fatalf("UpdateOne: %v", err)
			}
			if res.Matched || res.UpsertedID == "" {
				t.Fatalf("expected an upsert, got %+v", res)
			}

			doc, err := store.FindOne(ctx, "performance", Filter{"user_id": "u1"})
			if err != nil {
				t.Fatalf("FindOne: %v", err)
			}
			if doc.ID() != res.UpsertedID {
				t.Errorf("_id = %q, want %q", doc.ID(), res.UpsertedID)
			}
			if doc["user_id"] != "u1" {
				t.Errorf("upsert should copy filter fields, got %v", doc["user_id"])
			}

			res, err = store.UpdateOne(ctx, "performance", Filter{"user_id": "u1"},
				Update{Set: map[string]any{"q_table": map[string]any{}}}, true)
			if err != nil {
				t.Fatalf("second UpdateOne: %v", err)
			}
			if !res.Matched || res.UpsertedID != "" {
				t.Errorf("expected a match without upsert, got %+v", res)
			}
		})
	}
}

func TestStore_FindOneMissing(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.FindOne(context.Background(), "flashcards", ByID("nope"))
			if !errors.Is(err, ErrNoDocuments) {
				t.Errorf("expected ErrNoDocuments, got %v", err)
			}
		})
	}
}

func TestStore_UpdateWithoutUpsert(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			res, err := store.UpdateOne(context.Background(), "flashcards", ByID("ghost"),
				Update{Set: map[string]any{"topic": "x"}}, false)
			if err != nil {
				t.Fatalf("UpdateOne: %v", err)
			}
			if res.Matched || res.UpsertedID != "" {
				t.Errorf("expected no-op, got %+v", res)
			}
			if _, err := store.FindOne(context.Background(), "flashcards", ByID("ghost")); !errors.Is(err, ErrNoDocuments) {
				t.Errorf("no record should have been created, got %v", err)
			}
		})
	}
}

func TestStore_SetPreservesOtherFields(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := store.UpdateOne(ctx, "flashcards", ByID("c1"),
				Update{Set: map[string]any{"question": "q", "answer": "a", "difficulty": 3}}, true)
			if err != nil {
				t.Fatalf("seed: %v", err)
			}
			if _, err := store.UpdateOne(ctx, "flashcards", ByID("c1"),
				Update{Set: map[string]any{"answer": "b"}}, false); err != nil {
				t.Fatalf("update: %v", err)
			}

			doc, err := store.FindOne(ctx, "flashcards", Filter{"_id": "c1", "difficulty": 3})
			if err != nil {
				t.Fatalf("FindOne with numeric filter: %v", err)
			}
			if doc["question"] != "q" || doc["answer"] != "b" {
				t.Errorf("unexpected document %v", doc)
			}
		})
	}
}

func TestStore_FindWithProjection(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"a", "b", "c"} {
				topic := "go"
				if id == "b" {
					topic = "rust"
				}
				if _, err := store.UpdateOne(ctx, "flashcards", ByID(id),
					Update{Set: map[string]any{"topic": topic, "embedding": []float64{1, 2}}}, true); err != nil {
					t.Fatalf("seed %s: %v", id, err)
				}
			}

			docs, err := store.Find(ctx, "flashcards", Filter{"topic": "go"}, Projection{"topic"})
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if len(docs) != 2 {
				t.Fatalf("expected 2 documents, got %d", len(docs))
			}
			for _, d := range docs {
				if _, ok := d["embedding"]; ok {
					t.Errorf("projection should drop embedding: %v", d)
				}
				if d.ID() == "" {
					t.Errorf("projection must keep _id: %v", d)
				}
			}

			all, err := store.Find(ctx, "flashcards", nil, nil)
			if err != nil {
				t.Fatalf("Find all: %v", err)
			}
			if len(all) != 3 {
				t.Errorf("expected 3 documents, got %d", len(all))
			}
		})
	}
}

func TestStore_DeleteOne(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.UpdateOne(ctx, "performance", ByID("u1"), Update{Set: map[string]any{"q_table": map[string]any{}}}, true); err != nil {
				t.Fatalf("seed: %v", err)
			}

			deleted, err := store.DeleteOne(ctx, "performance", ByID("u1"))
			if err != nil || !deleted {
				t.Fatalf("DeleteOne = %v, %v", deleted, err)
			}
			deleted, err = store.DeleteOne(ctx, "performance", ByID("u1"))
			if err != nil || deleted {
				t.Errorf("second DeleteOne = %v, %v; want false, nil", deleted, err)
			}
		})
	}
}

func TestStore_CollectionsAreIsolated(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.UpdateOne(ctx, "flashcards", ByID("x"), Update{Set: map[string]any{"q": 1}}, true); err != nil {
				t.Fatal(err)
			}
			docs, err := store.Find(ctx, "quarantine", nil, nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(docs) != 0 {
				t.Errorf("expected empty collection, got %d", len(docs))
			}
		})
	}
}

func TestStore_InvalidUpdate(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := store.UpdateOne(ctx, "flashcards", ByID("x"), Update{Set: map[string]any{"_id": "y"}}, true)
			if !errors.Is(err, ErrInvalidUpdate) {
				t.Errorf("expected ErrInvalidUpdate, got %v", err)
			}
			_, err = store.UpdateOne(ctx, "flashcards", ByID("x"), Update{}, true)
			if !errors.Is(err, ErrInvalidUpdate) {
				t.Errorf("expected ErrInvalidUpdate for empty update, got %v", err)
			}
		})
	}
}

func TestStore_Closed(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if _, err := store.FindOne(context.Background(), "flashcards", ByID("x")); !errors.Is(err, ErrClosed) {
				t.Errorf("expected ErrClosed, got %v", err)
			}
		})
	}
}

func TestDocument_DecodeRoundTrip(t *testing.T) {
	t.Parallel()

	type card struct {
		ID        string    `json:"_id"`
		Question  string    `json:"question"`
		Embedding []float64 `json:"embedding"`
	}

	doc, err := ToDocument(card{ID: "c1", Question: "q", Embedding: []float64{0.5, -0.25}})
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	if doc.ID() != "c1" {
		t.Errorf("ID = %q", doc.ID())
	}

	var out card
	if err := doc.Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Question != "q" || len(out.Embedding) != 2 || out.Embedding[1] != -0.25 {
		t.Errorf("Decode = %+v", out)
	}
}
