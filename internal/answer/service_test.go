// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package answer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/docstore"
	"github.com/tomtom215/flashpath/internal/models"
	"github.com/tomtom215/flashpath/internal/qlearning"
)

const testUser = "6f1c2f4e-8a55-4a3e-9a0e-2d7f1c3b9a11"

type memCards map[string]*models.Flashcard

func (m memCards) Get(_ context.Context, id string) (*models.Flashcard, error) {
	id, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}
	card, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("flashcard %s: %w", id, models.ErrNotFound)
	}
	return card, nil
}

func newTestService(t *testing.T, judge Judge) (*Service, *qlearning.ScoreStore, *models.Flashcard) {
	t.Helper()

	db, err := docstore.OpenBadger(docstore.BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := qlearning.NewScoreStore(db)
	updater := qlearning.NewUpdater(store, zerolog.Nop())

	card := &models.Flashcard{ID: models.NewID(), Question: "Capital of France?", Answer: "Paris", Topic: "geography"}
	cards := memCards{card.ID: card}

	return NewService(cards, updater, judge, zerolog.Nop()), store, card
}

func TestSubmit_CorrectAndIncorrect(t *testing.T) {
	svc, store, card := newTestService(t, nil)
	ctx := context.Background()

	out, err := svc.Submit(ctx, testUser, card.ID, "paris.")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !out.Correct || out.Action != models.ActionCorrect || math.Abs(out.Value-1.0) > 1e-9 {
		t.Errorf("first answer = %+v, want correct with value 1.0", out)
	}
	if out.Topic != "geography" {
		t.Errorf("Topic = %q", out.Topic)
	}

	out, err = svc.Submit(ctx, testUser, card.ID, "Lyon")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	// 0 + 0.1 * (10 + 0.9*1.0 - 0)
	if out.Correct || out.Action != models.ActionIncorrect || math.Abs(out.Value-1.09) > 1e-9 {
		t.Errorf("second answer = %+v, want incorrect with value 1.09", out)
	}

	perf, err := store.LoadPerformance(ctx, testUser)
	if err != nil {
		t.Fatalf("LoadPerformance: %v", err)
	}
	stats := perf.Topics["geography"]
	if stats.Correct != 1 || stats.Incorrect != 1 {
		t.Errorf("topic stats = %+v, want 1/1", stats)
	}
}

func TestSubmit_Errors(t *testing.T) {
	svc, store, card := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "nope", card.ID, "Paris"); !errors.Is(err, models.ErrMalformedID) {
		t.Errorf("bad user id: err = %v", err)
	}
	if _, err := svc.Submit(ctx, testUser, models.NewID(), "Paris"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown card: err = %v", err)
	}

	table, err := store.Load(ctx, testUser)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("failed submissions wrote %d entries", table.Len())
	}
}

func TestSubmit_JudgeFailureWritesNothing(t *testing.T) {
	boom := errors.New("judge offline")
	svc, store, card := newTestService(t, JudgeFunc(func(context.Context, string, string, string) (bool, error) {
		return false, boom
	}))
	ctx := context.Background()

	if _, err := svc.Submit(ctx, testUser, card.ID, "Paris"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want judge error", err)
	}
	table, _ := store.Load(ctx, testUser)
	if table.Tracked(card.ID) {
		t.Error("Q-table must not change when judging fails")
	}
}

func TestSubmit_CustomJudge(t *testing.T) {
	var gotQuestion string
	svc, _, card := newTestService(t, JudgeFunc(func(_ context.Context, question, _, _ string) (bool, error) {
		gotQuestion = question
		return true, nil
	}))

	out, err := svc.Submit(context.Background(), testUser, card.ID, "anything")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !out.Correct || gotQuestion != card.Question {
		t.Errorf("out = %+v, question = %q", out, gotQuestion)
	}
}
