// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package classes

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/catalog"
	"github.com/tomtom215/flashpath/internal/docstore"
	"github.com/tomtom215/flashpath/internal/embedding"
	"github.com/tomtom215/flashpath/internal/models"
	"github.com/tomtom215/flashpath/internal/qlearning"
	"github.com/tomtom215/flashpath/internal/validation"
	"github.com/tomtom215/flashpath/internal/vectorindex"
)

const testDims = 32

type encoderEmbedder struct {
	enc *embedding.Encoder
}

func (e encoderEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	return e.enc.Encode(text, embedding.Float64)
}

type fixture struct {
	classes *Service
	catalog *catalog.Catalog
	updater *qlearning.Updater
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := docstore.OpenBadger(docstore.BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	emb := encoderEmbedder{enc: embedding.NewHashingEncoder(testDims, "classes-test")}
	cat := catalog.New(db, emb, vectorindex.New(testDims, zerolog.Nop()), zerolog.Nop())
	scores := qlearning.NewScoreStore(db)
	svc := NewService(db, cat, scores, zerolog.Nop())
	cat.SetClasses(svc)

	return &fixture{
		classes: svc,
		catalog: cat,
		updater: qlearning.NewUpdater(scores, zerolog.Nop()),
	}
}

func (f *fixture) card(t *testing.T, question, classID string) *models.Flashcard {
	t.Helper()
	card, err := f.catalog.Create(context.Background(), models.FlashcardDraft{
		Question: question, Answer: "a", Topic: "t", Difficulty: "easy", ClassID: classID,
	})
	if err != nil {
		t.Fatalf("create flashcard %q: %v", question, err)
	}
	return card
}

func TestCreateGetList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.classes.Create(ctx, models.ClassDraft{Name: "  CSC111 "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Name != "CSC111" {
		t.Errorf("name = %q, want trimmed", first.Name)
	}
	second, _ := f.classes.Create(ctx, models.ClassDraft{Name: "MATH101"})

	got, err := f.classes.Get(ctx, first.ID)
	if err != nil || got.Name != "CSC111" {
		t.Errorf("Get = %+v, %v", got, err)
	}

	list, err := f.classes.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("List = %+v, want creation order", list)
	}
}

func TestCreate_Invalid(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"", "   "} {
		_, err := f.classes.Create(context.Background(), models.ClassDraft{Name: name})
		var verr *validation.RequestValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Create(%q) err = %v, want RequestValidationError", name, err)
		}
	}
}

func TestGet_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.classes.Get(ctx, models.NewID())
	if !errors.Is(err, models.ErrClassNotFound) || !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing: err = %v", err)
	}
	if _, err := f.classes.Get(ctx, "CSC111"); !errors.Is(err, models.ErrMalformedID) {
		t.Errorf("malformed: err = %v", err)
	}

	ok, err := f.classes.Exists(ctx, models.NewID())
	if ok || err != nil {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
}

func TestFlashcardClassTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	class, _ := f.classes.Create(ctx, models.ClassDraft{Name: "CSC111"})
	tagged := f.card(t, "Tagged?", class.ID)
	f.card(t, "Loose?", "")

	if tagged.ClassID != class.ID {
		t.Errorf("ClassID = %q", tagged.ClassID)
	}
	cards, err := f.catalog.List(ctx, catalog.ListFilter{ClassID: class.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != tagged.ID {
		t.Errorf("class listing = %+v", cards)
	}

	_, err = f.catalog.Create(ctx, models.FlashcardDraft{
		Question: "Q?", Topic: "t", Difficulty: "easy", ClassID: models.NewID(),
	})
	if !errors.Is(err, models.ErrUnknownClass) {
		t.Errorf("unknown class: err = %v", err)
	}
}

func TestDelete_DetachesFlashcards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	class, _ := f.classes.Create(ctx, models.ClassDraft{Name: "CSC111"})
	card := f.card(t, "Tagged?", class.ID)

	if err := f.classes.Delete(ctx, class.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	stored, err := f.catalog.Get(ctx, card.ID)
	if err != nil {
		t.Fatalf("flashcard should survive its class: %v", err)
	}
	if stored.ClassID != "" {
		t.Errorf("ClassID after delete = %q, want empty", stored.ClassID)
	}
	if err := f.classes.Delete(ctx, class.ID); !errors.Is(err, models.ErrClassNotFound) {
		t.Errorf("second Delete: err = %v", err)
	}
}

func TestProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := models.NewID()

	class, _ := f.classes.Create(ctx, models.ClassDraft{Name: "CSC111"})
	known := f.card(t, "Known?", class.ID)
	missed := f.card(t, "Missed?", class.ID)
	f.card(t, "Unseen?", class.ID)
	outside := f.card(t, "Elsewhere?", "")

	answers := []struct {
		card   string
		action models.Action
	}{
		{known.ID, models.ActionCorrect},
		{missed.ID, models.ActionIncorrect},
		{outside.ID, models.ActionCorrect},
	}
	for _, a := range answers {
		if _, err := f.updater.Update(ctx, user, a.card, a.action, qlearning.AnswerReward); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	got, err := f.classes.Progress(ctx, class.ID, user)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	want := models.ClassProgress{
		ClassID:       class.ID,
		ClassName:     "CSC111",
		Flashcards:    3,
		Answered:      2,
		Mastered:      1,
		Understanding: 33.3,
	}
	if *got != want {
		t.Errorf("Progress = %+v, want %+v", *got, want)
	}
}

func TestProgress_EmptyAndErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, _ := f.classes.Create(ctx, models.ClassDraft{Name: "Empty"})
	got, err := f.classes.Progress(ctx, empty.ID, models.NewID())
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if got.Flashcards != 0 || got.Understanding != 0 {
		t.Errorf("empty class progress = %+v", got)
	}

	tests := []struct {
		name    string
		classID string
		userID  string
		want    error
	}{
		{"missing class", models.NewID(), models.NewID(), models.ErrClassNotFound},
		{"malformed class", "nope", models.NewID(), models.ErrMalformedID},
		{"malformed user", empty.ID, "nope", models.ErrMalformedID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.classes.Progress(ctx, tt.classID, tt.userID); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
