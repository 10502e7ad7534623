// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package classes

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/catalog"
	"github.com/tomtom215/flashpath/internal/docstore"
	"github.com/tomtom215/flashpath/internal/models"
	"github.com/tomtom215/flashpath/internal/validation"
)

// Collection holds class records.
const Collection = "classes"

const (
	fieldName    = "class_name"
	fieldCreated = "created_at"
)

// Cards lists and detaches the flashcards of a class.
type Cards interface {
	List(ctx context.Context, f catalog.ListFilter) ([]models.Flashcard, error)
	DetachClass(ctx context.Context, classID string) (int, error)
}

// PerformanceLoader reads a user's learning record.
type PerformanceLoader interface {
	LoadPerformance(ctx context.Context, userID string) (*models.Performance, error)
}

// Service manages classes.
type Service struct {
	store  docstore.Store
	cards  Cards
	scores PerformanceLoader
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a Service.
func NewService(store docstore.Store, cards Cards, scores PerformanceLoader, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		cards:  cards,
		scores: scores,
		logger: logger.With().Str("component", "classes").Logger(),
		now:    time.Now,
	}
}

// Create validates and stores a class.
func (s *Service) Create(ctx context.Context, draft models.ClassDraft) (*models.Class, error) {
	draft.Normalize()
	if verr := validation.ValidateStruct(&draft); verr != nil {
		return nil, verr
	}

	class := &models.Class{
		ID:        models.NewID(),
		Name:      draft.Name,
		CreatedAt: s.now().UTC(),
	}
	_, err := s.store.UpdateOne(ctx, Collection, docstore.ByID(class.ID), docstore.Update{Set: map[string]any{
		fieldName:    class.Name,
		fieldCreated: class.CreatedAt,
	}}, true)
	if err != nil {
		return nil, fmt.Errorf("store class: %w", err)
	}

	s.logger.Info().Str("class_id", class.ID).Str("class_name", class.Name).Msg("Class created")
	return class, nil
}

// Get returns one class.
func (s *Service) Get(ctx context.Context, id string) (*models.Class, error) {
	id, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.FindOne(ctx, Collection, docstore.ByID(id))
	if errors.Is(err, docstore.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", id, models.ErrClassNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get class %s: %w", id, err)
	}

	var class models.Class
	if err := doc.Decode(&class); err != nil {
		return nil, fmt.Errorf("decode class %s: %w", id, err)
	}
	return &class, nil
}

// Exists reports whether class id is stored.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// List returns every class, oldest first.
func (s *Service) List(ctx context.Context) ([]models.Class, error) {
	docs, err := s.store.Find(ctx, Collection, docstore.Filter{}, docstore.Projection{fieldName, fieldCreated})
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	out := make([]models.Class, 0, len(docs))
	for _, doc := range docs {
		var class models.Class
		if err := doc.Decode(&class); err != nil {
			s.logger.Warn().Err(err).Str("class_id", doc.ID()).Msg("Skipping undecodable class")
			continue
		}
		out = append(out, class)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes class id and detaches its flashcards.
func (s *Service) Delete(ctx context.Context, id string) error {
	id, err := models.ParseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.store.DeleteOne(ctx, Collection, docstore.ByID(id))
	if err != nil {
		return fmt.Errorf("delete class %s: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("%s: %w", id, models.ErrClassNotFound)
	}

	detached, err := s.cards.DetachClass(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("class_id", id).Int("detached", detached).Msg("Failed to detach flashcards from deleted class")
		return fmt.Errorf("detach flashcards of class %s: %w", id, err)
	}

	s.logger.Info().Str("class_id", id).Int("detached", detached).Msg("Class deleted")
	return nil
}

// Progress reports userID's understanding of class classID.
func (s *Service) Progress(ctx context.Context, classID, userID string) (*models.ClassProgress, error) {
	userID, err := models.ParseID(userID)
	if err != nil {
		return nil, err
	}
	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}

	cards, err := s.cards.List(ctx, catalog.ListFilter{ClassID: class.ID})
	if err != nil {
		return nil, err
	}
	perf, err := s.scores.LoadPerformance(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &models.ClassProgress{
		ClassID:    class.ID,
		ClassName:  class.Name,
		Flashcards: len(cards),
	}
	for i := range cards {
		values, ok := perf.QTable[cards[i].ID]
		if !ok {
			continue
		}
		out.Answered++
		if values.Mastered() {
			out.Mastered++
		}
	}
	if out.Flashcards > 0 {
		out.Understanding = math.Round(1000*float64(out.Mastered)/float64(out.Flashcards)) / 10
	}
	return out, nil
}
