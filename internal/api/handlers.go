// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package api

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tomtom215/flashpath/internal/answer"
	"github.com/tomtom215/flashpath/internal/catalog"
	"github.com/tomtom215/flashpath/internal/models"
	"github.com/tomtom215/flashpath/internal/recommend"
)

// Flashcards is the catalog as seen by the handlers.
type Flashcards interface {
	Get(ctx context.Context, id string) (*models.Flashcard, error)
	List(ctx context.Context, f catalog.ListFilter) ([]models.Flashcard, error)
	Create(ctx context.Context, draft models.FlashcardDraft) (*models.Flashcard, error)
	UpdateContent(ctx context.Context, id string, patch models.FlashcardPatch) (*models.Flashcard, error)
	Delete(ctx context.Context, id string) error
	ImportGenerated(ctx context.Context, raw []byte) (*models.ImportReport, error)
}

// Recommendations answers recommendation and similarity queries.
type Recommendations interface {
	Recommend(ctx context.Context, userID string, n int) ([]models.FlashcardSummary, error)
	WorstFlashcard(ctx context.Context, userID string, threshold float64) (recommend.WorstResult, error)
	FindSimilar(ctx context.Context, query string, topK int) ([]models.SimilarFlashcard, error)
	DefaultThreshold() float64
}

// Scores writes and reads learner performance.
type Scores interface {
	Update(ctx context.Context, userID, flashcardID string, action models.Action, reward float64) (float64, error)
	Purge(ctx context.Context, userID string) (bool, error)
}

// PerformanceReader loads the full per-user record.
type PerformanceReader interface {
	LoadPerformance(ctx context.Context, userID string) (*models.Performance, error)
}

// Answers judges submitted answers.
type Answers interface {
	Submit(ctx context.Context, userID, flashcardID, answerText string) (answer.Outcome, error)
}

// Classes manages classes and per-class progress.
type Classes interface {
	Create(ctx context.Context, draft models.ClassDraft) (*models.Class, error)
	Get(ctx context.Context, id string) (*models.Class, error)
	List(ctx context.Context) ([]models.Class, error)
	Delete(ctx context.Context, id string) error
	Progress(ctx context.Context, classID, userID string) (*models.ClassProgress, error)
}

// Deps are the services a Handler serves.
type Deps struct {
	Flashcards  Flashcards
	Recommender Recommendations
	Scores      Scores
	Performance PerformanceReader
	Answers     Answers
	Classes     Classes

	// IndexSize reports the number of indexed flashcards.
	IndexSize func() int
	// BreakerState reports the store circuit breaker state.
	BreakerState func() string

	StoreBackend   string
	Version        string
	RequestTimeout time.Duration
}

// Handler holds the HTTP handlers.
type Handler struct {
	deps      Deps
	startTime time.Time
	ready     atomic.Bool
}

// NewHandler creates a Handler. It reports not ready until SetReady(true).
func NewHandler(deps Deps) *Handler {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	return &Handler{deps: deps, startTime: time.Now()}
}

// SetReady sets what /health/ready reports.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.deps.RequestTimeout)
}
