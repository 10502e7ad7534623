// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/flashpath/internal/catalog"
	"github.com/tomtom215/flashpath/internal/models"
)

// flashcardView is the client-facing flashcard; the embedding stays
// internal.
type flashcardView struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Topic      string    `json:"topic"`
	Difficulty string    `json:"difficulty"`
	ClassID    string    `json:"class_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toView(card *models.Flashcard) flashcardView {
	return flashcardView{
		ID:         card.ID,
		Question:   card.Question,
		Answer:     card.Answer,
		Topic:      card.Topic,
		Difficulty: card.Difficulty,
		ClassID:    card.ClassID,
		CreatedAt:  card.CreatedAt,
		UpdatedAt:  card.UpdatedAt,
	}
}

// ListFlashcards handles GET /api/v1/flashcards.
func (h *Handler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	cards, err := h.deps.Flashcards.List(ctx, catalog.ListFilter{
		Topic:      strings.TrimSpace(r.URL.Query().Get("topic")),
		Difficulty: strings.TrimSpace(r.URL.Query().Get("difficulty")),
		ClassID:    strings.TrimSpace(r.URL.Query().Get("class_id")),
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	views := make([]flashcardView, len(cards))
	for i := range cards {
		views[i] = toView(&cards[i])
	}
	respondSuccess(w, http.StatusOK, views, start)
}

// GetFlashcard handles GET /api/v1/flashcards/{flashcardID}.
func (h *Handler) GetFlashcard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	card, err := h.deps.Flashcards.Get(ctx, chi.URLParam(r, "flashcardID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, toView(card), start)
}

// CreateFlashcard handles POST /api/v1/flashcards.
func (h *Handler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var draft models.FlashcardDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	card, err := h.deps.Flashcards.Create(ctx, draft)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, toView(card), start)
}

// UpdateFlashcard handles PUT /api/v1/flashcards/{flashcardID}. Omitted
// fields keep their value.
func (h *Handler) UpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var patch models.FlashcardPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	card, err := h.deps.Flashcards.UpdateContent(ctx, chi.URLParam(r, "flashcardID"), patch)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, toView(card), start)
}

// DeleteFlashcard handles DELETE /api/v1/flashcards/{flashcardID}. Q-table
// entries that point at the card are left in place.
func (h *Handler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	id := chi.URLParam(r, "flashcardID")
	if err := h.deps.Flashcards.Delete(ctx, id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true}, start)
}

// ImportFlashcards handles POST /api/v1/flashcards/import. The body is the
// raw language-model output, a JSON array optionally wrapped in a Markdown
// code fence.
func (h *Handler) ImportFlashcards(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "Import body too large", nil)
			return
		}
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to read request body", err)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	report, err := h.deps.Flashcards.ImportGenerated(ctx, raw)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, report, start)
}

// FindSimilar handles POST /api/v1/flashcards/similar.
func (h *Handler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SimilarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, apiErr)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	results, err := h.deps.Recommender.FindSimilar(ctx, req.Query, req.TopK)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, results, start)
}
