// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/flashpath/internal/models"
)

// ListClasses handles GET /api/v1/classes.
func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	classes, err := h.deps.Classes.List(ctx)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, classes, start)
}

// CreateClass handles POST /api/v1/classes.
func (h *Handler) CreateClass(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var draft models.ClassDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	class, err := h.deps.Classes.Create(ctx, draft)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, class, start)
}

// GetClass handles GET /api/v1/classes/{classID}.
func (h *Handler) GetClass(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	class, err := h.deps.Classes.Get(ctx, chi.URLParam(r, "classID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, class, start)
}

// DeleteClass handles DELETE /api/v1/classes/{classID}. The class's
// flashcards are kept and lose their class tag.
func (h *Handler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	id := chi.URLParam(r, "classID")
	if err := h.deps.Classes.Delete(ctx, id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true}, start)
}

// ClassProgress handles GET /api/v1/users/{userID}/classes/{classID}/progress.
func (h *Handler) ClassProgress(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	progress, err := h.deps.Classes.Progress(ctx, chi.URLParam(r, "classID"), uid)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, progress, start)
}
