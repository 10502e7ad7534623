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
	"github.com/tomtom215/flashpath/internal/recommend"
)

// userID returns the canonical {userID} path parameter or writes a 400.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := models.ParseID(chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, r, err)
		return "", false
	}
	return id, true
}

// UpdateQTable handles POST /api/v1/users/{userID}/qtable.
func (h *Handler) UpdateQTable(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req models.QTableUpdateRequest
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

	value, err := h.deps.Scores.Update(ctx, uid, req.FlashcardID, models.Action(req.Action), req.Reward)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, models.QTableUpdateResponse{
		FlashcardID: req.FlashcardID,
		Action:      req.Action,
		Value:       value,
	}, start)
}

// SubmitAnswer handles POST /api/v1/users/{userID}/answers.
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req models.AnswerRequest
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

	outcome, err := h.deps.Answers.Submit(ctx, uid, req.FlashcardID, req.Answer)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, outcome, start)
}

// Recommendations handles GET /api/v1/users/{userID}/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	n, err := intParam(r, "n", 0)
	if err != nil || n < 0 || n > 100 {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "n must be an integer between 0 and 100", nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	cards, err := h.deps.Recommender.Recommend(ctx, uid, n)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, cards, start)
}

// WorstFlashcard handles GET /api/v1/users/{userID}/worst.
func (h *Handler) WorstFlashcard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	threshold, err := floatParam(r, "threshold", h.deps.Recommender.DefaultThreshold())
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	result, err := h.deps.Recommender.WorstFlashcard(ctx, uid, threshold)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, worstResponse(result), start)
}

func worstResponse(result recommend.WorstResult) models.WorstFlashcardResponse {
	resp := models.WorstFlashcardResponse{
		Outcome:   string(result.Outcome),
		Topic:     result.Topic,
		Flashcard: result.Flashcard,
	}
	if result.Outcome != recommend.OutcomeNoData {
		score := result.Score
		resp.Score = &score
	}
	return resp
}

// GetPerformance handles GET /api/v1/users/{userID}/performance.
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	perf, err := h.deps.Performance.LoadPerformance(ctx, uid)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, perf, start)
}

// DeletePerformance handles DELETE /api/v1/users/{userID}/performance.
func (h *Handler) DeletePerformance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	deleted, err := h.deps.Scores.Purge(ctx, uid)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"user_id": uid, "deleted": deleted}, start)
}
