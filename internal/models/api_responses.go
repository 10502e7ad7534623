// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package models

import (
	"time"
)

// APIResponse is the envelope for every HTTP response.
//
// Status is "success" (see Data) or "error" (see Error).
//
//	{
//	  "status": "success",
//	  "data": [{"id": "...", "question": "...", "answer": "..."}],
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 3}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing and cache information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a machine-readable error.
//
// Codes used by the API:
//   - VALIDATION_ERROR: request body or parameters are invalid
//   - MALFORMED_ID: an id path parameter does not parse
//   - INVALID_ACTION: action is not "correct" or "incorrect"
//   - NOT_FOUND: the flashcard does not exist
//   - STORE_UNAVAILABLE: the document store is failing, retry later
//   - EMBEDDING_TIMEOUT: the encoder did not answer in time, retry later
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	IndexedCards  int               `json:"indexed_flashcards"`
	StoreBackend  string            `json:"store_backend"`
	BreakerState  string            `json:"breaker_state,omitempty"`
	Uptime        float64           `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks,omitempty"`
	LastCheckTime time.Time         `json:"last_check"`
}

// QTableUpdateRequest is the body of POST /users/{userID}/qtable.
type QTableUpdateRequest struct {
	FlashcardID string  `json:"flashcard_id" validate:"required"`
	Action      string  `json:"action" validate:"required"`
	Reward      float64 `json:"reward"`
}

// QTableUpdateResponse reports the new value of the updated action.
type QTableUpdateResponse struct {
	FlashcardID string  `json:"flashcard_id"`
	Action      string  `json:"action"`
	Value       float64 `json:"value"`
}

// AnswerRequest is the body of POST /users/{userID}/answers.
type AnswerRequest struct {
	FlashcardID string `json:"flashcard_id" validate:"required"`
	Answer      string `json:"answer"`
}

// SimilarRequest is the body of POST /flashcards/similar.
type SimilarRequest struct {
	Query string `json:"query" validate:"required,max=8000"`
	TopK  int    `json:"top_k" validate:"gte=0,lte=100"`
}

// WorstFlashcardResponse describes the user's most-struggled flashcard.
// Outcome is one of "no_data", "no_struggle" or "struggling"; Topic and
// Flashcard are only set for "struggling".
type WorstFlashcardResponse struct {
	Outcome   string            `json:"outcome"`
	Topic     string            `json:"topic,omitempty"`
	Score     *float64          `json:"score,omitempty"`
	Flashcard *FlashcardSummary `json:"flashcard,omitempty"`
}
