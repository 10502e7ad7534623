// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

/*
Package models defines the data structures shared across Flashpath.

Domain models:

  - Flashcard: stored card content plus its derived embedding
  - FlashcardSummary / SimilarFlashcard: what recommendation and similarity
    queries hand back to callers
  - FlashcardDraft: untrusted card content awaiting validation
  - QTable / ActionValues / Action: per-user reinforcement-learning scores
  - TopicStats: per-topic correct/incorrect counters

API models:

  - APIResponse, APIError, Metadata: the JSON envelope used by every endpoint

Sentinel errors (ErrNotFound, ErrInvalidAction, ErrMalformedID) live here so
that every layer can test for them with errors.Is without importing each other.
*/
package models
