// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

// Package recommend answers the three read-side questions of Flashpath:
// which flashcards a user should review next, which flashcard the user
// struggles with most, and which flashcards are similar to a piece of text.
//
// # Ranking Strategies
//
// A Strategy turns one flashcard's action values into a struggle score;
// lower means the user struggles more. Two are built in:
//
//   - weakest_action: min(correct, incorrect). An empty entry scores 0.
//   - margin: correct - incorrect. Empty entries are skipped.
//
// Recommend ranks with weakest_action and WorstFlashcard with margin by
// default. Both are configurable. Ties keep the order in which the user
// first encountered the flashcards.
//
// # Dangling References
//
// Q-tables reference flashcards by id only. Recommend and FindSimilar drop
// ids that no longer resolve. WorstFlashcard is a point lookup and reports
// models.ErrNotFound instead.
//
// # Caching
//
// Recommend and WorstFlashcard results are cached per user in an LRU with
// TTL. Invalidate drops one user's entries and is registered as a Q-table
// update hook. InvalidateAll is registered as a catalog change hook. A result
// computed while its user was invalidated is discarded rather than cached.
package recommend
