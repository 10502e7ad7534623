// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

// Package catalog owns flashcard records and keeps the vector index in step
// with them.
//
// Every flashcard is embedded from "{question} {answer}" when it is created.
// The embedding is only recomputed when the question or answer changes:
// immediately in sync mode, or through a re-embed message in queue mode (see
// Queue). Deleting a flashcard removes its index entry; Q-table entries that
// still reference it are left alone and skipped by readers.
//
// Generated flashcards (a JSON array produced by a language model) are
// imported through ImportGenerated. Entries that fail to decode or validate
// are written to the quarantine collection instead of the catalog.
//
// A flashcard may carry a class id. Tags are checked against the
// ClassRegistry installed with SetClasses, and DetachClass clears them when a
// class is deleted.
package catalog
