// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

// Package classes stores course classes and reports how well a user knows
// one.
//
// A class is a name. Flashcards join a class through their class_id tag,
// which the catalog checks against this package. Deleting a class detaches
// its flashcards; they stay in the catalog.
//
// Progress reads the user's Q-table once and counts, over the class's
// flashcards, those answered and those whose correct value exceeds the
// incorrect one. Understanding is the mastered share in percent, rounded to
// one decimal. A class with no flashcards reports 0.
package classes
