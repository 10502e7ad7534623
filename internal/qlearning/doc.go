// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

// Package qlearning maintains each user's Q-table: the learned value of the
// "correct" and "incorrect" actions per flashcard.
//
// ScoreStore persists tables in the "performance" collection, one record per
// user keyed by user id. Updater applies the temporal-difference rule
//
//	value = old + Alpha * (reward + Gamma * max(entry) - old)
//
// inside a per-user critical section, so two answer events for the same user
// never race on the load/modify/save sequence. Different users never share a
// lock.
//
// The updater does not check flashcard ids against the catalog. An id that
// parses is accepted even if no such flashcard exists.
package qlearning
