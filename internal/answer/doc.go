// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

/*
Package answer turns a learner's free-text answer into a Q-table update.

A Judge decides whether the given answer matches the flashcard. The verdict
becomes the "correct" or "incorrect" action, which is applied with the fixed
answer reward and also counted against the flashcard's topic.

	svc := answer.NewService(catalog, updater, answer.NormalizedJudge{}, logger)
	out, err := svc.Submit(ctx, userID, flashcardID, "a lightweight thread")

Judges backed by a language model plug in through the same interface.
*/
package answer
