// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package models

import (
	"strings"
	"time"
)

// Flashcard is a stored card. Embedding is derived from Question and Answer
// and is only rewritten when one of them changes.
type Flashcard struct {
	ID         string    `json:"_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer,omitempty"`
	Topic      string    `json:"topic,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"`
	ClassID    string    `json:"class_id,omitempty"`
	Embedding  []float64 `json:"embedding,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EmbeddingText is the text the embedding is computed from.
func (f *Flashcard) EmbeddingText() string {
	return EmbeddingText(f.Question, f.Answer)
}

// EmbeddingText joins question and answer the way stored embeddings expect.
func EmbeddingText(question, answer string) string {
	return strings.TrimSpace(question + " " + answer)
}

// Summary returns the caller-facing view of the card.
func (f *Flashcard) Summary() FlashcardSummary {
	return FlashcardSummary{ID: f.ID, Question: f.Question, Answer: f.Answer}
}

// FlashcardSummary is returned by recommendation queries.
type FlashcardSummary struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SimilarFlashcard is a FlashcardSummary with its similarity to a query.
type SimilarFlashcard struct {
	ID       string  `json:"id"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// FlashcardDraft is card content from an untrusted source (API clients,
// language-model output). It must pass validation before it is embedded or
// stored.
type FlashcardDraft struct {
	Question   string `json:"question" validate:"required,notblank,max=4000"`
	Answer     string `json:"answer" validate:"max=8000"`
	Topic      string `json:"topic" validate:"required,notblank,max=200"`
	Difficulty string `json:"difficulty" validate:"required,notblank,max=50"`
	ClassID    string `json:"class_id,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (d *FlashcardDraft) Normalize() {
	d.Question = strings.TrimSpace(d.Question)
	d.Answer = strings.TrimSpace(d.Answer)
	d.Topic = strings.TrimSpace(d.Topic)
	d.Difficulty = strings.TrimSpace(d.Difficulty)
	d.ClassID = strings.TrimSpace(d.ClassID)
}

// FlashcardPatch carries a partial update. Nil fields are left untouched. An
// empty ClassID detaches the card from its class.
type FlashcardPatch struct {
	Question   *string `json:"question,omitempty" validate:"omitempty,notblank,max=4000"`
	Answer     *string `json:"answer,omitempty" validate:"omitempty,max=8000"`
	Topic      *string `json:"topic,omitempty" validate:"omitempty,notblank,max=200"`
	Difficulty *string `json:"difficulty,omitempty" validate:"omitempty,notblank,max=50"`
	ClassID    *string `json:"class_id,omitempty"`
}

// ChangesContent reports whether the patch touches text the embedding
// depends on.
func (p *FlashcardPatch) ChangesContent(current *Flashcard) bool {
	if p.Question != nil && *p.Question != current.Question {
		return true
	}
	return p.Answer != nil && *p.Answer != current.Answer
}

// Empty reports whether the patch changes nothing.
func (p *FlashcardPatch) Empty() bool {
	return p.Question == nil && p.Answer == nil && p.Topic == nil && p.Difficulty == nil && p.ClassID == nil
}

// QuarantinedDraft records a generated entry that failed validation.
type QuarantinedDraft struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportReport summarizes an import of generated flashcards.
type ImportReport struct {
	Added       int                `json:"flashcards_added"`
	IDs         []string           `json:"ids"`
	Quarantined []QuarantinedDraft `json:"quarantined"`
}
