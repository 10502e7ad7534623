// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrClassNotFound is returned by class lookups. It matches ErrNotFound.
	ErrClassNotFound = fmt.Errorf("class %w", ErrNotFound)

	// ErrUnknownClass is returned when a flashcard names a class that does
	// not exist.
	ErrUnknownClass = errors.New("unknown class")
)

// Class groups flashcards for a course.
type Class struct {
	ID        string    `json:"_id"`
	Name      string    `json:"class_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ClassDraft is a class as submitted by a client.
type ClassDraft struct {
	Name string `json:"class_name" validate:"required,notblank,max=200"`
}

// Normalize trims the name.
func (d *ClassDraft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
}

// ClassProgress is one user's understanding of a class. A flashcard counts
// as mastered when its learned correct value exceeds its incorrect value;
// Understanding is the mastered share of the class, in percent.
type ClassProgress struct {
	ClassID       string  `json:"class_id"`
	ClassName     string  `json:"class_name"`
	Flashcards    int     `json:"flashcards"`
	Answered      int     `json:"answered"`
	Mastered      int     `json:"mastered"`
	Understanding float64 `json:"understanding"`
}

// Mastered reports whether v favours the correct action.
func (v ActionValues) Mastered() bool {
	return v[ActionCorrect] > v[ActionIncorrect]
}
