// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by point lookups for an id that does not exist.
	// A valid id with no accumulated data is not an ErrNotFound.
	ErrNotFound = errors.New("not found")

	// ErrInvalidAction is returned for an action outside {correct, incorrect}.
	ErrInvalidAction = errors.New("invalid action")

	// ErrMalformedID is returned for an id string that does not parse.
	ErrMalformedID = errors.New("malformed id")
)

// ParseID validates an opaque identifier. Identifiers are UUIDs in canonical
// form; the canonical string is returned.
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedID, raw)
	}
	return id.String(), nil
}

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}
