// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDocuments is returned by FindOne when nothing matches.
	ErrNoDocuments = errors.New("docstore: no documents in result")

	// ErrUnavailable marks a transient persistence fault. Callers may retry
	// with backoff.
	ErrUnavailable = errors.New("docstore: store unavailable")

	// ErrInvalidUpdate is returned for updates that would change "_id" or
	// carry no fields.
	ErrInvalidUpdate = errors.New("docstore: invalid update")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("docstore: store closed")
)

// unavailable wraps a backend fault so that errors.Is(err, ErrUnavailable)
// holds while the original cause stays reachable through errors.Unwrap chains.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
