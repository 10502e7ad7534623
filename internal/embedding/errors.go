// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package embedding

import "errors"

var (
	// ErrEmbedding is an encoder-internal fault.
	ErrEmbedding = errors.New("embedding failed")

	// ErrTimeout means the encoder did not answer within the configured
	// deadline.
	ErrTimeout = errors.New("embedding timed out")
)

// IsRetryable reports whether an embedding error may succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrEmbedding)
}
