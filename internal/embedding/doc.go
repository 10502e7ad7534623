// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

/*
Package embedding turns flashcard text into fixed-length vectors.

Three layers:

  - Model: the encoder capability, Encode(text, precision) -> vector.
    HashingModel is the built-in implementation: a signed feature-hashing
    encoder over word unigrams, word bigrams and character trigrams, using
    xxhash. It is deterministic, needs no network, and produces unit-length
    vectors suitable for cosine similarity.
  - Encoder: loads a Model lazily, exactly once, and recovers encoder panics
    into ErrEmbedding.
  - Pool: a supervised worker pool in front of an Encoder. Callers get a
    cancellable, time-boxed Embed; a hung encoder surfaces as ErrTimeout
    instead of wedging the request. Throughput is bounded by a token bucket.

Empty or whitespace-only text embeds to a zero vector of the configured
dimension; it is never an error.
*/
package embedding
