// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

/*
Package docstore provides the minimal document-store contract Flashpath
persists through, plus two embedded backends and a resilience wrapper.

The contract mirrors a document database: records are JSON objects grouped
in named collections and addressed by an "_id" field.

  - FindOne(collection, filter) returns the first matching record or ErrNoDocuments
  - Find(collection, filter, projection) returns every matching record
  - UpdateOne(collection, filter, update, upsert) applies a $set-style update
  - DeleteOne(collection, filter) removes the first matching record

Filters are top-level field equality. An upsert that matches nothing inserts
the filter fields merged with the update fields, assigning a fresh "_id" when
the filter does not pin one.

Backends:

  - BadgerStore: dgraph-io/badger, the default; each record is one key
  - SQLiteStore: modernc.org/sqlite (pure Go), one row per record

Resilient wraps either backend with a sony/gobreaker circuit breaker and
cenkalti/backoff retries. Reads are always retried; writes are retried only
when the filter pins "_id", which makes replaying a $set harmless.
*/
package docstore
