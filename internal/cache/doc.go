// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

// Package cache provides a generic LRU cache with per-entry TTL.
//
// Recommendation results are cached in one group per user. A Q-table update
// drops the group with RemoveGroup and advances its generation; results are
// stored with AddIfCurrent against the generation captured before the table
// was read, so a result computed from a superseded table is never cached.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
package cache
