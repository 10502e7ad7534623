// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

/*
Package services adapts Flashpath components to suture.Service.

  - HTTPServerService: runs an *http.Server and shuts it down gracefully
  - WarmupService: runs a one-shot startup task, retrying until it succeeds
  - JanitorService: runs a periodic maintenance function, such as evicting
    expired recommendation cache entries

Components that already implement Serve(ctx) error, like embedding.Pool and
the catalog re-embed consumer, are added to the tree directly.
*/
package services
