// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

/*
Package middleware provides HTTP middleware shared by the API router.

Components:

  - RequestID: reads or generates X-Request-ID and stores it, together with a
    fresh correlation ID, in the request context for logging.Ctx
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled by
    the matched chi route pattern so ids in paths do not create new series

Both are func(http.Handler) http.Handler and plug into chi's r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
