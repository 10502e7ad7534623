// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

/*
Package metrics registers Flashpath's Prometheus collectors.

Collectors are package-level promauto variables so that any component can
record without plumbing a registry through constructors. The Record* helpers
keep label values consistent across call sites.

Metrics are exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

Families:
  - flashpath_api_*: HTTP latency and throughput (middleware)
  - flashpath_qtable_*: Q-table updates and lock waits
  - flashpath_recommend_*: recommendation queries and cache efficiency
  - flashpath_embedding_*: encoder latency, timeouts and failures
  - flashpath_vector_index_*: index size and search latency
  - flashpath_store_*: document-store operations and retries
  - circuit_breaker_*: breaker state and transitions
  - flashpath_reembed_*: re-embedding queue traffic
*/
package metrics
