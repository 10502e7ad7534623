// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

/*
Package config loads and validates Flashpath configuration.

# Configuration Sources

Load layers three koanf sources, later ones winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/flashpath/config.yaml
 3. Environment variables, mapped through an explicit table so that
    unrelated variables never leak into the configuration

# Environment Variables

Server:
  - HTTP_HOST (default 0.0.0.0), HTTP_PORT (default 8080)
  - HTTP_TIMEOUT (default 30s), SHUTDOWN_TIMEOUT (default 15s)
  - ENVIRONMENT: development or production

Store:
  - STORE_BACKEND: badger (default) or sqlite
  - STORE_PATH: data directory (badger) or database file (sqlite)
  - STORE_IN_MEMORY: badger only, keep data in RAM
  - STORE_RETRY_MAX, STORE_RETRY_INITIAL, STORE_RETRY_MAX_INTERVAL
  - STORE_BREAKER_TIMEOUT, STORE_BREAKER_MIN_REQUESTS, STORE_BREAKER_FAILURE_RATIO

Embedding:
  - EMBEDDING_DIMENSIONS (default 384), EMBEDDING_PRECISION (float32)
  - EMBEDDING_WORKERS, EMBEDDING_QUEUE_SIZE, EMBEDDING_TIMEOUT (5s)
  - EMBEDDING_RATE_PER_SECOND, EMBEDDING_BURST

Recommendation:
  - INDEX_DEFAULT_TOP_K (5), RECOMMEND_DEFAULT_N (5)
  - RECOMMEND_WORST_THRESHOLD (1.0)
  - RECOMMEND_RANK_STRATEGY, RECOMMEND_WORST_STRATEGY: weakest_action or margin
  - RECOMMEND_CACHE_SIZE, RECOMMEND_CACHE_TTL

Re-embedding:
  - REEMBED_MODE: sync (default) or queue
  - NATS_URL: when set in queue mode, messages go through NATS JetStream
  - REEMBED_TOPIC (default flashcards_reembed)

Security and logging:
  - CORS_ORIGINS (comma separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

The Q-learning constants (learning rate and discount factor) are not
configuration; they are compile-time constants in package qlearning.
*/
package config
