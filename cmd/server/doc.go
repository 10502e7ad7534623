// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

/*
Package main is the entry point for the Flashpath server.

Flashpath recommends flashcards to learners. Every judged answer updates a
per-user Q-table, recommendations surface the cards a user is weakest on,
and a vector index over card embeddings powers similarity search.

# Application Architecture

	RootSupervisor ("flashpath")
	├── DataSupervisor ("data-layer")
	│   ├── embedding-pool
	│   └── index-warmup (one shot, retried until it succeeds)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── reembed-consumer (reembed.mode=queue)
	│   └── recommend-cache-janitor
	└── APISupervisor ("api-layer")
	    └── http-server

Initialization order:

 1. Configuration (koanf: defaults, config.yaml, environment)
 2. Document store (Badger or SQLite) behind retries and a circuit breaker
 3. Embedding encoder, worker pool and vector index
 4. Flashcard catalog and, in queue mode, the re-embed queue
 5. Q-learning score store and updater
 6. Recommender and answer service
 7. HTTP router and the supervisor tree

# Configuration

Common environment variables:

	HTTP_PORT=8080
	STORE_BACKEND=badger        # or sqlite
	STORE_PATH=/data/flashpath
	EMBEDDING_DIMENSIONS=384
	REEMBED_MODE=sync           # or queue
	NATS_URL=nats://nats:4222   # queue mode over JetStream
	LOG_LEVEL=info
	LOG_FORMAT=json

A config.yaml in the working directory (or CONFIG_PATH) is loaded before the
environment.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests for server.shutdown_timeout, then the re-embed queue and the store
are closed.
*/
package main
