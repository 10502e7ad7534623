// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

/*
Package supervisor runs Flashpath's long-lived services under a suture v4
supervisor tree.

# Overview

Services are grouped into three layers so that a crash loop in one layer
does not take the others down:

	"flashpath"
	├── Data ("data-layer")
	│   ├── EmbeddingPool ("embedding-pool")
	│   └── WarmupService ("index-warmup", if index.warm_on_startup)
	├── Messaging ("messaging-layer")
	│   ├── ReembedConsumer (if reembed.mode=queue)
	│   └── JanitorService ("recommend-cache-janitor")
	└── API ("api-layer")
	    └── HTTPServerService

The vector index is rebuilt from the document store by the warm-up service.
Readiness is reported only after the first successful warm-up, so a failing
store keeps /health/ready at 503 while suture retries with backoff.

# Usage

	tree := supervisor.NewTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{})
	tree.Add(supervisor.Data, pool)
	tree.Add(supervisor.Messaging, queue.NewConsumer(cat))
	tree.Add(supervisor.API, services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh

# Failure Handling

Each failure increments a counter that decays over FailureDecay seconds.
Once the counter passes FailureThreshold the supervisor waits
FailureBackoff before the next restart. Services that return
suture.ErrDoNotRestart (the warm-up after success) are removed from the tree.

Services must return promptly when their context is canceled. Anything still
running after ShutdownTimeout is listed by UnstoppedServiceReport.

# What Is NOT Supervised

The document store is an embedded library handle (Badger or SQLite) and is
closed by main after the tree stops. The resilient wrapper around it provides
retry and circuit breaking for individual calls.
*/
package supervisor
