// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/flashpath/internal/answer"
	"github.com/tomtom215/flashpath/internal/api"
	"github.com/tomtom215/flashpath/internal/catalog"
	"github.com/tomtom215/flashpath/internal/classes"
	"github.com/tomtom215/flashpath/internal/config"
	"github.com/tomtom215/flashpath/internal/embedding"
	"github.com/tomtom215/flashpath/internal/logging"
	"github.com/tomtom215/flashpath/internal/qlearning"
	"github.com/tomtom215/flashpath/internal/recommend"
	"github.com/tomtom215/flashpath/internal/supervisor"
	"github.com/tomtom215/flashpath/internal/supervisor/services"
	"github.com/tomtom215/flashpath/internal/vectorindex"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// topicNeighbors is how many similar cards vote on a missing topic.
const topicNeighbors = 5

//nolint:gocyclo // sequential wiring
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logging.Info().
		Str("version", version).
		Str("store_backend", cfg.Store.Backend).
		Str("reembed_mode", cfg.Reembed.Mode).
		Int("embedding_dims", cfg.Embedding.Dimensions).
		Msg("Starting Flashpath")

	store, err := openStore(&cfg.Store, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing document store")
		}
	}()

	// Embedding and similarity search
	precision, err := embedding.ParsePrecision(cfg.Embedding.Precision)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid embedding precision")
	}
	encoder := embedding.NewHashingEncoder(cfg.Embedding.Dimensions, cfg.Embedding.Seed)
	pool := embedding.NewPool(encoder, embedding.PoolConfig{
		Workers:       cfg.Embedding.Workers,
		QueueSize:     cfg.Embedding.QueueSize,
		Timeout:       cfg.Embedding.Timeout,
		Precision:     precision,
		RatePerSecond: cfg.Embedding.RatePerSecond,
		Burst:         cfg.Embedding.Burst,
	}, logger)
	index := vectorindex.New(encoder.Dimensions(), logger)

	cat := catalog.New(store, pool, index, logger)

	var queue *catalog.Queue
	if cfg.Reembed.Mode == config.ReembedQueue {
		if cfg.Reembed.UsesNATS() {
			queue, err = catalog.NewNATSQueue(cfg.Reembed.Topic,
				catalog.DefaultNATSConfig(cfg.Reembed.NATSURL, cfg.Reembed.DurableName), logger)
			if err != nil {
				logging.Fatal().Err(err).Str("url", cfg.Reembed.NATSURL).Msg("Failed to connect re-embed queue")
			}
		} else {
			queue = catalog.NewChannelQueue(cfg.Reembed.Topic, logger)
		}
		defer func() {
			if err := queue.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing re-embed queue")
			}
		}()
		cat.SetScheduler(queue)
	}

	// Learning state
	scores := qlearning.NewScoreStore(store)
	updater := qlearning.NewUpdater(scores, logger)

	rec, err := recommend.New(recommend.Config{
		DefaultN:       cfg.Recommend.DefaultN,
		DefaultTopK:    cfg.Index.DefaultTopK,
		WorstThreshold: cfg.Recommend.WorstThreshold,
		RankStrategy:   cfg.Recommend.RankStrategy,
		WorstStrategy:  cfg.Recommend.WorstStrategy,
		CacheSize:      cfg.Recommend.CacheSize,
		CacheTTL:       cfg.Recommend.CacheTTL,
	}, scores, cat, index, pool,
		recommend.NewTopicResolver(recommend.NewNeighborTopicInferrer(index, cat, topicNeighbors), logger),
		logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommender")
	}
	updater.OnUpdate(rec.Invalidate)
	cat.OnChange(rec.InvalidateAll)

	answers := answer.NewService(cat, updater, nil, logger)
	classSvc := classes.NewService(store, cat, scores, logger)
	cat.SetClasses(classSvc)

	handler := api.NewHandler(api.Deps{
		Flashcards:     cat,
		Recommender:    rec,
		Scores:         updater,
		Performance:    scores,
		Answers:        answers,
		Classes:        classSvc,
		IndexSize:      index.Len,
		BreakerState:   store.State,
		StoreBackend:   cfg.Store.Backend,
		Version:        version,
		RequestTimeout: cfg.Server.Timeout,
	})
	router := api.NewRouter(handler, api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree := supervisor.NewTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})

	tree.Add(supervisor.Data, pool)
	if cfg.Index.WarmOnStartup {
		warm := func(ctx context.Context) error {
			n, err := cat.Warm(ctx)
			if err != nil {
				return err
			}
			logging.Info().Int("flashcards", n).Msg("Vector index warmed")
			return nil
		}
		tree.Add(supervisor.Data, services.NewWarmupService("index-warmup", warm, func() { handler.SetReady(true) }, 0, logger))
	} else {
		handler.SetReady(true)
	}

	if queue != nil {
		tree.Add(supervisor.Messaging, queue.NewConsumer(cat))
		logging.Info().Str("topic", cfg.Reembed.Topic).Bool("nats", cfg.Reembed.UsesNATS()).Msg("Re-embed consumer added to supervisor tree")
	}
	tree.Add(supervisor.Messaging, services.NewJanitorService("recommend-cache-janitor", rec.CleanupExpired, time.Minute, logger))

	tree.Add(supervisor.API, services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	// === START ===

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	stop()
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Flashpath stopped")
}
