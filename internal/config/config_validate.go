// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/flashpath/internal/logging"
)

var (
	validRankStrategies = map[string]bool{"weakest_action": true, "margin": true}
	validLogFormats     = map[string]bool{"json": true, "console": true}
)

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateReembed(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendBadger:
		if c.Store.Path == "" && !c.Store.InMemory {
			return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
		}
	case BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("STORE_PATH is required for the sqlite backend")
		}
		if c.Store.InMemory {
			return fmt.Errorf("STORE_IN_MEMORY is only supported by the badger backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendBadger, BackendSQLite, c.Store.Backend)
	}
	if c.Store.RetryMax < 0 {
		return fmt.Errorf("STORE_RETRY_MAX must not be negative")
	}
	if c.Store.RetryInitial <= 0 || c.Store.RetryMaxInterval < c.Store.RetryInitial {
		return fmt.Errorf("STORE_RETRY_INITIAL must be positive and not exceed STORE_RETRY_MAX_INTERVAL")
	}
	if c.Store.BreakerFailureRatio <= 0 || c.Store.BreakerFailureRatio > 1 {
		return fmt.Errorf("STORE_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.Store.BreakerFailureRatio)
	}
	if c.Store.BreakerMinRequests < 1 {
		return fmt.Errorf("STORE_BREAKER_MIN_REQUESTS must be at least 1")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	e := c.Embedding
	if e.Dimensions < 1 || e.Dimensions > 8192 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be between 1 and 8192, got %d", e.Dimensions)
	}
	if e.Precision != "float32" && e.Precision != "float64" {
		return fmt.Errorf("EMBEDDING_PRECISION must be float32 or float64, got %q", e.Precision)
	}
	if e.Workers < 1 {
		return fmt.Errorf("EMBEDDING_WORKERS must be at least 1")
	}
	if e.QueueSize < 0 {
		return fmt.Errorf("EMBEDDING_QUEUE_SIZE must not be negative")
	}
	if e.Timeout <= 0 {
		return fmt.Errorf("EMBEDDING_TIMEOUT must be positive")
	}
	if e.RatePerSecond < 0 {
		return fmt.Errorf("EMBEDDING_RATE_PER_SECOND must not be negative")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Index.DefaultTopK < 1 {
		return fmt.Errorf("INDEX_DEFAULT_TOP_K must be at least 1")
	}
	if c.Recommend.DefaultN < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_N must be at least 1")
	}
	if !validRankStrategies[c.Recommend.RankStrategy] {
		return fmt.Errorf("RECOMMEND_RANK_STRATEGY must be weakest_action or margin, got %q", c.Recommend.RankStrategy)
	}
	if !validRankStrategies[c.Recommend.WorstStrategy] {
		return fmt.Errorf("RECOMMEND_WORST_STRATEGY must be weakest_action or margin, got %q", c.Recommend.WorstStrategy)
	}
	if c.Recommend.CacheSize < 0 {
		return fmt.Errorf("RECOMMEND_CACHE_SIZE must not be negative")
	}
	return nil
}

func (c *Config) validateReembed() error {
	switch c.Reembed.Mode {
	case ReembedSync:
		return nil
	case ReembedQueue:
		if c.Reembed.Topic == "" {
			return fmt.Errorf("REEMBED_TOPIC is required when REEMBED_MODE=queue")
		}
		if c.Reembed.NATSURL == "" {
			return nil
		}
		if !strings.HasPrefix(c.Reembed.NATSURL, "nats://") && !strings.HasPrefix(c.Reembed.NATSURL, "tls://") {
			return fmt.Errorf("NATS_URL must start with nats:// or tls://, got %q", c.Reembed.NATSURL)
		}
		// JetStream names the stream after the topic.
		if strings.ContainsAny(c.Reembed.Topic, ".*> ") {
			return fmt.Errorf("REEMBED_TOPIC %q is not a valid JetStream stream name", c.Reembed.Topic)
		}
		return nil
	default:
		return fmt.Errorf("REEMBED_MODE must be sync or queue, got %q", c.Reembed.Mode)
	}
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a known level", c.Logging.Level)
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
