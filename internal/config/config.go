// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package config

import (
	"net"
	"strconv"
	"time"
)

// Store backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Re-embedding modes.
const (
	ReembedSync  = "sync"
	ReembedQueue = "queue"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Index     IndexConfig     `koanf:"index"`
	Recommend RecommendConfig `koanf:"recommend"`
	Reembed   ReembedConfig   `koanf:"reembed"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// StoreConfig selects and tunes the document store.
type StoreConfig struct {
	Backend    string `koanf:"backend"`
	Path       string `koanf:"path"`
	InMemory   bool   `koanf:"in_memory"`
	SyncWrites bool   `koanf:"sync_writes"`

	RetryMax         int           `koanf:"retry_max"`
	RetryInitial     time.Duration `koanf:"retry_initial"`
	RetryMaxInterval time.Duration `koanf:"retry_max_interval"`

	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests  int           `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
}

// EmbeddingConfig configures the encoder and its worker pool.
type EmbeddingConfig struct {
	Dimensions    int           `koanf:"dimensions"`
	Precision     string        `koanf:"precision"`
	Seed          string        `koanf:"seed"`
	Workers       int           `koanf:"workers"`
	QueueSize     int           `koanf:"queue_size"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	Burst         int           `koanf:"burst"`
}

// IndexConfig configures similarity search.
type IndexConfig struct {
	DefaultTopK   int  `koanf:"default_top_k"`
	WarmOnStartup bool `koanf:"warm_on_startup"`
}

// RecommendConfig configures recommendation queries.
type RecommendConfig struct {
	DefaultN       int           `koanf:"default_n"`
	WorstThreshold float64       `koanf:"worst_threshold"`
	RankStrategy   string        `koanf:"rank_strategy"`
	WorstStrategy  string        `koanf:"worst_strategy"`
	CacheSize      int           `koanf:"cache_size"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
}

// ReembedConfig controls how content edits refresh embeddings.
type ReembedConfig struct {
	Mode        string `koanf:"mode"`
	NATSURL     string `koanf:"nats_url"`
	Topic       string `koanf:"topic"`
	DurableName string `koanf:"durable_name"`
}

// UsesNATS reports whether re-embed messages travel through NATS.
func (r ReembedConfig) UsesNATS() bool {
	return r.Mode == ReembedQueue && r.NATSURL != ""
}

// SecurityConfig holds CORS and rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
