// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/flashpath/config.yaml",
	"/etc/flashpath/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Store: StoreConfig{
			Backend:             BackendBadger,
			Path:                "/data/flashpath",
			RetryMax:            3,
			RetryInitial:        50 * time.Millisecond,
			RetryMaxInterval:    time.Second,
			BreakerTimeout:      30 * time.Second,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
		},
		Embedding: EmbeddingConfig{
			Dimensions: 384,
			Precision:  "float32",
			Workers:    4,
			QueueSize:  64,
			Timeout:    5 * time.Second,
			Burst:      16,
		},
		Index: IndexConfig{
			DefaultTopK:   5,
			WarmOnStartup: true,
		},
		Recommend: RecommendConfig{
			DefaultN:       5,
			WorstThreshold: 1.0,
			RankStrategy:   "weakest_action",
			WorstStrategy:  "margin",
			CacheSize:      10000,
			CacheTTL:       5 * time.Minute,
		},
		Reembed: ReembedConfig{
			Mode:        ReembedSync,
			Topic:       "flashcards_reembed",
			DurableName: "flashpath-reembed",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in that order of precedence, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Store
	"store_backend":               "store.backend",
	"store_path":                  "store.path",
	"store_in_memory":             "store.in_memory",
	"store_sync_writes":           "store.sync_writes",
	"store_retry_max":             "store.retry_max",
	"store_retry_initial":         "store.retry_initial",
	"store_retry_max_interval":    "store.retry_max_interval",
	"store_breaker_timeout":       "store.breaker_timeout",
	"store_breaker_min_requests":  "store.breaker_min_requests",
	"store_breaker_failure_ratio": "store.breaker_failure_ratio",

	// Embedding
	"embedding_dimensions":      "embedding.dimensions",
	"embedding_precision":       "embedding.precision",
	"embedding_seed":            "embedding.seed",
	"embedding_workers":         "embedding.workers",
	"embedding_queue_size":      "embedding.queue_size",
	"embedding_timeout":         "embedding.timeout",
	"embedding_rate_per_second": "embedding.rate_per_second",
	"embedding_burst":           "embedding.burst",

	// Index and recommendation
	"index_default_top_k":       "index.default_top_k",
	"index_warm_on_startup":     "index.warm_on_startup",
	"recommend_default_n":       "recommend.default_n",
	"recommend_worst_threshold": "recommend.worst_threshold",
	"recommend_rank_strategy":   "recommend.rank_strategy",
	"recommend_worst_strategy":  "recommend.worst_strategy",
	"recommend_cache_size":      "recommend.cache_size",
	"recommend_cache_ttl":       "recommend.cache_ttl",

	// Re-embedding
	"reembed_mode":         "reembed.mode",
	"nats_url":             "reembed.nats_url",
	"reembed_topic":        "reembed.topic",
	"reembed_durable_name": "reembed.durable_name",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps HTTP_PORT to server.port and so on. Unmapped
// variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
