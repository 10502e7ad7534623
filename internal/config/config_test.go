// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// isolate points CONFIG_PATH at a missing file and moves into an empty
// directory so that no stray config.yaml is picked up.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "absent.yaml"))
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Embedding.Timeout != 5*time.Second {
		t.Errorf("Embedding.Timeout = %v, want 5s", cfg.Embedding.Timeout)
	}
	if cfg.Recommend.WorstThreshold != 1.0 {
		t.Errorf("Recommend.WorstThreshold = %v, want 1.0", cfg.Recommend.WorstThreshold)
	}
	if cfg.Index.DefaultTopK != 5 || cfg.Recommend.DefaultN != 5 {
		t.Errorf("expected top_k and n to default to 5, got %d and %d", cfg.Index.DefaultTopK, cfg.Recommend.DefaultN)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("STORE_PATH", "/tmp/flashpath.db")
	t.Setenv("EMBEDDING_TIMEOUT", "250ms")
	t.Setenv("RECOMMEND_RANK_STRATEGY", "margin")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "/tmp/flashpath.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Embedding.Timeout != 250*time.Millisecond {
		t.Errorf("Embedding.Timeout = %v", cfg.Embedding.Timeout)
	}
	if cfg.Recommend.RankStrategy != "margin" {
		t.Errorf("RankStrategy = %q", cfg.Recommend.RankStrategy)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "flashpath.yaml")
	yaml := `
server:
  port: 7000
recommend:
  worst_threshold: 2.5
reembed:
  mode: queue
  topic: cards_reembed
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("env must override file, got port %d", cfg.Server.Port)
	}
	if cfg.Recommend.WorstThreshold != 2.5 {
		t.Errorf("WorstThreshold = %v, want 2.5", cfg.Recommend.WorstThreshold)
	}
	if cfg.Reembed.Mode != ReembedQueue || cfg.Reembed.Topic != "cards_reembed" {
		t.Errorf("Reembed = %+v", cfg.Reembed)
	}
	if cfg.Reembed.UsesNATS() {
		t.Error("queue mode without NATS_URL should use the in-process channel")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "mongo" }, "STORE_BACKEND"},
		{"sqlite in memory", func(c *Config) { c.Store.Backend = BackendSQLite; c.Store.InMemory = true }, "STORE_IN_MEMORY"},
		{"bad precision", func(c *Config) { c.Embedding.Precision = "int8" }, "EMBEDDING_PRECISION"},
		{"zero workers", func(c *Config) { c.Embedding.Workers = 0 }, "EMBEDDING_WORKERS"},
		{"zero timeout", func(c *Config) { c.Embedding.Timeout = 0 }, "EMBEDDING_TIMEOUT"},
		{"unknown strategy", func(c *Config) { c.Recommend.RankStrategy = "random" }, "RECOMMEND_RANK_STRATEGY"},
		{"bad reembed mode", func(c *Config) { c.Reembed.Mode = "async" }, "REEMBED_MODE"},
		{"bad nats url", func(c *Config) { c.Reembed.Mode = ReembedQueue; c.Reembed.NATSURL = "http://x" }, "NATS_URL"},
		{"dotted nats topic", func(c *Config) {
			c.Reembed.Mode = ReembedQueue
			c.Reembed.NATSURL = "nats://localhost:4222"
			c.Reembed.Topic = "cards.reembed"
		}, "REEMBED_TOPIC"},
		{"bad ratio", func(c *Config) { c.Store.BreakerFailureRatio = 1.5 }, "FAILURE_RATIO"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr = %q", got)
	}
}
