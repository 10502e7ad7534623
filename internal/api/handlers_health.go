// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/flashpath/internal/models"
)

// breakerOpen is the circuit breaker state that fails readiness.
const breakerOpen = "open"

func (h *Handler) healthStatus() (models.HealthStatus, bool) {
	checks := map[string]string{}
	healthy := true

	if h.ready.Load() {
		checks["startup"] = "ok"
	} else {
		checks["startup"] = "warming"
		healthy = false
	}

	var breaker string
	if h.deps.BreakerState != nil {
		breaker = h.deps.BreakerState()
		if breaker == breakerOpen {
			checks["store"] = "circuit open"
			healthy = false
		} else {
			checks["store"] = "ok"
		}
	}

	indexed := 0
	if h.deps.IndexSize != nil {
		indexed = h.deps.IndexSize()
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}

	return models.HealthStatus{
		Status:        status,
		Version:       h.deps.Version,
		IndexedCards:  indexed,
		StoreBackend:  h.deps.StoreBackend,
		BreakerState:  breaker,
		Uptime:        time.Since(h.startTime).Seconds(),
		Checks:        checks,
		LastCheckTime: time.Now(),
	}, healthy
}

// HealthLive handles GET /api/v1/health/live. It answers 200 while the
// process can serve requests at all.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":         "alive",
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	}, start)
}

// HealthReady handles GET /api/v1/health/ready. It answers 503 until startup
// finished and while the store circuit breaker is open.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status, healthy := h.healthStatus()
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	respondSuccess(w, code, status, start)
}
