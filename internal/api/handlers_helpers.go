// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/flashpath/internal/answer"
	"github.com/tomtom215/flashpath/internal/catalog"
	"github.com/tomtom215/flashpath/internal/docstore"
	"github.com/tomtom215/flashpath/internal/embedding"
	"github.com/tomtom215/flashpath/internal/logging"
	"github.com/tomtom215/flashpath/internal/models"
	"github.com/tomtom215/flashpath/internal/validation"
)

const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 4 << 20
)

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError sends an error envelope. err is logged, never returned to the
// client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", code).
			Str("path", r.URL.Path).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondAPIError sends a prepared APIError with status 400.
func respondAPIError(w http.ResponseWriter, apiErr *models.APIError) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}

// respondServiceError maps a service error onto a status code.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		apiErr := verr.ToAPIError()
		respondAPIError(w, &models.APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details})
	case errors.Is(err, models.ErrMalformedID):
		respondError(w, r, http.StatusBadRequest, "MALFORMED_ID", err.Error(), nil)
	case errors.Is(err, models.ErrInvalidAction):
		respondError(w, r, http.StatusBadRequest, "INVALID_ACTION", err.Error(), nil)
	case errors.Is(err, catalog.ErrInvalidImport):
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, answer.ErrNoReference):
		respondError(w, r, http.StatusUnprocessableEntity, "NO_REFERENCE_ANSWER", "Flashcard has no answer to judge against", nil)
	case errors.Is(err, models.ErrUnknownClass):
		respondError(w, r, http.StatusUnprocessableEntity, "UNKNOWN_CLASS", err.Error(), nil)
	case errors.Is(err, models.ErrClassNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Class not found", nil)
	case errors.Is(err, models.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Flashcard not found", nil)
	case errors.Is(err, docstore.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Store unavailable, retry later", err)
	case errors.Is(err, embedding.ErrTimeout):
		respondError(w, r, http.StatusGatewayTimeout, "EMBEDDING_TIMEOUT", "Embedding timed out, retry later", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out, retry later", err)
	default:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", err)
	}
}

// decodeJSON reads a JSON body of at most maxBodyBytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// validateRequest runs struct validation and returns the API error, if any.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// intParam parses an integer query parameter. Absent means def.
func intParam(r *http.Request, key string, def int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// floatParam parses a finite float query parameter. Absent means def.
func floatParam(r *http.Request, key string, def float64) (float64, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a finite number", key)
	}
	return f, nil
}
