// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/flashpath/internal/docstore"
	"github.com/tomtom215/flashpath/internal/models"
	"github.com/tomtom215/flashpath/internal/validation"
)

// QuarantineCollection holds generated entries that were rejected.
const QuarantineCollection = "quarantine"

// ErrInvalidImport is returned when generated output is not a JSON array.
var ErrInvalidImport = errors.New("generated flashcards must be a JSON array")

// ImportGenerated stores every valid entry of raw, a JSON array of
// {question, answer, topic, difficulty} objects as produced by a language
// model. A surrounding Markdown code fence is ignored. Entries that fail to
// decode, validate or store are quarantined and listed in the report; they
// never abort the import.
func (c *Catalog) ImportGenerated(ctx context.Context, raw []byte) (*models.ImportReport, error) {
	body := stripCodeFence(string(raw))

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	report := &models.ImportReport{
		IDs:         []string{},
		Quarantined: []models.QuarantinedDraft{},
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		card, reason := c.importOne(ctx, item)
		if reason != "" {
			c.quarantine(ctx, i, reason, item)
			report.Quarantined = append(report.Quarantined, models.QuarantinedDraft{Index: i, Reason: reason})
			continue
		}
		report.Added++
		report.IDs = append(report.IDs, card.ID)
	}

	c.logger.Info().
		Int("entries", len(items)).
		Int("added", report.Added).
		Int("quarantined", len(report.Quarantined)).
		Msg("Generated flashcards imported")
	return report, nil
}

// importOne returns the created card, or a rejection reason.
func (c *Catalog) importOne(ctx context.Context, item json.RawMessage) (*models.Flashcard, string) {
	var draft models.FlashcardDraft
	if err := json.Unmarshal(item, &draft); err != nil {
		return nil, "malformed entry: " + err.Error()
	}

	draft.Normalize()
	if verr := validation.ValidateStruct(&draft); verr != nil {
		return nil, verr.Error()
	}

	card, err := c.Create(ctx, draft)
	if err != nil {
		return nil, "create failed: " + err.Error()
	}
	return card, ""
}

// quarantine records a rejected entry. Failures are logged only.
func (c *Catalog) quarantine(ctx context.Context, index int, reason string, item json.RawMessage) {
	id := models.NewID()
	_, err := c.store.UpdateOne(ctx, QuarantineCollection, docstore.ByID(id), docstore.Update{Set: map[string]any{
		"index":      index,
		"reason":     reason,
		"raw":        string(item),
		"created_at": c.now().UTC(),
	}}, true)
	if err != nil {
		c.logger.Error().Err(err).Int("index", index).Msg("Failed to quarantine generated flashcard")
		return
	}
	c.logger.Warn().Int("index", index).Str("reason", reason).Str("quarantine_id", id).Msg("Generated flashcard quarantined")
}

// stripCodeFence removes a ```json ... ``` wrapper if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
