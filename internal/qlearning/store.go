// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package qlearning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/flashpath/internal/docstore"
	"github.com/tomtom215/flashpath/internal/models"
)

// Collection holds one performance record per user.
const Collection = "performance"

// Persisted field names of a performance record.
const (
	fieldUserID  = "user_id"
	fieldQTable  = "q_table"
	fieldQOrder  = "q_order"
	fieldTopics  = "performance"
	fieldUpdated = "updated_at"
)

// ScoreStore loads and saves Q-tables.
//
// Load and Save are individually atomic but the pair is not; callers doing
// read-modify-write must serialize per user. Updater does.
type ScoreStore struct {
	store docstore.Store
	now   func() time.Time
}

// NewScoreStore returns a ScoreStore over store.
func NewScoreStore(store docstore.Store) *ScoreStore {
	return &ScoreStore{store: store, now: time.Now}
}

// Load returns userID's Q-table. A user with no record gets an empty table.
func (s *ScoreStore) Load(ctx context.Context, userID string) (*models.QTable, error) {
	perf, err := s.LoadPerformance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.QTableFromMap(perf.QTable, perf.Order), nil
}

// LoadPerformance returns the full record for userID, or an empty record if
// the user has none.
func (s *ScoreStore) LoadPerformance(ctx context.Context, userID string) (*models.Performance, error) {
	doc, err := s.store.FindOne(ctx, Collection, docstore.ByID(userID))
	if errors.Is(err, docstore.ErrNoDocuments) {
		return &models.Performance{
			UserID: userID,
			QTable: map[string]models.ActionValues{},
			Topics: map[string]models.TopicStats{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load performance for %s: %w", userID, err)
	}

	var perf models.Performance
	if err := doc.Decode(&perf); err != nil {
		return nil, fmt.Errorf("decode performance for %s: %w", userID, err)
	}
	perf.UserID = userID
	if perf.QTable == nil {
		perf.QTable = map[string]models.ActionValues{}
	}
	if perf.Topics == nil {
		perf.Topics = map[string]models.TopicStats{}
	}
	return &perf, nil
}

// Save upserts userID's Q-table. Other fields of the record are untouched.
func (s *ScoreStore) Save(ctx context.Context, userID string, table *models.QTable) error {
	_, err := s.store.UpdateOne(ctx, Collection, docstore.ByID(userID), docstore.Update{Set: map[string]any{
		fieldUserID:  userID,
		fieldQTable:  table.Map(),
		fieldQOrder:  table.IDs(),
		fieldUpdated: s.now().UTC(),
	}}, true)
	if err != nil {
		return fmt.Errorf("save q-table for %s: %w", userID, err)
	}
	return nil
}

// SaveTopics upserts userID's per-topic counters.
func (s *ScoreStore) SaveTopics(ctx context.Context, userID string, topics map[string]models.TopicStats) error {
	_, err := s.store.UpdateOne(ctx, Collection, docstore.ByID(userID), docstore.Update{Set: map[string]any{
		fieldUserID:  userID,
		fieldTopics:  topics,
		fieldUpdated: s.now().UTC(),
	}}, true)
	if err != nil {
		return fmt.Errorf("save topic stats for %s: %w", userID, err)
	}
	return nil
}

// Purge deletes userID's performance record. It reports whether a record
// existed.
func (s *ScoreStore) Purge(ctx context.Context, userID string) (bool, error) {
	deleted, err := s.store.DeleteOne(ctx, Collection, docstore.ByID(userID))
	if err != nil {
		return false, fmt.Errorf("purge performance for %s: %w", userID, err)
	}
	return deleted, nil
}
