// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package qlearning

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/metrics"
	"github.com/tomtom215/flashpath/internal/models"
)

const (
	// Alpha is the learning rate.
	Alpha = 0.1

	// Gamma is the discount factor applied to the entry's best value.
	Gamma = 0.9

	// AnswerReward is the reward passed for every judged answer.
	AnswerReward = 10.0
)

// UpdateHook runs after a user's record has been saved.
type UpdateHook func(userID string)

// Updater applies Q-learning updates with per-user serialization.
type Updater struct {
	store  *ScoreStore
	locks  *keyedMutex
	logger zerolog.Logger

	hooksMu sync.RWMutex
	hooks   []UpdateHook
}

// NewUpdater creates an Updater over store.
func NewUpdater(store *ScoreStore, logger zerolog.Logger) *Updater {
	return &Updater{
		store:  store,
		locks:  newKeyedMutex(),
		logger: logger.With().Str("component", "qlearning").Logger(),
	}
}

// OnUpdate registers fn to run after every successful write.
func (u *Updater) OnUpdate(fn UpdateHook) {
	u.hooksMu.Lock()
	defer u.hooksMu.Unlock()
	u.hooks = append(u.hooks, fn)
}

// Update applies one temporal-difference step to (userID, flashcardID,
// action) and returns the new value. An invalid action or malformed id fails
// before anything is read or written.
func (u *Updater) Update(ctx context.Context, userID, flashcardID string, action models.Action, reward float64) (float64, error) {
	if !action.Valid() {
		metrics.RecordQTableUpdate(string(action), "invalid")
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidAction, action)
	}
	userID, err := models.ParseID(userID)
	if err != nil {
		return 0, err
	}
	flashcardID, err = models.ParseID(flashcardID)
	if err != nil {
		return 0, err
	}

	var value float64
	err = u.withUser(ctx, userID, func() error {
		table, err := u.store.Load(ctx, userID)
		if err != nil {
			return err
		}

		entry := table.Entry(flashcardID)
		old := entry[action]
		nextMax := entry.Max()
		value = old + Alpha*(reward+Gamma*nextMax-old)
		entry[action] = value
		table.Set(flashcardID, entry)

		return u.store.Save(ctx, userID, table)
	})
	if err != nil {
		metrics.RecordQTableUpdate(string(action), "error")
		return 0, err
	}

	metrics.RecordQTableUpdate(string(action), "success")
	u.logger.Debug().
		Str("user_id", userID).
		Str("flashcard_id", flashcardID).
		Str("action", string(action)).
		Float64("reward", reward).
		Float64("value", value).
		Msg("Q-table updated")

	u.notify(userID)
	return value, nil
}

// RecordTopicOutcome increments the per-topic counter for action. An empty
// topic is ignored.
func (u *Updater) RecordTopicOutcome(ctx context.Context, userID, topic string, action models.Action) error {
	if !action.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidAction, action)
	}
	if topic == "" {
		return nil
	}
	userID, err := models.ParseID(userID)
	if err != nil {
		return err
	}

	return u.withUser(ctx, userID, func() error {
		perf, err := u.store.LoadPerformance(ctx, userID)
		if err != nil {
			return err
		}

		stats := perf.Topics[topic]
		if action == models.ActionCorrect {
			stats.Correct++
		} else {
			stats.Incorrect++
		}
		perf.Topics[topic] = stats

		return u.store.SaveTopics(ctx, userID, perf.Topics)
	})
}

// Purge deletes userID's record under the same lock as updates.
func (u *Updater) Purge(ctx context.Context, userID string) (bool, error) {
	userID, err := models.ParseID(userID)
	if err != nil {
		return false, err
	}

	var deleted bool
	err = u.withUser(ctx, userID, func() error {
		var err error
		deleted, err = u.store.Purge(ctx, userID)
		return err
	})
	if err != nil {
		return false, err
	}
	if deleted {
		u.logger.Info().Str("user_id", userID).Msg("Performance record purged")
		u.notify(userID)
	}
	return deleted, nil
}

func (u *Updater) withUser(ctx context.Context, userID string, fn func() error) error {
	start := time.Now()
	release, err := u.locks.Lock(ctx, userID)
	if err != nil {
		return fmt.Errorf("lock user %s: %w", userID, err)
	}
	defer release()
	metrics.QTableLockWait.Observe(time.Since(start).Seconds())

	return fn()
}

func (u *Updater) notify(userID string) {
	u.hooksMu.RLock()
	hooks := u.hooks
	u.hooksMu.RUnlock()

	for _, fn := range hooks {
		fn(userID)
	}
}
