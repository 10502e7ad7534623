// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package answer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/metrics"
	"github.com/tomtom215/flashpath/internal/models"
	"github.com/tomtom215/flashpath/internal/qlearning"
)

// Cards looks up flashcards.
type Cards interface {
	Get(ctx context.Context, id string) (*models.Flashcard, error)
}

// Scores applies Q-table and topic updates.
type Scores interface {
	Update(ctx context.Context, userID, flashcardID string, action models.Action, reward float64) (float64, error)
	RecordTopicOutcome(ctx context.Context, userID, topic string, action models.Action) error
}

// Outcome is the result of a judged answer.
type Outcome struct {
	FlashcardID string        `json:"flashcard_id"`
	Correct     bool          `json:"correct"`
	Action      models.Action `json:"action"`
	Value       float64       `json:"value"`
	Topic       string        `json:"topic,omitempty"`
}

// Service judges answers and records them.
type Service struct {
	cards  Cards
	scores Scores
	judge  Judge
	logger zerolog.Logger
}

// NewService creates a Service. A nil judge means NormalizedJudge.
func NewService(cards Cards, scores Scores, judge Judge, logger zerolog.Logger) *Service {
	if judge == nil {
		judge = NormalizedJudge{}
	}
	return &Service{
		cards:  cards,
		scores: scores,
		judge:  judge,
		logger: logger.With().Str("component", "answer").Logger(),
	}
}

// Submit judges answerText against the flashcard and applies the verdict to
// userID's Q-table with qlearning.AnswerReward. A failed topic counter update
// is logged and does not fail the call since the score is already stored.
func (s *Service) Submit(ctx context.Context, userID, flashcardID, answerText string) (Outcome, error) {
	start := time.Now()
	userID, err := models.ParseID(userID)
	if err != nil {
		return Outcome{}, err
	}

	card, err := s.cards.Get(ctx, flashcardID)
	if err != nil {
		return Outcome{}, err
	}

	correct, err := s.judge.Judge(ctx, card.Question, card.Answer, answerText)
	if err != nil {
		metrics.AnswersJudged.WithLabelValues("error").Inc()
		return Outcome{}, fmt.Errorf("judge answer for %s: %w", card.ID, err)
	}
	action := models.ActionFromVerdict(correct)

	value, err := s.scores.Update(ctx, userID, card.ID, action, qlearning.AnswerReward)
	if err != nil {
		return Outcome{}, err
	}

	if err := s.scores.RecordTopicOutcome(ctx, userID, card.Topic, action); err != nil {
		s.logger.Warn().Err(err).
			Str("user_id", userID).
			Str("topic", card.Topic).
			Msg("Failed to record topic outcome")
	}
	metrics.AnswersJudged.WithLabelValues(string(action)).Inc()

	s.logger.Debug().
		Str("user_id", userID).
		Str("flashcard_id", card.ID).
		Str("action", string(action)).
		Float64("value", value).
		Dur("duration", time.Since(start)).
		Msg("Answer judged")

	return Outcome{
		FlashcardID: card.ID,
		Correct:     correct,
		Action:      action,
		Value:       value,
		Topic:       card.Topic,
	}, nil
}
