// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/models"
	"github.com/tomtom215/flashpath/internal/vectorindex"
)

// ErrNoTopic is returned by an inferrer that cannot name a topic.
var ErrNoTopic = errors.New("no topic could be inferred")

// TopicInferrer derives a topic for a flashcard that has none stored.
type TopicInferrer interface {
	InferTopic(ctx context.Context, card *models.Flashcard) (string, error)
}

// TopicResolver reads a flashcard's stored topic and falls back to an
// inferrer only when the field is empty.
type TopicResolver struct {
	inferrer TopicInferrer
	logger   zerolog.Logger
}

// NewTopicResolver returns a resolver. inferrer may be nil, in which case
// cards without a stored topic resolve to "".
func NewTopicResolver(inferrer TopicInferrer, logger zerolog.Logger) *TopicResolver {
	return &TopicResolver{
		inferrer: inferrer,
		logger:   logger.With().Str("component", "topic-resolver").Logger(),
	}
}

// Resolve returns card's topic. Inference failures are logged and yield "".
func (r *TopicResolver) Resolve(ctx context.Context, card *models.Flashcard) string {
	if card.Topic != "" {
		return card.Topic
	}
	if r.inferrer == nil {
		return ""
	}

	topic, err := r.inferrer.InferTopic(ctx, card)
	if err != nil {
		r.logger.Debug().Err(err).Str("flashcard_id", card.ID).Msg("Topic inference failed")
		return ""
	}
	return topic
}

// Searcher is the read side of the vector index.
type Searcher interface {
	Search(query []float64, topK int) ([]vectorindex.Match, error)
}

// CardResolver resolves flashcard ids in order, skipping missing ones.
type CardResolver interface {
	Resolve(ctx context.Context, ids []string) []models.Flashcard
}

// NeighborTopicInferrer takes the most common stored topic among a card's
// nearest neighbors, weighted by similarity.
type NeighborTopicInferrer struct {
	index     Searcher
	catalog   CardResolver
	neighbors int
}

// NewNeighborTopicInferrer returns an inferrer that looks at the given
// number of neighbors.
func NewNeighborTopicInferrer(index Searcher, catalog CardResolver, neighbors int) *NeighborTopicInferrer {
	if neighbors <= 0 {
		neighbors = vectorindex.DefaultTopK
	}
	return &NeighborTopicInferrer{index: index, catalog: catalog, neighbors: neighbors}
}

// InferTopic implements TopicInferrer.
func (n *NeighborTopicInferrer) InferTopic(ctx context.Context, card *models.Flashcard) (string, error) {
	if len(card.Embedding) == 0 {
		return "", fmt.Errorf("%w: flashcard %s has no embedding", ErrNoTopic, card.ID)
	}

	// One extra result since the card usually matches itself.
	matches, err := n.index.Search(card.Embedding, n.neighbors+1)
	if err != nil {
		return "", fmt.Errorf("search neighbors of %s: %w", card.ID, err)
	}

	ids := make([]string, 0, len(matches))
	scores := make(map[string]float64, len(matches))
	for _, m := range matches {
		if m.ID == card.ID {
			continue
		}
		ids = append(ids, m.ID)
		scores[m.ID] = m.Score
	}

	weights := make(map[string]float64)
	best, bestWeight := "", 0.0
	for _, neighbor := range n.catalog.Resolve(ctx, ids) {
		if neighbor.Topic == "" || scores[neighbor.ID] <= 0 {
			continue
		}
		weights[neighbor.Topic] += scores[neighbor.ID]
		if w := weights[neighbor.Topic]; w > bestWeight {
			best, bestWeight = neighbor.Topic, w
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: no labelled neighbors for %s", ErrNoTopic, card.ID)
	}
	return best, nil
}
