// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package recommend

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/cache"
	"github.com/tomtom215/flashpath/internal/metrics"
	"github.com/tomtom215/flashpath/internal/models"
)

// Outcome classifies a WorstFlashcard result.
type Outcome string

const (
	// OutcomeNoData means the user has no scored flashcards.
	OutcomeNoData Outcome = "no_data"
	// OutcomeNoStruggle means no score fell below the threshold.
	OutcomeNoStruggle Outcome = "no_struggle"
	// OutcomeStruggling means a flashcard scored below the threshold.
	OutcomeStruggling Outcome = "struggling"
)

// WorstResult is the answer of WorstFlashcard. FlashcardID and Score are
// set unless Outcome is OutcomeNoData; Topic and Flashcard only for
// OutcomeStruggling.
type WorstResult struct {
	Outcome     Outcome
	FlashcardID string
	Score       float64
	Topic       string
	Flashcard   *models.FlashcardSummary
}

// Scores loads Q-tables.
type Scores interface {
	Load(ctx context.Context, userID string) (*models.QTable, error)
}

// Catalog resolves flashcards.
type Catalog interface {
	Get(ctx context.Context, id string) (*models.Flashcard, error)
	Resolve(ctx context.Context, ids []string) []models.Flashcard
}

// Embedder turns query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Config holds recommender settings.
type Config struct {
	DefaultN       int
	DefaultTopK    int
	WorstThreshold float64
	RankStrategy   string
	WorstStrategy  string
	CacheSize      int
	CacheTTL       time.Duration
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		DefaultN:       5,
		DefaultTopK:    5,
		WorstThreshold: 1.0,
		RankStrategy:   StrategyWeakestAction,
		WorstStrategy:  StrategyMargin,
		CacheSize:      10000,
		CacheTTL:       5 * time.Minute,
	}
}

// Recommender serves recommendation, worst-flashcard and similarity queries.
// It is safe for concurrent use.
type Recommender struct {
	cfg      Config
	scores   Scores
	catalog  Catalog
	index    Searcher
	embedder Embedder
	topics   *TopicResolver
	rankBy   Strategy
	worstBy  Strategy
	logger   zerolog.Logger

	recCache   *cache.LRUCache[[]models.FlashcardSummary]
	worstCache *cache.LRUCache[WorstResult]
}

// New creates a Recommender.
func New(cfg Config, scores Scores, catalog Catalog, index Searcher, embedder Embedder, topics *TopicResolver, logger zerolog.Logger) (*Recommender, error) {
	rankBy, err := StrategyByName(cfg.RankStrategy)
	if err != nil {
		return nil, fmt.Errorf("rank strategy: %w", err)
	}
	worstBy, err := StrategyByName(cfg.WorstStrategy)
	if err != nil {
		return nil, fmt.Errorf("worst strategy: %w", err)
	}
	if cfg.DefaultN <= 0 {
		cfg.DefaultN = 5
	}
	if topics == nil {
		topics = NewTopicResolver(nil, logger)
	}

	return &Recommender{
		cfg:        cfg,
		scores:     scores,
		catalog:    catalog,
		index:      index,
		embedder:   embedder,
		topics:     topics,
		rankBy:     rankBy,
		worstBy:    worstBy,
		logger:     logger.With().Str("component", "recommend").Logger(),
		recCache:   cache.NewLRUCache[[]models.FlashcardSummary](cfg.CacheSize, cfg.CacheTTL),
		worstCache: cache.NewLRUCache[WorstResult](cfg.CacheSize, cfg.CacheTTL),
	}, nil
}

// DefaultThreshold is the threshold used when a caller has none.
func (r *Recommender) DefaultThreshold() float64 {
	return r.cfg.WorstThreshold
}

// Recommend returns up to n flashcards for userID, weakest first. n <= 0
// means the configured default. A user with no history gets an empty list.
func (r *Recommender) Recommend(ctx context.Context, userID string, n int) ([]models.FlashcardSummary, error) {
	start := time.Now()
	userID, err := models.ParseID(userID)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = r.cfg.DefaultN
	}

	key := cacheKey(userID, "recommend", strconv.Itoa(n))
	if cached, ok := r.recCache.Get(key); ok {
		metrics.RecommendCacheHits.Inc()
		metrics.RecordRecommendation("recommend", "cache_hit", time.Since(start))
		return cloneSummaries(cached), nil
	}
	metrics.RecommendCacheMisses.Inc()
	gen := r.recCache.Generation(userID)

	table, err := r.scores.Load(ctx, userID)
	if err != nil {
		metrics.RecordRecommendation("recommend", "error", time.Since(start))
		return nil, err
	}

	ranking := rank(table, r.rankBy)
	if len(ranking) > n {
		ranking = ranking[:n]
	}
	ids := make([]string, len(ranking))
	for i, entry := range ranking {
		ids[i] = entry.id
	}

	cards := r.catalog.Resolve(ctx, ids)
	out := make([]models.FlashcardSummary, 0, len(cards))
	for i := range cards {
		out = append(out, cards[i].Summary())
	}

	outcome := "ok"
	if len(out) == 0 {
		outcome = "empty"
	}
	metrics.RecordRecommendation("recommend", outcome, time.Since(start))
	r.recCache.AddIfCurrent(userID, key, cloneSummaries(out), gen)

	r.logger.Debug().
		Str("user_id", userID).
		Int("n", n).
		Int("tracked", table.Len()).
		Int("returned", len(out)).
		Msg("Recommendations computed")
	return out, nil
}

// WorstFlashcard finds userID's lowest-scoring flashcard. A score below
// threshold is a struggle; the flashcard is resolved and its topic read.
func (r *Recommender) WorstFlashcard(ctx context.Context, userID string, threshold float64) (WorstResult, error) {
	start := time.Now()
	userID, err := models.ParseID(userID)
	if err != nil {
		return WorstResult{}, err
	}

	key := cacheKey(userID, "worst", strconv.FormatFloat(threshold, 'g', -1, 64))
	if cached, ok := r.worstCache.Get(key); ok {
		metrics.RecommendCacheHits.Inc()
		metrics.RecordRecommendation("worst", "cache_hit", time.Since(start))
		return cloneWorst(cached), nil
	}
	metrics.RecommendCacheMisses.Inc()
	gen := r.worstCache.Generation(userID)

	result, err := r.worst(ctx, userID, threshold)
	if err != nil {
		metrics.RecordRecommendation("worst", "error", time.Since(start))
		return WorstResult{}, err
	}

	metrics.RecordRecommendation("worst", string(result.Outcome), time.Since(start))
	r.worstCache.AddIfCurrent(userID, key, cloneWorst(result), gen)
	return result, nil
}

func (r *Recommender) worst(ctx context.Context, userID string, threshold float64) (WorstResult, error) {
	table, err := r.scores.Load(ctx, userID)
	if err != nil {
		return WorstResult{}, err
	}

	ranking := rank(table, r.worstBy)
	if len(ranking) == 0 {
		return WorstResult{Outcome: OutcomeNoData}, nil
	}

	lowest := ranking[0]
	if lowest.score >= threshold {
		return WorstResult{
			Outcome:     OutcomeNoStruggle,
			FlashcardID: lowest.id,
			Score:       lowest.score,
		}, nil
	}

	card, err := r.catalog.Get(ctx, lowest.id)
	if err != nil {
		return WorstResult{}, fmt.Errorf("resolve worst flashcard: %w", err)
	}
	summary := card.Summary()

	return WorstResult{
		Outcome:     OutcomeStruggling,
		FlashcardID: card.ID,
		Score:       lowest.score,
		Topic:       r.topics.Resolve(ctx, card),
		Flashcard:   &summary,
	}, nil
}

// FindSimilar returns up to topK flashcards ordered by descending
// similarity to query. topK <= 0 means the configured default. Blank queries
// return an empty list.
func (r *Recommender) FindSimilar(ctx context.Context, query string, topK int) ([]models.SimilarFlashcard, error) {
	start := time.Now()
	if strings.TrimSpace(query) == "" {
		metrics.RecordRecommendation("similar", "empty", time.Since(start))
		return []models.SimilarFlashcard{}, nil
	}
	if topK <= 0 {
		topK = r.cfg.DefaultTopK
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		metrics.RecordRecommendation("similar", "error", time.Since(start))
		return nil, err
	}

	matches, err := r.index.Search(vec, topK)
	if err != nil {
		metrics.RecordRecommendation("similar", "error", time.Since(start))
		return nil, fmt.Errorf("search index: %w", err)
	}

	ids := make([]string, len(matches))
	scores := make(map[string]float64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
		scores[m.ID] = m.Score
	}

	cards := r.catalog.Resolve(ctx, ids)
	out := make([]models.SimilarFlashcard, 0, len(cards))
	for _, card := range cards {
		out = append(out, models.SimilarFlashcard{
			ID:       card.ID,
			Question: card.Question,
			Answer:   card.Answer,
			Score:    scores[card.ID],
		})
	}

	outcome := "ok"
	if len(out) == 0 {
		outcome = "empty"
	}
	metrics.RecordRecommendation("similar", outcome, time.Since(start))
	return out, nil
}

// Invalidate drops cached results for userID. Queries that read the
// Q-table before the call do not cache their results.
func (r *Recommender) Invalidate(userID string) {
	r.recCache.RemoveGroup(userID)
	r.worstCache.RemoveGroup(userID)
}

// InvalidateAll drops every cached result.
func (r *Recommender) InvalidateAll() {
	r.recCache.Clear()
	r.worstCache.Clear()
}

// CleanupExpired evicts expired cache entries and returns how many were
// removed.
func (r *Recommender) CleanupExpired() int {
	return r.recCache.CleanupExpired() + r.worstCache.CleanupExpired()
}

func cacheKey(userID, kind, param string) string {
	return userID + "\x00" + kind + "\x00" + param
}

func cloneSummaries(in []models.FlashcardSummary) []models.FlashcardSummary {
	out := make([]models.FlashcardSummary, len(in))
	copy(out, in)
	return out
}

func cloneWorst(in WorstResult) WorstResult {
	if in.Flashcard != nil {
		summary := *in.Flashcard
		in.Flashcard = &summary
	}
	return in
}
