// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/docstore"
	"github.com/tomtom215/flashpath/internal/metrics"
	"github.com/tomtom215/flashpath/internal/models"
	"github.com/tomtom215/flashpath/internal/validation"
	"github.com/tomtom215/flashpath/internal/vectorindex"
)

// Collection holds flashcard records.
const Collection = "flashcards"

// Persisted field names of a flashcard record.
const (
	fieldQuestion   = "question"
	fieldAnswer     = "answer"
	fieldTopic      = "topic"
	fieldDifficulty = "difficulty"
	fieldClass      = "class_id"
	fieldEmbedding  = "embedding"
	fieldCreated    = "created_at"
	fieldUpdated    = "updated_at"
)

// listFields is the projection used for listings. Embeddings are left out.
var listFields = docstore.Projection{
	fieldQuestion, fieldAnswer, fieldTopic, fieldDifficulty, fieldClass, fieldCreated, fieldUpdated,
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Index is the part of the vector index the catalog writes to.
type Index interface {
	Upsert(id string, vector []float64) error
	Remove(id string) bool
}

// Scheduler queues a flashcard for re-embedding.
type Scheduler interface {
	Schedule(ctx context.Context, flashcardID string) error
}

// ClassRegistry reports whether a class exists.
type ClassRegistry interface {
	Exists(ctx context.Context, classID string) (bool, error)
}

// ListFilter narrows List. Empty fields match everything.
type ListFilter struct {
	Topic      string
	Difficulty string
	ClassID    string
}

// ChangeHook runs after a flashcard has been created, edited, re-embedded
// or deleted.
type ChangeHook func()

// Catalog is the flashcard store.
type Catalog struct {
	store     docstore.Store
	embedder  Embedder
	index     Index
	scheduler Scheduler
	classes   ClassRegistry
	logger    zerolog.Logger
	now       func() time.Time

	hooksMu sync.RWMutex
	hooks   []ChangeHook
}

// New creates a Catalog. Content edits are re-embedded synchronously until
// SetScheduler installs a queue.
func New(store docstore.Store, embedder Embedder, index Index, logger zerolog.Logger) *Catalog {
	return &Catalog{
		store:    store,
		embedder: embedder,
		index:    index,
		logger:   logger.With().Str("component", "catalog").Logger(),
		now:      time.Now,
	}
}

// SetScheduler routes re-embedding through s. Call before serving requests.
func (c *Catalog) SetScheduler(s Scheduler) {
	c.scheduler = s
}

// OnChange registers fn to run after every successful catalog write.
func (c *Catalog) OnChange(fn ChangeHook) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.hooks = append(c.hooks, fn)
}

func (c *Catalog) notify() {
	c.hooksMu.RLock()
	hooks := c.hooks
	c.hooksMu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
}

// SetClasses enables class tags, checked against r. Without a registry any
// class id is rejected. Call before serving requests.
func (c *Catalog) SetClasses(r ClassRegistry) {
	c.classes = r
}

// resolveClass returns the canonical class id for raw, or "" for no class.
func (c *Catalog) resolveClass(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	id, err := models.ParseID(raw)
	if err != nil {
		return "", err
	}
	if c.classes == nil {
		return "", fmt.Errorf("%w: %s", models.ErrUnknownClass, id)
	}
	ok, err := c.classes.Exists(ctx, id)
	if err != nil {
		return "", fmt.Errorf("check class %s: %w", id, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", models.ErrUnknownClass, id)
	}
	return id, nil
}

// Get returns one flashcard.
func (c *Catalog) Get(ctx context.Context, id string) (*models.Flashcard, error) {
	id, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}

	doc, err := c.store.FindOne(ctx, Collection, docstore.ByID(id))
	if errors.Is(err, docstore.ErrNoDocuments) {
		return nil, fmt.Errorf("flashcard %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get flashcard %s: %w", id, err)
	}

	var card models.Flashcard
	if err := doc.Decode(&card); err != nil {
		return nil, fmt.Errorf("decode flashcard %s: %w", id, err)
	}
	return &card, nil
}

// Resolve returns the flashcards for ids in the order given. Ids that are
// malformed, missing or fail to load are logged and skipped.
func (c *Catalog) Resolve(ctx context.Context, ids []string) []models.Flashcard {
	out := make([]models.Flashcard, 0, len(ids))
	for _, id := range ids {
		card, err := c.Get(ctx, id)
		if err == nil {
			out = append(out, *card)
			continue
		}

		switch {
		case errors.Is(err, models.ErrNotFound):
			metrics.DanglingFlashcards.WithLabelValues("not_found").Inc()
			c.logger.Debug().Str("flashcard_id", id).Msg("Skipping dangling flashcard reference")
		case errors.Is(err, models.ErrMalformedID):
			metrics.DanglingFlashcards.WithLabelValues("malformed_id").Inc()
			c.logger.Debug().Str("flashcard_id", id).Msg("Skipping malformed flashcard id")
		default:
			metrics.DanglingFlashcards.WithLabelValues("error").Inc()
			c.logger.Warn().Err(err).Str("flashcard_id", id).Msg("Failed to resolve flashcard")
		}
	}
	return out
}

// List returns flashcards without embeddings, oldest first.
func (c *Catalog) List(ctx context.Context, f ListFilter) ([]models.Flashcard, error) {
	filter := docstore.Filter{}
	if f.Topic != "" {
		filter[fieldTopic] = f.Topic
	}
	if f.Difficulty != "" {
		filter[fieldDifficulty] = f.Difficulty
	}
	if f.ClassID != "" {
		filter[fieldClass] = f.ClassID
	}

	docs, err := c.store.Find(ctx, Collection, filter, listFields)
	if err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}

	cards := make([]models.Flashcard, 0, len(docs))
	for _, doc := range docs {
		var card models.Flashcard
		if err := doc.Decode(&card); err != nil {
			c.logger.Warn().Err(err).Str("flashcard_id", doc.ID()).Msg("Skipping undecodable flashcard")
			continue
		}
		cards = append(cards, card)
	}

	sortByCreation(cards)
	return cards, nil
}

// Create validates draft, embeds it, stores it and indexes it. Nothing is
// stored if validation or embedding fails.
func (c *Catalog) Create(ctx context.Context, draft models.FlashcardDraft) (*models.Flashcard, error) {
	draft.Normalize()
	if verr := validation.ValidateStruct(&draft); verr != nil {
		return nil, verr
	}
	classID, err := c.resolveClass(ctx, draft.ClassID)
	if err != nil {
		return nil, err
	}

	vec, err := c.embedder.Embed(ctx, models.EmbeddingText(draft.Question, draft.Answer))
	if err != nil {
		return nil, fmt.Errorf("embed new flashcard: %w", err)
	}

	now := c.now().UTC()
	card := &models.Flashcard{
		ID:         models.NewID(),
		Question:   draft.Question,
		Answer:     draft.Answer,
		Topic:      draft.Topic,
		Difficulty: draft.Difficulty,
		ClassID:    classID,
		Embedding:  vec,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err = c.store.UpdateOne(ctx, Collection, docstore.ByID(card.ID), docstore.Update{Set: map[string]any{
		fieldQuestion:   card.Question,
		fieldAnswer:     card.Answer,
		fieldTopic:      card.Topic,
		fieldDifficulty: card.Difficulty,
		fieldClass:      card.ClassID,
		fieldEmbedding:  card.Embedding,
		fieldCreated:    card.CreatedAt,
		fieldUpdated:    card.UpdatedAt,
	}}, true)
	if err != nil {
		return nil, fmt.Errorf("store flashcard: %w", err)
	}

	if err := c.index.Upsert(card.ID, card.Embedding); err != nil {
		return nil, fmt.Errorf("index flashcard %s: %w", card.ID, err)
	}

	c.notify()
	c.logger.Info().Str("flashcard_id", card.ID).Str("topic", card.Topic).Msg("Flashcard created")
	return card, nil
}

// UpdateContent applies patch to flashcard id. When the question or answer
// changes the embedding is recomputed, in line or through the scheduler.
func (c *Catalog) UpdateContent(ctx context.Context, id string, patch models.FlashcardPatch) (*models.Flashcard, error) {
	normalizePatch(&patch)
	if verr := validation.ValidateStruct(&patch); verr != nil {
		return nil, verr
	}

	card, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return card, nil
	}

	contentChanged := patch.ChangesContent(card)
	set := map[string]any{}
	if patch.Question != nil {
		card.Question = *patch.Question
		set[fieldQuestion] = card.Question
	}
	if patch.Answer != nil {
		card.Answer = *patch.Answer
		set[fieldAnswer] = card.Answer
	}
	if patch.Topic != nil {
		card.Topic = *patch.Topic
		set[fieldTopic] = card.Topic
	}
	if patch.Difficulty != nil {
		card.Difficulty = *patch.Difficulty
		set[fieldDifficulty] = card.Difficulty
	}
	if patch.ClassID != nil {
		classID, err := c.resolveClass(ctx, *patch.ClassID)
		if err != nil {
			return nil, err
		}
		card.ClassID = classID
		set[fieldClass] = card.ClassID
	}

	inline := contentChanged && c.scheduler == nil
	if inline {
		vec, err := c.embedder.Embed(ctx, card.EmbeddingText())
		if err != nil {
			return nil, fmt.Errorf("re-embed flashcard %s: %w", card.ID, err)
		}
		card.Embedding = vec
		set[fieldEmbedding] = vec
	}

	card.UpdatedAt = c.now().UTC()
	set[fieldUpdated] = card.UpdatedAt

	res, err := c.store.UpdateOne(ctx, Collection, docstore.ByID(card.ID), docstore.Update{Set: set}, false)
	if err != nil {
		return nil, fmt.Errorf("update flashcard %s: %w", card.ID, err)
	}
	if !res.Matched {
		return nil, fmt.Errorf("flashcard %s: %w", card.ID, models.ErrNotFound)
	}

	switch {
	case inline:
		if err := c.index.Upsert(card.ID, card.Embedding); err != nil {
			return nil, fmt.Errorf("index flashcard %s: %w", card.ID, err)
		}
	case contentChanged:
		if err := c.scheduler.Schedule(ctx, card.ID); err != nil {
			c.logger.Error().Err(err).Str("flashcard_id", card.ID).Msg("Failed to schedule re-embedding")
			return nil, fmt.Errorf("schedule re-embed for %s: %w", card.ID, err)
		}
	}

	c.notify()
	c.logger.Info().
		Str("flashcard_id", card.ID).
		Bool("content_changed", contentChanged).
		Msg("Flashcard updated")
	return card, nil
}

// Reembed recomputes the stored embedding of flashcard id from its current
// text and refreshes the index entry.
func (c *Catalog) Reembed(ctx context.Context, id string) error {
	card, err := c.Get(ctx, id)
	if err != nil {
		return err
	}

	vec, err := c.embedder.Embed(ctx, card.EmbeddingText())
	if err != nil {
		return fmt.Errorf("re-embed flashcard %s: %w", card.ID, err)
	}

	res, err := c.store.UpdateOne(ctx, Collection, docstore.ByID(card.ID), docstore.Update{Set: map[string]any{
		fieldEmbedding: vec,
	}}, false)
	if err != nil {
		return fmt.Errorf("store embedding for %s: %w", card.ID, err)
	}
	if !res.Matched {
		return fmt.Errorf("flashcard %s: %w", card.ID, models.ErrNotFound)
	}

	if err := c.index.Upsert(card.ID, vec); err != nil {
		return fmt.Errorf("index flashcard %s: %w", card.ID, err)
	}
	c.notify()
	return nil
}

// Delete removes flashcard id and its index entry.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	id, err := models.ParseID(id)
	if err != nil {
		return err
	}

	deleted, err := c.store.DeleteOne(ctx, Collection, docstore.ByID(id))
	if err != nil {
		return fmt.Errorf("delete flashcard %s: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("flashcard %s: %w", id, models.ErrNotFound)
	}

	c.index.Remove(id)
	c.notify()
	c.logger.Info().Str("flashcard_id", id).Msg("Flashcard deleted")
	return nil
}

// DetachClass clears the class tag of every flashcard in classID and
// returns how many were changed.
func (c *Catalog) DetachClass(ctx context.Context, classID string) (int, error) {
	docs, err := c.store.Find(ctx, Collection, docstore.Filter{fieldClass: classID}, docstore.Projection{fieldClass})
	if err != nil {
		return 0, fmt.Errorf("find flashcards of class %s: %w", classID, err)
	}

	detached := 0
	for _, doc := range docs {
		_, err := c.store.UpdateOne(ctx, Collection, docstore.ByID(doc.ID()), docstore.Update{Set: map[string]any{
			fieldClass:   "",
			fieldUpdated: c.now().UTC(),
		}}, false)
		if err != nil {
			return detached, fmt.Errorf("detach flashcard %s: %w", doc.ID(), err)
		}
		detached++
	}

	if detached > 0 {
		c.notify()
		c.logger.Info().Str("class_id", classID).Int("flashcards", detached).Msg("Flashcards detached from class")
	}
	return detached, nil
}

// Warm loads every stored embedding into the index. Records with no
// embedding, or one of the wrong width, are re-embedded. It returns the
// number of indexed flashcards.
func (c *Catalog) Warm(ctx context.Context) (int, error) {
	docs, err := c.store.Find(ctx, Collection, docstore.Filter{}, docstore.Projection{fieldEmbedding, fieldCreated})
	if err != nil {
		return 0, fmt.Errorf("load embeddings: %w", err)
	}

	cards := make([]models.Flashcard, 0, len(docs))
	for _, doc := range docs {
		var card models.Flashcard
		if err := doc.Decode(&card); err != nil {
			c.logger.Warn().Err(err).Str("flashcard_id", doc.ID()).Msg("Skipping undecodable flashcard")
			continue
		}
		cards = append(cards, card)
	}
	// Index insertion order breaks similarity ties, so replay creation order.
	sortByCreation(cards)

	indexed, reembedded := 0, 0
	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}

		err := errMissingEmbedding
		if len(card.Embedding) > 0 {
			err = c.index.Upsert(card.ID, card.Embedding)
		}
		if errors.Is(err, errMissingEmbedding) || errors.Is(err, vectorindex.ErrDimensionMismatch) {
			err = c.Reembed(ctx, card.ID)
			reembedded++
		}
		if err != nil {
			c.logger.Warn().Err(err).Str("flashcard_id", card.ID).Msg("Failed to index flashcard")
			continue
		}
		indexed++
	}

	c.logger.Info().
		Int("indexed", indexed).
		Int("reembedded", reembedded).
		Int("records", len(docs)).
		Msg("Vector index warmed from catalog")
	return indexed, nil
}

var errMissingEmbedding = errors.New("flashcard has no embedding")

// sortByCreation orders cards oldest first, by id within the same instant.
func sortByCreation(cards []models.Flashcard) {
	sort.SliceStable(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
		return cards[i].ID < cards[j].ID
	})
}

func normalizePatch(p *models.FlashcardPatch) {
	for _, field := range []**string{&p.Question, &p.Answer, &p.Topic, &p.Difficulty, &p.ClassID} {
		if *field != nil {
			trimmed := strings.TrimSpace(**field)
			*field = &trimmed
		}
	}
}
