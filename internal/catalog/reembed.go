// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/flashpath/internal/docstore"
	"github.com/tomtom215/flashpath/internal/embedding"
	"github.com/tomtom215/flashpath/internal/logging"
	"github.com/tomtom215/flashpath/internal/metrics"
	"github.com/tomtom215/flashpath/internal/models"
)

// ReembedRequest is the payload of a re-embed message.
type ReembedRequest struct {
	FlashcardID string    `json:"flashcard_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// NATSConfig configures the JetStream transport.
type NATSConfig struct {
	URL            string
	DurableName    string
	QueueGroup     string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	CloseTimeout   time.Duration
	MaxReconnects  int
	ReconnectWait  time.Duration
}

// DefaultNATSConfig returns production defaults for url.
func DefaultNATSConfig(url, durableName string) NATSConfig {
	return NATSConfig{
		URL:            url,
		DurableName:    durableName,
		QueueGroup:     "reembedders",
		AckWaitTimeout: 30 * time.Second,
		MaxDeliver:     5,
		CloseTimeout:   30 * time.Second,
		MaxReconnects:  -1,
		ReconnectWait:  2 * time.Second,
	}
}

// Queue carries re-embed requests from content edits to a Consumer.
type Queue struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	closers    []func() error
	topic      string
	logger     zerolog.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewChannelQueue returns an in-process queue. Requests published while no
// consumer is subscribed are dropped.
func NewChannelQueue(topic string, logger zerolog.Logger) *Queue {
	logger = logger.With().Str("component", "reembed-queue").Logger()
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, watermillLogger(logger))

	return &Queue{
		publisher:  ch,
		subscriber: ch,
		closers:    []func() error{ch.Close},
		topic:      topic,
		logger:     logger,
	}
}

// NewNATSQueue returns a queue backed by NATS JetStream. The stream is
// provisioned on first use and named after topic.
func NewNATSQueue(topic string, cfg NATSConfig, logger zerolog.Logger) (*Queue, error) {
	logger = logger.With().Str("component", "reembed-queue").Logger()
	wmLogger := watermillLogger(logger)

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create re-embed publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   cfg.AckWaitTimeout,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			AckAsync:      false,
			DurablePrefix: cfg.DurableName,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.MaxDeliver(cfg.MaxDeliver),
				natsgo.AckWait(cfg.AckWaitTimeout),
				natsgo.DeliverNew(),
			},
		},
	}, wmLogger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create re-embed subscriber: %w", err)
	}

	return &Queue{
		publisher:  pub,
		subscriber: sub,
		closers:    []func() error{pub.Close, sub.Close},
		topic:      topic,
		logger:     logger,
	}, nil
}

// Schedule publishes a re-embed request for flashcardID.
func (q *Queue) Schedule(ctx context.Context, flashcardID string) error {
	payload, err := json.Marshal(ReembedRequest{FlashcardID: flashcardID, RequestedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal re-embed request: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("flashcard_id", flashcardID)
	msg.SetContext(ctx)

	if err := q.publisher.Publish(q.topic, msg); err != nil {
		return fmt.Errorf("publish re-embed request: %w", err)
	}
	metrics.ReembedEvents.WithLabelValues("published").Inc()
	q.logger.Debug().Str("flashcard_id", flashcardID).Str("message_uuid", msg.UUID).Msg("Re-embed scheduled")
	return nil
}

// Close shuts down the transport. It is safe to call more than once.
func (q *Queue) Close() error {
	q.closeOnce.Do(func() {
		errs := make([]error, 0, len(q.closers))
		for _, closeFn := range q.closers {
			errs = append(errs, closeFn())
		}
		q.closeErr = errors.Join(errs...)
	})
	return q.closeErr
}

// Consumer applies re-embed requests. It implements suture.Service.
type Consumer struct {
	queue       *Queue
	catalog     *Catalog
	logger      zerolog.Logger
	maxAttempts int
	retryDelay  time.Duration

	mu       sync.Mutex
	attempts map[string]int
}

// NewConsumer returns a Consumer that re-embeds through c.
func (q *Queue) NewConsumer(c *Catalog) *Consumer {
	return &Consumer{
		queue:       q,
		catalog:     c,
		logger:      q.logger,
		maxAttempts: 5,
		retryDelay:  time.Second,
		attempts:    make(map[string]int),
	}
}

// Serve consumes until ctx is done.
func (c *Consumer) Serve(ctx context.Context) error {
	messages, err := c.queue.subscriber.Subscribe(ctx, c.queue.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.queue.topic, err)
	}
	c.logger.Info().Str("topic", c.queue.topic).Msg("Re-embed consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.process(ctx, msg)
		}
	}
}

// String names the service in supervisor logs.
func (c *Consumer) String() string {
	return "reembed-consumer"
}

func (c *Consumer) process(ctx context.Context, msg *message.Message) {
	var req ReembedRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		metrics.ReembedEvents.WithLabelValues("failed").Inc()
		c.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable re-embed request")
		msg.Ack()
		return
	}

	err := c.catalog.Reembed(ctx, req.FlashcardID)
	switch {
	case err == nil:
		metrics.ReembedEvents.WithLabelValues("processed").Inc()
		c.logger.Debug().Str("flashcard_id", req.FlashcardID).Msg("Flashcard re-embedded")
		c.forget(msg.UUID)
		msg.Ack()

	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrMalformedID):
		metrics.ReembedEvents.WithLabelValues("stale").Inc()
		c.logger.Debug().Str("flashcard_id", req.FlashcardID).Msg("Re-embed target no longer exists")
		c.forget(msg.UUID)
		msg.Ack()

	case retryable(err) && c.attempt(msg.UUID) < c.maxAttempts:
		c.logger.Warn().Err(err).Str("flashcard_id", req.FlashcardID).Msg("Re-embed failed, will retry")
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
		}
		msg.Nack()

	default:
		metrics.ReembedEvents.WithLabelValues("failed").Inc()
		c.logger.Error().Err(err).Str("flashcard_id", req.FlashcardID).Msg("Giving up on re-embed")
		c.forget(msg.UUID)
		msg.Ack()
	}
}

// attempt counts a delivery of uuid and returns the count.
func (c *Consumer) attempt(uuid string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts[uuid]++
	return c.attempts[uuid]
}

func (c *Consumer) forget(uuid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.attempts, uuid)
}

func retryable(err error) bool {
	return embedding.IsRetryable(err) || docstore.IsRetryable(err)
}

func watermillLogger(logger zerolog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger(logger))
}
