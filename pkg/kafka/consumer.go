// Package kafka provides the document-ingest and analytics topics' clients
// on top of segmentio/kafka-go. Values are JSON; consumers hand each
// message to a MessageHandler and commit it once handled.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one message. A non-nil error makes the
// consumer retry the same message.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

var defaultRetry = resilience.Policy{
	Attempts:     3,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     2 * time.Second,
	Jitter:       0.1,
}

// messageReader is the subset of *kafka.Reader the consume loop needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  messageReader
	logger  *slog.Logger
	handler MessageHandler
	retry   resilience.Policy
}

type ConsumerOption func(*kafka.ReaderConfig, *Consumer)

// FromFirstOffset makes a new consumer group start at the oldest retained
// message instead of the newest. Document ingestion uses it so a fresh
// searcher replays the topic.
func FromFirstOffset() ConsumerOption {
	return func(rc *kafka.ReaderConfig, _ *Consumer) {
		rc.StartOffset = kafka.FirstOffset
	}
}

// WithMaxRetries bounds handler attempts per message; after the last
// failure the message is logged and committed.
func WithMaxRetries(n int) ConsumerOption {
	return func(_ *kafka.ReaderConfig, c *Consumer) {
		if n > 0 {
			c.retry.Attempts = n
		}
	}
}

func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler, opts ...ConsumerOption) *Consumer {
	rc := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1e3,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	}
	c := &Consumer{
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic),
		handler: handler,
		retry:   defaultRetry,
	}
	for _, opt := range opts {
		opt(&rc, c)
	}
	c.reader = kafka.NewReader(rc)
	return c
}

// Start fetches and processes messages until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return c.reader.Close()
			}
			c.logger.Error("failed to fetch message", "error", err)
			continue
		}
		c.logger.Debug("message received",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"value_size", len(msg.Value),
		)
		if !c.process(ctx, msg) && ctx.Err() != nil {
			return c.reader.Close()
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// process reports whether the handler eventually succeeded.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	op := fmt.Sprintf("handle %s/%d@%d", msg.Topic, msg.Partition, msg.Offset)
	err := resilience.Do(ctx, op, c.retry, func(ctx context.Context) error {
		return c.handler(ctx, msg.Key, msg.Value)
	})
	if err != nil {
		c.logger.Error("giving up on message",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return false
	}
	return true
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
