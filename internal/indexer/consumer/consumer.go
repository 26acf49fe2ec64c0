// Package consumer reads document events from Kafka and applies them to
// the search server.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/parallel"
)

const (
	OpAdd    = "add"
	OpRemove = "remove"
)

// IngestEvent is one message on the document-ingest topic.
type IngestEvent struct {
	Op      string          `json:"op"`
	ID      int             `json:"id"`
	Text    string          `json:"text"`
	Status  document.Status `json:"status"`
	Ratings []int           `json:"ratings"`
	Mode    parallel.Mode   `json:"mode"`
}

// Writer applies mutations. Implementations serialize them against
// searches.
type Writer interface {
	AddDocument(ctx context.Context, id int, text string, status document.Status, ratings []int) error
	RemoveDocument(ctx context.Context, id int, mode parallel.Mode) bool
}

// IndexConsumer wraps a Kafka consumer to drive ingestion.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler applying each event to w.
// Events that can never succeed (undecodable, unknown op, rejected by
// validation) are logged and committed; anything else is returned so the
// message is retried.
func HandleMessage(w Writer, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[IngestEvent](value)
		if err != nil {
			logger.Error("failed to decode ingest event",
				"error", err,
				"key", string(key),
			)
			m.IngestEvent("unknown", "malformed")
			return nil
		}

		switch event.Op {
		case OpAdd:
			if err := w.AddDocument(ctx, event.ID, event.Text, event.Status, event.Ratings); err != nil {
				if errors.Is(err, apperrors.ErrInvalidArgument) {
					logger.Warn("ingest event rejected", "doc_id", event.ID, "error", err)
					m.IngestEvent(OpAdd, "rejected")
					return nil
				}
				m.IngestEvent(OpAdd, "error")
				return fmt.Errorf("adding document %d: %w", event.ID, err)
			}
			m.IngestEvent(OpAdd, "ok")
			logger.Debug("document added from kafka", "doc_id", event.ID)
		case OpRemove:
			removed := w.RemoveDocument(ctx, event.ID, event.Mode)
			status := "ok"
			if !removed {
				status = "noop"
			}
			m.IngestEvent(OpRemove, status)
			logger.Debug("document removed from kafka", "doc_id", event.ID, "removed", removed)
		default:
			logger.Error("unknown ingest op", "op", event.Op, "doc_id", event.ID)
			m.IngestEvent("unknown", "malformed")
		}
		return nil
	}
}
