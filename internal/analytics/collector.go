package analytics

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

const maxBatch = 100

// Publisher writes events to the analytics topic. *kafka.Producer
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

// Collector buffers analytics events and publishes them from a single
// goroutine so that request handlers never wait on Kafka. Whatever has
// queued up while a publish was in flight goes out as the next batch.
// Events are dropped when the buffer is full.
type Collector struct {
	publisher Publisher
	eventCh   chan any
	logger    *slog.Logger
	done      chan struct{}
}

func NewCollector(publisher Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		publisher: publisher,
		eventCh:   make(chan any, bufferSize),
		logger:    slog.Default().With("component", "analytics-collector"),
		done:      make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				batch, open := c.fill([]kafka.Event{toKafka(event)})
				c.publish(ctx, batch)
				if !open {
					return
				}
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track queues event without blocking. A nil Collector discards it.
func (c *Collector) Track(event any) {
	if c == nil {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the buffer to be flushed.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

// fill appends already-queued events up to maxBatch. The bool is false
// once the channel has been closed.
func (c *Collector) fill(batch []kafka.Event) ([]kafka.Event, bool) {
	for len(batch) < maxBatch {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return batch, false
			}
			batch = append(batch, toKafka(event))
		default:
			return batch, true
		}
	}
	return batch, true
}

func (c *Collector) publish(ctx context.Context, batch []kafka.Event) {
	if err := c.publisher.Publish(ctx, batch...); err != nil {
		c.logger.Error("failed to publish analytics events", "count", len(batch), "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		batch, open := c.fill(nil)
		if len(batch) > 0 {
			c.publish(context.Background(), batch)
		}
		if !open || len(batch) < maxBatch {
			return
		}
	}
}

func toKafka(event any) kafka.Event {
	return kafka.Event{Key: eventKey(event), Value: event}
}

func eventKey(event any) string {
	switch e := event.(type) {
	case SearchEvent:
		return string(e.Type)
	case IndexEvent:
		return string(e.Type)
	default:
		return "analytics"
	}
}
