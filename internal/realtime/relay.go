package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/LibraryGo/internal/event"
	pkgkafka "github.com/utafrali/LibraryGo/pkg/kafka"
)

const (
	// Channel is the Redis pub/sub channel notifications are fanned out on.
	Channel = "library:events"

	// ConsumerGroup is the Kafka consumer group of the relay.
	ConsumerGroup = "library-realtime"

	idempotencyPrefix = "library:realtime:seen:"
	idempotencyTTL    = 24 * time.Hour
)

// Topics lists the Kafka topics the relay consumes.
var Topics = []string{event.TopicBookCreated, event.TopicReviewCreated}

// knownTypes are the event types that may be streamed to clients.
var knownTypes = map[string]bool{
	event.TypeBookCreated:   true,
	event.TypeReviewCreated: true,
}

// Notification is the message published on Channel and streamed to clients.
type Notification struct {
	EventID     string          `json:"event_id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Data        json.RawMessage `json:"data"`
}

// Relay republishes catalog events from Kafka on a Redis channel.
type Relay struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewRelay creates a relay publishing through client.
func NewRelay(client redis.UniversalClient, logger *slog.Logger) *Relay {
	return &Relay{client: client, logger: logger}
}

// Handle publishes one event. Unknown event types are skipped.
func (r *Relay) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	if !knownTypes[evt.EventType] {
		r.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", evt.EventType),
			slog.String("event_id", evt.EventID),
		)
		return nil
	}

	payload, err := json.Marshal(Notification{
		EventID:     evt.EventID,
		Type:        evt.EventType,
		AggregateID: evt.AggregateID,
		Timestamp:   evt.Timestamp,
		Data:        evt.Data,
	})
	if err != nil {
		return fmt.Errorf("marshal %s notification: %w", evt.EventType, err)
	}

	if err := r.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s notification: %w", evt.EventType, err)
	}

	r.logger.DebugContext(ctx, "relayed event",
		slog.String("event_type", evt.EventType),
		slog.String("aggregate_id", evt.AggregateID),
	)
	return nil
}

// Handler returns Handle wrapped with event-ID deduplication backed by the
// relay's Redis client, so redelivered messages are streamed once.
func (r *Relay) Handler() pkgkafka.Handler {
	store := pkgkafka.NewRedisIdempotencyStore(r.client, idempotencyPrefix, idempotencyTTL)
	return pkgkafka.IdempotentHandler(store, r.Handle, r.logger)
}

// Consumers creates one Kafka consumer per relayed topic. An empty groupID
// uses ConsumerGroup.
func (r *Relay) Consumers(brokers []string, groupID string) []*pkgkafka.Consumer {
	if groupID == "" {
		groupID = ConsumerGroup
	}
	handler := r.Handler()
	consumers := make([]*pkgkafka.Consumer, 0, len(Topics))
	for _, topic := range Topics {
		consumers = append(consumers, pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers:  brokers,
			GroupID:  groupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}, handler, r.logger))
	}
	return consumers
}
