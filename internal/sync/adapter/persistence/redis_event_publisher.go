package persistence

import (
	"context"
	"encoding/json"

	"itemsync/internal/shared/logger"
	"itemsync/internal/sync/domain/model"

	"github.com/redis/go-redis/v9"
)

const defaultChangeStream = "itemsync:changes"

// RedisEventPublisher delivers change events onto a Redis Stream, giving
// downstream consumers replayable, ordered delivery per stream.
type RedisEventPublisher struct {
	client *redis.Client
	stream string
	logger logger.Logger
}

// NewRedisEventPublisher creates a publisher writing to the given stream.
// An empty stream name falls back to the default.
func NewRedisEventPublisher(client *redis.Client, stream string, log logger.Logger) *RedisEventPublisher {
	if stream == "" {
		stream = defaultChangeStream
	}
	return &RedisEventPublisher{
		client: client,
		stream: stream,
		logger: log.WithComponent("redis-event-publisher"),
	}
}

// Publish appends one change event to the stream.
func (p *RedisEventPublisher) Publish(ctx context.Context, event model.ChangeEvent) error {
	changed, err := json.Marshal(event.Changed)
	if err != nil {
		p.logger.Errorf("Failed to serialize changed attributes: %v", err)
		return err
	}

	_, err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"eventId":     event.ID,
			"recordId":    string(event.RecordID),
			"partition":   event.Partition,
			"naturalKey":  event.NaturalKey,
			"changed":     changed,
			"routingFlag": event.RoutingFlag,
			"emittedAt":   event.EmittedAt.UnixNano(),
		},
	}).Result()

	if err != nil {
		p.logger.WithFields(map[string]interface{}{
			"stream":   p.stream,
			"event_id": event.ID,
		}).Errorf("Failed to publish change event: %v", err)
		return err
	}

	p.logger.WithFields(map[string]interface{}{
		"stream":   p.stream,
		"event_id": event.ID,
	}).Debug("Change event published to stream")
	return nil
}
