package events

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/abdul-hamid-achik/assetvault/internal/metrics"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

// DefaultStream is the Redis stream events are published to.
const DefaultStream = "assetvault:events"

// defaultMaxLen caps the stream length; trimming is approximate.
const defaultMaxLen = 100_000

// RedisPublisher appends events to a Redis stream.
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisPublisher creates a publisher writing to stream.
func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{
		client: client,
		stream: stream,
		maxLen: defaultMaxLen,
	}
}

// Publish adds every event to the stream in one pipeline.
func (p *RedisPublisher) Publish(ctx context.Context, events []*store.Event) error {
	if len(events) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, ev := range events {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: p.maxLen,
			Approx: true,
			Values: map[string]any{
				"seq":       strconv.FormatUint(ev.Seq, 10),
				"id":        ev.ID.String(),
				"type":      ev.Type,
				"timestamp": ev.Timestamp.Unix(),
				"data":      string(ev.Data),
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		metrics.EventsPublished.WithLabelValues("redis", "error").Add(float64(len(events)))
		return fmt.Errorf("publish events to %s: %w", p.stream, err)
	}
	metrics.EventsPublished.WithLabelValues("redis", "ok").Add(float64(len(events)))
	return nil
}

// Close closes the Redis client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
