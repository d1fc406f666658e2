package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/walletguard/walletd/pkg/domain/events"
)

// RedisPublisher appends notifications to a Redis stream. Consumers (push
// gateways, websocket broadcasters) read the stream with consumer groups.
type RedisPublisher struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

// NewRedisPublisher connects to Redis and verifies the connection.
func NewRedisPublisher(url, stream string, logger *slog.Logger) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis notifier: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis notifier: connection failed: %w", err)
	}
	return &RedisPublisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "redis-notifier"),
	}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("redis notifier: marshal %s: %w", e.Type(), err)
	}
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":    e.Type(),
			"payload": payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis notifier: xadd: %w", err)
	}
	p.logger.Debug("notification published", "type", e.Type(), "stream", p.stream)
	return nil
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error { return p.client.Close() }
