package publisher

import (
	"context"
	"encoding/base64"

	"github.com/redis/go-redis/v9"

	"sjsage522/promonotifier/internal/promo"
	apperrors "sjsage522/promonotifier/pkg/errors"
)

const (
	redisSource = "redis"

	// redisField is the stream entry field holding the base64 encoded event
	redisField = "b64_promo_codes"
)

// RedisPublisher mirrors events into a Redis stream
type RedisPublisher struct {
	client          *redis.Client
	stream          string
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, stream string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		stream:          stream,
		streamMaxLength: streamMaxLength,
	}
}

// Ping checks the Redis connection
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Publish adds the event to the stream.
// The JSON payload is base64 encoded before publishing.
func (p *RedisPublisher) Publish(ctx context.Context, event promo.Event) error {
	payload, err := event.JSON()
	if err != nil {
		return apperrors.NewPublisher(redisSource, "failed to encode event", err)
	}

	encoded := base64.StdEncoding.EncodeToString(payload)

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			redisField: encoded,
		},
	}).Err()
	if err != nil {
		return apperrors.NewPublisher(redisSource, "failed to add event to stream", err)
	}

	return p.TrimStream(ctx)
}

// TrimStream trims the stream to the configured maximum length
func (p *RedisPublisher) TrimStream(ctx context.Context) error {
	if p.streamMaxLength <= 0 {
		return nil
	}
	if err := p.client.XTrimMaxLen(ctx, p.stream, int64(p.streamMaxLength)).Err(); err != nil {
		return apperrors.NewPublisher(redisSource, "failed to trim stream", err)
	}
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
