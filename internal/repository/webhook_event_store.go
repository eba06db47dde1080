package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// WebhookEventStore remembers which gateway webhook events were already handled.
type WebhookEventStore interface {
	// MarkProcessed records eventID and returns false if it was already recorded.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	// Forget removes eventID so a redelivery is processed again.
	Forget(ctx context.Context, eventID string) error
}

// RedisWebhookEventStore は WebhookEventStore の Redis 実装
type RedisWebhookEventStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// NewRedisWebhookEventStore keeps event ids for ttl; gateways stop retrying well within a day.
func NewRedisWebhookEventStore(rdb *redis.Client, ttl time.Duration) *RedisWebhookEventStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisWebhookEventStore{rdb: rdb, ttl: ttl}
}

func webhookEventKey(eventID string) string {
	return "webhook:event:" + eventID
}

func (s *RedisWebhookEventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	return s.rdb.SetNX(ctx, webhookEventKey(eventID), time.Now().Unix(), s.ttl).Result()
}

func (s *RedisWebhookEventStore) Forget(ctx context.Context, eventID string) error {
	return s.rdb.Del(ctx, webhookEventKey(eventID)).Err()
}
