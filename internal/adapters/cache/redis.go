package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisProcessedEventStore remembers payment identifiers so redelivery of an
// already-processed event is acknowledged without creating a second order.
type RedisProcessedEventStore struct {
	client *redis.Client
}

func NewRedisProcessedEventStore(client *redis.Client) *RedisProcessedEventStore {
	return &RedisProcessedEventStore{client: client}
}

func (s *RedisProcessedEventStore) Seen(ctx context.Context, paymentID string) (bool, error) {
	n, err := s.client.Exists(ctx, processedKey(paymentID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisProcessedEventStore) MarkProcessed(ctx context.Context, paymentID string, ttl time.Duration) error {
	return s.client.SetNX(ctx, processedKey(paymentID), time.Now().UTC().Unix(), ttl).Err()
}

func processedKey(paymentID string) string {
	return "orders:payment:" + paymentID
}

// RedisProductLockStore serializes reconciliation passes per product across
// concurrent webhook deliveries. Best effort: a short bounded retry, then the
// caller proceeds unlocked.
type RedisProductLockStore struct {
	client *redis.Client
}

func NewRedisProductLockStore(client *redis.Client) *RedisProductLockStore {
	return &RedisProductLockStore{client: client}
}

const (
	lockAttempts   = 5
	lockRetryDelay = 50 * time.Millisecond
)

func (s *RedisProductLockStore) Acquire(ctx context.Context, productID string, ttl time.Duration) (bool, error) {
	key := "orders:lock:product:" + productID
	for attempt := 0; attempt < lockAttempts; attempt++ {
		ok, err := s.client.SetNX(ctx, key, 1, ttl).Result()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	return false, nil
}

func (s *RedisProductLockStore) Release(ctx context.Context, productID string) error {
	return s.client.Del(ctx, "orders:lock:product:"+productID).Err()
}
