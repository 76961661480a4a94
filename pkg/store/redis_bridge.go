package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBridge stores bridge records in Redis so usage counters and
// onboarding flags survive restarts and are shared between instances.
type RedisBridge struct {
	client *redis.Client
}

// NewRedisBridge builds a Redis-backed bridge.
func NewRedisBridge(addr, password string) *RedisBridge {
	return &RedisBridge{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// Get returns the stored value for key.
func (b *RedisBridge) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	value, err := b.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key without expiry.
func (b *RedisBridge) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return b.client.Set(ctx, key, value, 0).Err()
}
