package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	PostKeyPrefix  = "post:%s"
	TallyKeyPrefix = "tally:%s"
)

const (
	// Posts carry denormalized counters, so a short TTL bounds staleness if an
	// invalidation is ever missed.
	PostTTL  = 5 * time.Minute
	TallyTTL = 2 * time.Minute
)

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func TallyKey(userID string) string {
	return fmt.Sprintf(TallyKeyPrefix, userID)
}

// GetJSON reads the value at key into dest. Returns false on miss, cache
// disabled, or decode failure.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// SetJSON stores value at key with the given TTL. Failures are ignored; the
// database remains the source of truth.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// Aside implements the cache-aside pattern: read key, on miss call load,
// store the result and return it.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	if GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	SetJSON(ctx, key, value, ttl)
	return value, nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateTally(ctx context.Context, userID string) {
	Invalidate(ctx, TallyKey(userID))
}
