// Package cache keeps derived results in Redis between requests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/castlemilk/pfinance/insights/internal/service"
)

// DefaultDigestTTL outlives one weekly run so a digest is always available
// until the next one replaces it.
const DefaultDigestTTL = 8 * 24 * time.Hour

const digestKeyPrefix = "insights:digest:"

// DigestCache stores the latest weekly digest per user as JSON.
type DigestCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ service.DigestCache = (*DigestCache)(nil)

// NewDigestCache wraps a Redis client. A non-positive ttl uses DefaultDigestTTL.
func NewDigestCache(client redis.Cmdable, ttl time.Duration) *DigestCache {
	if ttl <= 0 {
		ttl = DefaultDigestTTL
	}
	return &DigestCache{client: client, ttl: ttl}
}

// Dial connects to the Redis server at addr and checks it is reachable.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return client, nil
}

func digestKey(userID string) string {
	return digestKeyPrefix + userID
}

func (c *DigestCache) SaveDigest(ctx context.Context, digest service.WeeklyDigest) error {
	if digest.UserID == "" {
		return errors.New("digest has no user")
	}
	data, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("failed to encode digest: %w", err)
	}
	if err := c.client.Set(ctx, digestKey(digest.UserID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache digest: %w", err)
	}
	return nil
}

func (c *DigestCache) LatestDigest(ctx context.Context, userID string) (service.WeeklyDigest, bool, error) {
	data, err := c.client.Get(ctx, digestKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return service.WeeklyDigest{}, false, nil
	}
	if err != nil {
		return service.WeeklyDigest{}, false, fmt.Errorf("failed to read cached digest: %w", err)
	}

	var digest service.WeeklyDigest
	if err := json.Unmarshal(data, &digest); err != nil {
		return service.WeeklyDigest{}, false, fmt.Errorf("failed to decode cached digest: %w", err)
	}
	return digest, true, nil
}
