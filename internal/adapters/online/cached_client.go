package online

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"missing-maps-service/internal/platform/obs"
	"missing-maps-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultCacheTTL = 10 * time.Minute

	cacheKeyPrefix    = "missingmaps:route:"
	cacheQueryTimeout = 2 * time.Second
)

// Logger is a printf-style logging function, e.g. log.Printf.
type Logger func(format string, args ...any)

// CachedClient wraps an OnlineRoutingClient with a Redis cache-aside layer
// keyed by request URL. Only successful responses are cached. Cache failures
// are logged and otherwise ignored.
type CachedClient struct {
	inner  ports.OnlineRoutingClient
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger Logger
}

type CachedClientOption func(*CachedClient)

func WithTTL(ttl time.Duration) CachedClientOption {
	return func(c *CachedClient) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithLogger(l Logger) CachedClientOption {
	return func(c *CachedClient) { c.logger = l }
}

func NewCachedClient(inner ports.OnlineRoutingClient, rdb redis.UniversalClient, opts ...CachedClientOption) *CachedClient {
	c := &CachedClient{inner: inner, rdb: rdb, ttl: DefaultCacheTTL}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *CachedClient) MakeRequest(ctx context.Context, url string) (_ string, err error) {
	defer obs.Time(ctx, "online.CachedClient.MakeRequest")(&err)

	key := cacheKey(url)

	body, err := c.get(ctx, key)
	switch {
	case err == nil:
		return body, nil
	case !errors.Is(err, redis.Nil):
		c.logf("online: cache: read failed key=%s: %v", key, err)
	}

	body, err = c.inner.MakeRequest(ctx, url)
	if err != nil {
		return "", err
	}

	if err := c.set(ctx, key, body); err != nil {
		c.logf("online: cache: write failed key=%s: %v", key, err)
	}

	return body, nil
}

func (c *CachedClient) get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cacheQueryTimeout)
	defer cancel()
	return c.rdb.Get(ctx, key).Result()
}

func (c *CachedClient) set(ctx context.Context, key, body string) error {
	ctx, cancel := context.WithTimeout(ctx, cacheQueryTimeout)
	defer cancel()
	return c.rdb.Set(ctx, key, body, c.ttl).Err()
}

func (c *CachedClient) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger(format, args...)
	}
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// NewRedisClient parses a redis:// URL and returns a connected client.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, cacheQueryTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
