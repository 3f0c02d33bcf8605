package online

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type countingClient struct {
	mu    sync.Mutex
	body  string
	err   error
	calls int
}

func (c *countingClient) MakeRequest(ctx context.Context, url string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.body, nil
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCachedClientHitSkipsUpstream(t *testing.T) {
	mr, rdb := newTestRedis(t)
	inner := &countingClient{body: `{"features":[]}`}
	c := NewCachedClient(inner, rdb, WithTTL(time.Minute))
	url := "https://example.test/routing/route?routeMode=car&points=1,2"

	for i := 0; i < 3; i++ {
		body, err := c.MakeRequest(context.Background(), url)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if body != inner.body {
			t.Fatalf("call %d: body = %q", i, body)
		}
	}

	if inner.calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", inner.calls)
	}

	key := cacheKey(url)
	if !mr.Exists(key) {
		t.Fatalf("expected key %s in redis", key)
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("ttl = %v, want 1m", ttl)
	}
}

func TestCachedClientDoesNotCacheFailures(t *testing.T) {
	mr, rdb := newTestRedis(t)
	inner := &countingClient{err: errors.New("connection reset")}
	c := NewCachedClient(inner, rdb)
	url := "https://example.test/routing/route?routeMode=bicycle&points=1,2"

	if _, err := c.MakeRequest(context.Background(), url); err == nil {
		t.Fatal("expected error")
	}
	if _, err := c.MakeRequest(context.Background(), url); err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 2 {
		t.Fatalf("upstream calls = %d, want 2", inner.calls)
	}
	if mr.Exists(cacheKey(url)) {
		t.Fatal("failure must not be cached")
	}
}

func TestCachedClientFallsThroughWhenRedisDown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mr.Close()

	var logged []string
	inner := &countingClient{body: "ok"}
	c := NewCachedClient(inner, rdb, WithLogger(func(format string, args ...any) {
		logged = append(logged, format)
	}))

	body, err := c.MakeRequest(context.Background(), "https://example.test/routing/route")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "ok" || inner.calls != 1 {
		t.Fatalf("body=%q calls=%d", body, inner.calls)
	}
	if len(logged) != 2 {
		t.Fatalf("logged %d lines, want read and write failures", len(logged))
	}
	if !strings.Contains(logged[0], "read failed") || !strings.Contains(logged[1], "write failed") {
		t.Fatalf("unexpected log lines: %v", logged)
	}
}

func TestCacheKeyDistinguishesURLs(t *testing.T) {
	a := cacheKey("https://example.test/route?routeMode=car&points=1,2")
	b := cacheKey("https://example.test/route?routeMode=bicycle&points=1,2")
	if a == b {
		t.Fatal("different urls produced the same key")
	}
	if !strings.HasPrefix(a, cacheKeyPrefix) {
		t.Fatalf("key %q lacks prefix", a)
	}
}
