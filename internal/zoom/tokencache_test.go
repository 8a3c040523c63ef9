package zoom

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestTokenCacheGetHonorsSafetyMargin(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	cache := NewTokenCache()
	cache.now = func() time.Time { return base }

	if _, ok := cache.Get(); ok {
		t.Fatal("empty cache should miss")
	}

	cache.Put("token-a", base.Add(5*time.Minute))
	if token, ok := cache.Get(); !ok || token != "token-a" {
		t.Fatalf("expected fresh token, got %q ok=%v", token, ok)
	}

	// 90 seconds before expiry: still outside the margin.
	cache.now = func() time.Time { return base.Add(5*time.Minute - 90*time.Second) }
	if _, ok := cache.Get(); !ok {
		t.Error("token outside safety margin should hit")
	}

	// 30 seconds before expiry: inside the margin, treated as stale.
	cache.now = func() time.Time { return base.Add(5*time.Minute - 30*time.Second) }
	if _, ok := cache.Get(); ok {
		t.Error("token inside safety margin should miss")
	}
}

func TestTokenCachePutReplacesEntry(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	cache := NewTokenCache()
	cache.now = func() time.Time { return base }

	cache.Put("token-a", base.Add(5*time.Minute))
	cache.Put("token-b", base.Add(10*time.Minute))

	if token, ok := cache.Get(); !ok || token != "token-b" {
		t.Fatalf("expected replacement token, got %q ok=%v", token, ok)
	}
}

func newRedisCache(t *testing.T) (*RedisTokenCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisTokenCache(client), server
}

func TestRedisTokenCacheRoundTrip(t *testing.T) {
	cache, _ := newRedisCache(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	if err := cache.Put(ctx, "shared-token", expiresAt); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	token, gotExpiry, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if token != "shared-token" {
		t.Errorf("token = %q", token)
	}
	if !gotExpiry.Equal(expiresAt) {
		t.Errorf("expiry = %v, want %v", gotExpiry, expiresAt)
	}
}

func TestRedisTokenCacheMissOnEmpty(t *testing.T) {
	cache, _ := newRedisCache(t)

	token, _, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if token != "" {
		t.Errorf("expected miss, got %q", token)
	}
}

func TestRedisTokenCacheHonorsSafetyMargin(t *testing.T) {
	cache, _ := newRedisCache(t)
	ctx := context.Background()

	// Expires in 30s: within the margin, so reads must miss.
	if err := cache.Put(ctx, "stale-soon", time.Now().Add(30*time.Second)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	token, _, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if token != "" {
		t.Errorf("expected miss inside margin, got %q", token)
	}
}

func TestRedisTokenCacheEntryExpires(t *testing.T) {
	cache, server := newRedisCache(t)
	ctx := context.Background()

	if err := cache.Put(ctx, "shared-token", time.Now().Add(2*time.Minute)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	server.FastForward(3 * time.Minute)

	token, _, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if token != "" {
		t.Errorf("expected key to expire, got %q", token)
	}
}

func TestRedisTokenCacheSkipsAlreadyStaleWrites(t *testing.T) {
	cache, server := newRedisCache(t)

	if err := cache.Put(context.Background(), "dead-token", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if server.Exists(redisTokenKey) {
		t.Error("stale token should not be written")
	}
}
