package zoom

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// safetyMargin is subtracted from a token's expiry when deciding whether
// it is still usable, so a token is never handed out moments before the
// upstream stops accepting it.
const safetyMargin = 60 * time.Second

// TokenCache holds the current Server-to-Server access token for this
// process. The cached entry is replaced wholesale, never mutated.
type TokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewTokenCache returns an empty process-local cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{now: time.Now}
}

// Get returns the cached token if present and not within the safety
// margin of its expiry.
func (c *TokenCache) Get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || !c.now().Before(c.expiresAt.Add(-safetyMargin)) {
		return "", false
	}
	return c.token, true
}

// Put replaces the cached entry.
func (c *TokenCache) Put(token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiresAt = expiresAt
}

// SharedTokenCache is an optional second tier shared between replicas.
// A miss is (empty, zero, nil); errors are reported so callers can log
// and fall through to a fresh exchange.
type SharedTokenCache interface {
	Get(ctx context.Context) (token string, expiresAt time.Time, err error)
	Put(ctx context.Context, token string, expiresAt time.Time) error
}

const redisTokenKey = "zoom:s2s:access_token"

type cachedToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// RedisTokenCache shares the access token across replicas through Redis.
type RedisTokenCache struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// NewRedisTokenCache wraps a Redis client as the shared tier.
func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client, key: redisTokenKey, now: time.Now}
}

func (c *RedisTokenCache) Get(ctx context.Context) (string, time.Time, error) {
	raw, err := c.client.Get(ctx, c.key).Result()
	if err == redis.Nil {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, err
	}

	var entry cachedToken
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Unix(entry.ExpiresAt, 0)
	if entry.Token == "" || !c.now().Before(expiresAt.Add(-safetyMargin)) {
		return "", time.Time{}, nil
	}
	return entry.Token, expiresAt, nil
}

func (c *RedisTokenCache) Put(ctx context.Context, token string, expiresAt time.Time) error {
	payload, err := json.Marshal(cachedToken{Token: token, ExpiresAt: expiresAt.Unix()})
	if err != nil {
		return err
	}
	ttl := expiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key, payload, ttl).Err()
}
