package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Client wraps redis.Client but fails safe by swallowing connectivity errors.
// A nil *Client is valid and behaves as an always-empty cache.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a new Redis client whose entries expire after ttl.
func New(addr, password string, db int, ttl time.Duration) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts), ttl: ttl}
}

// Key builds the cache key of an entity, e.g. Key("user", 7) == "user:7".
func Key(entity string, id uint) string {
	return fmt.Sprintf("%s:%d", entity, id)
}

// Ping checks connectivity. Unlike the other methods it reports errors.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Debug().Err(err).Str("key", key).Msg("cache get failed")
		}
		return nil
	}
	return res
}

// Set stores value with the client TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Delete removes a key, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// GetJSON decodes the cached value at key into a new T. It reports false on a
// miss or an undecodable entry.
func GetJSON[T any](ctx context.Context, c *Client, key string) (*T, bool) {
	data := c.Get(ctx, key)
	if data == nil {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// SetJSON stores v encoded as JSON.
func SetJSON(ctx context.Context, c *Client, key string, v any) {
	if c == nil {
		return
	}
	if payload, err := json.Marshal(v); err == nil {
		c.Set(ctx, key, payload)
	}
}
