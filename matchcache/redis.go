package matchcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jagadeeswar-N-G/agent-nexus/logging"
)

var _ Cache = (*RedisCache)(nil)

// scanBatch is the COUNT hint for SCAN during invalidation.
const scanBatch = 100

// RedisCache implements Cache on a Redis instance.
// Suitable for deployments where multiple engine processes share one
// result cache. All transport errors are logged at WARN and absorbed.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// RedisConfig configures the Redis-backed cache.
type RedisConfig struct {
	// TTL is how long entries live. Zero means entries never expire.
	TTL time.Duration

	// Logger for absorbed transport errors. Defaults to a nop logger.
	Logger *logging.Logger
}

// NewRedisCache creates a Redis-backed result cache from an existing
// client. The caller owns the client's lifecycle unless Close is used.
func NewRedisCache(client *redis.Client, cfg RedisConfig) (*RedisCache, error) {
	if client == nil {
		return nil, errors.New("nil redis client")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
		logger: cfg.Logger.WithComponent("matchcache"),
	}, nil
}

// NewRedisCacheFromURL creates a Redis-backed cache by dialing the given
// URL (e.g. "redis://localhost:6379/0").
func NewRedisCacheFromURL(url string, cfg RedisConfig) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisCache(redis.NewClient(opt), cfg)
}

// Get returns the cached value for a key. Absence and transport errors
// both read as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
		return nil, false
	}
	return val, true
}

// Set stores a value under a key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}

// Invalidate scan-deletes every compatibility entry referencing the agent
// ID. Stale entries left behind by a failed sweep expire via TTL.
func (c *RedisCache) Invalidate(ctx context.Context, agentID string) {
	if agentID == "" {
		return
	}

	pattern := Key(CompatPrefix, "*"+agentID+"*")
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			c.logger.Warn("cache invalidation failed", map[string]interface{}{"agent_id": agentID, "error": err})
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.logger.Warn("cache invalidation failed", map[string]interface{}{"agent_id": agentID, "error": err})
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// Close releases the client connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
