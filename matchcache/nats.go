package matchcache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/jagadeeswar-N-G/agent-nexus/logging"
)

var _ Cache = (*NATSCache)(nil)

// NATSCache implements Cache using a NATS JetStream KV bucket.
// Suitable for swarms that already run on NATS and do not want a separate
// Redis. Expiry uses the bucket-level TTL, so the TTL is fixed when the
// bucket is created. All transport errors are logged at WARN and absorbed.
type NATSCache struct {
	kv     jetstream.KeyValue
	logger *logging.Logger
}

// NATSCacheConfig configures the NATS-backed cache.
type NATSCacheConfig struct {
	// BucketName is the KV bucket name. Default: "match-results".
	BucketName string

	// TTL is how long entries live. Zero means entries never expire.
	TTL time.Duration

	// Replicas for the KV bucket (1-5). Default: 1.
	Replicas int

	// Logger for absorbed transport errors. Defaults to a nop logger.
	Logger *logging.Logger
}

// NewNATSCache creates a NATS-backed result cache from an existing
// connection, creating or updating the KV bucket.
func NewNATSCache(conn *nats.Conn, cfg NATSCacheConfig) (*NATSCache, error) {
	if conn == nil {
		return nil, fmt.Errorf("nil connection")
	}
	if cfg.BucketName == "" {
		cfg.BucketName = "match-results"
	}
	if cfg.Replicas < 1 {
		cfg.Replicas = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	kvCfg := jetstream.KeyValueConfig{
		Bucket:   cfg.BucketName,
		Replicas: cfg.Replicas,
	}
	if cfg.TTL > 0 {
		kvCfg.TTL = cfg.TTL
	}

	kv, err := js.CreateOrUpdateKeyValue(context.Background(), kvCfg)
	if err != nil {
		return nil, fmt.Errorf("create kv bucket: %w", err)
	}

	return &NATSCache{
		kv:     kv,
		logger: cfg.Logger.WithComponent("matchcache"),
	}, nil
}

// Get returns the cached value for a key. Absence and transport errors
// both read as a miss.
func (c *NATSCache) Get(ctx context.Context, key string) ([]byte, bool) {
	entry, err := c.kv.Get(ctx, natsKey(key))
	if err == jetstream.ErrKeyNotFound {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
		return nil, false
	}
	return entry.Value(), true
}

// Set stores a value under a key. Expiry follows the bucket TTL.
func (c *NATSCache) Set(ctx context.Context, key string, value []byte) {
	if _, err := c.kv.Put(ctx, natsKey(key), value); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}

// Invalidate deletes every compatibility entry referencing the agent ID.
func (c *NATSCache) Invalidate(ctx context.Context, agentID string) {
	if agentID == "" {
		return
	}

	prefix := natsKey(Key(CompatPrefix)) + "."
	needle := sanitizeKeyPart(agentID)

	lister, err := c.kv.ListKeys(ctx, jetstream.MetaOnly())
	if err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{"agent_id": agentID, "error": err})
		return
	}
	defer lister.Stop()

	for key := range lister.Keys() {
		if !strings.HasPrefix(key, prefix) || !strings.Contains(key, needle) {
			continue
		}
		if err := c.kv.Delete(ctx, key); err != nil && err != jetstream.ErrKeyNotFound {
			c.logger.Warn("cache invalidation failed", map[string]interface{}{"agent_id": agentID, "error": err})
		}
	}
}

// Close is a no-op: the caller owns the NATS connection.
func (c *NATSCache) Close() error {
	return nil
}

// natsKey converts a generic cache key into a valid NATS KV key:
// ':' separators become '.', and remaining invalid characters are
// replaced per sanitizeKeyPart.
func natsKey(key string) string {
	return sanitizeKeyPart(strings.ReplaceAll(key, ":", "."))
}

// sanitizeKeyPart replaces characters NATS KV keys do not allow with '_'.
// Allowed: alphanumerics, '-', '_', '/', '=', '.'.
func sanitizeKeyPart(part string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '/' || r == '=' || r == '.':
			return r
		default:
			return '_'
		}
	}, part)
}
