// Package matchcache caches serialized compatibility results keyed by an
// order-independent pair of agent IDs.
//
// The cache is a pure derived view of scoring inputs: adapters absorb
// every transport failure (a failed read is a miss, a failed write is
// skipped, a failed invalidation leaves stale entries to expire via TTL)
// so cache unavailability degrades performance but never correctness.
package matchcache

import (
	"context"
	"sort"
	"strings"
)

// Namespace prefixes every cache key.
const Namespace = "matching"

// CompatPrefix namespaces pairwise compatibility entries.
const CompatPrefix = "compat"

// Cache stores serialized compatibility results with a TTL fixed at
// construction. Implementations must be safe for concurrent use and must
// never surface transport errors to callers: failures are logged and
// absorbed.
type Cache interface {
	// Get returns the value for a key, and whether it was present.
	// Any transport error reads as a miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value under a key with the configured TTL.
	Set(ctx context.Context, key string, value []byte)

	// Invalidate removes every compatibility entry referencing an agent
	// ID, after an index mutation for that agent.
	Invalidate(ctx context.Context, agentID string)

	// Close releases the underlying client or storage.
	Close() error
}

// Key builds a namespaced cache key: "matching:<prefix>:<part>:...".
func Key(prefix string, parts ...string) string {
	elems := append([]string{Namespace, prefix}, parts...)
	return strings.Join(elems, ":")
}

// PairKey builds the compatibility key for an unordered agent pair. The
// IDs are sorted so both sides of a pair share one cache entry.
func PairKey(agentA, agentB string) string {
	pair := []string{agentA, agentB}
	sort.Strings(pair)
	return Key(CompatPrefix, pair[0], pair[1])
}
