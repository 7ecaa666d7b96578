// Package matching matches agents to compatible collaboration partners.
//
// # Overview
//
// The Engine composes three parts: a similarity index (package
// vectorindex) that stores agent embeddings and serves filtered
// nearest-neighbor queries, pure scoring functions (package scoring) that
// blend skill overlap, communication style, vector similarity, and
// reputation into one compatibility score, and a result cache (package
// matchcache) that memoizes pairwise results under an order-independent
// key.
//
// Queries flow one direction: caller -> Engine -> index candidates ->
// scoring -> cache -> ranked results. Indexing flows caller -> Engine ->
// index, followed by a best-effort cache invalidation sweep.
//
// # Basic Usage
//
// Build an engine on in-memory stores:
//
//	idx := vectorindex.NewMemoryIndex(vectorindex.MemoryConfig{Dimension: 384})
//	cache := matchcache.NewMemoryCache(matchcache.MemoryConfig{TTL: time.Hour})
//	engine, _ := matching.New(idx, cache, matching.Config{
//	    VectorDimension:     384,
//	    SimilarityThreshold: 0.7,
//	})
//
// Index agents and search:
//
//	_ = engine.IndexAgent(ctx, vectorindex.AgentVector{
//	    AgentID:   "agent-001",
//	    Skills:    []string{"python", "ml"},
//	    Embedding: embedding,
//	    IsActive:  true,
//	})
//
//	results, _ := engine.SearchAndRank(ctx, queryEmbedding, matching.AgentAttrs{
//	    AgentID: "agent-002",
//	    Skills:  []string{"python", "react"},
//	}, matching.SearchOptions{})
//
//	for _, r := range results {
//	    fmt.Printf("%s %.4f %s\n", r.AgentID, r.Overall, r.Explanation)
//	}
//
// # Production Stores
//
// For deployments, back the engine with a Qdrant collection and a shared
// Redis (or NATS JetStream KV) cache:
//
//	idx, _ := vectorindex.NewQdrantIndex(vectorindex.QdrantConfig{
//	    Host: "localhost", Port: 6334,
//	    Collection: "agents", Dimension: 384,
//	})
//	cache, _ := matchcache.NewRedisCacheFromURL("redis://localhost:6379/0",
//	    matchcache.RedisConfig{TTL: time.Hour})
//
// # Failure Semantics
//
// Validation errors (wrong embedding dimension, empty agent ID) surface
// immediately, before any store call. Index failures propagate: the
// engine cannot answer without its index. Cache failures never propagate;
// the adapters log and absorb them, and the engine recomputes. Index
// mutations invalidate cached results for the touched agent; an
// invalidation racing a concurrent read may repopulate a stale value,
// a bounded-staleness window closed by the cache TTL.
package matching
