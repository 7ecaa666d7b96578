package vectorindex

import (
	"context"
	"errors"
	"sync"
	"testing"
)

const testDim = 4

func testAgent(id string, embedding []float32) AgentVector {
	return AgentVector{
		AgentID:            id,
		DisplayName:        "Agent " + id,
		Skills:             []string{"go", "nats"},
		Embedding:          embedding,
		CommunicationStyle: "balanced",
		FormalityLevel:     "professional",
		RiskTolerance:      "moderate",
		ReputationScore:    50,
		IsActive:           true,
	}
}

func TestMemoryIndex_UpsertAndSearch(t *testing.T) {
	idx := NewMemoryIndex(MemoryConfig{Dimension: testDim})
	defer idx.Close()
	ctx := context.Background()

	if err := idx.Upsert(ctx, testAgent("a1", []float32{1, 0, 0, 0})); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := idx.Upsert(ctx, testAgent("a2", []float32{0, 1, 0, 0})); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	hits, err := idx.Search(ctx, []float32{1, 0, 0, 0}, SearchFilter{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].AgentID != "a1" {
		t.Errorf("expected a1 first (identical vector), got %s", hits[0].AgentID)
	}
	if hits[0].VectorScore <= hits[1].VectorScore {
		t.Errorf("expected descending scores: %v then %v", hits[0].VectorScore, hits[1].VectorScore)
	}
}

func TestMemoryIndex_DimensionMismatch(t *testing.T) {
	idx := NewMemoryIndex(MemoryConfig{Dimension: testDim})
	defer idx.Close()
	ctx := context.Background()

	err := idx.Upsert(ctx, testAgent("a1", []float32{1, 0}))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on upsert, got %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("no agent should be indexed after validation failure")
	}

	_, err = idx.Search(ctx, []float32{1, 0}, SearchFilter{})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on search, got %v", err)
	}
}

func TestMemoryIndex_UpsertReplaces(t *testing.T) {
	idx := NewMemoryIndex(MemoryConfig{Dimension: testDim})
	defer idx.Close()
	ctx := context.Background()

	if err := idx.Upsert(ctx, testAgent("a1", []float32{1, 0, 0, 0})); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	updated := testAgent("a1", []float32{0, 1, 0, 0})
	updated.ReputationScore = 90
	if err := idx.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if idx.Len() != 1 {
		t.Fatalf("expected 1 agent after replace, got %d", idx.Len())
	}

	hits, err := idx.Search(ctx, []float32{0, 1, 0, 0}, SearchFilter{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if hits[0].ReputationScore != 90 {
		t.Errorf("expected updated reputation 90, got %v", hits[0].ReputationScore)
	}
}

func TestMemoryIndex_FiltersInactive(t *testing.T) {
	idx := NewMemoryIndex(MemoryConfig{Dimension: testDim})
	defer idx.Close()
	ctx := context.Background()

	inactive := testAgent("sleeper", []float32{1, 0, 0, 0})
	inactive.IsActive = false
	if err := idx.Upsert(ctx, inactive); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	hits, err := idx.Search(ctx, []float32{1, 0, 0, 0}, SearchFilter{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("inactive agents must never be returned, got %v", hits)
	}
}

func TestMemoryIndex_FilterExcludeAndReputation(t *testing.T) {
	idx := NewMemoryIndex(MemoryConfig{Dimension: testDim})
	defer idx.Close()
	ctx := context.Background()

	low := testAgent("low", []float32{1, 0, 0, 0})
	low.ReputationScore = 10
	high := testAgent("high", []float32{1, 0, 0, 0})
	high.ReputationScore = 80
	self := testAgent("self", []float32{1, 0, 0, 0})
	self.ReputationScore = 99

	for _, a := range []AgentVector{low, high, self} {
		if err := idx.Upsert(ctx, a); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	hits, err := idx.Search(ctx, []float32{1, 0, 0, 0}, SearchFilter{
		ExcludeAgentID: "self",
		MinReputation:  50,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(hits) != 1 || hits[0].AgentID != "high" {
		t.Errorf("expected only agent high, got %v", hits)
	}
}

func TestMemoryIndex_MinScoreAndLimit(t *testing.T) {
	idx := NewMemoryIndex(MemoryConfig{Dimension: testDim})
	defer idx.Close()
	ctx := context.Background()

	if err := idx.Upsert(ctx, testAgent("near", []float32{1, 0.1, 0, 0})); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := idx.Upsert(ctx, testAgent("far", []float32{0, 0, 0, 1})); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	hits, err := idx.Search(ctx, []float32{1, 0, 0, 0}, SearchFilter{MinScore: 0.5})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].AgentID != "near" {
		t.Errorf("expected only the near agent above threshold, got %v", hits)
	}

	if err := idx.Upsert(ctx, testAgent("close", []float32{1, 0.2, 0, 0})); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	hits, err = idx.Search(ctx, []float32{1, 0, 0, 0}, SearchFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected limit of 1, got %d hits", len(hits))
	}
}

func TestMemoryIndex_Delete(t *testing.T) {
	idx := NewMemoryIndex(MemoryConfig{Dimension: testDim})
	defer idx.Close()
	ctx := context.Background()

	if err := idx.Upsert(ctx, testAgent("a1", []float32{1, 0, 0, 0})); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := idx.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("expected empty index after delete")
	}

	// Deleting an absent agent is not an error.
	if err := idx.Delete(ctx, "ghost"); err != nil {
		t.Errorf("delete of absent agent should not error: %v", err)
	}
}

func TestMemoryIndex_ConcurrentUse(t *testing.T) {
	idx := NewMemoryIndex(MemoryConfig{Dimension: testDim})
	defer idx.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			vec := []float32{float32(n + 1), 1, 0, 0}
			if err := idx.Upsert(ctx, testAgent(id, vec)); err != nil {
				t.Errorf("Upsert failed: %v", err)
			}
			if _, err := idx.Search(ctx, []float32{1, 0, 0, 0}, SearchFilter{}); err != nil {
				t.Errorf("Search failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if idx.Len() != 8 {
		t.Errorf("expected 8 agents, got %d", idx.Len())
	}
}

func TestMemoryIndex_Closed(t *testing.T) {
	idx := NewMemoryIndex(MemoryConfig{Dimension: testDim})
	idx.Close()
	ctx := context.Background()

	if err := idx.Upsert(ctx, testAgent("a1", []float32{1, 0, 0, 0})); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, err := idx.Search(ctx, []float32{1, 0, 0, 0}, SearchFilter{}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestPointID_StableAndDistinct(t *testing.T) {
	a := PointID("agent-001")
	b := PointID("agent-001")
	c := PointID("agent-002")

	if a != b {
		t.Errorf("point ID must be stable: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("distinct agents must get distinct point IDs")
	}
	if len(a) != 36 {
		t.Errorf("expected canonical UUID form, got %q", a)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cosineSimilarity(tc.a, tc.b)
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tc.want)
			}
		})
	}
}
