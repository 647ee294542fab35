package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Harshitk-cp/consilium/internal/domain"
	"github.com/Harshitk-cp/consilium/internal/embedding"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// mockCacheStore implements domain.CacheStore for testing. Unlike the
// real store it does not filter expired rows, so tests exercise the
// service-level freshness check.
type mockCacheStore struct {
	mu      sync.Mutex
	entries []domain.CacheEntry

	InsertError  error
	NearestError error
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{}
}

func (m *mockCacheStore) Insert(ctx context.Context, e *domain.CacheEntry) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *mockCacheStore) Nearest(ctx context.Context, emb []float32, k int) ([]domain.CachedResult, error) {
	if m.NearestError != nil {
		return nil, m.NearestError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]domain.CachedResult, 0, len(m.entries))
	for _, e := range m.entries {
		results = append(results, domain.CachedResult{
			CacheEntry: e,
			Similarity: domain.CosineSimilarity(emb, e.Embedding),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if k <= 0 {
		k = NearestNeighbors
	}
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (m *mockCacheStore) DeleteExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var kept []domain.CacheEntry
	var deleted int64
	for _, e := range m.entries {
		if e.Expired(now) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return deleted, nil
}

func (m *mockCacheStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func webResult(statement string) domain.AgentResult {
	return domain.AgentResult{
		ID:    uuid.New(),
		Agent: domain.CapabilityWeb,
		Claims: []domain.Claim{
			{ID: uuid.New(), Statement: statement, Confidence: 0.8},
		},
		Summary:   "summary",
		CreatedAt: time.Now(),
	}
}

func TestCacheService_ExactRepeatHits(t *testing.T) {
	store := newMockCacheStore()
	svc := NewCacheService(store, embedding.NewMockClient(), 0.95, time.Hour, zap.NewNop())
	ctx := context.Background()

	svc.Store(ctx, "impact of remote work on productivity", webResult("remote work works"))

	hit, err := svc.Lookup(ctx, "impact of remote work on productivity", domain.CapabilityWeb)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hit == nil {
		t.Fatal("expected a cache hit for the identical query")
	}
	if hit.Similarity < 0.999 {
		t.Fatalf("expected similarity ~1.0 for identical text, got %f", hit.Similarity)
	}
	if hit.Result.Claims[0].Statement != "remote work works" {
		t.Fatalf("unexpected cached result: %+v", hit.Result)
	}

	stats := svc.Stats()
	if stats.Hits != 1 || stats.Misses != 0 {
		t.Fatalf("expected 1 hit / 0 misses, got %+v", stats)
	}
}

func TestCacheService_ParaphraseAboveThresholdHits(t *testing.T) {
	store := newMockCacheStore()
	embedder := embedding.NewMockClient()
	// Unit vectors with cosine 0.97, comfortably above the 0.95 threshold.
	embedder.Vectors = map[string][]float32{
		"what is the current inflation rate": {1, 0, 0},
		"current inflation rate today":       {0.97, 0.24310492, 0},
	}
	svc := NewCacheService(store, embedder, 0.95, time.Hour, zap.NewNop())
	ctx := context.Background()

	svc.Store(ctx, "what is the current inflation rate", webResult("inflation is 3%"))

	hit, err := svc.Lookup(ctx, "current inflation rate today", domain.CapabilityWeb)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hit == nil {
		t.Fatal("expected a hit for the close paraphrase")
	}
	if hit.Similarity < 0.95 {
		t.Fatalf("expected similarity >= threshold, got %f", hit.Similarity)
	}
}

func TestCacheService_BelowThresholdMisses(t *testing.T) {
	store := newMockCacheStore()
	embedder := embedding.NewMockClient()
	embedder.Vectors = map[string][]float32{
		"what is the current inflation rate": {1, 0, 0},
		"history of the roman empire":        {0.5, 0.8660254, 0},
	}
	svc := NewCacheService(store, embedder, 0.95, time.Hour, zap.NewNop())
	ctx := context.Background()

	svc.Store(ctx, "what is the current inflation rate", webResult("inflation is 3%"))

	hit, err := svc.Lookup(ctx, "history of the roman empire", domain.CapabilityWeb)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hit != nil {
		t.Fatalf("expected a miss for the unrelated query, got similarity %f", hit.Similarity)
	}
	if stats := svc.Stats(); stats.Misses != 1 {
		t.Fatalf("expected 1 miss, got %+v", stats)
	}
}

func TestCacheService_TTLExpiry(t *testing.T) {
	store := newMockCacheStore()
	svc := NewCacheService(store, embedding.NewMockClient(), 0.95, 24*time.Hour, zap.NewNop())
	ctx := context.Background()

	svc.Store(ctx, "ttl probe query", webResult("will expire"))

	orig := timeNow
	timeNow = func() time.Time { return orig().Add(25 * time.Hour) }
	defer func() { timeNow = orig }()

	hit, err := svc.Lookup(ctx, "ttl probe query", domain.CapabilityWeb)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hit != nil {
		t.Fatal("expected expired entry to be skipped even at similarity 1.0")
	}
}

func TestCacheService_CapabilityIsolation(t *testing.T) {
	store := newMockCacheStore()
	svc := NewCacheService(store, embedding.NewMockClient(), 0.95, time.Hour, zap.NewNop())
	ctx := context.Background()

	svc.Store(ctx, "climate adaptation strategies", webResult("web findings"))

	hit, err := svc.Lookup(ctx, "climate adaptation strategies", domain.CapabilityAcademic)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hit != nil {
		t.Fatal("expected a web entry to miss for an academic lookup")
	}
}

func TestCacheService_EmbeddingFailureDegradesToMiss(t *testing.T) {
	store := newMockCacheStore()
	embedder := embedding.NewMockClient()
	embedder.EmbedError = errors.New("embedding provider down")
	svc := NewCacheService(store, embedder, 0.95, time.Hour, zap.NewNop())
	ctx := context.Background()

	hit, err := svc.Lookup(ctx, "anything", domain.CapabilityWeb)
	if err != nil {
		t.Fatalf("expected degradation, not an error, got %v", err)
	}
	if hit != nil {
		t.Fatal("expected a miss when embedding is unavailable")
	}

	svc.Store(ctx, "anything", webResult("won't be stored"))
	if store.count() != 0 {
		t.Fatal("expected store to be skipped when embedding is unavailable")
	}

	stats := svc.Stats()
	if stats.Degraded != 2 {
		t.Fatalf("expected 2 degraded operations, got %+v", stats)
	}
}

func TestCacheService_StoreBackendFailureDegrades(t *testing.T) {
	store := newMockCacheStore()
	store.NearestError = errors.New("connection refused")
	store.InsertError = errors.New("connection refused")
	svc := NewCacheService(store, embedding.NewMockClient(), 0.95, time.Hour, zap.NewNop())
	ctx := context.Background()

	hit, err := svc.Lookup(ctx, "query", domain.CapabilityWeb)
	if err != nil {
		t.Fatalf("expected degradation, not an error, got %v", err)
	}
	if hit != nil {
		t.Fatal("expected a miss when the backend is down")
	}

	svc.Store(ctx, "query", webResult("dropped"))
	if stats := svc.Stats(); stats.Degraded != 2 {
		t.Fatalf("expected 2 degraded operations, got %+v", stats)
	}
}

func TestCacheService_NewerEntryWins(t *testing.T) {
	store := newMockCacheStore()
	svc := NewCacheService(store, embedding.NewMockClient(), 0.95, time.Hour, zap.NewNop())
	ctx := context.Background()

	svc.Store(ctx, "population of tokyo", webResult("37 million"))
	// Force distinct created_at for a deterministic order.
	store.mu.Lock()
	store.entries[0].CreatedAt = store.entries[0].CreatedAt.Add(-time.Minute)
	store.mu.Unlock()
	svc.Store(ctx, "population of tokyo", webResult("37.2 million"))

	hit, err := svc.Lookup(ctx, "population of tokyo", domain.CapabilityWeb)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hit == nil {
		t.Fatal("expected a hit")
	}
	if hit.Result.Claims[0].Statement != "37.2 million" {
		t.Fatalf("expected the newer entry to win, got %q", hit.Result.Claims[0].Statement)
	}
}
