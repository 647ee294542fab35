package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/consilium/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultCacheSimilarityThreshold is the minimum embedding similarity
	// for a cached result to count as a hit.
	DefaultCacheSimilarityThreshold = 0.95
	// DefaultCacheTTL is how long a cached result stays servable.
	DefaultCacheTTL = 24 * time.Hour
	// NearestNeighbors is how many candidates the lookup pulls from the
	// store before applying the threshold, freshness and agent checks.
	NearestNeighbors = 5
)

// CacheService is the semantic cache in front of the research agents.
// Lookups embed the query and accept the nearest stored result when it is
// similar enough, fresh enough and produced by the right agent. Every
// failure on the cache path degrades to a miss: the cache can make a query
// cheaper, never make it fail.
type CacheService struct {
	store           domain.CacheStore
	embeddingClient domain.EmbeddingClient
	logger          *zap.Logger

	similarityThreshold float64
	ttl                 time.Duration

	hits     atomic.Int64
	misses   atomic.Int64
	degraded atomic.Int64
}

// NewCacheService builds a cache with the given threshold and TTL.
// Non-positive values fall back to the defaults.
func NewCacheService(cs domain.CacheStore, ec domain.EmbeddingClient, threshold float64, ttl time.Duration, logger *zap.Logger) *CacheService {
	if threshold <= 0 {
		threshold = DefaultCacheSimilarityThreshold
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheService{
		store:               cs,
		embeddingClient:     ec,
		logger:              logger,
		similarityThreshold: threshold,
		ttl:                 ttl,
	}
}

// Lookup returns the best cached result for the query, or (nil, nil) on a
// miss. The neighbor must clear the similarity threshold, carry a result
// from the requested capability and not be expired. Embedding or store
// failures are logged and reported as misses.
func (s *CacheService) Lookup(ctx context.Context, queryText string, capability domain.Capability) (*domain.CachedResult, error) {
	if s.embeddingClient == nil {
		s.degraded.Add(1)
		s.misses.Add(1)
		return nil, nil
	}

	embedding, err := s.embeddingClient.Embed(ctx, queryText)
	if err != nil {
		s.logger.Warn("query embedding failed, treating as cache miss", zap.Error(err))
		s.degraded.Add(1)
		s.misses.Add(1)
		return nil, nil
	}

	neighbors, err := s.store.Nearest(ctx, embedding, NearestNeighbors)
	if err != nil {
		s.logger.Warn("cache lookup failed, treating as cache miss", zap.Error(err))
		s.degraded.Add(1)
		s.misses.Add(1)
		return nil, nil
	}

	now := timeNow()
	for _, n := range neighbors {
		// Neighbors arrive ordered by similarity; nothing past the first
		// sub-threshold entry can qualify.
		if float64(n.Similarity) < s.similarityThreshold {
			break
		}
		if n.Result.Agent != capability {
			continue
		}
		if n.Expired(now) {
			continue
		}
		s.hits.Add(1)
		hit := n
		return &hit, nil
	}

	s.misses.Add(1)
	return nil, nil
}

// Store writes a fresh result under the query text with a new expiry.
// Prior entries are never overwritten; a corrected result posted later
// wins lookups through its newer created_at. Failures are logged and
// swallowed so the research path never fails on a cache write.
func (s *CacheService) Store(ctx context.Context, queryText string, result domain.AgentResult) {
	if s.embeddingClient == nil {
		s.degraded.Add(1)
		return
	}

	embedding, err := s.embeddingClient.Embed(ctx, queryText)
	if err != nil {
		s.logger.Warn("embedding failed, skipping cache store", zap.Error(err))
		s.degraded.Add(1)
		return
	}

	entry := &domain.CacheEntry{
		QueryText: queryText,
		Embedding: embedding,
		Result:    result,
		ExpiresAt: timeNow().Add(s.ttl),
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		s.logger.Warn("cache store failed, result not cached", zap.Error(err))
		s.degraded.Add(1)
	}
}

// CacheStats is a point-in-time snapshot of the cache counters.
type CacheStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Degraded int64 `json:"degraded"`
}

func (s *CacheService) Stats() CacheStats {
	return CacheStats{
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
		Degraded: s.degraded.Load(),
	}
}

var timeNow = time.Now
