package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Harshitk-cp/consilium/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// Similarity metrics supported by Nearest.
const (
	MetricCosine = "cosine"
	MetricDot    = "dot"
)

// CacheStore persists query/result pairs in Postgres with a pgvector
// column for nearest-neighbor lookup. Entries are append-only; expiry is
// enforced both here (Nearest skips expired rows) and by the background
// sweeper calling DeleteExpired.
type CacheStore struct {
	db     *pgxpool.Pool
	metric string
}

func NewCacheStore(db *pgxpool.Pool, metric string) *CacheStore {
	if metric != MetricDot {
		metric = MetricCosine
	}
	return &CacheStore{db: db, metric: metric}
}

func (s *CacheStore) Insert(ctx context.Context, e *domain.CacheEntry) error {
	if len(e.Embedding) == 0 {
		return fmt.Errorf("cache entry requires an embedding")
	}

	resultJSON, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("marshal cached result: %w", err)
	}

	vec := pgvector.NewVector(e.Embedding)

	return s.db.QueryRow(ctx,
		`INSERT INTO cache_entries (query_text, embedding, result, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.QueryText, vec, resultJSON, e.ExpiresAt,
	).Scan(&e.ID, &e.CreatedAt)
}

func (s *CacheStore) Nearest(ctx context.Context, embedding []float32, k int) ([]domain.CachedResult, error) {
	if k <= 0 {
		k = 5
	}

	vec := pgvector.NewVector(embedding)

	// <=> is cosine distance, <#> negative inner product.
	scoreExpr := "1 - (embedding <=> $1)"
	if s.metric == MetricDot {
		scoreExpr = "(embedding <#> $1) * -1"
	}

	query := fmt.Sprintf(
		`SELECT id, query_text, result, created_at, expires_at,
		        %s AS similarity
		 FROM cache_entries
		 WHERE expires_at > NOW()
		 ORDER BY similarity DESC, created_at DESC
		 LIMIT $2`,
		scoreExpr,
	)

	rows, err := s.db.Query(ctx, query, vec, k)
	if err != nil {
		return nil, fmt.Errorf("nearest query: %w", err)
	}
	defer rows.Close()

	var results []domain.CachedResult
	for rows.Next() {
		var cr domain.CachedResult
		var resultJSON []byte
		if err := rows.Scan(&cr.ID, &cr.QueryText, &resultJSON, &cr.CreatedAt, &cr.ExpiresAt, &cr.Similarity); err != nil {
			return nil, fmt.Errorf("scan nearest row: %w", err)
		}
		if err := json.Unmarshal(resultJSON, &cr.Result); err != nil {
			return nil, fmt.Errorf("unmarshal cached result: %w", err)
		}
		results = append(results, cr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("nearest rows: %w", err)
	}

	return results, nil
}

func (s *CacheStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM cache_entries WHERE expires_at < NOW()`,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
