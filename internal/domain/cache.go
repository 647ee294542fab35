package domain

import (
	"time"

	"github.com/google/uuid"
)

// CacheEntry is one stored query/result pair. Entries are never mutated:
// a repeat of a near-duplicate query writes a new entry and the old one is
// left to expire.
type CacheEntry struct {
	ID        uuid.UUID   `json:"id"`
	QueryText string      `json:"query_text"`
	Embedding []float32   `json:"-"`
	Result    AgentResult `json:"result"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (e CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

type CachedResult struct {
	CacheEntry
	Similarity float32 `json:"similarity"`
}
