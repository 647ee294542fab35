package domain

import (
	"context"
)

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type LLMClient interface {
	ClassifyQuery(ctx context.Context, query string) ([]Capability, error)
	CheckContradiction(ctx context.Context, stmtA, stmtB string) (bool, error)
	Summarize(ctx context.Context, query string, claims []Claim) (string, error)
}

// CacheStore persists query/result pairs with their embeddings. Nearest
// returns up to k unexpired entries ordered by similarity, then recency;
// entries below any usefulness floor are the caller's problem, not the
// store's. The store is shared across concurrent queries and makes no
// transactional guarantees between Insert and Nearest.
type CacheStore interface {
	Insert(ctx context.Context, e *CacheEntry) error
	Nearest(ctx context.Context, embedding []float32, k int) ([]CachedResult, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// Agent is one research capability reachable by the orchestrator. Research
// blocks until the agent answers, the context is cancelled, or the agent's
// own timeout elapses.
type Agent interface {
	Capability() Capability
	Research(ctx context.Context, task Subtask) (*AgentResult, error)
}

// AgentRegistry is the capability dispatch table. Lookup fails for tags
// with no registered agent.
type AgentRegistry interface {
	Lookup(c Capability) (Agent, error)
	Capabilities() []Capability
}
