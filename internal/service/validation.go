package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Harshitk-cp/consilium/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTopicThreshold is the minimum embedding similarity for two
	// claims to be treated as assertions about the same topic.
	DefaultTopicThreshold = 0.80
)

// DefaultAgentPriority ranks agents for contradiction tie-breaking.
// Academic sources outrank web sources, which outrank multimodal ones.
func DefaultAgentPriority() map[domain.Capability]int {
	return map[domain.Capability]int{
		domain.CapabilityAcademic:   3,
		domain.CapabilityWeb:        2,
		domain.CapabilityMultimodal: 1,
	}
}

// ValidationService reconciles claims gathered from multiple agents into a
// single consistent set: duplicates merged, contradictions detected and
// resolved deterministically.
type ValidationService struct {
	embeddingClient domain.EmbeddingClient
	llmClient       domain.LLMClient
	logger          *zap.Logger

	TopicThreshold float64
	AgentPriority  map[domain.Capability]int
}

func NewValidationService(ec domain.EmbeddingClient, lc domain.LLMClient, logger *zap.Logger) *ValidationService {
	return &ValidationService{
		embeddingClient: ec,
		llmClient:       lc,
		logger:          logger,
		TopicThreshold:  DefaultTopicThreshold,
		AgentPriority:   DefaultAgentPriority(),
	}
}

// Reconcile flattens the per-agent results, finds same-topic claim pairs
// across results, merges near-duplicates and resolves contradictions.
// The output is deterministic for identical inputs and configuration:
// claims keep their flattening order, and every tie-break rule is total
// except the final one, where a full tie leaves the pair unresolved with
// both claims kept.
func (s *ValidationService) Reconcile(ctx context.Context, results []domain.AgentResult) (*domain.ValidatedResult, error) {
	claims := flattenClaims(results)
	validated := &domain.ValidatedResult{
		Claims:     []domain.Claim{},
		Resolved:   []domain.Resolution{},
		Unresolved: []domain.Contradiction{},
	}
	if len(claims) == 0 {
		return validated, nil
	}

	vectors := s.embedClaims(ctx, claims)
	removed := make([]bool, len(claims))

	for i := range claims {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(claims); j++ {
			if removed[j] {
				continue
			}
			// Claims within one result are assumed internally consistent.
			if claims[i].ResultID == claims[j].ResultID {
				continue
			}

			similarity, same := s.sameTopic(claims[i], claims[j], vectors[i], vectors[j])
			if !same {
				continue
			}

			// Identical statements are duplicates regardless of kind.
			if normalizeStatement(claims[i].Statement) == normalizeStatement(claims[j].Statement) {
				claims[i].Confidence = max(claims[i].Confidence, claims[j].Confidence)
				removed[j] = true
				continue
			}

			av := ExtractClaimValue(claims[i].Statement)
			bv := ExtractClaimValue(claims[j].Statement)
			kind, conflict := s.testConflict(ctx, claims[i], claims[j], av, bv)

			if !conflict {
				if mergeable(kind, av, bv) {
					claims[i].Confidence = max(claims[i].Confidence, claims[j].Confidence)
					removed[j] = true
				}
				continue
			}

			contradiction := domain.Contradiction{
				ID:         uuid.New(),
				Topic:      topicOf(claims[i]),
				Kind:       kind,
				A:          claims[i],
				B:          claims[j],
				Similarity: similarity,
			}

			winner, superseded, rationale, ok := s.resolve(claims[i], claims[j])
			if !ok {
				s.logger.Warn("contradiction unresolved, keeping both claims",
					zap.String("topic", contradiction.Topic),
					zap.String("claim_a", claims[i].Statement),
					zap.String("claim_b", claims[j].Statement))
				validated.Unresolved = append(validated.Unresolved, contradiction)
				continue
			}

			validated.Resolved = append(validated.Resolved, domain.Resolution{
				ContradictionID: contradiction.ID,
				Winner:          winner,
				Superseded:      superseded,
				Rationale:       rationale,
			})
			if superseded.ID == claims[j].ID {
				removed[j] = true
			} else {
				removed[i] = true
				break
			}
		}
	}

	for i, c := range claims {
		if !removed[i] {
			validated.Claims = append(validated.Claims, c)
		}
	}
	return validated, nil
}

// flattenClaims collects claims from all results in input order, filling
// in provenance so each claim can stand alone downstream.
func flattenClaims(results []domain.AgentResult) []domain.Claim {
	var claims []domain.Claim
	for _, r := range results {
		for _, c := range r.Claims {
			c.Agent = r.Agent
			c.ResultID = r.ID
			if c.AssertedAt.IsZero() {
				c.AssertedAt = r.CreatedAt
			}
			claims = append(claims, c)
		}
	}
	return claims
}

// embedClaims fetches one embedding per claim up front. A nil slot marks a
// claim whose embedding failed; the topic test falls back to string
// equality for those.
func (s *ValidationService) embedClaims(ctx context.Context, claims []domain.Claim) [][]float32 {
	vectors := make([][]float32, len(claims))
	if s.embeddingClient == nil {
		return vectors
	}
	for i, c := range claims {
		emb, err := s.embeddingClient.Embed(ctx, topicOf(c))
		if err != nil {
			s.logger.Warn("claim embedding failed, falling back to exact topic match",
				zap.String("claim_id", c.ID.String()),
				zap.Error(err))
			continue
		}
		vectors[i] = emb
	}
	return vectors
}

func topicOf(c domain.Claim) string {
	if c.Topic != "" {
		return c.Topic
	}
	return c.Statement
}

func (s *ValidationService) sameTopic(a, b domain.Claim, va, vb []float32) (float32, bool) {
	if va != nil && vb != nil {
		similarity := domain.CosineSimilarity(va, vb)
		return similarity, float64(similarity) >= s.TopicThreshold
	}
	if normalizeStatement(topicOf(a)) == normalizeStatement(topicOf(b)) {
		return 1.0, true
	}
	return 0, false
}

// testConflict applies the typed conflict test for a same-topic pair.
// Numeric pairs with differing number counts are incomparable and drop to
// the text test. An LLM failure on the text test means the contradiction
// is not confirmed.
func (s *ValidationService) testConflict(ctx context.Context, a, b domain.Claim, av, bv ClaimValue) (domain.ClaimKind, bool) {
	kind := pairKind(av, bv)

	switch kind {
	case domain.ClaimKindDate:
		return kind, !av.Date.Equal(bv.Date)

	case domain.ClaimKindNumeric:
		if comparableNumbers(av.Numbers, bv.Numbers) {
			return kind, !numbersCompatible(av.Numbers, bv.Numbers)
		}
		kind = domain.ClaimKindText

	case domain.ClaimKindBoolean:
		// pairKind only reports boolean when polarity differs.
		return kind, true
	}

	if s.llmClient == nil {
		return kind, false
	}
	contradicts, err := s.llmClient.CheckContradiction(ctx, a.Statement, b.Statement)
	if err != nil {
		s.logger.Warn("contradiction check failed, not confirming conflict",
			zap.String("claim_a", a.Statement),
			zap.String("claim_b", b.Statement),
			zap.Error(err))
		return kind, false
	}
	return kind, contradicts
}

// mergeable reports whether two non-conflicting same-topic claims assert
// the same value and can collapse into one. Text claims only merge on
// identical statements, which is handled before the conflict test.
func mergeable(kind domain.ClaimKind, av, bv ClaimValue) bool {
	switch kind {
	case domain.ClaimKindNumeric:
		return comparableNumbers(av.Numbers, bv.Numbers) && numbersCompatible(av.Numbers, bv.Numbers)
	case domain.ClaimKindDate:
		return av.Date.Equal(bv.Date)
	default:
		return false
	}
}

// resolve picks a winner between two contradicting claims: higher
// confidence first, then newer assertion, then higher agent priority.
// Returns ok=false when every rule ties.
func (s *ValidationService) resolve(a, b domain.Claim) (winner, superseded domain.Claim, rationale string, ok bool) {
	if a.Confidence != b.Confidence {
		winner, superseded = a, b
		if b.Confidence > a.Confidence {
			winner, superseded = b, a
		}
		return winner, superseded,
			fmt.Sprintf("higher confidence (%.2f vs %.2f)", winner.Confidence, superseded.Confidence), true
	}

	if !a.AssertedAt.Equal(b.AssertedAt) {
		winner, superseded = a, b
		if b.AssertedAt.After(a.AssertedAt) {
			winner, superseded = b, a
		}
		return winner, superseded,
			fmt.Sprintf("more recent assertion (%s vs %s)",
				winner.AssertedAt.Format(time.RFC3339),
				superseded.AssertedAt.Format(time.RFC3339)), true
	}

	pa, pb := s.AgentPriority[a.Agent], s.AgentPriority[b.Agent]
	if pa != pb {
		winner, superseded = a, b
		if pb > pa {
			winner, superseded = b, a
		}
		return winner, superseded,
			fmt.Sprintf("higher agent priority (%s over %s)", winner.Agent, superseded.Agent), true
	}

	return a, b, "", false
}
