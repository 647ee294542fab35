package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/consilium/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyQuery      = errors.New("query text is required")
	ErrNoUsableResults = errors.New("no usable agent results")
)

const (
	DefaultQueryTimeout          = 120 * time.Second
	DefaultMaxConcurrentSubtasks = 4
)

// OrchestratorService runs a research query end to end: decompose into
// capability subtasks, dispatch each one cache-first, join, reconcile the
// surviving results and assemble the report. A failed subtask costs its
// own results only; the query fails only when every subtask does.
type OrchestratorService struct {
	registry   domain.AgentRegistry
	cache      *CacheService
	validator  *ValidationService
	decomposer *Decomposer
	llmClient  domain.LLMClient
	logger     *zap.Logger

	QueryTimeout          time.Duration
	MaxConcurrentSubtasks int
}

func NewOrchestratorService(
	registry domain.AgentRegistry,
	cache *CacheService,
	validator *ValidationService,
	decomposer *Decomposer,
	llmClient domain.LLMClient,
	logger *zap.Logger,
) *OrchestratorService {
	return &OrchestratorService{
		registry:              registry,
		cache:                 cache,
		validator:             validator,
		decomposer:            decomposer,
		llmClient:             llmClient,
		logger:                logger,
		QueryTimeout:          DefaultQueryTimeout,
		MaxConcurrentSubtasks: DefaultMaxConcurrentSubtasks,
	}
}

// subtaskOutcome is one slot of the fan-out result slice. Exactly one of
// result and err is set after the join.
type subtaskOutcome struct {
	result *domain.AgentResult
	cached bool
	err    error
}

// Handle executes one research query under the query-level timeout.
func (s *OrchestratorService) Handle(ctx context.Context, q domain.Query) (*domain.Report, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, ErrEmptyQuery
	}
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.SubmittedAt.IsZero() {
		q.SubmittedAt = timeNow()
	}

	if s.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.QueryTimeout)
		defer cancel()
	}

	started := time.Now()
	subtasks := s.decomposer.Decompose(ctx, q)
	s.logger.Info("query decomposed",
		zap.String("query_id", q.ID.String()),
		zap.Int("subtasks", len(subtasks)))

	outcomes := make([]subtaskOutcome, len(subtasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent())
	for i, sub := range subtasks {
		i, sub := i, sub
		g.Go(func() error {
			outcomes[i] = s.dispatch(gctx, sub)
			return nil
		})
	}
	// Dispatch errors live in their outcome slots; the group itself never
	// carries one. Wait is the barrier before validation.
	_ = g.Wait()

	var usable []domain.AgentResult
	var failures []domain.SubtaskFailure
	usedCache := false
	for i, o := range outcomes {
		if o.err != nil {
			s.logger.Warn("subtask failed",
				zap.String("subtask_id", subtasks[i].ID.String()),
				zap.String("capability", string(subtasks[i].Capability)),
				zap.Error(o.err))
			failures = append(failures, domain.SubtaskFailure{
				SubtaskID:  subtasks[i].ID,
				Capability: subtasks[i].Capability,
				Reason:     o.err.Error(),
			})
			continue
		}
		usable = append(usable, *o.result)
		if o.cached {
			usedCache = true
		} else if s.cache != nil {
			s.cache.Store(ctx, subtasks[i].Text, *o.result)
		}
	}

	if len(usable) == 0 {
		return nil, fmt.Errorf("%w: all %d subtasks failed", ErrNoUsableResults, len(subtasks))
	}

	validated, err := s.validator.Reconcile(ctx, usable)
	if err != nil {
		return nil, fmt.Errorf("reconcile results: %w", err)
	}
	if len(validated.Unresolved) > 0 {
		s.logger.Warn("report contains unresolved contradictions",
			zap.String("query_id", q.ID.String()),
			zap.Int("count", len(validated.Unresolved)))
	}

	report := s.assembleReport(ctx, q, validated, usable, failures, usedCache)

	s.logger.Info("research complete",
		zap.String("query_id", q.ID.String()),
		zap.Int("claims", len(validated.Claims)),
		zap.Int("resolved_contradictions", len(validated.Resolved)),
		zap.Int("failed_subtasks", len(failures)),
		zap.Bool("used_cache", usedCache),
		zap.Duration("elapsed", time.Since(started)))

	return report, nil
}

// dispatch runs one subtask: cache lookup first, then the registered agent
// on a miss.
func (s *OrchestratorService) dispatch(ctx context.Context, sub domain.Subtask) subtaskOutcome {
	if s.cache != nil {
		hit, err := s.cache.Lookup(ctx, sub.Text, sub.Capability)
		if err == nil && hit != nil {
			s.logger.Info("cache hit",
				zap.String("subtask_id", sub.ID.String()),
				zap.String("capability", string(sub.Capability)),
				zap.Float32("similarity", hit.Similarity))
			result := hit.Result
			result.SubtaskID = sub.ID
			return subtaskOutcome{result: &result, cached: true}
		}
	}

	ag, err := s.registry.Lookup(sub.Capability)
	if err != nil {
		return subtaskOutcome{err: err}
	}

	result, err := ag.Research(ctx, sub)
	if err != nil {
		return subtaskOutcome{err: err}
	}
	return subtaskOutcome{result: result}
}

func (s *OrchestratorService) maxConcurrent() int {
	if s.MaxConcurrentSubtasks > 0 {
		return s.MaxConcurrentSubtasks
	}
	return DefaultMaxConcurrentSubtasks
}

func (s *OrchestratorService) assembleReport(
	ctx context.Context,
	q domain.Query,
	validated *domain.ValidatedResult,
	results []domain.AgentResult,
	failures []domain.SubtaskFailure,
	usedCache bool,
) *domain.Report {
	report := &domain.Report{
		QueryID:         q.ID,
		Query:           q.Text,
		Resolutions:     validated.Resolved,
		Unresolved:      validated.Unresolved,
		SourcesAnalyzed: countSources(results),
		FailedSubtasks:  failures,
		UsedCache:       usedCache,
		CreatedAt:       timeNow(),
	}

	for _, c := range validated.Claims {
		switch c.Agent {
		case domain.CapabilityWeb:
			report.WebInsights = append(report.WebInsights, c)
		case domain.CapabilityAcademic:
			report.AcademicInsights = append(report.AcademicInsights, c)
		case domain.CapabilityMultimodal:
			report.MediaInsights = append(report.MediaInsights, c)
		}
	}

	report.Summary = s.summarize(ctx, q, validated, len(results))
	return report
}

// summarize asks the LLM for an executive summary and falls back to a
// deterministic one when that is unavailable.
func (s *OrchestratorService) summarize(ctx context.Context, q domain.Query, validated *domain.ValidatedResult, resultCount int) string {
	if s.llmClient != nil {
		summary, err := s.llmClient.Summarize(ctx, q.Text, validated.Claims)
		if err == nil && summary != "" {
			return summary
		}
		if err != nil {
			s.logger.Warn("summary generation failed, using fallback", zap.Error(err))
		}
	}
	return fmt.Sprintf("Research for %q produced %d validated claims from %d agent results (%d contradictions resolved, %d unresolved).",
		q.Text, len(validated.Claims), resultCount, len(validated.Resolved), len(validated.Unresolved))
}

// countSources counts distinct citations across the raw results. Claims
// without a citation count once each; they are sources without a link.
func countSources(results []domain.AgentResult) int {
	seen := make(map[string]bool)
	uncited := 0
	for _, r := range results {
		for _, c := range r.Claims {
			if c.Citation == "" {
				uncited++
				continue
			}
			seen[c.Citation] = true
		}
	}
	return len(seen) + uncited
}
